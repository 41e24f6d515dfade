package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// MaxLimit caps the number of items a single window may request.
const MaxLimit = 100

// Window is an offset/limit slice of an ordered collection. A zero Limit
// means the caller did not ask for a specific size.
type Window struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// FromRequest reads ?offset= and ?limit= from the query string. Missing
// values default to zero; malformed or negative values are rejected, and
// limits above MaxLimit are capped.
func FromRequest(r *http.Request) (Window, error) {
	var w Window
	q := r.URL.Query()

	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Window{}, fmt.Errorf("offset must be a non-negative integer")
		}
		w.Offset = v
	}

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return Window{}, fmt.Errorf("limit must be a positive integer")
		}
		w.Limit = min(v, MaxLimit)
	}

	return w, nil
}

// Bounds returns the half-open index range [start, end) the window covers in
// a collection of total items.
func (w Window) Bounds(total int) (start, end int) {
	start = min(max(w.Offset, 0), total)
	end = min(start+max(w.Limit, 0), total)
	return start, end
}

// Page is one window of results plus the cursor for the next one.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	NextOffset int  `json:"next_offset"`
	HasMore    bool `json:"has_more"`
}

// NewPage builds a Page from the items that were returned for w.
func NewPage[T any](data []T, total int, w Window) Page[T] {
	if data == nil {
		data = []T{}
	}
	next := w.Offset + len(data)
	return Page[T]{
		Data:       data,
		Offset:     w.Offset,
		Limit:      w.Limit,
		Total:      total,
		NextOffset: next,
		HasMore:    next < total,
	}
}
