package domain

const ellipsis = "..."

// DefaultTruncateLimit is the number of runes shown before "Read more".
const DefaultTruncateLimit = 180

// Truncate shortens text to its first limit runes plus "..." when it is
// longer than limit runes. truncated reports whether that happened.
func Truncate(text string, limit int) (out string, truncated bool) {
	if limit < 0 {
		limit = 0
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i] + ellipsis, true
		}
		n++
	}
	return text, false
}

// Expansion is the set of review IDs whose full text is shown.
type Expansion map[string]struct{}

// NewExpansion returns a set holding ids.
func NewExpansion(ids ...string) Expansion {
	e := make(Expansion, len(ids))
	for _, id := range ids {
		if id != "" {
			e[id] = struct{}{}
		}
	}
	return e
}

// Toggle flips id and reports whether it is now expanded.
func (e Expansion) Toggle(id string) bool {
	if _, ok := e[id]; ok {
		delete(e, id)
		return false
	}
	e[id] = struct{}{}
	return true
}

// Expanded reports whether id is in the set. A nil set expands nothing.
func (e Expansion) Expanded(id string) bool {
	_, ok := e[id]
	return ok
}

// RenderedReview is a review as displayed in the list.
type RenderedReview struct {
	Review
	// Truncatable is true when the full text exceeds the limit, i.e. the
	// read-more/show-less control applies.
	Truncatable bool `json:"truncatable"`
	Expanded    bool `json:"expanded"`
}

// Render shows r in full if it is expanded or short enough, and truncated
// otherwise.
func (e Expansion) Render(r Review, limit int) RenderedReview {
	short, truncatable := Truncate(r.Text, limit)
	out := RenderedReview{Review: r, Truncatable: truncatable, Expanded: e.Expanded(r.ID)}
	if truncatable && !out.Expanded {
		out.Text = short
	}
	return out
}
