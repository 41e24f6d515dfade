package domain

import (
	"math"
)

// Distribution counts reviews per star rating. Index 0 is unused so that
// d[r] is the count for rating r.
type Distribution [MaxRating + 1]int

// Add counts one review with the given rating. Out-of-range ratings are
// ignored; stores never hold them.
func (d *Distribution) Add(rating int) {
	if rating >= MinRating && rating <= MaxRating {
		d[rating]++
	}
}

// Total is the sum of all buckets.
func (d Distribution) Total() int {
	n := 0
	for r := MinRating; r <= MaxRating; r++ {
		n += d[r]
	}
	return n
}

// Average is the mean rating rounded to one decimal place, 0 when empty.
func (d Distribution) Average() float64 {
	total := d.Total()
	if total == 0 {
		return 0
	}
	sum := 0
	for r := MinRating; r <= MaxRating; r++ {
		sum += r * d[r]
	}
	return math.Round(float64(sum)/float64(total)*10) / 10
}

// Counts returns the buckets keyed by rating, all five keys present.
func (d Distribution) Counts() map[int]int {
	m := make(map[int]int, MaxRating)
	for r := MinRating; r <= MaxRating; r++ {
		m[r] = d[r]
	}
	return m
}

// Percentages returns each bucket's share of the total in percent.
func (d Distribution) Percentages() map[int]float64 {
	total := d.Total()
	m := make(map[int]float64, MaxRating)
	for r := MinRating; r <= MaxRating; r++ {
		if total > 0 {
			m[r] = float64(d[r]) / float64(total) * 100
		} else {
			m[r] = 0
		}
	}
	return m
}

// Distribute builds the distribution of reviews.
func Distribute(reviews []Review) Distribution {
	var d Distribution
	for _, r := range reviews {
		d.Add(r.Rating)
	}
	return d
}

// Summary is the aggregate shown above the review list.
type Summary struct {
	Total        int             `json:"total"`
	Average      float64         `json:"average"`
	Distribution map[int]int     `json:"distribution"`
	Percentages  map[int]float64 `json:"percentages"`
}

// Summarize returns the summary for d, or false when fewer than threshold
// reviews exist. A threshold below 1 is treated as 1 so an empty list never
// has a summary.
func Summarize(d Distribution, threshold int) (*Summary, bool) {
	total := d.Total()
	if total < max(threshold, 1) {
		return nil, false
	}
	return &Summary{
		Total:        total,
		Average:      d.Average(),
		Distribution: d.Counts(),
		Percentages:  d.Percentages(),
	}, true
}
