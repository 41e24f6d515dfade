package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewsWithRatings(ratings ...int) []Review {
	out := make([]Review, len(ratings))
	for i, r := range ratings {
		out[i] = Review{ID: string(rune('a' + i)), Name: "n", Rating: r, Text: "t"}
	}
	return out
}

func TestValidateRating(t *testing.T) {
	for r := MinRating; r <= MaxRating; r++ {
		assert.NoError(t, ValidateRating(r))
	}
	for _, r := range []int{-1, 0, 6, 10} {
		assert.Error(t, ValidateRating(r), r)
	}
}

func TestDistribute(t *testing.T) {
	d := Distribute(reviewsWithRatings(5, 5, 4, 1, 5))

	want := map[int]int{1: 1, 2: 0, 3: 0, 4: 1, 5: 3}
	if diff := cmp.Diff(want, d.Counts()); diff != "" {
		t.Errorf("Counts() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, d.Total())
	assert.Equal(t, 4.0, d.Average())
}

func TestDistribution_SumMatchesTotal(t *testing.T) {
	ratings := []int{1, 2, 3, 4, 5, 5, 4, 3, 2, 1, 5, 5}
	d := Distribute(reviewsWithRatings(ratings...))

	sum := 0
	for _, c := range d.Counts() {
		sum += c
	}
	assert.Equal(t, len(ratings), sum)
	assert.Equal(t, len(ratings), d.Total())
}

func TestDistribution_AverageRounding(t *testing.T) {
	tests := []struct {
		ratings []int
		want    float64
	}{
		{nil, 0},
		{[]int{5, 4, 4}, 4.3},
		{[]int{5, 5, 4}, 4.7},
		{[]int{1, 2}, 1.5},
		{[]int{5, 5, 5, 5, 5, 4}, 4.8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Distribute(reviewsWithRatings(tt.ratings...)).Average(), tt.ratings)
	}
}

func TestDistribution_Percentages(t *testing.T) {
	d := Distribute(reviewsWithRatings(5, 5, 5, 4))
	p := d.Percentages()
	assert.InDelta(t, 75.0, p[5], 1e-9)
	assert.InDelta(t, 25.0, p[4], 1e-9)
	assert.Zero(t, p[1])

	var empty Distribution
	assert.Zero(t, empty.Percentages()[5])
}

func TestSummarize_Threshold(t *testing.T) {
	four := Distribute(reviewsWithRatings(5, 5, 5, 4))
	_, ok := Summarize(four, 5)
	assert.False(t, ok, "four reviews stay below a threshold of five")

	five := Distribute(reviewsWithRatings(5, 5, 5, 4, 3))
	s, ok := Summarize(five, 5)
	require.True(t, ok)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 4.4, s.Average)
	assert.Equal(t, 1, s.Distribution[3])
}

func TestSummarize_EmptyNeverSummarized(t *testing.T) {
	var empty Distribution
	_, ok := Summarize(empty, 0)
	assert.False(t, ok)
}
