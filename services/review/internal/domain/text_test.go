package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 200)

	tests := []struct {
		name          string
		text          string
		limit         int
		want          string
		wantTruncated bool
	}{
		{"short text unchanged", "Great job", 180, "Great job", false},
		{"exactly at limit unchanged", strings.Repeat("b", 180), 180, strings.Repeat("b", 180), false},
		{"long text cut", long, 180, strings.Repeat("a", 180) + "...", true},
		{"counts runes not bytes", strings.Repeat("é", 5), 3, "ééé...", true},
		{"zero limit", "x", 0, "...", true},
		{"empty", "", 10, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Truncate(tt.text, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTruncated, truncated)
		})
	}
}

func TestExpansion_ToggleTwiceRestores(t *testing.T) {
	r := Review{ID: "r1", Text: strings.Repeat("z", 250)}
	e := NewExpansion()

	before := e.Render(r, DefaultTruncateLimit)
	assert.True(t, before.Truncatable)
	assert.False(t, before.Expanded)
	assert.Len(t, []rune(before.Text), DefaultTruncateLimit+3)

	assert.True(t, e.Toggle("r1"))
	expanded := e.Render(r, DefaultTruncateLimit)
	assert.Equal(t, r.Text, expanded.Text)
	assert.True(t, expanded.Expanded)

	assert.False(t, e.Toggle("r1"))
	assert.Equal(t, before, e.Render(r, DefaultTruncateLimit))
}

func TestExpansion_KeyedByID(t *testing.T) {
	a := Review{ID: "a", Text: strings.Repeat("a", 300)}
	b := Review{ID: "b", Text: strings.Repeat("b", 300)}

	e := NewExpansion("a", "")
	assert.Len(t, e, 1)

	// a new review prepended ahead of "a" does not shift its expansion
	assert.Equal(t, a.Text, e.Render(a, 180).Text)
	assert.NotEqual(t, b.Text, e.Render(b, 180).Text)
}

func TestExpansion_ShortReviewNeverTruncated(t *testing.T) {
	var e Expansion
	r := Review{ID: "s", Text: "Quick and tidy."}
	got := e.Render(r, 180)
	assert.Equal(t, r.Text, got.Text)
	assert.False(t, got.Truncatable)
}
