package domain

import (
	"time"
)

// SeedReviews returns the published testimonials, newest first. IDs are
// fixed so links to them stay valid across restarts.
func SeedReviews(now time.Time) []Review {
	return []Review{
		{
			ID:        "6f1c3c1e-4c1f-4b7a-9a51-0b4c8f1e2a01",
			Name:      "Sarah Johnson",
			Rating:    5,
			Text:      "PowerPro Electric saved the day! Our power went out during a storm and they came out immediately to fix it. Professional and reliable!",
			CreatedAt: now,
		},
		{
			ID:        "6f1c3c1e-4c1f-4b7a-9a51-0b4c8f1e2a02",
			Name:      "Mike Chen",
			Rating:    5,
			Text:      "Excellent work on our kitchen renovation. They installed new outlets and under-cabinet lighting perfectly. Clean work and fair pricing.",
			CreatedAt: now.Add(-time.Second),
		},
		{
			ID:        "6f1c3c1e-4c1f-4b7a-9a51-0b4c8f1e2a03",
			Name:      "Lisa Martinez",
			Rating:    5,
			Text:      "I was impressed with their professionalism. They explained everything clearly and the work was completed on time and on budget.",
			CreatedAt: now.Add(-2 * time.Second),
		},
	}
}
