package domain

import (
	"fmt"
	"strings"
)

// Viewport selects the load-more step.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

// MobileBreakpoint is the width, in CSS pixels, below which a viewport is
// mobile.
const MobileBreakpoint = 768

// ViewportForWidth classifies a screen width.
func ViewportForWidth(width int) Viewport {
	if width < MobileBreakpoint {
		return ViewportMobile
	}
	return ViewportDesktop
}

// ParseViewport accepts "desktop" or "mobile", case-insensitively.
func ParseViewport(s string) (Viewport, error) {
	switch v := Viewport(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewportDesktop, ViewportMobile:
		return v, nil
	default:
		return "", fmt.Errorf("viewport must be %q or %q", ViewportDesktop, ViewportMobile)
	}
}

// PagingPolicy sizes the progressive "load more" pages.
type PagingPolicy struct {
	Initial     int
	DesktopStep int
	MobileStep  int
}

// DefaultPagingPolicy shows 6 reviews, then 15 more on desktop or 10 on
// mobile per click.
func DefaultPagingPolicy() PagingPolicy {
	return PagingPolicy{Initial: 6, DesktopStep: 15, MobileStep: 10}
}

// NextPageSize returns how many reviews the next page holds once shown
// reviews are already displayed. The viewport is evaluated per call.
func (p PagingPolicy) NextPageSize(shown int, viewport Viewport) int {
	if shown <= 0 {
		return p.Initial
	}
	if viewport == ViewportMobile {
		return p.MobileStep
	}
	return p.DesktopStep
}
