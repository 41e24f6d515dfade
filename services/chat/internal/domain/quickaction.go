package domain

import "slices"

// QuickActions are the canned prompts offered before the visitor types.
var QuickActions = []string{
	"Schedule an appointment",
	"Get a quote",
	"Emergency service",
	"Panel upgrade info",
}

// IsQuickAction reports whether action is one of QuickActions.
func IsQuickAction(action string) bool {
	return slices.Contains(QuickActions, action)
}
