// Package sender delivers accepted inquiries to whoever handles them.
package sender

import (
	"context"

	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/domain"
)

// Sender defines the interface for handing an inquiry on.
type Sender interface {
	Name() string
	Send(ctx context.Context, inquiry *domain.Inquiry) error
}
