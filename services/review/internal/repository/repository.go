package repository

import (
	"context"

	"github.com/Shiro-Bankai7/electricians/pkg/pagination"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/domain"
)

// ReviewRepository stores reviews newest first.
type ReviewRepository interface {
	// Create prepends review so it becomes the first item listed.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID returns the review or an apperrors NotFound error.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// List returns the reviews inside w, newest first, and the total count.
	List(ctx context.Context, w pagination.Window) ([]domain.Review, int, error)

	// Distribution counts all stored reviews per rating.
	Distribution(ctx context.Context) (domain.Distribution, error)

	// ListWithDistribution returns the reviews inside w and the rating
	// distribution read from one consistent snapshot, so the distribution
	// total is the list total.
	ListWithDistribution(ctx context.Context, w pagination.Window) ([]domain.Review, domain.Distribution, error)
}
