package memory

import (
	"context"
	"slices"
	"sync"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	"github.com/Shiro-Bankai7/electricians/pkg/pagination"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/domain"
)

// ReviewRepository keeps reviews in process memory. Contents are lost on
// restart.
type ReviewRepository struct {
	mu sync.RWMutex
	// reviews is stored oldest first so Create is an append; reads walk it
	// backwards.
	reviews []domain.Review
	byID    map[string]int
}

// NewReviewRepository returns an empty repository.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{byID: make(map[string]int)}
}

func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[review.ID]; ok {
		return apperrors.Conflict("review " + review.ID + " already exists")
	}
	r.byID[review.ID] = len(r.reviews)
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *ReviewRepository) GetByID(_ context.Context, id string) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}
	review := r.reviews[i]
	return &review, nil
}

func (r *ReviewRepository) List(_ context.Context, w pagination.Window) ([]domain.Review, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.window(w), len(r.reviews), nil
}

func (r *ReviewRepository) ListWithDistribution(_ context.Context, w pagination.Window) ([]domain.Review, domain.Distribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.window(w), domain.Distribute(r.reviews), nil
}

// window copies the reviews inside w newest first. Callers hold mu.
func (r *ReviewRepository) window(w pagination.Window) []domain.Review {
	total := len(r.reviews)
	start, end := w.Bounds(total)
	out := make([]domain.Review, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, r.reviews[total-1-i])
	}
	return out
}

func (r *ReviewRepository) Distribution(_ context.Context) (domain.Distribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.Distribute(r.reviews), nil
}

// Snapshot returns every review newest first.
func (r *ReviewRepository) Snapshot() []domain.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := slices.Clone(r.reviews)
	slices.Reverse(out)
	return out
}
