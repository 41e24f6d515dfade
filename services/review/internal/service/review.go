package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	"github.com/Shiro-Bankai7/electricians/pkg/pagination"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/domain"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/event"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/repository"
)

// Options tunes summary and paging behaviour.
type Options struct {
	Paging           domain.PagingPolicy
	SummaryThreshold int
	TruncateLimit    int
}

// DefaultOptions mirrors the published site: 6 reviews first, summary from 5
// reviews, 180 characters before "Read more".
func DefaultOptions() Options {
	return Options{
		Paging:           domain.DefaultPagingPolicy(),
		SummaryThreshold: 5,
		TruncateLimit:    domain.DefaultTruncateLimit,
	}
}

// ReviewService implements the business logic for customer reviews.
type ReviewService struct {
	repo     repository.ReviewRepository
	producer *event.Producer
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, producer *event.Producer, opts Options, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		producer: producer,
		opts:     opts,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	Name   string
	Rating int
	Text   string
}

// Submit validates input and, only if it is entirely valid, stores a new
// review ahead of all existing ones.
func (s *ReviewService) Submit(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	name := strings.TrimSpace(input.Name)
	text := strings.TrimSpace(input.Text)

	switch {
	case name == "":
		reviewsRejectedTotal.WithLabelValues("name").Inc()
		return nil, apperrors.InvalidInput("name is required")
	case text == "":
		reviewsRejectedTotal.WithLabelValues("text").Inc()
		return nil, apperrors.InvalidInput("review text is required")
	}
	if err := domain.ValidateRating(input.Rating); err != nil {
		reviewsRejectedTotal.WithLabelValues("rating").Inc()
		return nil, apperrors.InvalidInput(err.Error())
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		Name:      name,
		Rating:    input.Rating,
		Text:      text,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	reviewsSubmittedTotal.WithLabelValues(strconv.Itoa(review.Rating)).Inc()

	if err := s.producer.PublishReviewSubmitted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.submitted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// Get retrieves a review by its ID with its full text.
func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return review, nil
}

// Summary returns the rating summary, or false when there are fewer reviews
// than the configured threshold.
func (s *ReviewService) Summary(ctx context.Context) (*domain.Summary, bool, error) {
	d, err := s.repo.Distribution(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("get rating distribution: %w", err)
	}
	summary, ok := domain.Summarize(d, s.opts.SummaryThreshold)
	return summary, ok, nil
}

// ReviewPage is one "load more" window of the newest-first review list.
type ReviewPage struct {
	reviews []domain.Review

	Offset     int
	Limit      int
	Total      int
	NextOffset int
	HasMore    bool

	// Summary is read together with the page, so Summary.Total equals Total.
	// It is nil below the summary threshold.
	Summary *domain.Summary
}

// Items yields the page's reviews in order. The sequence can be ranged over
// any number of times.
func (p *ReviewPage) Items() iter.Seq[domain.Review] {
	return slices.Values(p.reviews)
}

// Len is the number of reviews in the page.
func (p *ReviewPage) Len() int {
	return len(p.reviews)
}

// Page returns size reviews starting at offset along with the rating summary
// of the same snapshot. Consecutive pages built from each other's NextOffset
// neither overlap nor skip.
func (s *ReviewService) Page(ctx context.Context, offset, size int) (*ReviewPage, error) {
	if offset < 0 || size < 0 {
		return nil, apperrors.InvalidInput("offset and size must not be negative")
	}

	w := pagination.Window{Offset: offset, Limit: size}
	reviews, d, err := s.repo.ListWithDistribution(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	page := pagination.NewPage(reviews, d.Total(), w)
	summary, _ := domain.Summarize(d, s.opts.SummaryThreshold)
	return &ReviewPage{
		reviews:    page.Data,
		Offset:     page.Offset,
		Limit:      page.Limit,
		Total:      page.Total,
		NextOffset: page.NextOffset,
		HasMore:    page.HasMore,
		Summary:    summary,
	}, nil
}

// NextPageSize returns how many reviews the next "load more" adds once shown
// reviews are visible on the given viewport.
func (s *ReviewService) NextPageSize(shown int, viewport domain.Viewport) int {
	return s.opts.Paging.NextPageSize(shown, viewport)
}

// Render applies truncation to every review in page, keeping the ones in
// expanded at full length.
func (s *ReviewService) Render(page *ReviewPage, expanded domain.Expansion) []domain.RenderedReview {
	out := make([]domain.RenderedReview, 0, page.Len())
	for r := range page.Items() {
		out = append(out, expanded.Render(r, s.opts.TruncateLimit))
	}
	return out
}

// Latest returns up to n of the newest reviews.
func (s *ReviewService) Latest(ctx context.Context, n int) ([]domain.Review, error) {
	reviews, _, err := s.repo.List(ctx, pagination.Window{Limit: n})
	if err != nil {
		return nil, fmt.Errorf("list latest reviews: %w", err)
	}
	return reviews, nil
}

// Seed stores the published testimonials so the newest-first order matches
// the site. Reviews that already exist are left alone.
func (s *ReviewService) Seed(ctx context.Context) error {
	seed := domain.SeedReviews(s.now())
	inserted := 0
	for _, r := range slices.Backward(seed) {
		if err := s.repo.Create(ctx, &r); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			return fmt.Errorf("seed review %s: %w", r.ID, err)
		}
		inserted++
	}

	s.logger.InfoContext(ctx, "seeded reviews", slog.Int("inserted", inserted))
	return nil
}
