package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	"github.com/Shiro-Bankai7/electricians/pkg/pagination"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/domain"
)

func seedRepo(t *testing.T, n int) *ReviewRepository {
	t.Helper()
	repo := NewReviewRepository()
	for i := range n {
		require.NoError(t, repo.Create(context.Background(), &domain.Review{
			ID:     fmt.Sprintf("r%02d", i),
			Name:   "Customer",
			Rating: i%5 + 1,
			Text:   "text",
		}))
	}
	return repo
}

func ids(reviews []domain.Review) []string {
	out := make([]string, len(reviews))
	for i, r := range reviews {
		out[i] = r.ID
	}
	return out
}

func TestReviewRepository_NewestFirst(t *testing.T) {
	repo := seedRepo(t, 3)

	got, total, err := repo.List(context.Background(), pagination.Window{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"r02", "r01", "r00"}, ids(got))
	assert.Equal(t, ids(got), ids(repo.Snapshot()))
}

func TestReviewRepository_ContiguousPages(t *testing.T) {
	repo := seedRepo(t, 20)
	ctx := context.Background()

	first, _, err := repo.List(ctx, pagination.Window{Offset: 0, Limit: 6})
	require.NoError(t, err)
	second, _, err := repo.List(ctx, pagination.Window{Offset: 6, Limit: 6})
	require.NoError(t, err)
	all, _, err := repo.List(ctx, pagination.Window{Offset: 0, Limit: 12})
	require.NoError(t, err)

	assert.Equal(t, ids(all), append(ids(first), ids(second)...))

	past, total, err := repo.List(ctx, pagination.Window{Offset: 40, Limit: 6})
	require.NoError(t, err)
	assert.Empty(t, past)
	assert.Equal(t, 20, total)
}

func TestReviewRepository_GetByID(t *testing.T) {
	repo := seedRepo(t, 2)

	r, err := repo.GetByID(context.Background(), "r01")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Rating)

	r.Name = "mutated"
	again, _ := repo.GetByID(context.Background(), "r01")
	assert.Equal(t, "Customer", again.Name)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewRepository_DuplicateID(t *testing.T) {
	repo := seedRepo(t, 1)
	err := repo.Create(context.Background(), &domain.Review{ID: "r00", Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestReviewRepository_Distribution(t *testing.T) {
	repo := seedRepo(t, 7)
	d, err := repo.Distribution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, d.Total())
	assert.Equal(t, 2, d[1])
	assert.Equal(t, 2, d[2])
	assert.Equal(t, 1, d[5])
}

func TestReviewRepository_ListWithDistribution(t *testing.T) {
	repo := seedRepo(t, 7)

	got, d, err := repo.ListWithDistribution(context.Background(), pagination.Window{Offset: 5, Limit: 6})
	require.NoError(t, err)
	assert.Equal(t, []string{"r01", "r00"}, ids(got))
	assert.Equal(t, 7, d.Total())
	assert.Equal(t, 2, d[1])
	assert.Equal(t, 2, d[2])
}

func TestReviewRepository_ListWithDistributionConsistent(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 200 {
			_ = repo.Create(ctx, &domain.Review{ID: fmt.Sprintf("w%d", i), Rating: 1 + i%5})
		}
	}()

	for range 200 {
		got, d, err := repo.ListWithDistribution(ctx, pagination.Window{Limit: 1000})
		require.NoError(t, err)
		require.Len(t, got, d.Total())
	}
	wg.Wait()
}

func TestReviewRepository_ConcurrentAccess(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = repo.Create(ctx, &domain.Review{ID: fmt.Sprintf("c%d", i), Rating: 4})
		}()
		go func() {
			defer wg.Done()
			_, _, _ = repo.List(ctx, pagination.Window{Limit: 5})
			_, _ = repo.Distribution(ctx)
		}()
	}
	wg.Wait()

	d, err := repo.Distribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, d[4])
}
