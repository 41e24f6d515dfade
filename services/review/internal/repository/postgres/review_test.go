package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiro-Bankai7/electricians/pkg/database"
	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	"github.com/Shiro-Bankai7/electricians/pkg/pagination"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/domain"
)

var reviewColumns = []string{"id", "name", "rating", "body", "created_at"}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *ReviewRepository) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewReviewRepository(mock)
}

func TestCreate(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now().UTC()
	review := &domain.Review{ID: "0b6e0c4e-5d0c-4a43-9a8c-1f8e3f0e9d11", Name: "Dana", Rating: 4, Text: "Tidy panel swap", CreatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta(insertReviewSQL)).
		WithArgs(review.ID, review.Name, review.Rating, review.Text, review.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), review))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateIsConflict(t *testing.T) {
	mock, repo := newMock(t)
	review := &domain.Review{ID: "dup", Rating: 5}

	mock.ExpectExec(regexp.QuoteMeta(insertReviewSQL)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := repo.Create(context.Background(), review)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestGetByID(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(getReviewSQL)).WithArgs("r1").
		WillReturnRows(pgxmock.NewRows(reviewColumns).AddRow("r1", "Sam", 5, "Fast response", now))

	r, err := repo.GetByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Sam", r.Name)
	assert.Equal(t, "Fast response", r.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(getReviewSQL)).WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestList(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(countReviewsSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(8))
	mock.ExpectQuery(regexp.QuoteMeta(listReviewsSQL)).WithArgs(2, 6).
		WillReturnRows(pgxmock.NewRows(reviewColumns).
			AddRow("r7", "G", 3, "ok", now).
			AddRow("r8", "H", 4, "good", now.Add(-time.Minute)))

	got, total, err := repo.List(context.Background(), pagination.Window{Offset: 6, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	require.Len(t, got, 2)
	assert.Equal(t, "r7", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_PastEndSkipsQuery(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(countReviewsSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	got, total, err := repo.List(context.Background(), pagination.Window{Offset: 6, Limit: 15})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistribution(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(distributionSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"rating", "count"}).
			AddRow(5, 3).
			AddRow(2, 1))

	d, err := repo.Distribution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, d.Total())
	assert.Equal(t, 3, d[5])
	assert.Equal(t, 1, d[2])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithDistribution(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(snapshotSQL)).
		WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectQuery(regexp.QuoteMeta(distributionSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"rating", "count"}).
			AddRow(5, 6).
			AddRow(3, 2))
	mock.ExpectQuery(regexp.QuoteMeta(listReviewsSQL)).WithArgs(2, 6).
		WillReturnRows(pgxmock.NewRows(reviewColumns).
			AddRow("r7", "G", 3, "ok", now).
			AddRow("r8", "H", 5, "good", now.Add(-time.Minute)))
	mock.ExpectCommit()

	got, d, err := repo.ListWithDistribution(context.Background(), pagination.Window{Offset: 6, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 8, d.Total())
	assert.Equal(t, 6, d[5])
	require.Len(t, got, 2)
	assert.Equal(t, "r7", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithDistribution_PastEndSkipsQuery(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(snapshotSQL)).
		WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectQuery(regexp.QuoteMeta(distributionSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"rating", "count"}).AddRow(4, 3))
	mock.ExpectCommit()

	got, d, err := repo.ListWithDistribution(context.Background(), pagination.Window{Offset: 6, Limit: 15})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 3, d.Total())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithDistribution_QueryErrorRollsBack(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(snapshotSQL)).
		WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectQuery(regexp.QuoteMeta(distributionSQL)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, _, err := repo.ListWithDistribution(context.Background(), pagination.Window{Limit: 6})
	assert.ErrorContains(t, err, "query distribution")
	assert.NoError(t, mock.ExpectationsWereMet())
}
