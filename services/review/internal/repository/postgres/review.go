package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shiro-Bankai7/electricians/pkg/database"
	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	"github.com/Shiro-Bankai7/electricians/pkg/pagination"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/domain"
)

const (
	insertReviewSQL = `INSERT INTO reviews (id, name, rating, body, created_at) VALUES ($1, $2, $3, $4, $5)`

	getReviewSQL = `SELECT id, name, rating, body, created_at FROM reviews WHERE id = $1`

	countReviewsSQL = `SELECT count(*) FROM reviews`

	listReviewsSQL = `SELECT id, name, rating, body, created_at
FROM reviews
ORDER BY created_at DESC, seq DESC
LIMIT $1 OFFSET $2`

	distributionSQL = `SELECT rating, count(*) FROM reviews GROUP BY rating`

	snapshotSQL = `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ, READ ONLY`
)

const uniqueViolation = "23505"

// ReviewRepository stores reviews in PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository returns a repository over db.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateReview", insertReviewSQL)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, insertReviewSQL,
		review.ID, review.Name, review.Rating, review.Text, review.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.Conflict("review " + review.ID + " already exists")
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (_ *domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "GetReview", getReviewSQL)
	defer func() { end(err) }()

	var rv domain.Review
	err = r.db.QueryRow(ctx, getReviewSQL, id).
		Scan(&rv.ID, &rv.Name, &rv.Rating, &rv.Text, &rv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("review", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	return &rv, nil
}

func (r *ReviewRepository) List(ctx context.Context, w pagination.Window) (_ []domain.Review, _ int, err error) {
	ctx, end := database.TraceQuery(ctx, "ListReviews", listReviewsSQL)
	defer func() { end(err) }()

	var total int
	if err = r.db.QueryRow(ctx, countReviewsSQL).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	reviews, err := queryWindow(ctx, r.db, w, total)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepository) Distribution(ctx context.Context) (_ domain.Distribution, err error) {
	ctx, end := database.TraceQuery(ctx, "ReviewDistribution", distributionSQL)
	defer func() { end(err) }()

	return queryDistribution(ctx, r.db)
}

// ListWithDistribution reads the distribution and the window inside one
// repeatable-read transaction.
func (r *ReviewRepository) ListWithDistribution(ctx context.Context, w pagination.Window) (_ []domain.Review, _ domain.Distribution, err error) {
	ctx, end := database.TraceQuery(ctx, "ListReviewsWithDistribution", listReviewsSQL)
	defer func() { end(err) }()

	var d domain.Distribution
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, d, fmt.Errorf("begin list snapshot: %w", err)
	}

	if _, err = tx.Exec(ctx, snapshotSQL); err != nil {
		_ = tx.Rollback(ctx)
		return nil, d, fmt.Errorf("set snapshot isolation: %w", err)
	}
	if d, err = queryDistribution(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return nil, d, err
	}
	reviews, err := queryWindow(ctx, tx, w, d.Total())
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, d, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, d, fmt.Errorf("commit list snapshot: %w", err)
	}
	return reviews, d, nil
}

// queryWindow selects the rows inside w, skipping the query when w lies past
// total.
func queryWindow(ctx context.Context, db database.DBTX, w pagination.Window, total int) ([]domain.Review, error) {
	if w.Limit <= 0 || w.Offset >= total {
		return []domain.Review{}, nil
	}

	rows, err := db.Query(ctx, listReviewsSQL, w.Limit, w.Offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Review, error) {
		var rv domain.Review
		err := row.Scan(&rv.ID, &rv.Name, &rv.Rating, &rv.Text, &rv.CreatedAt)
		return rv, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan reviews: %w", err)
	}
	return reviews, nil
}

func queryDistribution(ctx context.Context, db database.DBTX) (domain.Distribution, error) {
	var d domain.Distribution
	rows, err := db.Query(ctx, distributionSQL)
	if err != nil {
		return d, fmt.Errorf("query distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return d, fmt.Errorf("scan distribution: %w", err)
		}
		if rating >= domain.MinRating && rating <= domain.MaxRating {
			d[rating] = count
		}
	}
	if err := rows.Err(); err != nil {
		return d, fmt.Errorf("iterate distribution: %w", err)
	}
	return d, nil
}
