package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"perpustakaan-backend/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByBook(ctx context.Context, bookID uuid.UUID, params domain.PaginationParams) ([]domain.Review, int64, error)
}

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, book_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		review.ID, review.BookID, review.UserID, review.Rating, review.Comment,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var review domain.Review
	query := `SELECT * FROM reviews WHERE id = $1 AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &review, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		review.ID, review.Rating, review.Comment,
	).Scan(&review.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE reviews SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *reviewRepository) ListByBook(ctx context.Context, bookID uuid.UUID, params domain.PaginationParams) ([]domain.Review, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM reviews WHERE book_id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery, bookID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			rv.id, rv.book_id, rv.user_id, rv.rating, rv.comment,
			rv.created_at, rv.updated_at,
			u.full_name AS author_name
		FROM reviews rv
		INNER JOIN users u ON rv.user_id = u.id
		WHERE rv.book_id = $1 AND rv.deleted_at IS NULL
		ORDER BY rv.created_at DESC
		LIMIT $2 OFFSET $3`

	var reviews []domain.Review
	err := r.db.SelectContext(ctx, &reviews, query, bookID, params.PageSize, params.Offset())
	return reviews, total, err
}
