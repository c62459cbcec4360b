package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"perpustakaan-backend/internal/domain"
)

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.BookFilter, params domain.PaginationParams) ([]domain.Book, int64, error)
	SetCoverURL(ctx context.Context, id uuid.UUID, coverURL string) error
	CountAll(ctx context.Context) (int64, error)
	SumCopies(ctx context.Context) (total int64, available int64, err error)
}

type bookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (id, title, author, isbn, publisher, published_year, category, description,
			total_copies, available_copies, reading_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		book.ID, book.Title, book.Author, book.ISBN, book.Publisher, book.PublishedYear,
		book.Category, book.Description, book.TotalCopies, book.AvailableCopies, book.ReadingStatus,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
}

func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	var book domain.Book
	query := `SELECT * FROM books WHERE id = $1 AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &book, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, publisher = $5, published_year = $6,
		    category = $7, description = $8, total_copies = $9, available_copies = $10,
		    reading_status = $11, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		book.ID, book.Title, book.Author, book.ISBN, book.Publisher, book.PublishedYear,
		book.Category, book.Description, book.TotalCopies, book.AvailableCopies, book.ReadingStatus,
	).Scan(&book.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE books SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *bookRepository) List(ctx context.Context, filter domain.BookFilter, params domain.PaginationParams) ([]domain.Book, int64, error) {
	params.Validate()

	where := "WHERE deleted_at IS NULL"
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (title ILIKE $%d OR author ILIKE $%d)", len(args), len(args))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM books " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, params.PageSize, params.Offset())
	query := fmt.Sprintf(`
		SELECT * FROM books %s
		ORDER BY title ASC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	var books []domain.Book
	err := r.db.SelectContext(ctx, &books, query, args...)
	return books, total, err
}

func (r *bookRepository) SetCoverURL(ctx context.Context, id uuid.UUID, coverURL string) error {
	query := `UPDATE books SET cover_url = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, coverURL)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bookRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM books WHERE deleted_at IS NULL`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}

func (r *bookRepository) SumCopies(ctx context.Context) (int64, int64, error) {
	var row struct {
		Total     int64 `db:"total"`
		Available int64 `db:"available"`
	}
	query := `
		SELECT COALESCE(SUM(total_copies), 0) AS total, COALESCE(SUM(available_copies), 0) AS available
		FROM books WHERE deleted_at IS NULL`
	err := r.db.GetContext(ctx, &row, query)
	return row.Total, row.Available, err
}
