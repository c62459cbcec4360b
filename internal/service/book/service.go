package book

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"perpustakaan-backend/internal/config"
	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/repository"
)

var (
	ErrNotFound     = errors.New("book not found")
	ErrHasOpenLoans = errors.New("book has outstanding loans")
	ErrNoCopies     = errors.New("total copies must be at least 1")
	ErrNoStorage    = errors.New("object storage is not configured")
)

type Service interface {
	Create(ctx context.Context, input domain.CreateBookInput) (*domain.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Update(ctx context.Context, id uuid.UUID, input domain.UpdateBookInput) (*domain.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.BookFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Book], error)
	UploadCover(ctx context.Context, bookID uuid.UUID, fileSize int64, mimeType string, reader io.Reader) (*domain.Book, error)
}

type service struct {
	bookRepo    repository.BookRepository
	loanRepo    repository.LoanRepository
	minioClient *minio.Client
	redis       *redis.Client
	cfg         *config.Config
}

func NewService(bookRepo repository.BookRepository, loanRepo repository.LoanRepository, minioClient *minio.Client, redis *redis.Client, cfg *config.Config) Service {
	return &service{
		bookRepo:    bookRepo,
		loanRepo:    loanRepo,
		minioClient: minioClient,
		redis:       redis,
		cfg:         cfg,
	}
}

func (s *service) Create(ctx context.Context, input domain.CreateBookInput) (*domain.Book, error) {
	if input.TotalCopies < 1 {
		return nil, ErrNoCopies
	}

	book := &domain.Book{
		ID:              uuid.New(),
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		Publisher:       input.Publisher,
		PublishedYear:   input.PublishedYear,
		Category:        input.Category,
		Description:     input.Description,
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
		ReadingStatus:   domain.ReadingAvailable,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)

	return book, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return book, err
}

// Update applies an administrative edit. Copy counts are normally owned by
// the loan lifecycle; editing total_copies here is an override, so available
// copies are recomputed from the outstanding loan count and a warning is
// logged when the new total no longer covers the copies currently out.
func (s *service) Update(ctx context.Context, id uuid.UUID, input domain.UpdateBookInput) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.Publisher != nil {
		book.Publisher = *input.Publisher
	}
	if input.PublishedYear != nil {
		book.PublishedYear = *input.PublishedYear
	}
	if input.Category != nil {
		book.Category = *input.Category
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.ReadingStatus != nil {
		book.ReadingStatus = *input.ReadingStatus
	}

	if input.TotalCopies != nil && *input.TotalCopies != book.TotalCopies {
		if *input.TotalCopies < 1 {
			return nil, ErrNoCopies
		}

		outstanding, err := s.loanRepo.CountOutstandingForBook(ctx, id)
		if err != nil {
			return nil, err
		}

		if int64(*input.TotalCopies) < outstanding {
			log.Printf("book: total_copies for %s set to %d below %d outstanding loans", id, *input.TotalCopies, outstanding)
		}

		book.TotalCopies = *input.TotalCopies
		available := *input.TotalCopies - int(outstanding)
		if available < 0 {
			available = 0
		}
		book.AvailableCopies = available
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.invalidateStats(ctx)

	return book, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.bookRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	outstanding, err := s.loanRepo.CountOutstandingForBook(ctx, id)
	if err != nil {
		return err
	}
	if outstanding > 0 {
		return ErrHasOpenLoans
	}

	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateStats(ctx)

	return nil
}

func (s *service) List(ctx context.Context, filter domain.BookFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Book], error) {
	books, total, err := s.bookRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Book]{}, err
	}

	return domain.NewPaginatedResponse(books, params.Page, params.PageSize, total), nil
}

func (s *service) UploadCover(ctx context.Context, bookID uuid.UUID, fileSize int64, mimeType string, reader io.Reader) (*domain.Book, error) {
	if s.minioClient == nil {
		return nil, ErrNoStorage
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	storagePath := fmt.Sprintf("covers/%s", bookID.String())

	_, err = s.minioClient.PutObject(ctx, s.cfg.MinIOBucket, storagePath, reader, fileSize, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload cover to MinIO: %w", err)
	}

	coverURL := s.getPublicURL(storagePath)
	if err := s.bookRepo.SetCoverURL(ctx, bookID, coverURL); err != nil {
		_ = s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, storagePath, minio.RemoveObjectOptions{})
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	book.CoverURL = &coverURL
	return book, nil
}

func (s *service) getPublicURL(storagePath string) string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket, storagePath)
}

func (s *service) invalidateStats(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, "dashboard:stats").Err()
	}
}
