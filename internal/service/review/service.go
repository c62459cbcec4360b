package review

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/repository"
)

var (
	ErrNotFound     = errors.New("review not found")
	ErrBookNotFound = errors.New("book not found")
	ErrNotAuthor    = errors.New("only the author may modify this review")
	ErrBadRating    = errors.New("rating must be between 1 and 5")
)

type Service interface {
	Create(ctx context.Context, userID, bookID uuid.UUID, input domain.CreateReviewInput) (*domain.Review, error)
	ListByBook(ctx context.Context, bookID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Review], error)
	Update(ctx context.Context, id, userID uuid.UUID, input domain.UpdateReviewInput) (*domain.Review, error)
	Delete(ctx context.Context, id uuid.UUID, actor *domain.User) error
}

type service struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
}

func NewService(reviewRepo repository.ReviewRepository, bookRepo repository.BookRepository) Service {
	return &service{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
	}
}

func (s *service) Create(ctx context.Context, userID, bookID uuid.UUID, input domain.CreateReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrBadRating
	}

	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	review := &domain.Review{
		ID:      uuid.New(),
		BookID:  bookID,
		UserID:  userID,
		Rating:  input.Rating,
		Comment: input.Comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *service) ListByBook(ctx context.Context, bookID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Review], error) {
	reviews, total, err := s.reviewRepo.ListByBook(ctx, bookID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Review]{}, err
	}

	return domain.NewPaginatedResponse(reviews, params.Page, params.PageSize, total), nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, input domain.UpdateReviewInput) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if review.UserID != userID {
		return nil, ErrNotAuthor
	}

	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, ErrBadRating
		}
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return review, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, actor *domain.User) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if review.UserID != actor.ID && !actor.IsStaff() {
		return ErrNotAuthor
	}

	return s.reviewRepo.Delete(ctx, id)
}
