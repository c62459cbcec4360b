package unit_test

import (
	"context"
	"testing"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/repository"
	"perpustakaan-backend/internal/service/review"
	"perpustakaan-backend/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	bookID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		reviewRepo := new(mocks.ReviewRepository)
		bookRepo := new(mocks.BookRepository)
		svc := review.NewService(reviewRepo, bookRepo)

		bookRepo.On("GetByID", ctx, bookID).Return(&domain.Book{ID: bookID}, nil).Once()
		reviewRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Review) bool {
			return r.BookID == bookID && r.UserID == userID && r.Rating == 5
		})).Return(nil).Once()

		created, err := svc.Create(ctx, userID, bookID, domain.CreateReviewInput{Rating: 5})

		assert.NoError(t, err)
		assert.Equal(t, 5, created.Rating)
		reviewRepo.AssertExpectations(t)
	})

	t.Run("Rating Out Of Range", func(t *testing.T) {
		svc := review.NewService(new(mocks.ReviewRepository), new(mocks.BookRepository))

		created, err := svc.Create(ctx, userID, bookID, domain.CreateReviewInput{Rating: 6})

		assert.Nil(t, created)
		assert.ErrorIs(t, err, review.ErrBadRating)
	})

	t.Run("Book Not Found", func(t *testing.T) {
		reviewRepo := new(mocks.ReviewRepository)
		bookRepo := new(mocks.BookRepository)
		svc := review.NewService(reviewRepo, bookRepo)

		bookRepo.On("GetByID", ctx, bookID).Return(nil, repository.ErrNotFound).Once()

		created, err := svc.Create(ctx, userID, bookID, domain.CreateReviewInput{Rating: 3})

		assert.Nil(t, created)
		assert.ErrorIs(t, err, review.ErrBookNotFound)
	})
}

func TestReviewService_Update(t *testing.T) {
	ctx := context.Background()
	reviewID := uuid.New()
	authorID := uuid.New()

	existing := func() *domain.Review {
		return &domain.Review{ID: reviewID, UserID: authorID, Rating: 3}
	}

	t.Run("Author Updates Rating", func(t *testing.T) {
		reviewRepo := new(mocks.ReviewRepository)
		svc := review.NewService(reviewRepo, new(mocks.BookRepository))

		reviewRepo.On("GetByID", ctx, reviewID).Return(existing(), nil).Once()
		reviewRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.Review) bool {
			return r.Rating == 4
		})).Return(nil).Once()

		rating := 4
		updated, err := svc.Update(ctx, reviewID, authorID, domain.UpdateReviewInput{Rating: &rating})

		assert.NoError(t, err)
		assert.Equal(t, 4, updated.Rating)
	})

	t.Run("Non-Author Rejected", func(t *testing.T) {
		reviewRepo := new(mocks.ReviewRepository)
		svc := review.NewService(reviewRepo, new(mocks.BookRepository))

		reviewRepo.On("GetByID", ctx, reviewID).Return(existing(), nil).Once()

		rating := 1
		updated, err := svc.Update(ctx, reviewID, uuid.New(), domain.UpdateReviewInput{Rating: &rating})

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, review.ErrNotAuthor)
		reviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestReviewService_Delete(t *testing.T) {
	ctx := context.Background()
	reviewID := uuid.New()
	authorID := uuid.New()

	existing := func() *domain.Review {
		return &domain.Review{ID: reviewID, UserID: authorID}
	}

	t.Run("Author Deletes Own Review", func(t *testing.T) {
		reviewRepo := new(mocks.ReviewRepository)
		svc := review.NewService(reviewRepo, new(mocks.BookRepository))

		reviewRepo.On("GetByID", ctx, reviewID).Return(existing(), nil).Once()
		reviewRepo.On("Delete", ctx, reviewID).Return(nil).Once()

		author := &domain.User{ID: authorID, Role: string(domain.RoleClient)}
		err := svc.Delete(ctx, reviewID, author)

		assert.NoError(t, err)
	})

	t.Run("Staff Deletes Someone Else's Review", func(t *testing.T) {
		reviewRepo := new(mocks.ReviewRepository)
		svc := review.NewService(reviewRepo, new(mocks.BookRepository))

		reviewRepo.On("GetByID", ctx, reviewID).Return(existing(), nil).Once()
		reviewRepo.On("Delete", ctx, reviewID).Return(nil).Once()

		staff := &domain.User{ID: uuid.New(), Role: string(domain.RoleEmployee)}
		err := svc.Delete(ctx, reviewID, staff)

		assert.NoError(t, err)
	})

	t.Run("Other Client Rejected", func(t *testing.T) {
		reviewRepo := new(mocks.ReviewRepository)
		svc := review.NewService(reviewRepo, new(mocks.BookRepository))

		reviewRepo.On("GetByID", ctx, reviewID).Return(existing(), nil).Once()

		stranger := &domain.User{ID: uuid.New(), Role: string(domain.RoleClient)}
		err := svc.Delete(ctx, reviewID, stranger)

		assert.ErrorIs(t, err, review.ErrNotAuthor)
		reviewRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
