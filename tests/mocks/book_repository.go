package mocks

import (
	"context"

	"perpustakaan-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type BookRepository struct {
	mock.Mock
}

func (m *BookRepository) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *BookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *BookRepository) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *BookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BookRepository) List(ctx context.Context, filter domain.BookFilter, params domain.PaginationParams) ([]domain.Book, int64, error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).([]domain.Book), args.Get(1).(int64), args.Error(2)
}

func (m *BookRepository) SetCoverURL(ctx context.Context, id uuid.UUID, coverURL string) error {
	args := m.Called(ctx, id, coverURL)
	return args.Error(0)
}

func (m *BookRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookRepository) SumCopies(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}
