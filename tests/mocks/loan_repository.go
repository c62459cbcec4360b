package mocks

import (
	"context"
	"time"

	"perpustakaan-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type LoanRepository struct {
	mock.Mock
}

func (m *LoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *LoanRepository) List(ctx context.Context, filter domain.LoanFilter, params domain.PaginationParams) ([]domain.Loan, int64, error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).([]domain.Loan), args.Get(1).(int64), args.Error(2)
}

func (m *LoanRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *domain.LoanStatus) ([]domain.Loan, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).([]domain.Loan), args.Error(1)
}

func (m *LoanRepository) CountActiveForUserBook(ctx context.Context, userID, bookID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LoanRepository) HasOverdue(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *LoanRepository) CountOutstandingForBook(ctx context.Context, bookID uuid.UUID) (int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LoanRepository) CountByStatus(ctx context.Context, status domain.LoanStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LoanRepository) Approve(ctx context.Context, loanID, employeeID uuid.UUID, dueDate time.Time) error {
	args := m.Called(ctx, loanID, employeeID, dueDate)
	return args.Error(0)
}

func (m *LoanRepository) Reject(ctx context.Context, loanID uuid.UUID, reason string) error {
	args := m.Called(ctx, loanID, reason)
	return args.Error(0)
}

func (m *LoanRepository) Withdraw(ctx context.Context, loanID, employeeID uuid.UUID, condition domain.BookCondition, notes *string) error {
	args := m.Called(ctx, loanID, employeeID, condition, notes)
	return args.Error(0)
}

func (m *LoanRepository) Return(ctx context.Context, loanID uuid.UUID, condition domain.BookCondition, notes *string) error {
	args := m.Called(ctx, loanID, condition, notes)
	return args.Error(0)
}

func (m *LoanRepository) Cancel(ctx context.Context, loanID uuid.UUID) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *LoanRepository) MarkOverdue(ctx context.Context, now time.Time) ([]domain.Loan, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Loan), args.Error(1)
}
