package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendLoanApprovedEmail(ctx context.Context, toEmail, fullName, bookTitle string, dueDate time.Time) error {
	args := m.Called(ctx, toEmail, fullName, bookTitle, dueDate)
	return args.Error(0)
}

func (m *EmailService) SendLoanRejectedEmail(ctx context.Context, toEmail, fullName, bookTitle, reason string) error {
	args := m.Called(ctx, toEmail, fullName, bookTitle, reason)
	return args.Error(0)
}

func (m *EmailService) SendLoanOverdueEmail(ctx context.Context, toEmail, fullName, bookTitle string, dueDate time.Time) error {
	args := m.Called(ctx, toEmail, fullName, bookTitle, dueDate)
	return args.Error(0)
}
