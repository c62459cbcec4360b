package unit_test

import (
	"context"
	"testing"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/service/notification"
	"perpustakaan-backend/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newNotificationService(notifRepo *mocks.NotificationRepository, userRepo *mocks.UserRepository, bookRepo *mocks.BookRepository) notification.Service {
	return notification.NewService(notifRepo, userRepo, bookRepo, nil)
}

func TestNotificationService_NotifyLoanRequested(t *testing.T) {
	ctx := context.Background()
	bookID := uuid.New()
	requesterID := uuid.New()

	loan := &domain.Loan{ID: uuid.New(), BookID: bookID, UserID: requesterID, Status: domain.LoanPending}
	book := &domain.Book{ID: bookID, Title: "Cantik Itu Luka"}

	t.Run("Requester And First Staff Member Notified", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		userRepo := new(mocks.UserRepository)
		bookRepo := new(mocks.BookRepository)
		svc := newNotificationService(notifRepo, userRepo, bookRepo)

		employeeA := domain.User{ID: uuid.New(), Role: string(domain.RoleEmployee)}
		employeeB := domain.User{ID: uuid.New(), Role: string(domain.RoleEmployee)}

		bookRepo.On("GetByID", ctx, bookID).Return(book, nil).Once()
		notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == requesterID && n.Type == domain.NotifLoanRequested
		})).Return(nil).Once()
		userRepo.On("GetByRoles", ctx, []domain.UserRole{domain.RoleEmployee, domain.RoleAdmin}).
			Return([]domain.User{employeeA, employeeB}, nil).Once()
		// Only the first staff member gets the alert.
		notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == employeeA.ID
		})).Return(nil).Once()

		err := svc.NotifyLoanRequested(ctx, loan)

		assert.NoError(t, err)
		notifRepo.AssertExpectations(t)
		notifRepo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("Staff Requester Is Skipped As Alert Target", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		userRepo := new(mocks.UserRepository)
		bookRepo := new(mocks.BookRepository)
		svc := newNotificationService(notifRepo, userRepo, bookRepo)

		staffRequester := domain.User{ID: requesterID, Role: string(domain.RoleEmployee)}
		otherStaff := domain.User{ID: uuid.New(), Role: string(domain.RoleAdmin)}

		bookRepo.On("GetByID", ctx, bookID).Return(book, nil).Once()
		notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == requesterID
		})).Return(nil).Once()
		userRepo.On("GetByRoles", ctx, []domain.UserRole{domain.RoleEmployee, domain.RoleAdmin}).
			Return([]domain.User{staffRequester, otherStaff}, nil).Once()
		notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == otherStaff.ID
		})).Return(nil).Once()

		err := svc.NotifyLoanRequested(ctx, loan)

		assert.NoError(t, err)
		notifRepo.AssertNumberOfCalls(t, "Create", 2)
	})
}

func TestNotificationService_List(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Paginates", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		svc := newNotificationService(notifRepo, new(mocks.UserRepository), new(mocks.BookRepository))

		params := domain.PaginationParams{Page: 1, PageSize: 20}
		items := []domain.Notification{{ID: uuid.New(), UserID: userID}}
		notifRepo.On("ListByUser", ctx, userID, false, params).Return(items, int64(1), nil).Once()

		result, err := svc.List(ctx, userID, false, params)

		assert.NoError(t, err)
		assert.Len(t, result.Data, 1)
		assert.Equal(t, int64(1), result.TotalItems)
	})
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	notifID := uuid.New()

	notifRepo := new(mocks.NotificationRepository)
	svc := newNotificationService(notifRepo, new(mocks.UserRepository), new(mocks.BookRepository))

	notifRepo.On("MarkAsRead", ctx, notifID, userID).Return(nil).Once()
	notifRepo.On("MarkAllAsRead", ctx, userID).Return(nil).Once()
	notifRepo.On("CountUnread", ctx, userID).Return(int64(3), nil).Once()

	assert.NoError(t, svc.MarkAsRead(ctx, notifID, userID))
	assert.NoError(t, svc.MarkAllAsRead(ctx, userID))

	count, err := svc.GetUnreadCount(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)

	notifRepo.AssertExpectations(t)
}
