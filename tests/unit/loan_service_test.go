package unit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"perpustakaan-backend/internal/config"
	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/repository"
	"perpustakaan-backend/internal/service/loan"
	"perpustakaan-backend/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newLoanService(loanRepo *mocks.LoanRepository, bookRepo *mocks.BookRepository, userRepo *mocks.UserRepository) loan.Service {
	cfg := &config.Config{LoanPeriod: 14 * 24 * time.Hour}
	return loan.NewService(loanRepo, bookRepo, userRepo, nil, nil, cfg)
}

func activeUser(id uuid.UUID) *domain.User {
	return &domain.User{ID: id, Email: "client@example.com", FullName: "Client", Role: string(domain.RoleClient), Status: domain.UserActive}
}

func availableBook(id uuid.UUID) *domain.Book {
	return &domain.Book{ID: id, Title: "Laskar Pelangi", Author: "Andrea Hirata", TotalCopies: 3, AvailableCopies: 2, ReadingStatus: domain.ReadingAvailable}
}

func TestLoanService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	bookID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		bookRepo := new(mocks.BookRepository)
		userRepo := new(mocks.UserRepository)
		notifSvc := new(mocks.NotificationService)

		svc := newLoanService(loanRepo, bookRepo, userRepo)
		svc.SetNotificationService(notifSvc)

		userRepo.On("GetByID", ctx, userID).Return(activeUser(userID), nil).Once()
		bookRepo.On("GetByID", ctx, bookID).Return(availableBook(bookID), nil).Once()
		loanRepo.On("CountActiveForUserBook", ctx, userID, bookID).Return(int64(0), nil).Once()
		loanRepo.On("HasOverdue", ctx, userID).Return(false, nil).Once()
		loanRepo.On("Create", ctx, mock.MatchedBy(func(l *domain.Loan) bool {
			return l.BookID == bookID && l.UserID == userID && l.Status == domain.LoanPending
		})).Return(nil).Once()
		notifSvc.On("NotifyLoanRequested", ctx, mock.AnythingOfType("*domain.Loan")).Return(nil).Once()

		created, err := svc.Create(ctx, userID, domain.CreateLoanInput{BookID: bookID})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, domain.LoanPending, created.Status)

		loanRepo.AssertExpectations(t)
		notifSvc.AssertExpectations(t)
	})

	t.Run("Book Not Found", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		bookRepo := new(mocks.BookRepository)
		userRepo := new(mocks.UserRepository)
		svc := newLoanService(loanRepo, bookRepo, userRepo)

		userRepo.On("GetByID", ctx, userID).Return(activeUser(userID), nil).Once()
		bookRepo.On("GetByID", ctx, bookID).Return(nil, repository.ErrNotFound).Once()

		created, err := svc.Create(ctx, userID, domain.CreateLoanInput{BookID: bookID})

		assert.Nil(t, created)
		assert.ErrorIs(t, err, loan.ErrBookNotFound)
	})

	t.Run("No Copies Available", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		bookRepo := new(mocks.BookRepository)
		userRepo := new(mocks.UserRepository)
		svc := newLoanService(loanRepo, bookRepo, userRepo)

		book := availableBook(bookID)
		book.AvailableCopies = 0

		userRepo.On("GetByID", ctx, userID).Return(activeUser(userID), nil).Once()
		bookRepo.On("GetByID", ctx, bookID).Return(book, nil).Once()

		created, err := svc.Create(ctx, userID, domain.CreateLoanInput{BookID: bookID})

		assert.Nil(t, created)
		assert.ErrorIs(t, err, loan.ErrUnavailable)
	})

	t.Run("Duplicate Open Loan For Same Book", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		bookRepo := new(mocks.BookRepository)
		userRepo := new(mocks.UserRepository)
		svc := newLoanService(loanRepo, bookRepo, userRepo)

		userRepo.On("GetByID", ctx, userID).Return(activeUser(userID), nil).Once()
		bookRepo.On("GetByID", ctx, bookID).Return(availableBook(bookID), nil).Once()
		loanRepo.On("CountActiveForUserBook", ctx, userID, bookID).Return(int64(1), nil).Once()

		created, err := svc.Create(ctx, userID, domain.CreateLoanInput{BookID: bookID})

		assert.Nil(t, created)
		assert.ErrorIs(t, err, loan.ErrDuplicateActive)
	})

	t.Run("Requester Has Overdue Loan", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		bookRepo := new(mocks.BookRepository)
		userRepo := new(mocks.UserRepository)
		svc := newLoanService(loanRepo, bookRepo, userRepo)

		userRepo.On("GetByID", ctx, userID).Return(activeUser(userID), nil).Once()
		bookRepo.On("GetByID", ctx, bookID).Return(availableBook(bookID), nil).Once()
		loanRepo.On("CountActiveForUserBook", ctx, userID, bookID).Return(int64(0), nil).Once()
		loanRepo.On("HasOverdue", ctx, userID).Return(true, nil).Once()

		created, err := svc.Create(ctx, userID, domain.CreateLoanInput{BookID: bookID})

		assert.Nil(t, created)
		assert.ErrorIs(t, err, loan.ErrHasOverdue)
	})

	t.Run("Suspended Requester", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		bookRepo := new(mocks.BookRepository)
		userRepo := new(mocks.UserRepository)
		svc := newLoanService(loanRepo, bookRepo, userRepo)

		suspended := activeUser(userID)
		suspended.Status = domain.UserSuspended
		userRepo.On("GetByID", ctx, userID).Return(suspended, nil).Once()

		created, err := svc.Create(ctx, userID, domain.CreateLoanInput{BookID: bookID})

		assert.Nil(t, created)
		assert.ErrorIs(t, err, loan.ErrUserNotActive)
	})

	t.Run("Notification Failure Does Not Fail Create", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		bookRepo := new(mocks.BookRepository)
		userRepo := new(mocks.UserRepository)
		notifSvc := new(mocks.NotificationService)

		svc := newLoanService(loanRepo, bookRepo, userRepo)
		svc.SetNotificationService(notifSvc)

		userRepo.On("GetByID", ctx, userID).Return(activeUser(userID), nil).Once()
		bookRepo.On("GetByID", ctx, bookID).Return(availableBook(bookID), nil).Once()
		loanRepo.On("CountActiveForUserBook", ctx, userID, bookID).Return(int64(0), nil).Once()
		loanRepo.On("HasOverdue", ctx, userID).Return(false, nil).Once()
		loanRepo.On("Create", ctx, mock.AnythingOfType("*domain.Loan")).Return(nil).Once()
		notifSvc.On("NotifyLoanRequested", ctx, mock.AnythingOfType("*domain.Loan")).Return(errors.New("smtp down")).Once()

		created, err := svc.Create(ctx, userID, domain.CreateLoanInput{BookID: bookID})

		assert.NoError(t, err)
		assert.NotNil(t, created)
	})
}

func TestLoanService_Approve(t *testing.T) {
	ctx := context.Background()
	loanID := uuid.New()
	bookID := uuid.New()
	userID := uuid.New()
	employeeID := uuid.New()

	pending := func() *domain.Loan {
		return &domain.Loan{ID: loanID, BookID: bookID, UserID: userID, Status: domain.LoanPending}
	}

	t.Run("Success With Default Due Date", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		bookRepo := new(mocks.BookRepository)
		userRepo := new(mocks.UserRepository)
		notifSvc := new(mocks.NotificationService)

		svc := newLoanService(loanRepo, bookRepo, userRepo)
		svc.SetNotificationService(notifSvc)

		due := time.Now().Add(14 * 24 * time.Hour)
		approved := pending()
		approved.Status = domain.LoanApproved
		approved.DueDate = &due

		loanRepo.On("GetByID", ctx, loanID).Return(pending(), nil).Once()
		loanRepo.On("Approve", ctx, loanID, employeeID, mock.MatchedBy(func(d time.Time) bool {
			// Default due date is about two weeks out.
			return d.After(time.Now().Add(13*24*time.Hour)) && d.Before(time.Now().Add(15*24*time.Hour))
		})).Return(nil).Once()
		loanRepo.On("GetByID", ctx, loanID).Return(approved, nil).Once()
		notifSvc.On("NotifyLoanApproved", ctx, approved).Return(nil).Once()

		result, err := svc.Approve(ctx, loanID, employeeID, nil)

		assert.NoError(t, err)
		assert.Equal(t, domain.LoanApproved, result.Status)

		loanRepo.AssertExpectations(t)
		notifSvc.AssertExpectations(t)
	})

	t.Run("Not Pending", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		active := pending()
		active.Status = domain.LoanActive
		loanRepo.On("GetByID", ctx, loanID).Return(active, nil).Once()

		result, err := svc.Approve(ctx, loanID, employeeID, nil)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrInvalidTransition)
		loanRepo.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Last Copy Taken Concurrently", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		loanRepo.On("GetByID", ctx, loanID).Return(pending(), nil).Once()
		loanRepo.On("Approve", ctx, loanID, employeeID, mock.AnythingOfType("time.Time")).
			Return(repository.ErrNoAvailableCopies).Once()

		result, err := svc.Approve(ctx, loanID, employeeID, nil)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrUnavailable)
	})

	t.Run("Loan Not Found", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		loanRepo.On("GetByID", ctx, loanID).Return(nil, repository.ErrNotFound).Once()

		result, err := svc.Approve(ctx, loanID, employeeID, nil)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrLoanNotFound)
	})
}

func TestLoanService_Reject(t *testing.T) {
	ctx := context.Background()
	loanID := uuid.New()
	employeeID := uuid.New()

	t.Run("Missing Reason", func(t *testing.T) {
		svc := newLoanService(new(mocks.LoanRepository), new(mocks.BookRepository), new(mocks.UserRepository))

		result, err := svc.Reject(ctx, loanID, employeeID, "")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrMissingReason)
	})

	t.Run("Success", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		pending := &domain.Loan{ID: loanID, Status: domain.LoanPending}
		reason := "book reserved for class use"
		rejected := &domain.Loan{ID: loanID, Status: domain.LoanRejected, RejectionReason: &reason}

		loanRepo.On("GetByID", ctx, loanID).Return(pending, nil).Once()
		loanRepo.On("Reject", ctx, loanID, reason).Return(nil).Once()
		loanRepo.On("GetByID", ctx, loanID).Return(rejected, nil).Once()

		result, err := svc.Reject(ctx, loanID, employeeID, reason)

		assert.NoError(t, err)
		assert.Equal(t, domain.LoanRejected, result.Status)
		loanRepo.AssertExpectations(t)
	})

	t.Run("Already Rejected", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		loanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, Status: domain.LoanRejected}, nil).Once()

		result, err := svc.Reject(ctx, loanID, employeeID, "again")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrInvalidTransition)
	})
}

func TestLoanService_Withdrawal(t *testing.T) {
	ctx := context.Background()
	loanID := uuid.New()
	employeeID := uuid.New()

	t.Run("Success From Approved", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		approved := &domain.Loan{ID: loanID, Status: domain.LoanApproved}
		active := &domain.Loan{ID: loanID, Status: domain.LoanActive}

		loanRepo.On("GetByID", ctx, loanID).Return(approved, nil).Once()
		loanRepo.On("Withdraw", ctx, loanID, employeeID, domain.ConditionGood, (*string)(nil)).Return(nil).Once()
		loanRepo.On("GetByID", ctx, loanID).Return(active, nil).Once()

		result, err := svc.RegisterWithdrawal(ctx, loanID, employeeID, domain.WithdrawLoanInput{ConditionBefore: domain.ConditionGood})

		assert.NoError(t, err)
		assert.Equal(t, domain.LoanActive, result.Status)
		loanRepo.AssertExpectations(t)
	})

	t.Run("Invalid Condition", func(t *testing.T) {
		svc := newLoanService(new(mocks.LoanRepository), new(mocks.BookRepository), new(mocks.UserRepository))

		result, err := svc.RegisterWithdrawal(ctx, loanID, employeeID, domain.WithdrawLoanInput{ConditionBefore: "PRISTINE"})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrInvalidCondition)
	})

	t.Run("Not Approved Yet", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		loanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, Status: domain.LoanPending}, nil).Once()

		result, err := svc.RegisterWithdrawal(ctx, loanID, employeeID, domain.WithdrawLoanInput{ConditionBefore: domain.ConditionGood})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrInvalidTransition)
	})
}

func TestLoanService_Return(t *testing.T) {
	ctx := context.Background()
	loanID := uuid.New()
	employeeID := uuid.New()

	t.Run("Success From Active", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		active := &domain.Loan{ID: loanID, Status: domain.LoanActive}
		returned := &domain.Loan{ID: loanID, Status: domain.LoanReturned}

		loanRepo.On("GetByID", ctx, loanID).Return(active, nil).Once()
		loanRepo.On("Return", ctx, loanID, domain.ConditionFair, (*string)(nil)).Return(nil).Once()
		loanRepo.On("GetByID", ctx, loanID).Return(returned, nil).Once()

		result, err := svc.RegisterReturn(ctx, loanID, employeeID, domain.ReturnLoanInput{ConditionAfter: domain.ConditionFair})

		assert.NoError(t, err)
		assert.Equal(t, domain.LoanReturned, result.Status)
	})

	t.Run("Success From Overdue", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		overdue := &domain.Loan{ID: loanID, Status: domain.LoanOverdue}
		returned := &domain.Loan{ID: loanID, Status: domain.LoanReturned}

		loanRepo.On("GetByID", ctx, loanID).Return(overdue, nil).Once()
		loanRepo.On("Return", ctx, loanID, domain.ConditionDamaged, (*string)(nil)).Return(nil).Once()
		loanRepo.On("GetByID", ctx, loanID).Return(returned, nil).Once()

		result, err := svc.RegisterReturn(ctx, loanID, employeeID, domain.ReturnLoanInput{ConditionAfter: domain.ConditionDamaged})

		assert.NoError(t, err)
		assert.Equal(t, domain.LoanReturned, result.Status)
	})

	t.Run("Double Return", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		loanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, Status: domain.LoanReturned}, nil).Once()

		result, err := svc.RegisterReturn(ctx, loanID, employeeID, domain.ReturnLoanInput{ConditionAfter: domain.ConditionGood})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrInvalidTransition)
		loanRepo.AssertNotCalled(t, "Return", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Concurrent Return Loses Race", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		// The pre-check saw ACTIVE but the locked update found RETURNED.
		loanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, Status: domain.LoanActive}, nil).Once()
		loanRepo.On("Return", ctx, loanID, domain.ConditionGood, (*string)(nil)).Return(repository.ErrStatusConflict).Once()

		result, err := svc.RegisterReturn(ctx, loanID, employeeID, domain.ReturnLoanInput{ConditionAfter: domain.ConditionGood})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrInvalidTransition)
	})
}

func TestLoanService_Cancel(t *testing.T) {
	ctx := context.Background()
	loanID := uuid.New()
	ownerID := uuid.New()

	pending := func() *domain.Loan {
		return &domain.Loan{ID: loanID, UserID: ownerID, Status: domain.LoanPending}
	}

	t.Run("Owner Cancels", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		cancelled := pending()
		cancelled.Status = domain.LoanCancelled

		loanRepo.On("GetByID", ctx, loanID).Return(pending(), nil).Once()
		loanRepo.On("Cancel", ctx, loanID).Return(nil).Once()
		loanRepo.On("GetByID", ctx, loanID).Return(cancelled, nil).Once()

		result, err := svc.Cancel(ctx, loanID, ownerID)

		assert.NoError(t, err)
		assert.Equal(t, domain.LoanCancelled, result.Status)
	})

	t.Run("Stranger Cannot Cancel", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		userRepo := new(mocks.UserRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), userRepo)

		strangerID := uuid.New()
		loanRepo.On("GetByID", ctx, loanID).Return(pending(), nil).Once()
		userRepo.On("GetByID", ctx, strangerID).Return(activeUser(strangerID), nil).Once()

		result, err := svc.Cancel(ctx, loanID, strangerID)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrForbidden)
		loanRepo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})

	t.Run("Staff Cancels On Behalf", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		userRepo := new(mocks.UserRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), userRepo)

		staffID := uuid.New()
		staff := activeUser(staffID)
		staff.Role = string(domain.RoleEmployee)

		cancelled := pending()
		cancelled.Status = domain.LoanCancelled

		loanRepo.On("GetByID", ctx, loanID).Return(pending(), nil).Once()
		userRepo.On("GetByID", ctx, staffID).Return(staff, nil).Once()
		loanRepo.On("Cancel", ctx, loanID).Return(nil).Once()
		loanRepo.On("GetByID", ctx, loanID).Return(cancelled, nil).Once()

		result, err := svc.Cancel(ctx, loanID, staffID)

		assert.NoError(t, err)
		assert.Equal(t, domain.LoanCancelled, result.Status)
	})

	t.Run("Cannot Cancel Active Loan", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))

		active := pending()
		active.Status = domain.LoanActive
		loanRepo.On("GetByID", ctx, loanID).Return(active, nil).Once()

		result, err := svc.Cancel(ctx, loanID, ownerID)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, loan.ErrInvalidTransition)
	})
}

func TestLoanService_UpdateOverdueLoans(t *testing.T) {
	ctx := context.Background()

	t.Run("Marks And Notifies Each Affected Loan", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		notifSvc := new(mocks.NotificationService)

		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))
		svc.SetNotificationService(notifSvc)

		swept := []domain.Loan{
			{ID: uuid.New(), Status: domain.LoanOverdue},
			{ID: uuid.New(), Status: domain.LoanOverdue},
		}
		loanRepo.On("MarkOverdue", ctx, mock.AnythingOfType("time.Time")).Return(swept, nil).Once()
		notifSvc.On("NotifyLoanOverdue", ctx, mock.AnythingOfType("*domain.Loan")).Return(nil).Times(2)

		count, err := svc.UpdateOverdueLoans(ctx)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
		notifSvc.AssertExpectations(t)
	})

	t.Run("Second Sweep Is A No-Op", func(t *testing.T) {
		loanRepo := new(mocks.LoanRepository)
		notifSvc := new(mocks.NotificationService)

		svc := newLoanService(loanRepo, new(mocks.BookRepository), new(mocks.UserRepository))
		svc.SetNotificationService(notifSvc)

		loanRepo.On("MarkOverdue", ctx, mock.AnythingOfType("time.Time")).Return([]domain.Loan{}, nil).Once()

		count, err := svc.UpdateOverdueLoans(ctx)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
		notifSvc.AssertNotCalled(t, "NotifyLoanOverdue", mock.Anything, mock.Anything)
	})
}
