package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/repository"
	"perpustakaan-backend/internal/service/email"
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error

	NotifyLoanRequested(ctx context.Context, loan *domain.Loan) error
	NotifyLoanApproved(ctx context.Context, loan *domain.Loan) error
	NotifyLoanRejected(ctx context.Context, loan *domain.Loan) error
	NotifyLoanWithdrawn(ctx context.Context, loan *domain.Loan) error
	NotifyLoanReturned(ctx context.Context, loan *domain.Loan) error
	NotifyLoanCancelled(ctx context.Context, loan *domain.Loan) error
	NotifyLoanOverdue(ctx context.Context, loan *domain.Loan) error
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	bookRepo  repository.BookRepository
	emailSvc  email.Service
}

func NewService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	bookRepo repository.BookRepository,
	emailSvc email.Service,
) Service {
	return &service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		bookRepo:  bookRepo,
		emailSvc:  emailSvc,
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifRepo.MarkAsRead(ctx, id, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) bookTitle(ctx context.Context, bookID uuid.UUID) string {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return "the requested book"
	}
	return book.Title
}

func (s *service) create(ctx context.Context, userID uuid.UUID, typ domain.NotificationType, title, message string, loanID uuid.UUID) error {
	notif := &domain.Notification{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          typ,
		Title:         title,
		Message:       message,
		RelatedLoanID: &loanID,
	}
	return s.notifRepo.Create(ctx, notif)
}

// NotifyLoanRequested confirms the request to the requester and alerts one
// staff member so the request does not sit unreviewed.
func (s *service) NotifyLoanRequested(ctx context.Context, loan *domain.Loan) error {
	title := s.bookTitle(ctx, loan.BookID)

	if err := s.create(ctx, loan.UserID, domain.NotifLoanRequested,
		"Loan Requested",
		fmt.Sprintf("Your request to borrow %q has been filed and awaits review.", title),
		loan.ID,
	); err != nil {
		return fmt.Errorf("failed to notify requester: %w", err)
	}

	staff, err := s.userRepo.GetByRoles(ctx, []domain.UserRole{domain.RoleEmployee, domain.RoleAdmin})
	if err != nil {
		return fmt.Errorf("failed to get staff: %w", err)
	}

	for _, member := range staff {
		if member.ID == loan.UserID {
			continue
		}
		if err := s.create(ctx, member.ID, domain.NotifLoanRequested,
			"New Loan Request",
			fmt.Sprintf("A new request to borrow %q requires review.", title),
			loan.ID,
		); err != nil {
			log.Printf("notification: failed to alert staff %s: %v", member.ID, err)
			continue
		}
		break
	}

	return nil
}

func (s *service) NotifyLoanApproved(ctx context.Context, loan *domain.Loan) error {
	title := s.bookTitle(ctx, loan.BookID)

	message := fmt.Sprintf("Your request to borrow %q was approved.", title)
	if loan.DueDate != nil {
		message = fmt.Sprintf("Your request to borrow %q was approved. Due date: %s.", title, loan.DueDate.Format("02 Jan 2006"))
	}

	if err := s.create(ctx, loan.UserID, domain.NotifLoanApproved, "Loan Approved", message, loan.ID); err != nil {
		return err
	}

	s.emailRequester(ctx, loan, func(u *domain.User) error {
		if loan.DueDate == nil {
			return nil
		}
		return s.emailSvc.SendLoanApprovedEmail(context.Background(), u.Email, u.FullName, title, *loan.DueDate)
	})

	return nil
}

func (s *service) NotifyLoanRejected(ctx context.Context, loan *domain.Loan) error {
	title := s.bookTitle(ctx, loan.BookID)

	message := fmt.Sprintf("Your request to borrow %q was rejected.", title)
	reason := ""
	if loan.RejectionReason != nil && *loan.RejectionReason != "" {
		reason = *loan.RejectionReason
		message += " Reason: " + reason
	}

	if err := s.create(ctx, loan.UserID, domain.NotifLoanRejected, "Loan Rejected", message, loan.ID); err != nil {
		return err
	}

	s.emailRequester(ctx, loan, func(u *domain.User) error {
		return s.emailSvc.SendLoanRejectedEmail(context.Background(), u.Email, u.FullName, title, reason)
	})

	return nil
}

func (s *service) NotifyLoanWithdrawn(ctx context.Context, loan *domain.Loan) error {
	title := s.bookTitle(ctx, loan.BookID)
	return s.create(ctx, loan.UserID, domain.NotifLoanWithdrawn,
		"Book Picked Up",
		fmt.Sprintf("The loan for %q is now active.", title),
		loan.ID)
}

func (s *service) NotifyLoanReturned(ctx context.Context, loan *domain.Loan) error {
	title := s.bookTitle(ctx, loan.BookID)
	return s.create(ctx, loan.UserID, domain.NotifLoanReturned,
		"Book Returned",
		fmt.Sprintf("The return of %q has been registered. Thank you.", title),
		loan.ID)
}

func (s *service) NotifyLoanCancelled(ctx context.Context, loan *domain.Loan) error {
	title := s.bookTitle(ctx, loan.BookID)
	return s.create(ctx, loan.UserID, domain.NotifLoanCancelled,
		"Loan Cancelled",
		fmt.Sprintf("The request to borrow %q was cancelled.", title),
		loan.ID)
}

func (s *service) NotifyLoanOverdue(ctx context.Context, loan *domain.Loan) error {
	title := s.bookTitle(ctx, loan.BookID)

	message := fmt.Sprintf("The loan for %q is overdue. Please return the book.", title)
	if loan.DueDate != nil {
		message = fmt.Sprintf("The loan for %q passed its due date (%s). Please return the book.", title, loan.DueDate.Format("02 Jan 2006"))
	}

	if err := s.create(ctx, loan.UserID, domain.NotifLoanOverdue, "Loan Overdue", message, loan.ID); err != nil {
		return err
	}

	s.emailRequester(ctx, loan, func(u *domain.User) error {
		if loan.DueDate == nil {
			return nil
		}
		return s.emailSvc.SendLoanOverdueEmail(context.Background(), u.Email, u.FullName, title, *loan.DueDate)
	})

	return nil
}

// emailRequester sends the email asynchronously; an in-app notification has
// already been written, the email is a bonus channel.
func (s *service) emailRequester(ctx context.Context, loan *domain.Loan, send func(*domain.User) error) {
	if s.emailSvc == nil {
		return
	}

	user, err := s.userRepo.GetByID(ctx, loan.UserID)
	if err != nil || user == nil || user.Email == "" {
		return
	}

	go func() {
		if err := send(user); err != nil {
			log.Printf("notification: failed to email user %s: %v", user.ID, err)
		}
	}()
}
