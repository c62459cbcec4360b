package loan

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"perpustakaan-backend/internal/config"
	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/repository"
	"perpustakaan-backend/internal/service/notification"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrLoanNotFound      = errors.New("loan not found")
	ErrUnavailable       = errors.New("no copies available")
	ErrDuplicateActive   = errors.New("user already has an open loan for this book")
	ErrHasOverdue        = errors.New("user has an overdue loan")
	ErrInvalidTransition = errors.New("invalid loan status transition")
	ErrForbidden         = errors.New("not allowed to act on this loan")
	ErrMissingReason     = errors.New("rejection reason is required")
	ErrInvalidCondition  = errors.New("invalid book condition")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserNotActive     = errors.New("user account is not active")
)

type Service interface {
	Create(ctx context.Context, requesterID uuid.UUID, input domain.CreateLoanInput) (*domain.Loan, error)
	Approve(ctx context.Context, loanID, employeeID uuid.UUID, dueDate *time.Time) (*domain.Loan, error)
	Reject(ctx context.Context, loanID, employeeID uuid.UUID, reason string) (*domain.Loan, error)
	RegisterWithdrawal(ctx context.Context, loanID, employeeID uuid.UUID, input domain.WithdrawLoanInput) (*domain.Loan, error)
	RegisterReturn(ctx context.Context, loanID, employeeID uuid.UUID, input domain.ReturnLoanInput) (*domain.Loan, error)
	Cancel(ctx context.Context, loanID, requesterID uuid.UUID) (*domain.Loan, error)
	UpdateOverdueLoans(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status *domain.LoanStatus) ([]domain.Loan, error)
	List(ctx context.Context, filter domain.LoanFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Loan], error)
	SetNotificationService(notifSvc notification.Service)
}

type service struct {
	loanRepo  repository.LoanRepository
	bookRepo  repository.BookRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
	redis     *redis.Client
	cfg       *config.Config
	notifSvc  notification.Service
}

func NewService(
	loanRepo repository.LoanRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	redis *redis.Client,
	cfg *config.Config,
) Service {
	return &service{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		redis:     redis,
		cfg:       cfg,
	}
}

func (s *service) SetNotificationService(notifSvc notification.Service) {
	s.notifSvc = notifSvc
}

// Create files a PENDING loan request. Copies are reserved at approval, not
// here; the availability check only rejects requests that could never be
// approved right now.
func (s *service) Create(ctx context.Context, requesterID uuid.UUID, input domain.CreateLoanInput) (*domain.Loan, error) {
	userID := requesterID
	if input.UserID != nil {
		userID = *input.UserID
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status != domain.UserActive {
		return nil, ErrUserNotActive
	}

	book, err := s.bookRepo.GetByID(ctx, input.BookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, ErrUnavailable
	}

	open, err := s.loanRepo.CountActiveForUserBook(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, ErrDuplicateActive
	}

	overdue, err := s.loanRepo.HasOverdue(ctx, userID)
	if err != nil {
		return nil, err
	}
	if overdue {
		return nil, ErrHasOverdue
	}

	loan := &domain.Loan{
		ID:        uuid.New(),
		BookID:    input.BookID,
		UserID:    userID,
		Status:    domain.LoanPending,
		UserNotes: input.UserNotes,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	s.notify(ctx, func(n notification.Service) error { return n.NotifyLoanRequested(ctx, loan) })
	s.invalidateStats(ctx)

	return loan, nil
}

func (s *service) Approve(ctx context.Context, loanID, employeeID uuid.UUID, dueDate *time.Time) (*domain.Loan, error) {
	loan, err := s.getForTransition(ctx, loanID, domain.LoanApproved)
	if err != nil {
		return nil, err
	}

	due := time.Now().Add(s.cfg.LoanPeriod)
	if dueDate != nil {
		due = *dueDate
	}

	// The repository re-checks status and copy count inside the same
	// transaction; this call is where the race on the last copy resolves.
	if err := s.loanRepo.Approve(ctx, loanID, employeeID, due); err != nil {
		return nil, s.mapRepoErr(err)
	}

	updated, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.notify(ctx, func(n notification.Service) error { return n.NotifyLoanApproved(ctx, updated) })
	s.logAudit(ctx, employeeID, "APPROVE_LOAN", updated, loan.Status)
	s.invalidateStats(ctx)

	return updated, nil
}

func (s *service) Reject(ctx context.Context, loanID, employeeID uuid.UUID, reason string) (*domain.Loan, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}

	loan, err := s.getForTransition(ctx, loanID, domain.LoanRejected)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.Reject(ctx, loanID, reason); err != nil {
		return nil, s.mapRepoErr(err)
	}

	updated, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.notify(ctx, func(n notification.Service) error { return n.NotifyLoanRejected(ctx, updated) })
	s.logAudit(ctx, employeeID, "REJECT_LOAN", updated, loan.Status)
	s.invalidateStats(ctx)

	return updated, nil
}

func (s *service) RegisterWithdrawal(ctx context.Context, loanID, employeeID uuid.UUID, input domain.WithdrawLoanInput) (*domain.Loan, error) {
	if !input.ConditionBefore.IsValid() {
		return nil, ErrInvalidCondition
	}

	loan, err := s.getForTransition(ctx, loanID, domain.LoanActive)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.Withdraw(ctx, loanID, employeeID, input.ConditionBefore, input.Notes); err != nil {
		return nil, s.mapRepoErr(err)
	}

	updated, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.notify(ctx, func(n notification.Service) error { return n.NotifyLoanWithdrawn(ctx, updated) })
	s.logAudit(ctx, employeeID, "REGISTER_WITHDRAWAL", updated, loan.Status)

	return updated, nil
}

func (s *service) RegisterReturn(ctx context.Context, loanID, employeeID uuid.UUID, input domain.ReturnLoanInput) (*domain.Loan, error) {
	if !input.ConditionAfter.IsValid() {
		return nil, ErrInvalidCondition
	}

	loan, err := s.getForTransition(ctx, loanID, domain.LoanReturned)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.Return(ctx, loanID, input.ConditionAfter, input.Notes); err != nil {
		return nil, s.mapRepoErr(err)
	}

	updated, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.notify(ctx, func(n notification.Service) error { return n.NotifyLoanReturned(ctx, updated) })
	s.logAudit(ctx, employeeID, "REGISTER_RETURN", updated, loan.Status)
	s.invalidateStats(ctx)

	return updated, nil
}

func (s *service) Cancel(ctx context.Context, loanID, requesterID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.getForTransition(ctx, loanID, domain.LoanCancelled)
	if err != nil {
		return nil, err
	}

	if loan.UserID != requesterID {
		actor, err := s.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if actor == nil || !actor.IsStaff() {
			return nil, ErrForbidden
		}
	}

	if err := s.loanRepo.Cancel(ctx, loanID); err != nil {
		return nil, s.mapRepoErr(err)
	}

	updated, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	s.notify(ctx, func(n notification.Service) error { return n.NotifyLoanCancelled(ctx, updated) })
	s.logAudit(ctx, requesterID, "CANCEL_LOAN", updated, loan.Status)
	s.invalidateStats(ctx)

	return updated, nil
}

// UpdateOverdueLoans is the sweep entry point, triggered externally
// (cron-style). It is idempotent: loans already OVERDUE are excluded by the
// repository predicate.
func (s *service) UpdateOverdueLoans(ctx context.Context) (int64, error) {
	swept, err := s.loanRepo.MarkOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	for i := range swept {
		loan := swept[i]
		s.notify(ctx, func(n notification.Service) error { return n.NotifyLoanOverdue(ctx, &loan) })
	}

	if len(swept) > 0 {
		s.invalidateStats(ctx)
	}

	return int64(len(swept)), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}

	if book, err := s.bookRepo.GetByID(ctx, loan.BookID); err == nil {
		loan.Book = book
	}
	if requester, err := s.userRepo.GetByID(ctx, loan.UserID); err == nil {
		loan.Requester = requester
	}

	return loan, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, status *domain.LoanStatus) ([]domain.Loan, error) {
	return s.loanRepo.ListByUser(ctx, userID, status)
}

func (s *service) List(ctx context.Context, filter domain.LoanFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Loan], error) {
	loans, total, err := s.loanRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Loan]{}, err
	}

	for i := range loans {
		if book, err := s.bookRepo.GetByID(ctx, loans[i].BookID); err == nil {
			loans[i].Book = book
		}
	}

	return domain.NewPaginatedResponse(loans, params.Page, params.PageSize, total), nil
}

// getForTransition loads the loan and validates the requested transition
// against the central table. The repository re-checks under lock; this check
// exists so callers get ErrInvalidTransition even when they lose no race.
func (s *service) getForTransition(ctx context.Context, loanID uuid.UUID, target domain.LoanStatus) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	if !canTransition(loan.Status, target) {
		return nil, ErrInvalidTransition
	}
	return loan, nil
}

func (s *service) mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrLoanNotFound
	case errors.Is(err, repository.ErrNoAvailableCopies):
		return ErrUnavailable
	case errors.Is(err, repository.ErrStatusConflict):
		return ErrInvalidTransition
	default:
		return err
	}
}

// notify runs a notification emission best-effort: failures are logged,
// never surfaced, so they cannot undo a committed transition.
func (s *service) notify(ctx context.Context, fn func(notification.Service) error) {
	if s.notifSvc == nil {
		return
	}
	if err := fn(s.notifSvc); err != nil {
		log.Printf("loan: notification emission failed: %v", err)
	}
}

func (s *service) logAudit(ctx context.Context, actorID uuid.UUID, action string, loan *domain.Loan, oldStatus domain.LoanStatus) {
	if s.auditRepo == nil {
		return
	}

	oldValue, _ := json.Marshal(map[string]string{"status": string(oldStatus)})
	newValue, _ := json.Marshal(map[string]string{"status": string(loan.Status)})

	entry := &domain.AuditLog{
		ID:         uuid.New(),
		UserID:     actorID,
		Action:     action,
		EntityType: "LOAN",
		EntityID:   loan.ID,
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  time.Now(),
	}

	_ = s.auditRepo.Create(ctx, entry)
}

func (s *service) invalidateStats(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, "dashboard:stats").Err()
	}
}
