package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// Sentinel errors surfaced by repositories. Services translate them into
// their own error taxonomy before they reach handlers.
var (
	ErrNotFound          = errors.New("record not found")
	ErrNoAvailableCopies = errors.New("no available copies")
	ErrStatusConflict    = errors.New("loan status conflict")
)

type Repositories struct {
	User         UserRepository
	Book         BookRepository
	Loan         LoanRepository
	Review       ReviewRepository
	Notification NotificationRepository
	AuditLog     AuditLogRepository
	Session      SessionRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Book:         NewBookRepository(db),
		Loan:         NewLoanRepository(db),
		Review:       NewReviewRepository(db),
		Notification: NewNotificationRepository(db),
		AuditLog:     NewAuditLogRepository(db),
		Session:      NewSessionRepository(db),
	}
}
