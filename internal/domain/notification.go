package domain

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	UserID        uuid.UUID        `json:"user_id" db:"user_id"`
	Type          NotificationType `json:"type" db:"type"`
	Title         string           `json:"title" db:"title"`
	Message       string           `json:"message" db:"message"`
	RelatedLoanID *uuid.UUID       `json:"related_loan_id,omitempty" db:"related_loan_id"`
	IsRead        bool             `json:"is_read" db:"is_read"`
	ReadAt        *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifLoanRequested NotificationType = "LOAN_REQUESTED"
	NotifLoanApproved  NotificationType = "LOAN_APPROVED"
	NotifLoanRejected  NotificationType = "LOAN_REJECTED"
	NotifLoanWithdrawn NotificationType = "LOAN_WITHDRAWN"
	NotifLoanReturned  NotificationType = "LOAN_RETURNED"
	NotifLoanOverdue   NotificationType = "LOAN_OVERDUE"
	NotifLoanCancelled NotificationType = "LOAN_CANCELLED"
)
