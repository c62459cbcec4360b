package domain

import (
	"time"

	"github.com/google/uuid"
)

type Loan struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	BookID          uuid.UUID      `json:"book_id" db:"book_id"`
	UserID          uuid.UUID      `json:"user_id" db:"user_id"`
	Status          LoanStatus     `json:"status" db:"status"`
	UserNotes       *string        `json:"user_notes,omitempty" db:"user_notes"`
	EmployeeNotes   *string        `json:"employee_notes,omitempty" db:"employee_notes"`
	RejectionReason *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ConditionBefore *BookCondition `json:"condition_before,omitempty" db:"condition_before"`
	ConditionAfter  *BookCondition `json:"condition_after,omitempty" db:"condition_after"`
	RequestedAt     time.Time      `json:"requested_at" db:"requested_at"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy      *uuid.UUID     `json:"approved_by,omitempty" db:"approved_by"`
	DueDate         *time.Time     `json:"due_date,omitempty" db:"due_date"`
	LoanDate        *time.Time     `json:"loan_date,omitempty" db:"loan_date"`
	ReturnedAt      *time.Time     `json:"returned_at,omitempty" db:"returned_at"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`

	Book      *Book `json:"book,omitempty" db:"-"`
	Requester *User `json:"requester,omitempty" db:"-"`
}

type LoanStatus string

const (
	LoanPending   LoanStatus = "PENDING"
	LoanApproved  LoanStatus = "APPROVED"
	LoanActive    LoanStatus = "ACTIVE"
	LoanOverdue   LoanStatus = "OVERDUE"
	LoanReturned  LoanStatus = "RETURNED"
	LoanRejected  LoanStatus = "REJECTED"
	LoanCancelled LoanStatus = "CANCELLED"
)

func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanPending, LoanApproved, LoanActive, LoanOverdue, LoanReturned, LoanRejected, LoanCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is defined out of s.
func (s LoanStatus) IsTerminal() bool {
	switch s {
	case LoanReturned, LoanRejected, LoanCancelled:
		return true
	default:
		return false
	}
}

type BookCondition string

const (
	ConditionExcellent         BookCondition = "EXCELLENT"
	ConditionGood              BookCondition = "GOOD"
	ConditionFair              BookCondition = "FAIR"
	ConditionDamaged           BookCondition = "DAMAGED"
	ConditionRestorationNeeded BookCondition = "RESTORATION_NEEDED"
)

func (c BookCondition) IsValid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionDamaged, ConditionRestorationNeeded:
		return true
	default:
		return false
	}
}

type CreateLoanInput struct {
	BookID    uuid.UUID  `json:"book_id" validate:"required"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	UserNotes *string    `json:"user_notes,omitempty" validate:"omitempty,max=500"`
}

type ApproveLoanInput struct {
	DueDate *time.Time `json:"due_date,omitempty"`
}

type RejectLoanInput struct {
	Reason string `json:"reason" validate:"required"`
}

type WithdrawLoanInput struct {
	ConditionBefore BookCondition `json:"condition_before" validate:"required"`
	Notes           *string       `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ReturnLoanInput struct {
	ConditionAfter BookCondition `json:"condition_after" validate:"required"`
	Notes          *string       `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type LoanFilter struct {
	Status *LoanStatus
	BookID *uuid.UUID
	UserID *uuid.UUID
}
