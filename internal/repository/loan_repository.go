package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"perpustakaan-backend/internal/domain"
)

// LoanRepository owns every mutation of loans and of book copy counts.
// The transition mutators run inside a single database transaction with a
// row lock on the loan, so concurrent calls on the same loan or on the last
// available copy serialize at the datastore and the loser gets
// ErrStatusConflict or ErrNoAvailableCopies instead of a lost update.
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	List(ctx context.Context, filter domain.LoanFilter, params domain.PaginationParams) ([]domain.Loan, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status *domain.LoanStatus) ([]domain.Loan, error)

	CountActiveForUserBook(ctx context.Context, userID, bookID uuid.UUID) (int64, error)
	HasOverdue(ctx context.Context, userID uuid.UUID) (bool, error)
	CountOutstandingForBook(ctx context.Context, bookID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, status domain.LoanStatus) (int64, error)

	Approve(ctx context.Context, loanID, employeeID uuid.UUID, dueDate time.Time) error
	Reject(ctx context.Context, loanID uuid.UUID, reason string) error
	Withdraw(ctx context.Context, loanID, employeeID uuid.UUID, condition domain.BookCondition, notes *string) error
	Return(ctx context.Context, loanID uuid.UUID, condition domain.BookCondition, notes *string) error
	Cancel(ctx context.Context, loanID uuid.UUID) error
	MarkOverdue(ctx context.Context, now time.Time) ([]domain.Loan, error)
}

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, book_id, user_id, status, user_notes, requested_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING requested_at, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		loan.ID, loan.BookID, loan.UserID, loan.Status, loan.UserNotes,
	).Scan(&loan.RequestedAt, &loan.CreatedAt, &loan.UpdatedAt)
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	var loan domain.Loan
	query := `SELECT * FROM loans WHERE id = $1`
	err := r.db.GetContext(ctx, &loan, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context, filter domain.LoanFilter, params domain.PaginationParams) ([]domain.Loan, int64, error) {
	params.Validate()

	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.BookID != nil {
		args = append(args, *filter.BookID)
		where += fmt.Sprintf(" AND book_id = $%d", len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM loans " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, params.PageSize, params.Offset())
	query := fmt.Sprintf(`
		SELECT * FROM loans %s
		ORDER BY requested_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	var loans []domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, args...)
	return loans, total, err
}

func (r *loanRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *domain.LoanStatus) ([]domain.Loan, error) {
	var loans []domain.Loan

	if status != nil {
		query := `SELECT * FROM loans WHERE user_id = $1 AND status = $2 ORDER BY requested_at DESC`
		err := r.db.SelectContext(ctx, &loans, query, userID, *status)
		return loans, err
	}

	query := `SELECT * FROM loans WHERE user_id = $1 ORDER BY requested_at DESC`
	err := r.db.SelectContext(ctx, &loans, query, userID)
	return loans, err
}

func (r *loanRepository) CountActiveForUserBook(ctx context.Context, userID, bookID uuid.UUID) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*) FROM loans
		WHERE user_id = $1 AND book_id = $2 AND status IN ('PENDING', 'APPROVED', 'ACTIVE')`
	err := r.db.GetContext(ctx, &count, query, userID, bookID)
	return count, err
}

func (r *loanRepository) HasOverdue(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	query := `SELECT COUNT(*) FROM loans WHERE user_id = $1 AND status = 'OVERDUE'`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountOutstandingForBook counts loans currently holding a physical copy.
// OVERDUE loans still hold one: the copy comes back only on return.
func (r *loanRepository) CountOutstandingForBook(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*) FROM loans
		WHERE book_id = $1 AND status IN ('APPROVED', 'ACTIVE', 'OVERDUE')`
	err := r.db.GetContext(ctx, &count, query, bookID)
	return count, err
}

func (r *loanRepository) CountByStatus(ctx context.Context, status domain.LoanStatus) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM loans WHERE status = $1`
	err := r.db.GetContext(ctx, &count, query, status)
	return count, err
}

// lockLoan reads book_id and status under FOR UPDATE so the transition
// re-check and the copy mutation see a consistent row.
func lockLoan(ctx context.Context, tx *sqlx.Tx, loanID uuid.UUID) (uuid.UUID, domain.LoanStatus, error) {
	var row struct {
		BookID uuid.UUID         `db:"book_id"`
		Status domain.LoanStatus `db:"status"`
	}
	err := tx.GetContext(ctx, &row, `SELECT book_id, status FROM loans WHERE id = $1 FOR UPDATE`, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, "", ErrNotFound
	}
	if err != nil {
		return uuid.Nil, "", err
	}
	return row.BookID, row.Status, nil
}

func (r *loanRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	// Deferred so a panic inside fn still releases the transaction.
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *loanRepository) Approve(ctx context.Context, loanID, employeeID uuid.UUID, dueDate time.Time) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		bookID, status, err := lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if status != domain.LoanPending {
			return ErrStatusConflict
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE books SET available_copies = available_copies - 1, updated_at = NOW()
			WHERE id = $1 AND available_copies > 0`, bookID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNoAvailableCopies
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE loans
			SET status = $2, approved_at = NOW(), approved_by = $3, due_date = $4, updated_at = NOW()
			WHERE id = $1`, loanID, domain.LoanApproved, employeeID, dueDate)
		return err
	})
}

func (r *loanRepository) Reject(ctx context.Context, loanID uuid.UUID, reason string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, status, err := lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if status != domain.LoanPending {
			return ErrStatusConflict
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE loans SET status = $2, rejection_reason = $3, updated_at = NOW()
			WHERE id = $1`, loanID, domain.LoanRejected, reason)
		return err
	})
}

func (r *loanRepository) Withdraw(ctx context.Context, loanID, employeeID uuid.UUID, condition domain.BookCondition, notes *string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, status, err := lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if status != domain.LoanApproved {
			return ErrStatusConflict
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE loans
			SET status = $2, loan_date = NOW(), condition_before = $3,
			    employee_notes = CASE
			        WHEN $4::text IS NULL THEN employee_notes
			        WHEN employee_notes IS NULL THEN $4
			        ELSE employee_notes || E'\n' || $4
			    END,
			    updated_at = NOW()
			WHERE id = $1`, loanID, domain.LoanActive, condition, notes)
		return err
	})
}

func (r *loanRepository) Return(ctx context.Context, loanID uuid.UUID, condition domain.BookCondition, notes *string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		bookID, status, err := lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if status != domain.LoanActive && status != domain.LoanOverdue {
			return ErrStatusConflict
		}

		// Clamp so a stray administrative copy edit can never push the
		// available count past the total.
		_, err = tx.ExecContext(ctx, `
			UPDATE books SET available_copies = LEAST(available_copies + 1, total_copies), updated_at = NOW()
			WHERE id = $1`, bookID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE loans
			SET status = $2, returned_at = NOW(), condition_after = $3,
			    employee_notes = CASE
			        WHEN $4::text IS NULL THEN employee_notes
			        WHEN employee_notes IS NULL THEN $4
			        ELSE employee_notes || E'\n' || $4
			    END,
			    updated_at = NOW()
			WHERE id = $1`, loanID, domain.LoanReturned, condition, notes)
		return err
	})
}

func (r *loanRepository) Cancel(ctx context.Context, loanID uuid.UUID) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, status, err := lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if status != domain.LoanPending {
			return ErrStatusConflict
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE loans SET status = $2, updated_at = NOW() WHERE id = $1`,
			loanID, domain.LoanCancelled)
		return err
	})
}

// MarkOverdue bulk-transitions every ACTIVE loan past its due date. Loans
// already OVERDUE are excluded by the predicate, so repeated sweeps without
// elapsed time affect zero rows.
func (r *loanRepository) MarkOverdue(ctx context.Context, now time.Time) ([]domain.Loan, error) {
	var loans []domain.Loan
	query := `
		UPDATE loans SET status = $1, updated_at = NOW()
		WHERE status = $2 AND due_date < $3
		RETURNING id, book_id, user_id, status, requested_at, due_date, created_at, updated_at`
	err := r.db.SelectContext(ctx, &loans, query, domain.LoanOverdue, domain.LoanActive, now)
	return loans, err
}
