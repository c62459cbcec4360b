package loan

import (
	"perpustakaan-backend/internal/domain"
)

// transitions is the single source of truth for the loan lifecycle.
// RETURNED, REJECTED and CANCELLED are terminal: they have no entry.
var transitions = map[domain.LoanStatus][]domain.LoanStatus{
	domain.LoanPending:  {domain.LoanApproved, domain.LoanRejected, domain.LoanCancelled},
	domain.LoanApproved: {domain.LoanActive},
	domain.LoanActive:   {domain.LoanReturned, domain.LoanOverdue},
	domain.LoanOverdue:  {domain.LoanReturned},
}

func canTransition(from, to domain.LoanStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
