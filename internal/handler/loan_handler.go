package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/middleware"
	"perpustakaan-backend/internal/service/loan"
)

type LoanHandler struct {
	loanService loan.Service
}

func NewLoanHandler(loanService loan.Service) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

func (h *LoanHandler) Create(c *fiber.Ctx) error {
	requester := middleware.GetCurrentUser(c)
	if requester == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.CreateLoanInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	// Requesting on behalf of another user is a staff operation.
	if input.UserID != nil && *input.UserID != requester.ID && !requester.IsStaff() {
		return middleware.Forbidden("Cannot request a loan for another user")
	}

	created, err := h.loanService.Create(c.Context(), requester.ID, input)
	if err != nil {
		return mapLoanError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	loanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid loan ID")
	}

	var input domain.ApproveLoanInput
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.loanService.Approve(c.Context(), loanID, middleware.GetCurrentUserID(c), input.DueDate)
	if err != nil {
		return mapLoanError(err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	loanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid loan ID")
	}

	var input domain.RejectLoanInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.loanService.Reject(c.Context(), loanID, middleware.GetCurrentUserID(c), input.Reason)
	if err != nil {
		return mapLoanError(err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *LoanHandler) Withdraw(c *fiber.Ctx) error {
	loanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid loan ID")
	}

	var input domain.WithdrawLoanInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.loanService.RegisterWithdrawal(c.Context(), loanID, middleware.GetCurrentUserID(c), input)
	if err != nil {
		return mapLoanError(err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *LoanHandler) Return(c *fiber.Ctx) error {
	loanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid loan ID")
	}

	var input domain.ReturnLoanInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.loanService.RegisterReturn(c.Context(), loanID, middleware.GetCurrentUserID(c), input)
	if err != nil {
		return mapLoanError(err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *LoanHandler) Cancel(c *fiber.Ctx) error {
	loanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid loan ID")
	}

	updated, err := h.loanService.Cancel(c.Context(), loanID, middleware.GetCurrentUserID(c))
	if err != nil {
		return mapLoanError(err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *LoanHandler) Get(c *fiber.Ctx) error {
	loanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid loan ID")
	}

	found, err := h.loanService.GetByID(c.Context(), loanID)
	if err != nil {
		return mapLoanError(err)
	}

	// Clients can only see their own loans.
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}
	if found.UserID != user.ID && !user.IsStaff() {
		return middleware.Forbidden("Not allowed to view this loan")
	}

	return c.Status(fiber.StatusOK).JSON(found)
}

func (h *LoanHandler) ListMine(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	var status *domain.LoanStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.LoanStatus(raw)
		if !s.IsValid() {
			return middleware.BadRequest("Invalid loan status")
		}
		status = &s
	}

	loans, err := h.loanService.ListByUser(c.Context(), userID, status)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": loans})
}

func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	var filter domain.LoanFilter
	if raw := c.Query("status"); raw != "" {
		s := domain.LoanStatus(raw)
		if !s.IsValid() {
			return middleware.BadRequest("Invalid loan status")
		}
		filter.Status = &s
	}
	if raw := c.Query("book_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return middleware.BadRequest("Invalid book ID")
		}
		filter.BookID = &id
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return middleware.BadRequest("Invalid user ID")
		}
		filter.UserID = &id
	}

	result, err := h.loanService.List(c.Context(), filter, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *LoanHandler) RunOverdueSweep(c *fiber.Ctx) error {
	marked, err := h.loanService.UpdateOverdueLoans(c.Context())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"marked_overdue": marked,
	})
}

func mapLoanError(err error) error {
	switch err {
	case loan.ErrLoanNotFound:
		return middleware.NotFound("Loan not found")
	case loan.ErrBookNotFound:
		return middleware.NotFound("Book not found")
	case loan.ErrUserNotFound:
		return middleware.NotFound("User not found")
	case loan.ErrInvalidTransition:
		return middleware.Conflict("Loan is not in a state that allows this operation")
	case loan.ErrUnavailable:
		return middleware.Conflict("No copies of this book are available")
	case loan.ErrDuplicateActive:
		return middleware.Conflict("User already has an open loan for this book")
	case loan.ErrHasOverdue:
		return middleware.UnprocessableEntity("User has an overdue loan and cannot borrow")
	case loan.ErrUserNotActive:
		return middleware.UnprocessableEntity("User account is not active")
	case loan.ErrForbidden:
		return middleware.Forbidden("Not allowed to act on this loan")
	case loan.ErrMissingReason:
		return middleware.BadRequest("Rejection reason is required")
	case loan.ErrInvalidCondition:
		return middleware.BadRequest("Invalid book condition")
	default:
		return err
	}
}
