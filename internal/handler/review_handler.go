package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/middleware"
	"perpustakaan-backend/internal/service/review"
)

type ReviewHandler struct {
	reviewService review.Service
}

func NewReviewHandler(reviewService review.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("bookId"))
	if err != nil {
		return middleware.BadRequest("Invalid book ID")
	}

	var input domain.CreateReviewInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.reviewService.Create(c.Context(), middleware.GetCurrentUserID(c), bookID, input)
	if err != nil {
		return mapReviewError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *ReviewHandler) ListByBook(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("bookId"))
	if err != nil {
		return middleware.BadRequest("Invalid book ID")
	}

	result, err := h.reviewService.ListByBook(c.Context(), bookID, getPaginationParams(c))
	if err != nil {
		return mapReviewError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid review ID")
	}

	var input domain.UpdateReviewInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.reviewService.Update(c.Context(), id, middleware.GetCurrentUserID(c), input)
	if err != nil {
		return mapReviewError(err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid review ID")
	}

	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	if err := h.reviewService.Delete(c.Context(), id, user); err != nil {
		return mapReviewError(err)
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func mapReviewError(err error) error {
	switch err {
	case review.ErrNotFound:
		return middleware.NotFound("Review not found")
	case review.ErrBookNotFound:
		return middleware.NotFound("Book not found")
	case review.ErrNotAuthor:
		return middleware.Forbidden("Only the author may modify this review")
	case review.ErrBadRating:
		return middleware.BadRequest("Rating must be between 1 and 5")
	default:
		return err
	}
}
