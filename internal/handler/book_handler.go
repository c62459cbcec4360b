package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/middleware"
	"perpustakaan-backend/internal/service/book"
)

const maxCoverSize = 5 * 1024 * 1024

type BookHandler struct {
	bookService book.Service
}

func NewBookHandler(bookService book.Service) *BookHandler {
	return &BookHandler{bookService: bookService}
}

func (h *BookHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateBookInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if input.Title == "" || input.Author == "" {
		return middleware.BadRequest("Title and author are required")
	}

	created, err := h.bookService.Create(c.Context(), input)
	if err != nil {
		if err == book.ErrNoCopies {
			return middleware.BadRequest("Total copies must be at least 1")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid book ID")
	}

	found, err := h.bookService.GetByID(c.Context(), id)
	if err != nil {
		if err == book.ErrNotFound {
			return middleware.NotFound("Book not found")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(found)
}

func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid book ID")
	}

	var input domain.UpdateBookInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.bookService.Update(c.Context(), id, input)
	if err != nil {
		if err == book.ErrNotFound {
			return middleware.NotFound("Book not found")
		}
		if err == book.ErrNoCopies {
			return middleware.BadRequest("Total copies must be at least 1")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid book ID")
	}

	if err := h.bookService.Delete(c.Context(), id); err != nil {
		if err == book.ErrNotFound {
			return middleware.NotFound("Book not found")
		}
		if err == book.ErrHasOpenLoans {
			return middleware.Conflict("Book has outstanding loans")
		}
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *BookHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	filter := domain.BookFilter{
		Search: c.Query("search"),
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	result, err := h.bookService.List(c.Context(), filter, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *BookHandler) UploadCover(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid book ID")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.BadRequest("File is required")
	}

	if file.Size > maxCoverSize {
		return middleware.BadRequest("File size must be less than 5MB")
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	reader, err := file.Open()
	if err != nil {
		return middleware.BadRequest("Failed to read file")
	}
	defer reader.Close()

	updated, err := h.bookService.UploadCover(c.Context(), id, file.Size, mimeType, reader)
	if err != nil {
		if err == book.ErrNotFound {
			return middleware.NotFound("Book not found")
		}
		if err == book.ErrNoStorage {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Cover storage is not available")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}
