package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"perpustakaan-backend/internal/domain"
	"perpustakaan-backend/internal/middleware"
	"perpustakaan-backend/internal/service/user"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	result, err := h.userService.List(c.Context(), getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid user ID")
	}

	found, err := h.userService.GetProfile(c.Context(), id)
	if err != nil {
		if err == user.ErrNotFound {
			return middleware.NotFound("User not found")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(found)
}

func (h *UserHandler) AssignRole(c *fiber.Ctx) error {
	var input domain.AssignRoleInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.userService.AssignRole(c.Context(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		switch err {
		case user.ErrNotFound:
			return middleware.NotFound("User not found")
		case user.ErrInvalidRole:
			return middleware.BadRequest("Invalid role")
		case user.ErrSelfDemotion:
			return middleware.Forbidden("Admins cannot change their own role")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *UserHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid user ID")
	}

	var input domain.UpdateUserStatusInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.userService.UpdateStatus(c.Context(), id, input)
	if err != nil {
		switch err {
		case user.ErrNotFound:
			return middleware.NotFound("User not found")
		case user.ErrInvalidStatus:
			return middleware.BadRequest("Invalid status")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}
