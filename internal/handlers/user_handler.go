package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/dto"
	"github.com/inkhaven/blog-backend/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.userService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(users)
}

func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.userService.UpdateRole(c.Context(), id, req.Role); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			return badRequest(c, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			return notFound(c, err.Error())
		}
		return internalError(c, err)
	}
	return c.JSON(dto.OkResponse{OK: true})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	if err := h.userService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}
