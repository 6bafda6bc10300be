package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/dto"
	"github.com/inkhaven/blog-backend/internal/middleware"
	"github.com/inkhaven/blog-backend/internal/services"
	"github.com/inkhaven/blog-backend/internal/store"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// ListPublished serves the public blog index.
func (h *PostHandler) ListPublished(c *fiber.Ctx) error {
	q := store.PublishedQuery{
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", 10),
		Search:     c.Query("q"),
		Tags:       splitCSV(c.Query("tags")),
		Categories: splitCSV(c.Query("categories")),
		Sort:       c.Query("sort", "newest"),
	}

	resp, err := h.postService.ListPublished(c.Context(), q)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(resp)
}

func (h *PostHandler) Featured(c *fiber.Ctx) error {
	posts, err := h.postService.Featured(c.Context(), c.QueryInt("limit", 3))
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(posts)
}

func (h *PostHandler) GetBySlug(c *fiber.Ctx) error {
	resp, err := h.postService.GetPublishedBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c, err)
	}
	return c.JSON(resp)
}

func (h *PostHandler) TrackView(c *fiber.Ctx) error {
	views, err := h.postService.IncrementViews(c.Context(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c, err)
	}
	return c.JSON(dto.ViewsResponse{Views: views})
}

// List is the dashboard view: every post regardless of status.
func (h *PostHandler) List(c *fiber.Ctx) error {
	posts, err := h.postService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(posts)
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" || req.Content == "" {
		return badRequest(c, "Title and content are required")
	}

	var authorID *uuid.UUID
	if id, err := middleware.UserID(c); err == nil {
		authorID = &id
	}

	resp, err := h.postService.Create(c.Context(), &req, authorID)
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid post id")
	}

	var req dto.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.postService.Update(c.Context(), id, &req)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c, err)
	}
	return c.JSON(resp)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid post id")
	}

	if err := h.postService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
