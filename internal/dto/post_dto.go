package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Title         string   `json:"title"`
	Slug          *string  `json:"slug,omitempty"`
	Excerpt       *string  `json:"excerpt,omitempty"`
	Content       string   `json:"content"`
	ContentFormat string   `json:"content_format,omitempty"`
	FeaturedImage *string  `json:"featured_image,omitempty"`
	IsFeatured    bool     `json:"is_featured,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// UpdatePostRequest uses pointers throughout so absent fields stay untouched.
type UpdatePostRequest struct {
	Title         *string   `json:"title,omitempty"`
	Slug          *string   `json:"slug,omitempty"`
	Excerpt       *string   `json:"excerpt,omitempty"`
	Content       *string   `json:"content,omitempty"`
	ContentFormat *string   `json:"content_format,omitempty"`
	Status        *string   `json:"status,omitempty"`
	FeaturedImage *string   `json:"featured_image,omitempty"`
	IsFeatured    *bool     `json:"is_featured,omitempty"`
	Categories    *[]string `json:"categories,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
}

type PostResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          *string    `json:"slug"`
	Status        string     `json:"status"`
	Excerpt       *string    `json:"excerpt"`
	Content       string     `json:"content"`
	ContentFormat string     `json:"content_format"`
	FeaturedImage *string    `json:"featured_image"`
	IsFeatured    bool       `json:"is_featured"`
	Categories    []string   `json:"categories"`
	Tags          []string   `json:"tags"`
	Views         int        `json:"views"`
	AuthorID      *uuid.UUID `json:"author_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PublishedAt   *time.Time `json:"published_at"`
}

type PostListResponse struct {
	Items    []PostResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type ViewsResponse struct {
	Views int `json:"views"`
}
