package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/dto"
	"github.com/inkhaven/blog-backend/internal/models"
	"github.com/inkhaven/blog-backend/internal/store"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PostService is the blog-post CRUD collaborator around the auth core. HTML
// bodies pass through bluemonday before they are stored.
type PostService struct {
	posts     store.PostStore
	sanitizer *bluemonday.Policy
}

func NewPostService(posts store.PostStore) *PostService {
	return &PostService{
		posts:     posts,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// List returns every post, newest first, for the dashboard.
func (s *PostService) List(ctx context.Context) ([]dto.PostResponse, error) {
	posts, err := s.posts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostResponse(&posts[i]))
	}
	return out, nil
}

// ListPublished is the public listing with filtering, sorting and paging.
func (s *PostService) ListPublished(ctx context.Context, q store.PublishedQuery) (*dto.PostListResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	posts, total, err := s.posts.FindPublished(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, toPostResponse(&posts[i]))
	}
	return &dto.PostListResponse{
		Items:    items,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}

func (s *PostService) GetPublishedBySlug(ctx context.Context, slug string) (*dto.PostResponse, error) {
	post, err := s.posts.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	resp := toPostResponse(post)
	return &resp, nil
}

func (s *PostService) Featured(ctx context.Context, limit int) ([]dto.PostResponse, error) {
	if limit < 1 {
		limit = 3
	}
	posts, err := s.posts.FindFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostResponse(&posts[i]))
	}
	return out, nil
}

// IncrementViews bumps the view counter of a published post and returns the
// new count.
func (s *PostService) IncrementViews(ctx context.Context, slug string) (int, error) {
	if _, err := s.posts.IncrementViews(ctx, slug); err != nil {
		return 0, err
	}
	post, err := s.posts.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	if post == nil {
		return 0, ErrPostNotFound
	}
	return post.Views, nil
}

// Create stores a new draft. Published status is reached through Update.
func (s *PostService) Create(ctx context.Context, req *dto.CreatePostRequest, authorID *uuid.UUID) (*dto.PostResponse, error) {
	format := req.ContentFormat
	if format == "" {
		format = models.ContentFormatMarkdown
	}

	post := &models.BlogPost{
		Title:         strings.TrimSpace(req.Title),
		Slug:          trimmedOrNil(req.Slug),
		Excerpt:       trimmedOrNil(req.Excerpt),
		Content:       s.sanitizeContent(req.Content, format),
		ContentFormat: format,
		Status:        models.PostStatusDraft,
		FeaturedImage: req.FeaturedImage,
		IsFeatured:    req.IsFeatured,
		Categories:    toJSONList(req.Categories),
		Tags:          toJSONList(req.Tags),
		AuthorID:      authorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	resp := toPostResponse(post)
	return &resp, nil
}

// Update applies a partial edit. Transitioning to published stamps
// published_at once.
func (s *PostService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil {
		post.Slug = trimmedOrNil(req.Slug)
	}
	if req.Excerpt != nil {
		post.Excerpt = trimmedOrNil(req.Excerpt)
	}
	if req.ContentFormat != nil {
		post.ContentFormat = *req.ContentFormat
	}
	if req.Content != nil {
		post.Content = s.sanitizeContent(*req.Content, post.ContentFormat)
	}
	if req.Status != nil {
		if *req.Status == models.PostStatusPublished && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.Status = *req.Status
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = req.FeaturedImage
	}
	if req.IsFeatured != nil {
		post.IsFeatured = *req.IsFeatured
	}
	if req.Categories != nil {
		post.Categories = toJSONList(*req.Categories)
	}
	if req.Tags != nil {
		post.Tags = toJSONList(*req.Tags)
	}

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	resp := toPostResponse(post)
	return &resp, nil
}

func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.posts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPostNotFound
	}
	return nil
}

func (s *PostService) sanitizeContent(content, format string) string {
	if format == models.ContentFormatHTML {
		return s.sanitizer.Sanitize(content)
	}
	return content
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toJSONList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}

func fromJSONList(data datatypes.JSON) []string {
	var values []string
	if len(data) > 0 {
		_ = json.Unmarshal(data, &values)
	}
	if values == nil {
		values = []string{}
	}
	return values
}

func toPostResponse(post *models.BlogPost) dto.PostResponse {
	return dto.PostResponse{
		ID:            post.ID,
		Title:         post.Title,
		Slug:          post.Slug,
		Status:        post.Status,
		Excerpt:       post.Excerpt,
		Content:       post.Content,
		ContentFormat: post.ContentFormat,
		FeaturedImage: post.FeaturedImage,
		IsFeatured:    post.IsFeatured,
		Categories:    fromJSONList(post.Categories),
		Tags:          fromJSONList(post.Tags),
		Views:         post.Views,
		AuthorID:      post.AuthorID,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
		PublishedAt:   post.PublishedAt,
	}
}
