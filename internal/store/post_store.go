package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/models"
	"gorm.io/gorm"
)

type GormPostStore struct {
	db *gorm.DB
}

func NewGormPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

func (s *GormPostStore) Create(ctx context.Context, post *models.BlogPost) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *GormPostStore) Save(ctx context.Context, post *models.BlogPost) error {
	if err := s.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

func (s *GormPostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

func (s *GormPostStore) FindAll(ctx context.Context) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := s.db.WithContext(ctx).Preload("Author").
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// publishedScope limits queries to listable posts: published and slugged.
func publishedScope(tx *gorm.DB) *gorm.DB {
	return tx.Where("status = ?", models.PostStatusPublished).
		Where("slug IS NOT NULL AND slug <> ''")
}

func (s *GormPostStore) FindPublished(ctx context.Context, q PublishedQuery) ([]models.BlogPost, int64, error) {
	tx := s.db.WithContext(ctx).Model(&models.BlogPost{}).Scopes(publishedScope)

	if q.Search != "" {
		like := "%" + q.Search + "%"
		tx = tx.Where("title ILIKE ? OR excerpt ILIKE ?", like, like)
	}
	if len(q.Tags) > 0 {
		tx = tx.Where(jsonOverlap(s.db, "tags", q.Tags))
	}
	if len(q.Categories) > 0 {
		tx = tx.Where(jsonOverlap(s.db, "categories", q.Categories))
	}

	switch q.Sort {
	case "oldest":
		tx = tx.Order("created_at ASC")
	case "most_viewed":
		tx = tx.Order("views DESC").Order("created_at DESC")
	case "featured":
		tx = tx.Order("is_featured DESC").Order("created_at DESC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count published posts: %w", err)
	}

	var posts []models.BlogPost
	err := tx.Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list published posts: %w", err)
	}
	return posts, total, nil
}

// jsonOverlap builds an any-of containment check over a jsonb array column.
func jsonOverlap(db *gorm.DB, column string, values []string) *gorm.DB {
	cond := db.Session(&gorm.Session{NewDB: true})
	for i, v := range values {
		b, _ := json.Marshal([]string{v})
		if i == 0 {
			cond = cond.Where(column+" @> ?::jsonb", string(b))
		} else {
			cond = cond.Or(column+" @> ?::jsonb", string(b))
		}
	}
	return cond
}

func (s *GormPostStore) FindPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.db.WithContext(ctx).
		Where("LOWER(slug) = LOWER(?)", slug).
		Where("status = ?", models.PostStatusPublished).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return &post, nil
}

func (s *GormPostStore) FindFeatured(ctx context.Context, limit int) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := s.db.WithContext(ctx).Scopes(publishedScope).
		Where("is_featured = true").
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list featured posts: %w", err)
	}
	return posts, nil
}

func (s *GormPostStore) IncrementViews(ctx context.Context, slug string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.BlogPost{}).
		Where("LOWER(slug) = LOWER(?)", slug).
		Where("status = ?", models.PostStatusPublished).
		Update("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("increment views: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormPostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.BlogPost{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete post: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
