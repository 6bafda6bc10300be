package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Post lifecycle states.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// Content formats accepted for post bodies.
const (
	ContentFormatMarkdown = "markdown"
	ContentFormatHTML     = "html"
)

// BlogPost is authored content. AuthorID is nullable so posts survive the
// deletion of their author.
type BlogPost struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Slug          *string        `gorm:"size:255;uniqueIndex" json:"slug"`
	Status        string         `gorm:"size:20;not null;default:'draft';index:idx_blog_posts_status_created_at" json:"status"`
	Excerpt       *string        `gorm:"size:500" json:"excerpt"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	ContentFormat string         `gorm:"size:20;not null;default:'markdown'" json:"content_format"`
	FeaturedImage *string        `gorm:"size:500" json:"featured_image"`
	IsFeatured    bool           `gorm:"not null;default:false" json:"is_featured"`
	Categories    datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"categories"`
	Tags          datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"tags"`
	Views         int            `gorm:"not null;default:0" json:"views"`
	AuthorID      *uuid.UUID     `gorm:"type:uuid;index" json:"author_id"`
	Author        *User          `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	CreatedAt     time.Time      `gorm:"index:idx_blog_posts_status_created_at" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	PublishedAt   *time.Time     `gorm:"index" json:"published_at"`
}
