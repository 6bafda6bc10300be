package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/models"
	"gorm.io/gorm"
)

type GormOAuthStore struct {
	db *gorm.DB
}

func NewGormOAuthStore(db *gorm.DB) *GormOAuthStore {
	return &GormOAuthStore{db: db}
}

func (s *GormOAuthStore) FindAccount(ctx context.Context, provider, providerID string) (*models.OAuthAccount, error) {
	var account models.OAuthAccount
	err := s.db.WithContext(ctx).Preload("User").
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find oauth account: %w", err)
	}
	return &account, nil
}

func (s *GormOAuthStore) CreateAccount(ctx context.Context, account *models.OAuthAccount) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("create oauth account: %w", err)
	}
	return nil
}
