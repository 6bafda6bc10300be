package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/models"
	"gorm.io/gorm"
)

type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) CreateRefresh(ctx context.Context, token *models.RefreshToken) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *GormTokenStore) FindRefreshByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := s.db.WithContext(ctx).Preload("User").First(&token, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &token, nil
}

// RevokeRefresh flips revoked_at under a guard so two concurrent rotations of
// the same token produce exactly one winner.
func (s *GormTokenStore) RevokeRefresh(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("revoke refresh token: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormTokenStore) CreateMagicLink(ctx context.Context, token *models.MagicLinkToken) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("create magic link token: %w", err)
	}
	return nil
}

func (s *GormTokenStore) FindMagicLink(ctx context.Context, userID uuid.UUID, tokenHash string) (*models.MagicLinkToken, error) {
	var token models.MagicLinkToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND token_hash = ?", userID, tokenHash).
		Order("created_at DESC").
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find magic link token: %w", err)
	}
	return &token, nil
}

func (s *GormTokenStore) ConsumeMagicLink(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.MagicLinkToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("consume magic link token: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormTokenStore) CreateReset(ctx context.Context, token *models.PasswordResetToken) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

func (s *GormTokenStore) FindResetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := s.db.WithContext(ctx).Preload("User").
		Where("token_hash = ?", tokenHash).
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &token, nil
}

func (s *GormTokenStore) ConsumeReset(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("consume reset token: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
