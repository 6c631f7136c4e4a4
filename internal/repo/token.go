package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mkravchenko/blog-backend/internal/models"
)

func (r *Repo) StoreRefreshToken(ctx context.Context, userID uint, token string) error {
	rt := models.RefreshToken{
		UserID: userID,
		Token:  token,
	}
	return r.DB.WithContext(ctx).Create(&rt).Error
}

// FindRefreshToken looks a token up by its exact signed string. Absence means
// the token was revoked or never issued, regardless of its signature.
func (r *Repo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &rt, nil
}

func (r *Repo) DeleteRefreshToken(ctx context.Context, token string) error {
	return r.DB.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.RefreshToken{}).Error
}

func (r *Repo) ListRefreshTokens(ctx context.Context, userID uint) ([]models.RefreshToken, error) {
	var rts []models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&rts).Error
	if err != nil {
		return nil, err
	}
	return rts, nil
}

func (r *Repo) CountRefreshTokens(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
