package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"noteapp/internal/domain"
)

type FavoriteRepo struct{ db *gorm.DB }

func NewFavoriteRepo(db *gorm.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

func (r *FavoriteRepo) Find(ctx context.Context, userID, adID string) (*domain.Favorite, error) {
	var f domain.Favorite
	err := r.db.WithContext(ctx).First(&f, "user_id = ? AND ad_id = ?", userID, adID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Insert 原样返回唯一冲突，由调用方决定是否视为无操作
func (r *FavoriteRepo) Insert(ctx context.Context, f *domain.Favorite) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FavoriteRepo) Delete(ctx context.Context, userID, adID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND ad_id = ?", userID, adID).Delete(&domain.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	var fs []domain.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&fs).Error
	return fs, err
}

func (r *FavoriteRepo) Count(ctx context.Context, userID, adID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ? AND ad_id = ?", userID, adID).
		Count(&n).Error
	return n, err
}
