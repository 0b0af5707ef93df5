package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"noteapp/internal/domain"
)

type ProfileRepo struct{ db *gorm.DB }

func NewProfileRepo(db *gorm.DB) *ProfileRepo { return &ProfileRepo{db: db} }

func (r *ProfileRepo) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) FindByUserIDs(ctx context.Context, userIDs []string) ([]domain.Profile, error) {
	var ps []domain.Profile
	if len(userIDs) == 0 {
		return ps, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&ps).Error
	return ps, err
}

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfileRepo) Save(ctx context.Context, p *domain.Profile, cols ...string) error {
	tx := r.db.WithContext(ctx).Model(p)
	if len(cols) > 0 {
		tx = tx.Select(cols)
	}
	return tx.Updates(p).Error
}
