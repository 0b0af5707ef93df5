package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"noteapp/internal/domain"
)

// NoteRepo 旧版笔记的公开读取；归属内的增删改查由 ez.Crud 负责
type NoteRepo struct{ db *gorm.DB }

func NewNoteRepo(db *gorm.DB) *NoteRepo { return &NoteRepo{db: db} }

func (r *NoteRepo) LatestPublic(ctx context.Context, limit int) ([]domain.Note, error) {
	var ns []domain.Note
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&ns).Error
	return ns, err
}

func (r *NoteRepo) FindPublic(ctx context.Context, id string) (*domain.Note, error) {
	var n domain.Note
	err := r.db.WithContext(ctx).First(&n, "id = ? AND is_public = ?", id, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
