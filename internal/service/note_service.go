package service

import (
	"context"
	"strings"
	"time"

	"noteapp/internal/core/errs"
	"noteapp/internal/domain"
	"noteapp/internal/repo"
	"noteapp/pkg/utils"
)

// NoteService 旧版笔记的公开读取与写入前校验；归属内 CRUD 走 ez.Crud
type NoteService struct{ notes *repo.NoteRepo }

func NewNoteService(notes *repo.NoteRepo) *NoteService { return &NoteService{notes: notes} }

func (s *NoteService) LatestPublic(ctx context.Context, limit int) ([]domain.Note, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	ns, err := s.notes.LatestPublic(ctx, limit)
	if err != nil {
		return nil, errs.Internal("list notes failed", err)
	}
	if ns == nil {
		ns = []domain.Note{}
	}
	for i := range ns {
		PrepareNote(&ns[i])
	}
	return ns, nil
}

func (s *NoteService) GetPublic(ctx context.Context, id string) (*domain.Note, error) {
	if !utils.IsID(id) {
		return nil, errs.NotFound("note not found")
	}
	n, err := s.notes.FindPublic(ctx, id)
	if err != nil {
		return nil, errs.Internal("load note failed", err)
	}
	if n == nil {
		return nil, errs.NotFound("note not found")
	}
	PrepareNote(n)
	return n, nil
}

// ValidateNote 新建时标题必填；时间戳由服务端写
func ValidateNote(n *domain.Note) error {
	n.CreatedAt, n.UpdatedAt = time.Time{}, time.Time{}
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return errs.Validation("title is required")
	}
	if err := checkLen("title", n.Title, maxTitleLen); err != nil {
		return err
	}
	n.Tags = cleanTags(n.Tags)
	if n.IsPublic == nil {
		f := false
		n.IsPublic = &f
	}
	return nil
}

// ValidateNotePatch 更新时标题可省略，但不能改成空白
func ValidateNotePatch(n *domain.Note) error {
	n.CreatedAt, n.UpdatedAt = time.Time{}, time.Time{}
	if n.Title != "" {
		if n.Title = strings.TrimSpace(n.Title); n.Title == "" {
			return errs.Validation("title cannot be empty")
		}
		if err := checkLen("title", n.Title, maxTitleLen); err != nil {
			return err
		}
	}
	if n.Tags != nil {
		n.Tags = cleanTags(n.Tags)
	}
	return nil
}

// PrepareNote 输出前补齐空切片
func PrepareNote(n *domain.Note) {
	if n.Tags == nil {
		n.Tags = []string{}
	}
}
