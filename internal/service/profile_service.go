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

type ProfileService struct {
	profiles *repo.ProfileRepo
	now      func() time.Time
}

func NewProfileService(profiles *repo.ProfileRepo) *ProfileService {
	return &ProfileService{profiles: profiles, now: time.Now}
}

// Get 首次读取时创建空 profile；并发创建撞唯一索引则回读
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, errs.Internal("load profile failed", err)
	}
	if p != nil {
		return p, nil
	}
	now := s.now()
	p = &domain.Profile{ID: utils.NewID(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := s.profiles.Create(ctx, p); err != nil {
		if !repo.IsDupKey(err) {
			return nil, errs.Internal("create profile failed", err)
		}
		p, err = s.profiles.FindByUserID(ctx, userID)
		if err != nil || p == nil {
			return nil, errs.Internal("load profile failed", err)
		}
	}
	return p, nil
}

type ProfilePatch struct {
	DisplayName *string `json:"displayName" binding:"omitempty,max=64"`
	About       *string `json:"about"       binding:"omitempty,max=1000"`
	Image       *string `json:"image"       binding:"omitempty,max=512"`
	Website     *string `json:"website"     binding:"omitempty,max=255"`
	Phone       *string `json:"phone"       binding:"omitempty,max=32"`
}

func (s *ProfileService) Update(ctx context.Context, userID string, in ProfilePatch) (*domain.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cols := []string{}
	set := func(dst *string, v *string, col string) {
		if v == nil {
			return
		}
		*dst = strings.TrimSpace(*v)
		cols = append(cols, col)
	}
	set(&p.DisplayName, in.DisplayName, "display_name")
	set(&p.About, in.About, "about")
	set(&p.Image, in.Image, "image")
	set(&p.Website, in.Website, "website")
	set(&p.Phone, in.Phone, "phone")
	if len(cols) == 0 {
		return p, nil
	}
	p.UpdatedAt = s.now()
	cols = append(cols, "updated_at")
	if err := s.profiles.Save(ctx, p, cols...); err != nil {
		return nil, errs.Internal("update profile failed", err)
	}
	return p, nil
}
