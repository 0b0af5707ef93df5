package service

import (
	"context"
	"strings"

	"noteapp/internal/core/errs"
	"noteapp/internal/domain"
	"noteapp/internal/repo"
)

// UserService 后台用户管理
type UserService struct {
	users *repo.UserRepo
}

func NewUserService(users *repo.UserRepo) *UserService { return &UserService{users: users} }

type UserPage struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

func (s *UserService) List(ctx context.Context, q string, offset, limit int) (UserPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	us, total, err := s.users.List(ctx, q, offset, limit)
	if err != nil {
		return UserPage{}, errs.Internal("list users failed", err)
	}
	if us == nil {
		us = []domain.User{}
	}
	return UserPage{Total: total, Items: us}, nil
}

func (s *UserService) SetRole(ctx context.Context, id, role string) (*domain.User, error) {
	role = strings.TrimSpace(role)
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, errs.Validation("role must be user or admin")
	}
	n, err := s.users.UpdateFields(ctx, id, map[string]any{"role": role})
	if err != nil {
		return nil, errs.Internal("update role failed", err)
	}
	if n == 0 {
		return nil, errs.NotFound("user not found")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Internal("lookup user failed", err)
	}
	if u == nil {
		return nil, errs.NotFound("user not found")
	}
	return u, nil
}

// Promote 用于命令行引导第一个管理员；邮箱与注册时一样按小写匹配
func (s *UserService) Promote(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, errs.Internal("lookup user failed", err)
	}
	if u == nil {
		return nil, errs.NotFound("user not found")
	}
	return s.SetRole(ctx, u.ID, domain.RoleAdmin)
}
