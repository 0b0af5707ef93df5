package service

import (
	"context"
	"strings"
	"time"

	"noteapp/internal/core/auth"
	"noteapp/internal/core/errs"
	"noteapp/internal/domain"
	"noteapp/internal/repo"
	"noteapp/pkg/utils"
)

const minPasswordLen = 6

type AuthService struct {
	users *repo.UserRepo
	jwt   *auth.JWTer
	now   func() time.Time
}

func NewAuthService(users *repo.UserRepo, jwt *auth.JWTer) *AuthService {
	return &AuthService{users: users, jwt: jwt, now: time.Now}
}

type RegisterInput struct {
	Name     string `json:"name"     binding:"required,notblank,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"    binding:"omitempty,max=32"`
}

type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return nil, errs.Validation("name is required")
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, errs.Validation("valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, errs.Validation("password must be at least 6 characters")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, errs.Internal("lookup user failed", err)
	}
	if existing != nil {
		return nil, errs.Conflict("user already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, errs.Internal("hash password failed", err)
	}
	now := s.now()
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Phone:        strings.TrimSpace(in.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册同一邮箱：唯一索引兜底
		if repo.IsDupKey(err) {
			return nil, errs.Conflict("user already exists")
		}
		return nil, errs.Internal("create user failed", err)
	}
	registrations.Inc()
	return s.session(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errs.Validation("email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, errs.Internal("lookup user failed", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, errs.Unauthorized("invalid credentials")
	}
	return s.session(u)
}

func (s *AuthService) session(u *domain.User) (*Session, error) {
	tok, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u}, nil
}

func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil || tok == "" {
		return "", errs.Internal("issue token failed", err)
	}
	return tok, nil
}

// Resolve 由 token 得到身份；存储不可达返回 503
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errs.Unauthorized("missing token")
	}
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, errs.Unauthorized("invalid token")
	}
	u, err := s.users.FindByID(ctx, claims.UID)
	if err != nil {
		return nil, errs.Unavailable("identity store unavailable", err)
	}
	if u == nil {
		return nil, errs.Unauthorized("user not found")
	}
	return u, nil
}

// RequireRole 以库中角色为准，不信任 token 里的 role
func RequireRole(u *domain.User, role string) error {
	if u == nil {
		return errs.Unauthorized("unauthorized")
	}
	if u.Role != role {
		return errs.Forbidden("forbidden")
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, uid string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, errs.Internal("lookup user failed", err)
	}
	if u == nil {
		return nil, errs.NotFound("user not found")
	}
	return u, nil
}

type AccountPatch struct {
	Name  *string `json:"name"  binding:"omitempty,notblank,max=64"`
	Phone *string `json:"phone" binding:"omitempty,max=32"`
}

func (s *AuthService) UpdateAccount(ctx context.Context, uid string, in AccountPatch) (*domain.User, error) {
	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errs.Validation("name cannot be empty")
		}
		fields["name"] = name
	}
	if in.Phone != nil {
		fields["phone"] = strings.TrimSpace(*in.Phone)
	}
	if len(fields) > 0 {
		n, err := s.users.UpdateFields(ctx, uid, fields)
		if err != nil {
			return nil, errs.Internal("update user failed", err)
		}
		if n == 0 {
			return nil, errs.NotFound("user not found")
		}
	}
	return s.Me(ctx, uid)
}
