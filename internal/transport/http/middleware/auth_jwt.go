package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"noteapp/internal/core/errs"
	"noteapp/internal/domain"
	resp "noteapp/internal/transport/http/response"
)

const (
	KeyUserID   = "userId"
	KeyRole     = "role"
	KeyIdentity = "identity"
)

// Resolver 把 bearer token 解析成当前用户（角色以库中为准）
type Resolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

func bearer(c *gin.Context) (string, bool) {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")), true
}

func setIdentity(c *gin.Context, u *domain.User) {
	c.Set(KeyUserID, u.ID)
	c.Set(KeyRole, u.Role)
	c.Set(KeyIdentity, u)
}

// AuthJWT 必须登录
func AuthJWT(r Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			resp.Fail(c, errs.Unauthorized("missing token"))
			return
		}
		u, err := r.Resolve(c.Request.Context(), tok)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		setIdentity(c, u)
		c.Next()
	}
}

// OptionalAuth 有合法 token 就带上身份，否则按匿名处理；存储故障仍然 503
func OptionalAuth(r Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			c.Next()
			return
		}
		u, err := r.Resolve(c.Request.Context(), tok)
		switch {
		case err == nil:
			setIdentity(c, u)
		case errs.Is(err, errs.CodeUnavailable):
			resp.Fail(c, err)
			return
		}
		c.Next()
	}
}

// RequireRole 放在 AuthJWT 之后
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := Identity(c)
		if u == nil {
			resp.Fail(c, errs.Unauthorized("unauthorized"))
			return
		}
		if u.Role != role {
			resp.Fail(c, errs.Forbidden("forbidden"))
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string { return c.GetString(KeyUserID) }

func Identity(c *gin.Context) *domain.User {
	if v, ok := c.Get(KeyIdentity); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
