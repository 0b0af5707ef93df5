package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noteapp/internal/domain"
	"noteapp/internal/service"
	"noteapp/internal/transport/http/ez"
)

// AdminHandler 后台用户管理，挂在 /admin/v1（分组已校验 admin）
type AdminHandler struct{ users *service.UserService }

func NewAdminHandler(users *service.UserService) *AdminHandler { return &AdminHandler{users: users} }

func (h *AdminHandler) Priority() int { return 10 }

type listUsersQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 email/name 模糊搜
}

type roleIn struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)

	ez.RegisterAction(e, ez.Action[listUsersQ, service.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *listUsersQ) (service.UserPage, error) {
			return h.users.List(c.Request.Context(), in.Q, in.Offset, in.Limit)
		},
	})

	ez.RegisterAction(e, ez.Action[roleIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id/role",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *roleIn) (*domain.User, error) {
			return h.users.SetRole(c.Request.Context(), c.Param("id"), in.Role)
		},
	})
}
