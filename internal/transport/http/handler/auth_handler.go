package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noteapp/internal/domain"
	"noteapp/internal/service"
	"noteapp/internal/transport/http/ez"
	mdw "noteapp/internal/transport/http/middleware"
	"noteapp/internal/transport/http/router"
)

type AuthHandler struct{ svc *service.AuthService }

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Priority() int { return 10 }

type loginIn struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) MountAPI(g router.Groups) {
	pub, user := ez.New(g.Public), ez.New(g.User)

	ez.RegisterAction(pub, ez.Action[service.RegisterInput, *service.Session]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.RegisterInput) (*service.Session, error) {
			return h.svc.Register(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(pub, ez.Action[loginIn, *service.Session]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (*service.Session, error) {
			return h.svc.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	ez.RegisterAction(user, ez.Action[ez.None, *domain.User]{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *ez.None) (*domain.User, error) {
			return h.svc.Me(c.Request.Context(), mdw.UserID(c))
		},
	})

	ez.RegisterAction(user, ez.Action[service.AccountPatch, *domain.User]{
		Method: http.MethodPut,
		Path:   "/auth/me",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.AccountPatch) (*domain.User, error) {
			return h.svc.UpdateAccount(c.Request.Context(), mdw.UserID(c), *in)
		},
	})
}
