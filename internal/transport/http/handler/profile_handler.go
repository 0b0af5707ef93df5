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

type ProfileHandler struct{ svc *service.ProfileService }

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) MountAPI(g router.Groups) {
	user := ez.New(g.User)

	ez.RegisterAction(user, ez.Action[ez.None, *domain.Profile]{
		Method: http.MethodGet,
		Path:   "/profile/settings",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *ez.None) (*domain.Profile, error) {
			return h.svc.Get(c.Request.Context(), mdw.UserID(c))
		},
	})

	ez.RegisterAction(user, ez.Action[service.ProfilePatch, *domain.Profile]{
		Method: http.MethodPut,
		Path:   "/profile/settings",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.ProfilePatch) (*domain.Profile, error) {
			return h.svc.Update(c.Request.Context(), mdw.UserID(c), *in)
		},
	})
}
