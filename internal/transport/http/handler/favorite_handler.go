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

type FavoriteHandler struct{ svc *service.FavoriteService }

func NewFavoriteHandler(svc *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

type favoriteState struct {
	IsFavorite bool `json:"isFavorite"`
}

type toggleOut struct {
	Status string `json:"status"`
}

func (h *FavoriteHandler) MountAPI(g router.Groups) {
	user := ez.New(g.User)

	ez.RegisterAction(user, ez.Action[ez.None, []domain.FavoriteItem]{
		Method: http.MethodGet,
		Path:   "/favorites",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *ez.None) ([]domain.FavoriteItem, error) {
			return h.svc.List(c.Request.Context(), mdw.UserID(c))
		},
	})

	ez.RegisterAction(user, ez.Action[ez.None, favoriteState]{
		Method: http.MethodGet,
		Path:   "/favorites/:adId",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *ez.None) (favoriteState, error) {
			ok, err := h.svc.IsFavorite(c.Request.Context(), mdw.UserID(c), c.Param("adId"))
			return favoriteState{IsFavorite: ok}, err
		},
	})

	ez.RegisterAction(user, ez.Action[ez.None, toggleOut]{
		Method: http.MethodPost,
		Path:   "/favorites/:adId",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *ez.None) (toggleOut, error) {
			st, err := h.svc.Toggle(c.Request.Context(), mdw.UserID(c), c.Param("adId"))
			return toggleOut{Status: st}, err
		},
	})

	ez.RegisterAction(user, ez.Action[ez.None, favoriteState]{
		Method: http.MethodPut,
		Path:   "/favorites/:adId",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *ez.None) (favoriteState, error) {
			err := h.svc.Add(c.Request.Context(), mdw.UserID(c), c.Param("adId"))
			return favoriteState{IsFavorite: err == nil}, err
		},
	})

	ez.RegisterAction(user, ez.Action[ez.None, ez.None]{
		Method: http.MethodDelete,
		Path:   "/favorites/:adId",
		Binder: ez.BindNone,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *ez.None) (ez.None, error) {
			return ez.None{}, h.svc.Remove(c.Request.Context(), mdw.UserID(c), c.Param("adId"))
		},
	})
}
