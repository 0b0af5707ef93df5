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

type AdHandler struct{ svc *service.AdService }

func NewAdHandler(svc *service.AdService) *AdHandler { return &AdHandler{svc: svc} }

func (h *AdHandler) Priority() int { return 20 }

type feedQ struct {
	Category    string `form:"category"`
	Subcategory string `form:"subcategory"`
	Q           string `form:"q"`
	Limit       int    `form:"limit"`
}

func (h *AdHandler) MountAPI(g router.Groups) {
	pub, opt, user := ez.New(g.Public), ez.New(g.Optional), ez.New(g.User)

	ez.RegisterAction(pub, ez.Action[feedQ, []domain.Ad]{
		Method: http.MethodGet,
		Path:   "/ads/latest",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *feedQ) ([]domain.Ad, error) {
			return h.svc.PublicFeed(c.Request.Context(), domain.FeedFilter{
				Category:    in.Category,
				Subcategory: in.Subcategory,
				Query:       in.Q,
				Limit:       in.Limit,
			})
		},
	})

	ez.RegisterAction(user, ez.Action[ez.None, []domain.Ad]{
		Method: http.MethodGet,
		Path:   "/ads/my",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *ez.None) ([]domain.Ad, error) {
			return h.svc.Owned(c.Request.Context(), mdw.UserID(c))
		},
	})

	ez.RegisterAction(user, ez.Action[service.AdInput, *domain.Ad]{
		Method: http.MethodPost,
		Path:   "/ads",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.AdInput) (*domain.Ad, error) {
			return h.svc.Create(c.Request.Context(), mdw.UserID(c), *in)
		},
	})

	ez.RegisterAction(opt, ez.Action[ez.None, *domain.Ad]{
		Method: http.MethodGet,
		Path:   "/ads/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *ez.None) (*domain.Ad, error) {
			return h.svc.GetByID(c.Request.Context(), c.Param("id"), mdw.UserID(c))
		},
	})

	ez.RegisterAction(user, ez.Action[service.AdPatch, *domain.Ad]{
		Method: http.MethodPut,
		Path:   "/ads/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.AdPatch) (*domain.Ad, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), mdw.UserID(c), *in)
		},
	})

	ez.RegisterAction(user, ez.Action[ez.None, ez.None]{
		Method: http.MethodDelete,
		Path:   "/ads/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *ez.None) (ez.None, error) {
			return ez.None{}, h.svc.Delete(c.Request.Context(), c.Param("id"), mdw.UserID(c))
		},
	})
}
