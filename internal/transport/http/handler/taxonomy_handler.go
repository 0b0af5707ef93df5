package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noteapp/internal/domain"
	"noteapp/internal/service"
	"noteapp/internal/transport/http/ez"
	"noteapp/internal/transport/http/router"
)

// TaxonomyHandler 类目与地区共用一套路由，只是前缀和子节点段不同
type TaxonomyHandler struct {
	svc      *service.TaxonomyService
	base     string // "/categories" | "/locations"
	children string // "/subcategories" | "/districts"
}

func NewCategoryHandler(svc *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{svc: svc, base: "/categories", children: "/subcategories"}
}

func NewLocationHandler(svc *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{svc: svc, base: "/locations", children: "/districts"}
}

func (h *TaxonomyHandler) Priority() int { return 30 }

func (h *TaxonomyHandler) MountAPI(g router.Groups) {
	pub, admin := ez.New(g.Public), ez.New(g.Admin)

	ez.RegisterAction(pub, ez.Action[ez.None, []domain.RootWithChildren]{
		Method: http.MethodGet,
		Path:   h.base,
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *ez.None) ([]domain.RootWithChildren, error) {
			return h.svc.ListRoots(c.Request.Context())
		},
	})

	ez.RegisterAction(pub, ez.Action[ez.None, *domain.Node]{
		Method: http.MethodGet,
		Path:   h.base + "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *ez.None) (*domain.Node, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(pub, ez.Action[ez.None, []domain.Node]{
		Method: http.MethodGet,
		Path:   h.base + "/:id" + h.children,
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *ez.None) ([]domain.Node, error) {
			return h.svc.ListChildren(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(admin, ez.Action[service.NodeInput, *domain.Node]{
		Method: http.MethodPost,
		Path:   h.base,
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.NodeInput) (*domain.Node, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(admin, ez.Action[service.NodePatch, *domain.Node]{
		Method: http.MethodPut,
		Path:   h.base + "/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.NodePatch) (*domain.Node, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})

	ez.RegisterAction(admin, ez.Action[ez.None, ez.None]{
		Method: http.MethodDelete,
		Path:   h.base + "/:id",
		Binder: ez.BindNone,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *ez.None) (ez.None, error) {
			return ez.None{}, h.svc.Delete(c.Request.Context(), c.Param("id"))
		},
	})
}

// MountAdmin 后台：重建父子索引
func (h *TaxonomyHandler) MountAdmin(admin *gin.RouterGroup) {
	ez.RegisterAction(ez.New(admin), ez.Action[ez.None, gin.H]{
		Method: http.MethodPost,
		Path:   "/taxonomy" + h.base + "/rebuild",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *ez.None) (gin.H, error) {
			n, err := h.svc.Rebuild(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return gin.H{"kind": h.svc.Kind(), "links": n}, nil
		},
	})
}
