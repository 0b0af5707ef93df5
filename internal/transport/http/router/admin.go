package router

import (
	"github.com/gin-gonic/gin"

	"noteapp/internal/core/server"
	"noteapp/internal/domain"
	mdw "noteapp/internal/transport/http/middleware"
	resp "noteapp/internal/transport/http/response"
)

// NewAdminEngine 后台端，/admin/v1 统一要求 admin 角色
func NewAdminEngine(o Options) *gin.Engine {
	r := server.NewRouter(nil)
	r.Use(o.middlewares()...)
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "route not found") })
	o.mountHealth(r)

	admin := r.Group("/admin/v1", mdw.AuthJWT(o.Auth), mdw.RequireRole(domain.RoleAdmin))
	if o.Registry != nil {
		o.Registry.MountAdmin(admin)
	}
	return r
}
