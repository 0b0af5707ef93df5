package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"noteapp/internal/core/config"
	"noteapp/internal/core/server"
	"noteapp/internal/domain"
	mdw "noteapp/internal/transport/http/middleware"
	resp "noteapp/internal/transport/http/response"
)

// Options 组装 engine 所需的依赖
type Options struct {
	Log      *zap.Logger
	HTTP     config.HTTP
	Auth     mdw.Resolver
	Registry *Registry
	// Health 可选：返回错误时 /health 报 503
	Health func(ctx context.Context) error
}

func (o Options) middlewares() []gin.HandlerFunc {
	h := o.HTTP
	ms := []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.Recovery(o.Log),
		mdw.Metrics(),
		mdw.AccessLog(o.Log),
	}
	if h.RateLimitRPS > 0 {
		ms = append(ms, mdw.RateLimit(rate.Limit(h.RateLimitRPS), h.RateLimitBurst))
	}
	if h.PerIPRPS > 0 {
		ms = append(ms, mdw.RateLimitPerIP(rate.Limit(h.PerIPRPS), h.PerIPBurst))
	}
	ms = append(ms, mdw.ConcurrencyLimit(h.MaxConcurrent))
	if h.MaxBodyMB > 0 {
		ms = append(ms, mdw.MaxBodyBytes(h.MaxBodyMB<<20))
	}
	ms = append(ms, mdw.Timeout(time.Duration(h.RequestTimeoutSec)*time.Second))
	return ms
}

func (o Options) mountHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		if o.Health != nil {
			if err := o.Health(c.Request.Context()); err != nil {
				_ = c.Error(err)
				resp.Abort(c, resp.CodeUnavailable, "unhealthy")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", mdw.MetricsHandler())
}

// NewAPIEngine 用户端：/api 下按 Public/Optional/User/Admin 四个分组挂模块
func NewAPIEngine(o Options) *gin.Engine {
	r := server.NewRouter(o.HTTP.CORSOrigins)
	r.Use(o.middlewares()...)
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "route not found") })
	o.mountHealth(r)

	api := r.Group("/api")
	g := Groups{
		Public:   api.Group(""),
		Optional: api.Group("", mdw.OptionalAuth(o.Auth)),
		User:     api.Group("", mdw.AuthJWT(o.Auth)),
		Admin:    api.Group("", mdw.AuthJWT(o.Auth), mdw.RequireRole(domain.RoleAdmin)),
	}
	if o.Registry != nil {
		o.Registry.MountAPI(g)
	}
	return r
}
