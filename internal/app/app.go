package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"noteapp/internal/core/auth"
	"noteapp/internal/core/cache"
	"noteapp/internal/core/config"
	"noteapp/internal/core/database"
	"noteapp/internal/core/logger"
	"noteapp/internal/domain"
	"noteapp/internal/repo"
	"noteapp/internal/service"
	"noteapp/internal/transport/http/handler"
	"noteapp/internal/transport/http/router"
)

// App 两个入口（api / admin）共用的依赖装配
type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Cache *cache.Cache

	Auth       *service.AuthService
	Users      *service.UserService
	Profiles   *service.ProfileService
	Ads        *service.AdService
	Favorites  *service.FavoriteService
	Categories *service.TaxonomyService
	Locations  *service.TaxonomyService
	Notes      *service.NoteService
}

// OpenDB 按配置建连接，gorm 日志转进 zap
func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		LogWriter:          logger.ToWriter(l.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open db (%s %s): %w", cfg.DB.Driver, database.DSNForLog(cfg.DB.DSN), err)
	}
	return db, nil
}

// New 迁移表结构并组装仓储与服务
func New(cfg *config.Config, l *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db, domain.Models()...); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, time.Duration(cfg.Redis.TTLSec)*time.Second)
	if c != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			// 连不上就直读数据库
			l.Warn("redis unavailable, cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
			c = nil
		}
	}

	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)

	users := repo.NewUserRepo(db)
	profiles := repo.NewProfileRepo(db)
	ads := repo.NewAdRepo(db)
	if cfg.DB.AutoMigrate {
		n, err := ads.BackfillSearchText(context.Background())
		if err != nil {
			return nil, fmt.Errorf("backfill ad search text: %w", err)
		}
		if n > 0 {
			l.Info("ad search text backfilled", zap.Int64("rows", n))
		}
	}

	categories := service.NewTaxonomyService(repo.NewTaxonomyRepo(db, domain.CategoryTree), c, l)
	locations := service.NewTaxonomyService(repo.NewTaxonomyRepo(db, domain.LocationTree), c, l)

	return &App{
		Cfg:        cfg,
		Log:        l,
		DB:         db,
		Cache:      c,
		Auth:       service.NewAuthService(users, jwter),
		Users:      service.NewUserService(users),
		Profiles:   service.NewProfileService(profiles),
		Ads:        service.NewAdService(ads, categories, locations),
		Favorites:  service.NewFavoriteService(repo.NewFavoriteRepo(db), ads, users, profiles),
		Categories: categories,
		Locations:  locations,
		Notes:      service.NewNoteService(repo.NewNoteRepo(db)),
	}, nil
}

// Health 数据库必须可达；缓存为可选项，不影响健康状态
func (a *App) Health(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) options(reg *router.Registry) router.Options {
	return router.Options{
		Log:      a.Log,
		HTTP:     a.Cfg.App.HTTP,
		Auth:     a.Auth,
		Registry: reg,
		Health:   a.Health,
	}
}

// APIEngine 用户端路由
func (a *App) APIEngine() *gin.Engine {
	reg := router.NewRegistry(
		handler.NewAuthHandler(a.Auth),
		handler.NewProfileHandler(a.Profiles),
		handler.NewAdHandler(a.Ads),
		handler.NewCategoryHandler(a.Categories),
		handler.NewLocationHandler(a.Locations),
		handler.NewFavoriteHandler(a.Favorites),
		handler.NewNoteHandler(a.DB, a.Notes),
	)
	return router.NewAPIEngine(a.options(reg))
}

// AdminEngine 后台路由
func (a *App) AdminEngine() *gin.Engine {
	reg := router.NewRegistry(
		handler.NewAdminHandler(a.Users),
		handler.NewCategoryHandler(a.Categories),
		handler.NewLocationHandler(a.Locations),
	)
	return router.NewAdminEngine(a.options(reg))
}

func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
