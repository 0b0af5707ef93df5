package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"noteapp/internal/domain"
	"noteapp/internal/service"
	"noteapp/internal/transport/http/ez"
	"noteapp/internal/transport/http/router"
)

// NoteHandler 旧版笔记：归属内 CRUD 用 ez.Crud，公开读取走 NoteService
type NoteHandler struct {
	db  *gorm.DB
	svc *service.NoteService
}

func NewNoteHandler(db *gorm.DB, svc *service.NoteService) *NoteHandler {
	return &NoteHandler{db: db, svc: svc}
}

func (h *NoteHandler) Priority() int { return 90 }

func (h *NoteHandler) MountAPI(g router.Groups) {
	ez.Crud(ez.CrudConfig[domain.Note]{
		DB:      h.db,
		Group:   g.User,
		Path:    "/notes",
		New:     func() *domain.Note { return &domain.Note{} },
		OrderBy: "created_at DESC, id DESC",

		AllowCreate: true,
		AllowList:   true,
		AllowGet:    true,
		AllowUpdate: true,
		AllowDelete: true,
		Hooks: ez.CrudHooks[domain.Note]{
			BeforeCreate: func(_ *gin.Context, n *domain.Note) error { return service.ValidateNote(n) },
			BeforeUpdate: func(_ *gin.Context, n *domain.Note) error { return service.ValidateNotePatch(n) },
			AfterGet:     func(_ *gin.Context, n *domain.Note) { service.PrepareNote(n) },
		},
	})

	pub := ez.New(g.Public)
	ez.RegisterAction(pub, ez.Action[ez.None, []domain.Note]{
		Method: http.MethodGet,
		Path:   "/public-notes",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *ez.None) ([]domain.Note, error) {
			limit, _ := strconv.Atoi(c.Query("limit"))
			return h.svc.LatestPublic(c.Request.Context(), limit)
		},
	})
	ez.RegisterAction(pub, ez.Action[ez.None, *domain.Note]{
		Method: http.MethodGet,
		Path:   "/public-notes/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *ez.None) (*domain.Note, error) {
			return h.svc.GetPublic(c.Request.Context(), c.Param("id"))
		},
	})
}
