package ez

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"noteapp/internal/core/errs"
	mdw "noteapp/internal/transport/http/middleware"
	resp "noteapp/internal/transport/http/response"
	"noteapp/pkg/utils"
)

// Hook
type CrudHooks[T any] struct {
	BeforeCreate func(c *gin.Context, m *T) error
	BeforeUpdate func(c *gin.Context, m *T) error
	ScopeList    func(c *gin.Context, q *gorm.DB) *gorm.DB // 自定义筛选/排序
	AfterGet     func(c *gin.Context, m *T)
}

// CrudConfig 归属型资源的增删改查；表结构由启动时统一迁移
type CrudConfig[T any] struct {
	DB    *gorm.DB
	Group *gin.RouterGroup // 已鉴权分组（能拿 userId）
	Path  string
	New   func() *T

	Hooks CrudHooks[T]

	AllowCreate bool
	AllowList   bool
	AllowGet    bool
	AllowUpdate bool
	AllowDelete bool

	IDField    string        // 默认 "ID"
	OwnerField string        // 默认优先 "OwnerID"，其次 "UserID"
	IDGen      func() string // 默认 utils.NewID
	ValidID    func(string) bool

	// 列表排序，为空则按 id DESC
	OrderBy string // 例如 "created_at DESC"
}

func (c *CrudConfig[T]) idFields() []string {
	if c.IDField != "" {
		return []string{c.IDField, "ID"}
	}
	return []string{"ID"}
}

func (c *CrudConfig[T]) ownerFields() []string {
	if c.OwnerField != "" {
		return []string{c.OwnerField, "OwnerID", "UserID"}
	}
	return []string{"OwnerID", "UserID"}
}

// stringField 按候选名找可写的 string 字段
func stringField(obj any, names []string) (*string, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, false
	}
	v = v.Elem()
	for _, name := range names {
		f, ok := v.Type().FieldByName(name)
		if !ok || f.PkgPath != "" {
			continue
		}
		fv := v.FieldByIndex(f.Index)
		if fv.Kind() == reflect.String && fv.CanSet() {
			return fv.Addr().Interface().(*string), true
		}
	}
	return nil, false
}

func setField(obj any, names []string, val string) bool {
	p, ok := stringField(obj, names)
	if ok {
		*p = val
	}
	return ok
}

func positive(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(rune(s[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// hookErr hook 返回的普通错误视为校验失败
func hookErr(err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e
	}
	return errs.Validation(err.Error())
}

// Crud 注册 POST/GET/GET:id/PUT:id/DELETE:id。
// 所有读写都带 owner 条件，他人的记录与不存在的记录同样返回 404
func Crud[T any](cfg CrudConfig[T]) {
	if !cfg.AllowCreate && !cfg.AllowGet && !cfg.AllowList && !cfg.AllowUpdate && !cfg.AllowDelete {
		cfg.AllowCreate, cfg.AllowList, cfg.AllowGet, cfg.AllowUpdate, cfg.AllowDelete = true, true, true, true, true
	}
	if cfg.IDGen == nil {
		cfg.IDGen = utils.NewID
	}
	if cfg.ValidID == nil {
		cfg.ValidID = utils.IsID
	}
	ids, owners := cfg.idFields(), cfg.ownerFields()
	notFound := errs.NotFound("not found")

	// scoped id + owner 组成的查询条件；id 非法时返回 false
	scoped := func(c *gin.Context) (*T, bool) {
		id := c.Param("id")
		if !cfg.ValidID(id) {
			return nil, false
		}
		filter := cfg.New()
		setField(filter, ids, id)
		setField(filter, owners, mdw.UserID(c))
		return filter, true
	}

	if cfg.AllowCreate {
		cfg.Group.POST(cfg.Path, func(c *gin.Context) {
			m := cfg.New()
			if err := c.ShouldBindJSON(m); err != nil {
				resp.BadBind(c, err)
				return
			}
			// ID 总是由服务端生成
			if !setField(m, ids, cfg.IDGen()) {
				resp.Fail(c, errs.Internal("id field not found", nil))
				return
			}
			if !setField(m, owners, mdw.UserID(c)) {
				resp.Fail(c, errs.Internal("owner field not found", nil))
				return
			}
			if cfg.Hooks.BeforeCreate != nil {
				if err := cfg.Hooks.BeforeCreate(c, m); err != nil {
					resp.Fail(c, hookErr(err))
					return
				}
			}
			if err := cfg.DB.WithContext(c).Create(m).Error; err != nil {
				resp.Fail(c, errs.Internal("create failed", err))
				return
			}
			if cfg.Hooks.AfterGet != nil {
				cfg.Hooks.AfterGet(c, m)
			}
			resp.Created(c, m)
		})
	}

	// List（我的）
	if cfg.AllowList {
		cfg.Group.GET(cfg.Path, func(c *gin.Context) {
			page := positive(c.Query("page"), 1)
			size := positive(c.Query("size"), 20)
			if size > 100 {
				size = 100
			}

			// 用结构体 Where 自动映射列名，避免手写 owner_id
			ownerFilter := cfg.New()
			if !setField(ownerFilter, owners, mdw.UserID(c)) {
				resp.Fail(c, errs.Internal("owner field not found", nil))
				return
			}
			q := cfg.DB.WithContext(c).Model(cfg.New()).Where(ownerFilter)
			if cfg.Hooks.ScopeList != nil {
				q = cfg.Hooks.ScopeList(c, q)
			}

			var total int64
			if err := q.Count(&total).Error; err != nil {
				resp.Fail(c, errs.Internal("count failed", err))
				return
			}
			if cfg.OrderBy != "" {
				q = q.Order(cfg.OrderBy)
			} else {
				q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: toSnake(ids[0])}, Desc: true})
			}
			items := []T{}
			if err := q.Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
				resp.Fail(c, errs.Internal("list failed", err))
				return
			}
			if cfg.Hooks.AfterGet != nil {
				for i := range items {
					cfg.Hooks.AfterGet(c, &items[i])
				}
			}
			resp.OK(c, gin.H{"list": items, "total": total, "page": page, "size": size})
		})
	}

	if cfg.AllowGet {
		cfg.Group.GET(cfg.Path+"/:id", func(c *gin.Context) {
			filter, ok := scoped(c)
			if !ok {
				resp.Fail(c, notFound)
				return
			}
			m := cfg.New()
			if err := cfg.DB.WithContext(c).Where(filter).First(m).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					resp.Fail(c, notFound)
					return
				}
				resp.Fail(c, errs.Internal("load failed", err))
				return
			}
			if cfg.Hooks.AfterGet != nil {
				cfg.Hooks.AfterGet(c, m)
			}
			resp.OK(c, m)
		})
	}

	// Update：只更新请求中给出的非零字段
	if cfg.AllowUpdate {
		cfg.Group.PUT(cfg.Path+"/:id", func(c *gin.Context) {
			filter, ok := scoped(c)
			if !ok {
				resp.Fail(c, notFound)
				return
			}
			cur := cfg.New()
			if err := cfg.DB.WithContext(c).Where(filter).First(cur).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					resp.Fail(c, notFound)
					return
				}
				resp.Fail(c, errs.Internal("load failed", err))
				return
			}

			in := cfg.New()
			if err := c.ShouldBindJSON(in); err != nil {
				resp.BadBind(c, err)
				return
			}
			// 强制保持 ID/Owner
			setField(in, ids, c.Param("id"))
			setField(in, owners, mdw.UserID(c))

			if cfg.Hooks.BeforeUpdate != nil {
				if err := cfg.Hooks.BeforeUpdate(c, in); err != nil {
					resp.Fail(c, hookErr(err))
					return
				}
			}
			res := cfg.DB.WithContext(c).Model(cfg.New()).Where(filter).Updates(in)
			if res.Error != nil {
				resp.Fail(c, errs.Internal("update failed", res.Error))
				return
			}
			if res.RowsAffected == 0 {
				resp.Fail(c, notFound)
				return
			}
			out := cfg.New()
			if err := cfg.DB.WithContext(c).Where(filter).First(out).Error; err != nil {
				resp.Fail(c, errs.Internal("reload failed", err))
				return
			}
			if cfg.Hooks.AfterGet != nil {
				cfg.Hooks.AfterGet(c, out)
			}
			resp.OK(c, out)
		})
	}

	if cfg.AllowDelete {
		cfg.Group.DELETE(cfg.Path+"/:id", func(c *gin.Context) {
			filter, ok := scoped(c)
			if !ok {
				resp.Fail(c, notFound)
				return
			}
			res := cfg.DB.WithContext(c).Where(filter).Delete(cfg.New())
			if res.Error != nil {
				resp.Fail(c, errs.Internal("delete failed", res.Error))
				return
			}
			if res.RowsAffected == 0 {
				resp.Fail(c, notFound)
				return
			}
			resp.NoContent(c)
		})
	}
}
