package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"noteapp/internal/core/cache"
	"noteapp/internal/core/errs"
	"noteapp/internal/domain"
	"noteapp/internal/repo"
	"noteapp/pkg/utils"
)

// TaxonomyService 两级分类树（类目 / 地区）的规则
type TaxonomyService struct {
	repo  *repo.TaxonomyRepo
	cache *cache.Cache
	log   *zap.Logger
	now   func() time.Time
}

func NewTaxonomyService(r *repo.TaxonomyRepo, c *cache.Cache, l *zap.Logger) *TaxonomyService {
	if l == nil {
		l = zap.NewNop()
	}
	return &TaxonomyService{repo: r, cache: c, log: l, now: time.Now}
}

func (s *TaxonomyService) Kind() domain.Kind { return s.repo.Tree().Kind }

func (s *TaxonomyService) rootsKey() string {
	return "taxonomy:" + string(s.repo.Tree().Kind) + ":roots"
}

type NodeInput struct {
	Name   string  `json:"name"   binding:"required,notblank,max=128"`
	Icon   string  `json:"icon"   binding:"omitempty,max=255"`
	Parent *string `json:"parent"`
}

// Create parent 为空建根节点，否则建子节点
func (s *TaxonomyService) Create(ctx context.Context, in NodeInput) (*domain.Node, error) {
	if in.Parent != nil && strings.TrimSpace(*in.Parent) != "" {
		return s.CreateChild(ctx, in.Name, strings.TrimSpace(*in.Parent))
	}
	return s.CreateRoot(ctx, in.Name, in.Icon)
}

func (s *TaxonomyService) CreateRoot(ctx context.Context, name, icon string) (*domain.Node, error) {
	name, icon = strings.TrimSpace(name), strings.TrimSpace(icon)
	if name == "" {
		return nil, errs.Validation("name is required")
	}
	if icon == "" && s.repo.Tree().RequireIcon {
		return nil, errs.Validation("icon is required for a root " + string(s.Kind()))
	}
	now := s.now()
	n := &domain.Node{ID: utils.NewID(), Name: name, Icon: icon, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateRoot(ctx, n); err != nil {
		return nil, s.writeErr("create", err)
	}
	s.invalidate(ctx)
	return n, nil
}

func (s *TaxonomyService) CreateChild(ctx context.Context, name, parentID string) (*domain.Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("name is required")
	}
	if !utils.IsID(parentID) {
		return nil, errs.Validation("invalid parent id")
	}
	parent, err := s.repo.FindByID(ctx, parentID)
	if err != nil {
		return nil, errs.Internal("lookup parent failed", err)
	}
	if parent == nil {
		return nil, errs.Validation("parent not found")
	}
	if !parent.IsRoot() {
		return nil, errs.Validation("parent must be a top-level " + string(s.Kind()))
	}
	now := s.now()
	pid := parent.ID
	n := &domain.Node{ID: utils.NewID(), Name: name, ParentID: &pid, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateChild(ctx, n); err != nil {
		return nil, s.writeErr("create", err)
	}
	s.invalidate(ctx)
	return n, nil
}

func (s *TaxonomyService) ListRoots(ctx context.Context) ([]domain.RootWithChildren, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, s.rootsKey(), s.loadRoots)
}

func (s *TaxonomyService) loadRoots(ctx context.Context) ([]domain.RootWithChildren, error) {
	roots, err := s.repo.Roots(ctx)
	if err != nil {
		return nil, errs.Internal("list roots failed", err)
	}
	ids := make([]string, 0, len(roots))
	for _, r := range roots {
		ids = append(ids, r.ID)
	}
	children, err := s.repo.ChildRefs(ctx, ids)
	if err != nil {
		return nil, errs.Internal("list children failed", err)
	}
	out := make([]domain.RootWithChildren, 0, len(roots))
	for _, r := range roots {
		refs := children[r.ID]
		if refs == nil {
			refs = []domain.NodeRef{}
		}
		out = append(out, domain.RootWithChildren{Node: r, Children: refs})
	}
	return out, nil
}

func (s *TaxonomyService) ListChildren(ctx context.Context, parentID string) ([]domain.Node, error) {
	if !utils.IsID(parentID) {
		return nil, errs.Validation("invalid id")
	}
	out, err := s.repo.Children(ctx, parentID)
	if err != nil {
		return nil, errs.Internal("list children failed", err)
	}
	if out == nil {
		out = []domain.Node{}
	}
	return out, nil
}

func (s *TaxonomyService) Get(ctx context.Context, id string) (*domain.Node, error) {
	if !utils.IsID(id) {
		return nil, errs.NotFound(string(s.Kind()) + " not found")
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Internal("lookup failed", err)
	}
	if n == nil {
		return nil, errs.NotFound(string(s.Kind()) + " not found")
	}
	return n, nil
}

type NodePatch struct {
	Name *string `json:"name" binding:"omitempty,max=128"`
	Icon *string `json:"icon" binding:"omitempty,max=255"`
}

// Update 部分更新，未给出的字段保持原值
func (s *TaxonomyService) Update(ctx context.Context, id string, in NodePatch) (*domain.Node, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errs.Validation("name cannot be empty")
		}
		fields["name"] = name
	}
	if in.Icon != nil {
		icon := strings.TrimSpace(*in.Icon)
		if icon == "" && cur.IsRoot() && s.repo.Tree().RequireIcon {
			return nil, errs.Validation("icon is required for a root " + string(s.Kind()))
		}
		fields["icon"] = icon
	}
	if len(fields) == 0 {
		return cur, nil
	}
	n, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, s.writeErr("update", err)
	}
	if n == 0 {
		return nil, errs.NotFound(string(s.Kind()) + " not found")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete 先检查引用再删除；检查与删除之间不在同一事务，
// 期间新建的广告可能引用到已删除节点（已知且接受）
func (s *TaxonomyService) Delete(ctx context.Context, id string) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	refs, err := s.repo.CountAdRefs(ctx, id)
	if err != nil {
		return errs.Internal("count listings failed", err)
	}
	if refs > 0 {
		return errs.Conflict(string(s.Kind()) + " is used by listings")
	}
	if cur.IsRoot() {
		kids, err := s.repo.CountChildren(ctx, id)
		if err != nil {
			return errs.Internal("count children failed", err)
		}
		if kids > 0 {
			return errs.Conflict(string(s.Kind()) + " still has children")
		}
	}
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return errs.Internal("delete failed", err)
	}
	if n == 0 {
		return errs.NotFound(string(s.Kind()) + " not found")
	}
	s.invalidate(ctx)
	return nil
}

// Rebuild 重建父子索引
func (s *TaxonomyService) Rebuild(ctx context.Context) (int64, error) {
	n, err := s.repo.Rebuild(ctx)
	if err != nil {
		return 0, errs.Internal("rebuild failed", err)
	}
	s.invalidate(ctx)
	s.log.Info("taxonomy index rebuilt", zap.String("kind", string(s.Kind())), zap.Int64("links", n))
	return n, nil
}

// FindNode 供其他服务校验引用；查不到返回 (nil, nil)
func (s *TaxonomyService) FindNode(ctx context.Context, id string) (*domain.Node, error) {
	if !utils.IsID(id) {
		return nil, nil
	}
	return s.repo.FindByID(ctx, id)
}

func (s *TaxonomyService) writeErr(op string, err error) error {
	if repo.IsDupKey(err) {
		return errs.Conflict(string(s.Kind()) + " name already exists")
	}
	return errs.Internal(op+" "+string(s.Kind())+" failed", err)
}

func (s *TaxonomyService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, s.rootsKey())
}
