package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"noteapp/internal/domain"
)

// TaxonomyRepo 一棵分类树的持久化；节点表与父子索引表由 domain.Tree 指定
type TaxonomyRepo struct {
	db   *gorm.DB
	tree domain.Tree
}

func NewTaxonomyRepo(db *gorm.DB, tree domain.Tree) *TaxonomyRepo {
	return &TaxonomyRepo{db: db, tree: tree}
}

func (r *TaxonomyRepo) Tree() domain.Tree { return r.tree }

func (r *TaxonomyRepo) nodes(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.tree.Nodes)
}

func (r *TaxonomyRepo) CreateRoot(ctx context.Context, n *domain.Node) error {
	return r.nodes(ctx).Create(n).Error
}

// CreateChild 两步写：节点行 + 索引行，同一事务内完成
func (r *TaxonomyRepo) CreateChild(ctx context.Context, n *domain.Node) error {
	if n.ParentID == nil {
		return errors.New("child node without parent")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(r.tree.Nodes).Create(n).Error; err != nil {
			return err
		}
		return r.link(tx, *n.ParentID, n.ID, n.CreatedAt)
	})
}

// Link 幂等登记父子关系，重复登记为空操作
func (r *TaxonomyRepo) Link(ctx context.Context, parentID, childID string) error {
	return r.link(r.db.WithContext(ctx), parentID, childID, time.Now())
}

func (r *TaxonomyRepo) link(tx *gorm.DB, parentID, childID string, at time.Time) error {
	return tx.Table(r.tree.Links).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Link{ParentID: parentID, ChildID: childID, CreatedAt: at}).Error
}

func (r *TaxonomyRepo) FindByID(ctx context.Context, id string) (*domain.Node, error) {
	var n domain.Node
	err := r.nodes(ctx).Where("id = ?", id).Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *TaxonomyRepo) Roots(ctx context.Context) ([]domain.Node, error) {
	var out []domain.Node
	err := r.nodes(ctx).Where("parent_id IS NULL").Order("name ASC").Find(&out).Error
	return out, err
}

type childRow struct {
	ParentID string
	ID       string
	Name     string
}

// ChildRefs 经索引表展开，按父节点分组
func (r *TaxonomyRepo) ChildRefs(ctx context.Context, parentIDs []string) (map[string][]domain.NodeRef, error) {
	out := make(map[string][]domain.NodeRef, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}
	var rows []childRow
	err := r.db.WithContext(ctx).
		Table(r.tree.Links+" AS l").
		Select("l.parent_id AS parent_id, n.id AS id, n.name AS name").
		Joins("JOIN "+r.tree.Nodes+" AS n ON n.id = l.child_id").
		Where("l.parent_id IN ?", parentIDs).
		Order("n.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ParentID] = append(out[row.ParentID], domain.NodeRef{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (r *TaxonomyRepo) Children(ctx context.Context, parentID string) ([]domain.Node, error) {
	var out []domain.Node
	err := r.nodes(ctx).
		Select(r.tree.Nodes+".*").
		Joins("JOIN "+r.tree.Links+" AS l ON l.child_id = "+r.tree.Nodes+".id").
		Where("l.parent_id = ?", parentID).
		Order(r.tree.Nodes + ".name ASC").
		Find(&out).Error
	return out, err
}

// Update 返回受影响行数，0 表示不存在
func (r *TaxonomyRepo) Update(ctx context.Context, id string, fields map[string]any) (int64, error) {
	fields["updated_at"] = time.Now()
	res := r.nodes(ctx).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *TaxonomyRepo) CountChildren(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.nodes(ctx).Where("parent_id = ?", id).Count(&n).Error
	return n, err
}

// CountAdRefs 统计引用该节点的广告（含草稿）
func (r *TaxonomyRepo) CountAdRefs(ctx context.Context, id string) (int64, error) {
	conds := make([]string, 0, len(r.tree.AdColumns))
	args := make([]any, 0, len(r.tree.AdColumns))
	for _, col := range r.tree.AdColumns {
		conds = append(conds, col+" = ?")
		args = append(args, id)
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Ad{}).
		Where(strings.Join(conds, " OR "), args...).
		Count(&n).Error
	return n, err
}

// Delete 删除节点及其索引行
func (r *TaxonomyRepo) Delete(ctx context.Context, id string) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(r.tree.Links).
			Where("child_id = ? OR parent_id = ?", id, id).
			Delete(&domain.Link{}).Error; err != nil {
			return err
		}
		res := tx.Table(r.tree.Nodes).Where("id = ?", id).Delete(&domain.Node{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// Rebuild 依据 parent_id 重建整张索引表，返回重建后的行数
func (r *TaxonomyRepo) Rebuild(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + r.tree.Links).Error; err != nil {
			return err
		}
		res := tx.Exec("INSERT INTO " + r.tree.Links + " (parent_id, child_id, created_at) " +
			"SELECT parent_id, id, created_at FROM " + r.tree.Nodes + " WHERE parent_id IS NOT NULL")
		n = res.RowsAffected
		return res.Error
	})
	return n, err
}

// CountLinks 某对父子在索引表中的登记次数
func (r *TaxonomyRepo) CountLinks(ctx context.Context, parentID, childID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table(r.tree.Links).
		Where("parent_id = ? AND child_id = ?", parentID, childID).
		Count(&n).Error
	return n, err
}
