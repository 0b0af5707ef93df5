package repo

import (
	"context"
	"errors"
	"slices"
	"strings"

	"gorm.io/gorm"

	"noteapp/internal/domain"
)

type AdRepo struct{ db *gorm.DB }

func NewAdRepo(db *gorm.DB) *AdRepo { return &AdRepo{db: db} }

func (r *AdRepo) Create(ctx context.Context, a *domain.Ad) error {
	a.RefreshSearchText()
	return r.db.WithContext(ctx).Create(a).Error
}

// BackfillSearchText 补齐迁移前写入、search_text 为空的行
func (r *AdRepo) BackfillSearchText(ctx context.Context) (int64, error) {
	var (
		batch []domain.Ad
		n     int64
	)
	err := r.db.WithContext(ctx).
		Where("search_text IS NULL OR search_text = ''").
		FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				a := &batch[i]
				a.RefreshSearchText()
				if err := r.db.WithContext(ctx).Model(&domain.Ad{}).
					Where("id = ?", a.ID).
					UpdateColumn("search_text", a.SearchText).Error; err != nil {
					return err
				}
				n++
			}
			return nil
		}).Error
	return n, err
}

// likeEscaper 用 ! 作转义符，mysql 字符串里的反斜杠另有含义
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern q 按字面子串匹配，% 和 _ 不当通配符
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

func (r *AdRepo) FindByID(ctx context.Context, id string) (*domain.Ad, error) {
	var a domain.Ad
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindOwned 归属与存在性一并判断
func (r *AdRepo) FindOwned(ctx context.Context, id, ownerID string) (*domain.Ad, error) {
	var a domain.Ad
	err := r.db.WithContext(ctx).First(&a, "id = ? AND owner_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Ad, error) {
	var ads []domain.Ad
	if len(ids) == 0 {
		return ads, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ads).Error
	return ads, err
}

// Feed 公共信息流：非草稿，新的在前
func (r *AdRepo) Feed(ctx context.Context, f domain.FeedFilter) ([]domain.Ad, error) {
	q := r.db.WithContext(ctx).Model(&domain.Ad{}).Where("is_draft = ?", false)
	if f.Category != "" {
		q = q.Where("category_id = ?", f.Category)
	}
	if f.Subcategory != "" {
		q = q.Where("subcategory_id = ?", f.Subcategory)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("search_text LIKE ? ESCAPE '!'", containsPattern(s))
	}
	var ads []domain.Ad
	err := q.Order("created_at DESC").Order("id DESC").Limit(f.Limit).Find(&ads).Error
	return ads, err
}

func (r *AdRepo) ByOwner(ctx context.Context, ownerID string) ([]domain.Ad, error) {
	var ads []domain.Ad
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&ads).Error
	return ads, err
}

// UpdateOwned 只写 cols 指定的列，仍以 owner 为条件
func (r *AdRepo) UpdateOwned(ctx context.Context, a *domain.Ad, cols []string) (int64, error) {
	if slices.Contains(cols, "title") || slices.Contains(cols, "content") {
		a.RefreshSearchText()
		cols = append(cols, "search_text")
	}
	res := r.db.WithContext(ctx).Model(a).
		Where("owner_id = ?", a.OwnerID).
		Select(cols).
		Updates(a)
	return res.RowsAffected, res.Error
}

func (r *AdRepo) DeleteOwned(ctx context.Context, id, ownerID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.Ad{})
	return res.RowsAffected, res.Error
}
