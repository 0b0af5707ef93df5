package service

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"noteapp/internal/core/errs"
	"noteapp/internal/domain"
	"noteapp/internal/repo"
	"noteapp/pkg/utils"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// nodeFinder 校验广告引用的类目 / 地区
type nodeFinder interface {
	FindNode(ctx context.Context, id string) (*domain.Node, error)
}

type AdService struct {
	ads        *repo.AdRepo
	categories nodeFinder
	locations  nodeFinder
	now        func() time.Time
}

func NewAdService(ads *repo.AdRepo, categories, locations nodeFinder) *AdService {
	return &AdService{ads: ads, categories: categories, locations: locations, now: time.Now}
}

// OptString 区分「未给出」「显式 null」「给值」
type OptString struct {
	Set   bool
	Value *string
}

func (o *OptString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}

// Price 兼容前端表单提交的字符串数字
type Price struct {
	Set   bool
	Value float64
}

func (p *Price) UnmarshalJSON(b []byte) error {
	p.Set = true
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		p.Set = false
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
		if raw == "" {
			p.Set = false
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errs.Validation("price must be a number")
	}
	p.Value = v
	return nil
}

func NewPrice(v float64) Price { return Price{Set: true, Value: v} }

func SetString(s string) OptString { return OptString{Set: true, Value: &s} }

type AdInput struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Price       Price     `json:"price"`
	Location    string    `json:"location"`
	LocationID  OptString `json:"locationId"`
	Category    OptString `json:"category"`
	Subcategory OptString `json:"subcategory"`
	ImageURL    string    `json:"imageUrl"`
	Tags        []string  `json:"tags"`
	IsDraft     bool      `json:"isDraft"`
}

type AdPatch struct {
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	Price       Price     `json:"price"`
	Location    *string   `json:"location"`
	LocationID  OptString `json:"locationId"`
	Category    OptString `json:"category"`
	Subcategory OptString `json:"subcategory"`
	ImageURL    *string   `json:"imageUrl"`
	Tags        *[]string `json:"tags"`
	IsDraft     *bool     `json:"isDraft"`
}

func validPrice(p Price) error {
	if !p.Set {
		return errs.Validation("price is required")
	}
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || p.Value < 0 {
		return errs.Validation("price must be a non-negative number")
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func checkAdLens(title, location, imageURL string) error {
	if err := checkLen("title", title, maxTitleLen); err != nil {
		return err
	}
	if err := checkLen("location", location, maxLocationLen); err != nil {
		return err
	}
	return checkLen("imageUrl", imageURL, maxImageURLLen)
}

func (s *AdService) Create(ctx context.Context, ownerID string, in AdInput) (*domain.Ad, error) {
	title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if title == "" {
		return nil, errs.Validation("title is required")
	}
	if content == "" {
		return nil, errs.Validation("content is required")
	}
	if err := validPrice(in.Price); err != nil {
		return nil, err
	}
	location, imageURL := strings.TrimSpace(in.Location), strings.TrimSpace(in.ImageURL)
	if err := checkAdLens(title, location, imageURL); err != nil {
		return nil, err
	}
	now := s.now()
	a := &domain.Ad{
		ID:          utils.NewID(),
		Title:       title,
		Content:     content,
		Price:       in.Price.Value,
		Location:    location,
		LocationID:  in.LocationID.Value,
		Category:    in.Category.Value,
		Subcategory: in.Subcategory.Value,
		ImageURL:    imageURL,
		Tags:        cleanTags(in.Tags),
		OwnerID:     ownerID,
		IsDraft:     in.IsDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.checkRefs(ctx, a); err != nil {
		return nil, err
	}
	if err := s.ads.Create(ctx, a); err != nil {
		return nil, errs.Internal("create ad failed", err)
	}
	adsCreated.WithLabelValues(strconv.FormatBool(a.IsDraft)).Inc()
	return a, nil
}

// checkRefs 类目必须是根节点，子类目必须挂在所给类目（或任一根）下，地区必须存在
func (s *AdService) checkRefs(ctx context.Context, a *domain.Ad) error {
	if a.Category != nil {
		n, err := s.categories.FindNode(ctx, *a.Category)
		if err != nil {
			return errs.Internal("lookup category failed", err)
		}
		if n == nil || !n.IsRoot() {
			return errs.Validation("unknown category")
		}
	}
	if a.Subcategory != nil {
		n, err := s.categories.FindNode(ctx, *a.Subcategory)
		if err != nil {
			return errs.Internal("lookup subcategory failed", err)
		}
		if n == nil || n.IsRoot() {
			return errs.Validation("unknown subcategory")
		}
		if a.Category != nil && *n.ParentID != *a.Category {
			return errs.Validation("subcategory does not belong to category")
		}
	}
	if a.LocationID != nil {
		n, err := s.locations.FindNode(ctx, *a.LocationID)
		if err != nil {
			return errs.Internal("lookup location failed", err)
		}
		if n == nil {
			return errs.Validation("unknown location")
		}
	}
	return nil
}

func (s *AdService) PublicFeed(ctx context.Context, f domain.FeedFilter) ([]domain.Ad, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultFeedLimit
	}
	if f.Limit > MaxFeedLimit {
		f.Limit = MaxFeedLimit
	}
	f.Category = strings.TrimSpace(f.Category)
	f.Subcategory = strings.TrimSpace(f.Subcategory)
	ads, err := s.ads.Feed(ctx, f)
	if err != nil {
		return nil, errs.Internal("load feed failed", err)
	}
	return normalize(ads), nil
}

func (s *AdService) Owned(ctx context.Context, ownerID string) ([]domain.Ad, error) {
	ads, err := s.ads.ByOwner(ctx, ownerID)
	if err != nil {
		return nil, errs.Internal("load ads failed", err)
	}
	return normalize(ads), nil
}

// GetByID 草稿与不存在对非作者不可区分，都是 404
func (s *AdService) GetByID(ctx context.Context, id, requesterID string) (*domain.Ad, error) {
	if !utils.IsID(id) {
		return nil, errs.NotFound("ad not found")
	}
	a, err := s.ads.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Internal("load ad failed", err)
	}
	if a == nil || !a.VisibleTo(requesterID) {
		return nil, errs.NotFound("ad not found")
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a, nil
}

// Update 他人的广告与不存在的广告同样返回 404
func (s *AdService) Update(ctx context.Context, id, ownerID string, in AdPatch) (*domain.Ad, error) {
	if !utils.IsID(id) {
		return nil, errs.NotFound("ad not found")
	}
	a, err := s.ads.FindOwned(ctx, id, ownerID)
	if err != nil {
		return nil, errs.Internal("load ad failed", err)
	}
	if a == nil {
		return nil, errs.NotFound("ad not found")
	}

	cols := []string{}
	if in.Title != nil {
		if a.Title = strings.TrimSpace(*in.Title); a.Title == "" {
			return nil, errs.Validation("title cannot be empty")
		}
		cols = append(cols, "title")
	}
	if in.Content != nil {
		if a.Content = strings.TrimSpace(*in.Content); a.Content == "" {
			return nil, errs.Validation("content cannot be empty")
		}
		cols = append(cols, "content")
	}
	if in.Price.Set {
		if err := validPrice(in.Price); err != nil {
			return nil, err
		}
		a.Price = in.Price.Value
		cols = append(cols, "price")
	}
	if in.Location != nil {
		a.Location = strings.TrimSpace(*in.Location)
		cols = append(cols, "location")
	}
	if in.LocationID.Set {
		a.LocationID = in.LocationID.Value
		cols = append(cols, "location_id")
	}
	if in.Category.Set {
		a.Category = in.Category.Value
		cols = append(cols, "category_id")
	}
	if in.Subcategory.Set {
		a.Subcategory = in.Subcategory.Value
		cols = append(cols, "subcategory_id")
	}
	if in.ImageURL != nil {
		a.ImageURL = strings.TrimSpace(*in.ImageURL)
		cols = append(cols, "image_url")
	}
	if in.Tags != nil {
		a.Tags = cleanTags(*in.Tags)
		cols = append(cols, "tags")
	}
	if in.IsDraft != nil {
		a.IsDraft = *in.IsDraft
		cols = append(cols, "is_draft")
	}
	if len(cols) == 0 {
		return a, nil
	}
	if err := checkAdLens(a.Title, a.Location, a.ImageURL); err != nil {
		return nil, err
	}
	if in.LocationID.Set || in.Category.Set || in.Subcategory.Set {
		if err := s.checkRefs(ctx, a); err != nil {
			return nil, err
		}
	}
	a.UpdatedAt = s.now()
	cols = append(cols, "updated_at")

	n, err := s.ads.UpdateOwned(ctx, a, cols)
	if err != nil {
		return nil, errs.Internal("update ad failed", err)
	}
	if n == 0 {
		return nil, errs.NotFound("ad not found")
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a, nil
}

// Delete 不级联收藏，悬空收藏在读取时过滤
func (s *AdService) Delete(ctx context.Context, id, ownerID string) error {
	if !utils.IsID(id) {
		return errs.NotFound("ad not found")
	}
	n, err := s.ads.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return errs.Internal("delete ad failed", err)
	}
	if n == 0 {
		return errs.NotFound("ad not found")
	}
	return nil
}

func normalize(ads []domain.Ad) []domain.Ad {
	if ads == nil {
		return []domain.Ad{}
	}
	for i := range ads {
		if ads[i].Tags == nil {
			ads[i].Tags = []string{}
		}
	}
	return ads
}
