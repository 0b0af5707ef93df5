package service

import (
	"context"
	"time"

	"noteapp/internal/core/errs"
	"noteapp/internal/domain"
	"noteapp/internal/repo"
	"noteapp/pkg/utils"
)

// favoriteStore 抽出来便于测试并发插入
type favoriteStore interface {
	Find(ctx context.Context, userID, adID string) (*domain.Favorite, error)
	Insert(ctx context.Context, f *domain.Favorite) error
	Delete(ctx context.Context, userID, adID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error)
}

type FavoriteService struct {
	favs     favoriteStore
	ads      *repo.AdRepo
	users    *repo.UserRepo
	profiles *repo.ProfileRepo
	now      func() time.Time
}

func NewFavoriteService(favs favoriteStore, ads *repo.AdRepo, users *repo.UserRepo, profiles *repo.ProfileRepo) *FavoriteService {
	return &FavoriteService{favs: favs, ads: ads, users: users, profiles: profiles, now: time.Now}
}

// visibleAd 不存在 / 他人草稿 / 非法 id 都是 404
func (s *FavoriteService) visibleAd(ctx context.Context, userID, adID string) error {
	if !utils.IsID(adID) {
		return errs.NotFound("ad not found")
	}
	a, err := s.ads.FindByID(ctx, adID)
	if err != nil {
		return errs.Internal("load ad failed", err)
	}
	if a == nil || !a.VisibleTo(userID) {
		return errs.NotFound("ad not found")
	}
	return nil
}

// Toggle 有则删，无则加；唯一索引冲突说明并发请求已插入，按 added 处理
func (s *FavoriteService) Toggle(ctx context.Context, userID, adID string) (string, error) {
	if err := s.visibleAd(ctx, userID, adID); err != nil {
		return "", err
	}
	cur, err := s.favs.Find(ctx, userID, adID)
	if err != nil {
		return "", errs.Internal("load favorite failed", err)
	}
	if cur != nil {
		if _, err := s.favs.Delete(ctx, userID, adID); err != nil {
			return "", errs.Internal("remove favorite failed", err)
		}
		favoriteToggles.WithLabelValues(domain.ToggleRemoved).Inc()
		return domain.ToggleRemoved, nil
	}
	if err := s.insert(ctx, userID, adID); err != nil {
		return "", err
	}
	favoriteToggles.WithLabelValues(domain.ToggleAdded).Inc()
	return domain.ToggleAdded, nil
}

func (s *FavoriteService) insert(ctx context.Context, userID, adID string) error {
	f := &domain.Favorite{ID: utils.NewID(), UserID: userID, AdID: adID, CreatedAt: s.now()}
	if err := s.favs.Insert(ctx, f); err != nil && !repo.IsDupKey(err) {
		return errs.Internal("add favorite failed", err)
	}
	return nil
}

// Add 幂等
func (s *FavoriteService) Add(ctx context.Context, userID, adID string) error {
	if err := s.visibleAd(ctx, userID, adID); err != nil {
		return err
	}
	cur, err := s.favs.Find(ctx, userID, adID)
	if err != nil {
		return errs.Internal("load favorite failed", err)
	}
	if cur != nil {
		return nil
	}
	return s.insert(ctx, userID, adID)
}

// Remove 幂等，不要求广告仍然存在，方便清理悬空收藏
func (s *FavoriteService) Remove(ctx context.Context, userID, adID string) error {
	if !utils.IsID(adID) {
		return errs.NotFound("ad not found")
	}
	if _, err := s.favs.Delete(ctx, userID, adID); err != nil {
		return errs.Internal("remove favorite failed", err)
	}
	return nil
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, adID string) (bool, error) {
	if !utils.IsID(adID) {
		return false, nil
	}
	cur, err := s.favs.Find(ctx, userID, adID)
	if err != nil {
		return false, errs.Internal("load favorite failed", err)
	}
	return cur != nil, nil
}

// List 收藏按时间倒序展开为广告 + 卖家信息；
// 广告已删除或已变为他人草稿的条目在读取时丢弃
func (s *FavoriteService) List(ctx context.Context, userID string) ([]domain.FavoriteItem, error) {
	favs, err := s.favs.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Internal("list favorites failed", err)
	}
	out := make([]domain.FavoriteItem, 0, len(favs))
	if len(favs) == 0 {
		return out, nil
	}

	adIDs := make([]string, 0, len(favs))
	for _, f := range favs {
		adIDs = append(adIDs, f.AdID)
	}
	ads, err := s.ads.FindByIDs(ctx, adIDs)
	if err != nil {
		return nil, errs.Internal("load ads failed", err)
	}
	byID := make(map[string]*domain.Ad, len(ads))
	ownerIDs := make([]string, 0, len(ads))
	for i := range ads {
		byID[ads[i].ID] = &ads[i]
		ownerIDs = append(ownerIDs, ads[i].OwnerID)
	}

	sellers, err := s.sellers(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	for _, f := range favs {
		a, ok := byID[f.AdID]
		if !ok || !a.VisibleTo(userID) {
			continue
		}
		pub := a.Public()
		if pub.Tags == nil {
			pub.Tags = []string{}
		}
		out = append(out, domain.FavoriteItem{
			FavoriteID:  f.ID,
			FavoritedAt: f.CreatedAt,
			Ad:          pub,
			Seller:      sellers[a.OwnerID],
		})
	}
	return out, nil
}

// sellers profile 字段优先，缺省回落到 user
func (s *FavoriteService) sellers(ctx context.Context, ownerIDs []string) (map[string]domain.Seller, error) {
	users, err := s.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, errs.Internal("load sellers failed", err)
	}
	profiles, err := s.profiles.FindByUserIDs(ctx, ownerIDs)
	if err != nil {
		return nil, errs.Internal("load profiles failed", err)
	}
	out := make(map[string]domain.Seller, len(ownerIDs))
	for _, u := range users {
		out[u.ID] = domain.Seller{ID: u.ID, Name: u.Name, DisplayName: u.Name, Phone: u.Phone}
	}
	for _, p := range profiles {
		sl := out[p.UserID]
		sl.ID = p.UserID
		if p.DisplayName != "" {
			sl.DisplayName = p.DisplayName
		}
		if p.Phone != "" {
			sl.Phone = p.Phone
		}
		sl.Image = p.Image
		sl.Website = p.Website
		out[p.UserID] = sl
	}
	return out, nil
}
