package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"noteapp/internal/core/auth"
	"noteapp/internal/domain"
	"noteapp/internal/repo"
	"noteapp/internal/testutil"
)

type env struct {
	db         *gorm.DB
	auth       *AuthService
	users      *UserService
	profiles   *ProfileService
	ads        *AdService
	favs       *FavoriteService
	categories *TaxonomyService
	locations  *TaxonomyService
	clock      time.Time
}

// tick 单调递增的时钟，保证 created_at 有先后
func (e *env) tick() time.Time {
	e.clock = e.clock.Add(time.Second)
	return e.clock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	e := &env{db: db, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	users := repo.NewUserRepo(db)
	profiles := repo.NewProfileRepo(db)
	ads := repo.NewAdRepo(db)

	e.auth = NewAuthService(users, auth.NewJWTer("test-secret", "noteapp", time.Hour))
	e.users = NewUserService(users)
	e.profiles = NewProfileService(profiles)
	e.categories = NewTaxonomyService(repo.NewTaxonomyRepo(db, domain.CategoryTree), nil, zap.NewNop())
	e.locations = NewTaxonomyService(repo.NewTaxonomyRepo(db, domain.LocationTree), nil, zap.NewNop())
	e.ads = NewAdService(ads, e.categories, e.locations)
	e.favs = NewFavoriteService(repo.NewFavoriteRepo(db), ads, users, profiles)

	e.auth.now = e.tick
	e.profiles.now = e.tick
	e.categories.now = e.tick
	e.ads.now = e.tick
	e.favs.now = e.tick
	return e
}

func (e *env) register(t *testing.T, name, email string) *domain.User {
	t.Helper()
	s, err := e.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret1", Phone: "+100"})
	require.NoError(t, err)
	return s.User
}

func (e *env) createAd(t *testing.T, owner string, title string, draft bool) *domain.Ad {
	t.Helper()
	a, err := e.ads.Create(context.Background(), owner, AdInput{
		Title: title, Content: "about " + title, Price: NewPrice(10), IsDraft: draft,
	})
	require.NoError(t, err)
	return a
}
