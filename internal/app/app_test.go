package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"noteapp/internal/core/config"
	"noteapp/internal/testutil"
)

func init() { gin.SetMode(gin.TestMode) }

type harness struct {
	t     *testing.T
	app   *App
	api   http.Handler
	admin http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg, err := config.LoadE(t.TempDir() + "/missing.yaml")
	require.NoError(t, err)
	cfg.App.HTTP.RateLimitRPS = 0
	cfg.App.HTTP.PerIPRPS = 0
	cfg.Redis.Addr = ""

	a, err := New(cfg, zap.NewNop(), testutil.NewDB(t))
	require.NoError(t, err)
	return &harness{t: t, app: a, api: a.APIEngine(), admin: a.AdminEngine()}
}

func (h *harness) call(engine http.Handler, method, path, token string, in any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if in != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(in))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func (h *harness) do(method, path, token string, in any) *httptest.ResponseRecorder {
	h.t.Helper()
	return h.call(h.api, method, path, token, in)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func (h *harness) register(name, email string) session {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": name, "email": email, "password": "secret1"})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[session](h.t, w)
}

type adOut struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	IsDraft  bool     `json:"isDraft"`
	Owner    string   `json:"owner"`
	Tags     []string `json:"tags"`
	Category *string  `json:"category"`
}

type errOut struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func TestDraftPublishFeed(t *testing.T) {
	h := newHarness(t)
	ann := h.register("Ann", "ann@example.com")
	bob := h.register("Bob", "bob@example.com")

	w := h.do(http.MethodPost, "/api/ads", ann.Token, gin.H{"title": "Bike", "content": "red", "price": 100, "isDraft": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[adOut](t, w)
	assert.True(t, first.IsDraft)
	assert.Equal(t, ann.User.ID, first.Owner)

	w = h.do(http.MethodGet, "/api/ads/latest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	// 草稿：作者可见，其他人与匿名都是 404
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/ads/"+first.ID, ann.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/ads/"+first.ID, bob.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/ads/"+first.ID, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/ads/not-a-uuid", "", nil).Code)

	w = h.do(http.MethodPut, "/api/ads/"+first.ID, ann.Token, gin.H{"isDraft": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodPost, "/api/ads", ann.Token, gin.H{"title": "Helmet", "content": "new", "price": "15"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	second := decode[adOut](t, w)

	feed := decode[[]adOut](t, h.do(http.MethodGet, "/api/ads/latest", "", nil))
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
	assert.Equal(t, []string{}, feed[0].Tags)

	mine := decode[[]adOut](t, h.do(http.MethodGet, "/api/ads/my", ann.Token, nil))
	assert.Len(t, mine, 2)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/ads/my", "", nil).Code)

	// 他人不能改
	w = h.do(http.MethodPut, "/api/ads/"+first.ID, bob.Token, gin.H{"title": "Mine now"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAdValidation(t *testing.T) {
	h := newHarness(t)
	ann := h.register("Ann", "ann@example.com")

	w := h.do(http.MethodPost, "/api/ads", ann.Token, gin.H{"title": "Bike", "content": "red", "price": -1})
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decode[errOut](t, w)
	assert.Equal(t, 400, e.Code)
	assert.NotEmpty(t, e.Message)

	w = h.do(http.MethodPost, "/api/ads", ann.Token, gin.H{"title": strings.Repeat("t", 201), "content": "red", "price": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/api/ads", ann.Token, gin.H{"title": "Bike", "content": "red", "price": 0})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestFavoriteThenOwnerDeletesAd(t *testing.T) {
	h := newHarness(t)
	ann := h.register("Ann", "ann@example.com")
	bob := h.register("Bob", "bob@example.com")

	ad := decode[adOut](t, h.do(http.MethodPost, "/api/ads", ann.Token, gin.H{"title": "Desk", "content": "oak", "price": 40}))

	w := h.do(http.MethodPost, "/api/favorites/"+ad.ID, bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"added"}`, w.Body.String())
	assert.JSONEq(t, `{"isFavorite":true}`, h.do(http.MethodGet, "/api/favorites/"+ad.ID, bob.Token, nil).Body.String())

	type item struct {
		Ad     adOut `json:"ad"`
		Seller struct {
			DisplayName string `json:"displayName"`
		} `json:"seller"`
	}
	items := decode[[]item](t, h.do(http.MethodGet, "/api/favorites", bob.Token, nil))
	require.Len(t, items, 1)
	assert.Equal(t, ad.ID, items[0].Ad.ID)
	assert.Equal(t, "Ann", items[0].Seller.DisplayName)

	require.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/ads/"+ad.ID, ann.Token, nil).Code)

	w = h.do(http.MethodGet, "/api/favorites", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/api/favorites/"+ad.ID, bob.Token, nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/favorites/"+ad.ID, bob.Token, nil).Code)
}

func TestTaxonomyAdminGate(t *testing.T) {
	h := newHarness(t)
	bob := h.register("Bob", "bob@example.com")
	in := gin.H{"name": "Electronics", "icon": "bolt"}

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/categories", "", in).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/categories", bob.Token, in).Code)

	// 角色以库中为准，升级后旧 token 立即生效
	_, err := h.app.Users.Promote(context.Background(), "bob@example.com")
	require.NoError(t, err)

	w := h.do(http.MethodPost, "/api/categories", bob.Token, in)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	root := decode[struct {
		ID string `json:"id"`
	}](t, w)

	w = h.do(http.MethodPost, "/api/categories", bob.Token, gin.H{"name": "Phones", "parent": root.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/categories", bob.Token, in).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/categories", bob.Token, gin.H{"name": "   ", "icon": "x"}).Code)

	type tree []struct {
		ID       string `json:"id"`
		Icon     string `json:"icon"`
		Children []struct {
			Name string `json:"name"`
		} `json:"children"`
	}
	got := decode[tree](t, h.do(http.MethodGet, "/api/categories", "", nil))
	require.Len(t, got, 1)
	assert.Equal(t, "bolt", got[0].Icon)
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, "Phones", got[0].Children[0].Name)

	subs := decode[[]struct {
		Name string `json:"name"`
	}](t, h.do(http.MethodGet, "/api/categories/"+root.ID+"/subcategories", "", nil))
	require.Len(t, subs, 1)

	assert.Equal(t, http.StatusConflict, h.do(http.MethodDelete, "/api/categories/"+root.ID, bob.Token, nil).Code)

	w = h.do(http.MethodPost, "/api/locations", bob.Token, gin.H{"name": "Tashkent"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestStoreOutageIsServiceUnavailable(t *testing.T) {
	h := newHarness(t)
	ann := h.register("Ann", "ann@example.com")
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/auth/me", ann.Token, nil).Code)

	sqlDB, err := h.app.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := h.do(http.MethodGet, "/api/auth/me", ann.Token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 503, decode[errOut](t, w).Code)

	assert.Equal(t, http.StatusServiceUnavailable, h.do(http.MethodGet, "/health", "", nil).Code)
}

func TestAuthEndpoints(t *testing.T) {
	h := newHarness(t)
	h.register("Ann", "ann@example.com")

	w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = h.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Zed", "email": "zed@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	s := decode[session](t, w)
	assert.NotContains(t, w.Body.String(), "password")

	w = h.do(http.MethodPut, "/api/auth/me", s.Token, gin.H{"phone": "+998"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"phone":"+998"`)

	w = h.do(http.MethodGet, "/api/profile/settings", s.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodPut, "/api/profile/settings", s.Token, gin.H{"displayName": "Ann's"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"displayName":"Ann's"`)
}

func TestLegacyNotes(t *testing.T) {
	h := newHarness(t)
	ann := h.register("Ann", "ann@example.com")
	bob := h.register("Bob", "bob@example.com")

	type note struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Owner     string `json:"owner"`
		IsPublic  *bool  `json:"isPublic"`
		CreatedAt string `json:"createdAt"`
	}
	w := h.do(http.MethodPost, "/api/notes", ann.Token, gin.H{
		"title": "hello", "content": "world", "owner": bob.User.ID, "createdAt": "1999-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	n := decode[note](t, w)
	assert.Equal(t, ann.User.ID, n.Owner)
	assert.NotContains(t, n.CreatedAt, "1999")
	require.NotNil(t, n.IsPublic)
	assert.False(t, *n.IsPublic)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/notes", ann.Token, gin.H{"title": " "}).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/notes/"+n.ID, bob.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/public-notes/"+n.ID, "", nil).Code)

	w = h.do(http.MethodPut, "/api/notes/"+n.ID, ann.Token, gin.H{"isPublic": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "hello", decode[note](t, w).Title)

	pub := decode[[]note](t, h.do(http.MethodGet, "/api/public-notes", "", nil))
	require.Len(t, pub, 1)
	assert.Equal(t, n.ID, pub[0].ID)

	page := decode[struct {
		Total int64  `json:"total"`
		List  []note `json:"list"`
	}](t, h.do(http.MethodGet, "/api/notes", ann.Token, nil))
	assert.Equal(t, int64(1), page.Total)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/notes/"+n.ID, bob.Token, nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/notes/"+n.ID, ann.Token, nil).Code)
}

func TestAdminEngine(t *testing.T) {
	h := newHarness(t)
	ann := h.register("Ann", "ann@example.com")
	h.register("Bob", "bob@example.com")

	assert.Equal(t, http.StatusUnauthorized, h.call(h.admin, http.MethodGet, "/admin/v1/users", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, h.call(h.admin, http.MethodGet, "/admin/v1/users", ann.Token, nil).Code)

	_, err := h.app.Users.Promote(context.Background(), "ann@example.com")
	require.NoError(t, err)

	w := h.call(h.admin, http.MethodGet, "/admin/v1/users?q=bob", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[struct {
		Total int64 `json:"total"`
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}](t, w)
	require.Equal(t, int64(1), page.Total)

	w = h.call(h.admin, http.MethodPut, "/admin/v1/users/"+page.Items[0].ID+"/role", ann.Token, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	w = h.call(h.admin, http.MethodPut, "/admin/v1/users/"+page.Items[0].ID+"/role", ann.Token, gin.H{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.call(h.admin, http.MethodPost, "/admin/v1/taxonomy/categories/rebuild", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"kind":"category","links":0}`, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", "", nil).Code)

	ann := h.register("Ann", "ann@example.com")
	ad := decode[adOut](t, h.do(http.MethodPost, "/api/ads", ann.Token, gin.H{"title": "Cup", "content": "blue", "price": 1}))
	h.do(http.MethodPost, "/api/favorites/"+ad.ID, ann.Token, nil)

	w := h.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "favorite_toggles_total")
	assert.Contains(t, w.Body.String(), "http_requests_total")

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/nope", "", nil).Code)
}
