package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteapp/internal/core/errs"
	"noteapp/internal/domain"
	"noteapp/pkg/utils"
)

func TestCreateAdPriceValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "Ann", "ann@example.com")

	_, err := e.ads.Create(ctx, owner.ID, AdInput{Title: "Bike", Content: "red", Price: NewPrice(-1)})
	assert.True(t, errs.Is(err, errs.CodeValidation))

	_, err = e.ads.Create(ctx, owner.ID, AdInput{Title: "Bike", Content: "red"})
	assert.True(t, errs.Is(err, errs.CodeValidation))

	_, err = e.ads.Create(ctx, owner.ID, AdInput{Title: "Bike", Content: "red", Price: NewPrice(math.Inf(1))})
	assert.True(t, errs.Is(err, errs.CodeValidation))

	a, err := e.ads.Create(ctx, owner.ID, AdInput{Title: "Bike", Content: "red", Price: NewPrice(0)})
	require.NoError(t, err)
	assert.Zero(t, a.Price)
	assert.True(t, utils.IsID(a.ID))
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, []string{}, a.Tags)

	_, err = e.ads.Create(ctx, owner.ID, AdInput{Title: " ", Content: "red", Price: NewPrice(1)})
	assert.True(t, errs.Is(err, errs.CodeValidation))
}

func TestAdFieldLengthLimits(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "Ann", "ann@example.com")

	long := strings.Repeat("x", maxTitleLen+1)
	_, err := e.ads.Create(ctx, owner.ID, AdInput{Title: long, Content: "c", Price: NewPrice(1)})
	assert.True(t, errs.Is(err, errs.CodeValidation))
	_, err = e.ads.Create(ctx, owner.ID, AdInput{Title: "t", Content: "c", Price: NewPrice(1), Location: strings.Repeat("l", maxLocationLen+1)})
	assert.True(t, errs.Is(err, errs.CodeValidation))
	_, err = e.ads.Create(ctx, owner.ID, AdInput{Title: "t", Content: "c", Price: NewPrice(1), ImageURL: strings.Repeat("u", maxImageURLLen+1)})
	assert.True(t, errs.Is(err, errs.CodeValidation))

	// 上限按字符计：200 个西里尔字母占 400 字节，仍然合法
	a, err := e.ads.Create(ctx, owner.ID, AdInput{Title: strings.Repeat("ж", maxTitleLen), Content: "c", Price: NewPrice(1)})
	require.NoError(t, err)

	_, err = e.ads.Update(ctx, a.ID, owner.ID, AdPatch{Title: &long})
	assert.True(t, errs.Is(err, errs.CodeValidation))
	got, err := e.ads.GetByID(ctx, a.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ж", maxTitleLen), got.Title)
}

func TestPublicFeedSearchNonASCII(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "Ann", "ann@example.com")
	e.createAd(t, owner.ID, "abc", false)
	flat := e.createAd(t, owner.ID, "Квартира", false)

	feed, err := e.ads.PublicFeed(ctx, domain.FeedFilter{Query: "квартира"})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, flat.ID, feed[0].ID)

	feed, err = e.ads.PublicFeed(ctx, domain.FeedFilter{Query: "a_c"})
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestAdInputJSON(t *testing.T) {
	var in AdInput
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t","content":"c","price":"12.5","category":null,"tags":["a","a"," b "]}`), &in))
	assert.True(t, in.Price.Set)
	assert.Equal(t, 12.5, in.Price.Value)
	assert.True(t, in.Category.Set)
	assert.Nil(t, in.Category.Value)
	assert.False(t, in.Subcategory.Set)
	assert.Equal(t, []string{"a", "b"}, cleanTags(in.Tags))

	var bad AdInput
	assert.Error(t, json.Unmarshal([]byte(`{"price":"abc"}`), &bad))
}

func TestCreateAdReferenceValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "Ann", "ann@example.com")

	root, err := e.categories.Create(ctx, NodeInput{Name: "Auto", Icon: "car"})
	require.NoError(t, err)
	other, err := e.categories.Create(ctx, NodeInput{Name: "Home", Icon: "house"})
	require.NoError(t, err)
	sub, err := e.categories.CreateChild(ctx, "Trucks", root.ID)
	require.NoError(t, err)
	city, err := e.locations.Create(ctx, NodeInput{Name: "Fergana"})
	require.NoError(t, err)

	base := AdInput{Title: "Truck", Content: "big", Price: NewPrice(100)}

	in := base
	in.Category, in.Subcategory, in.LocationID = SetString(root.ID), SetString(sub.ID), SetString(city.ID)
	_, err = e.ads.Create(ctx, owner.ID, in)
	require.NoError(t, err)

	// 子类目不属于给定类目
	in = base
	in.Category, in.Subcategory = SetString(other.ID), SetString(sub.ID)
	_, err = e.ads.Create(ctx, owner.ID, in)
	assert.True(t, errs.Is(err, errs.CodeValidation))

	// 类目必须是根
	in = base
	in.Category = SetString(sub.ID)
	_, err = e.ads.Create(ctx, owner.ID, in)
	assert.True(t, errs.Is(err, errs.CodeValidation))

	in = base
	in.LocationID = SetString(utils.NewID())
	_, err = e.ads.Create(ctx, owner.ID, in)
	assert.True(t, errs.Is(err, errs.CodeValidation))

	// 未给类目时子类目挂在任一根下即可
	in = base
	in.Subcategory = SetString(sub.ID)
	_, err = e.ads.Create(ctx, owner.ID, in)
	assert.NoError(t, err)
}

func TestDraftVisibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "Ann", "ann@example.com")
	other := e.register(t, "Bob", "bob@example.com")

	d := e.createAd(t, owner.ID, "Hidden", true)

	got, err := e.ads.GetByID(ctx, d.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = e.ads.GetByID(ctx, d.ID, other.ID)
	assert.True(t, errs.Is(err, errs.CodeNotFound))
	_, err = e.ads.GetByID(ctx, d.ID, "")
	assert.True(t, errs.Is(err, errs.CodeNotFound))
	_, err = e.ads.GetByID(ctx, "not-an-id", owner.ID)
	assert.True(t, errs.Is(err, errs.CodeNotFound))
	_, err = e.ads.GetByID(ctx, utils.NewID(), owner.ID)
	assert.True(t, errs.Is(err, errs.CodeNotFound))

	feed, err := e.ads.PublicFeed(ctx, domain.FeedFilter{})
	require.NoError(t, err)
	assert.Empty(t, feed)
	assert.NotNil(t, feed)

	mine, err := e.ads.Owned(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestUpdateAdOwnershipAndPartial(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "Ann", "ann@example.com")
	other := e.register(t, "Bob", "bob@example.com")
	root, err := e.categories.Create(ctx, NodeInput{Name: "Toys", Icon: "cube"})
	require.NoError(t, err)

	a, err := e.ads.Create(ctx, owner.ID, AdInput{
		Title: "Lego", Content: "box", Price: NewPrice(30), Category: SetString(root.ID), IsDraft: true,
	})
	require.NoError(t, err)

	title := "Lego set"
	_, err = e.ads.Update(ctx, a.ID, other.ID, AdPatch{Title: &title})
	assert.True(t, errs.Is(err, errs.CodeNotFound))

	publish := false
	got, err := e.ads.Update(ctx, a.ID, owner.ID, AdPatch{
		Title:    &title,
		IsDraft:  &publish,
		Category: OptString{Set: true}, // 显式 null 清空
	})
	require.NoError(t, err)
	assert.Equal(t, "Lego set", got.Title)
	assert.Equal(t, "box", got.Content)
	assert.Equal(t, 30.0, got.Price)
	assert.Nil(t, got.Category)
	assert.False(t, got.IsDraft)

	stored, err := e.ads.GetByID(ctx, a.ID, other.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Category)
	assert.Equal(t, "Lego set", stored.Title)

	_, err = e.ads.Update(ctx, a.ID, owner.ID, AdPatch{Price: NewPrice(-5)})
	assert.True(t, errs.Is(err, errs.CodeValidation))

	assert.True(t, errs.Is(e.ads.Delete(ctx, a.ID, other.ID), errs.CodeNotFound))
	require.NoError(t, e.ads.Delete(ctx, a.ID, owner.ID))
	assert.True(t, errs.Is(e.ads.Delete(ctx, a.ID, owner.ID), errs.CodeNotFound))
}

func TestPublicFeedNewestFirstWithLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "Ann", "ann@example.com")

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		ids = append(ids, e.createAd(t, owner.ID, title, false).ID)
	}

	feed, err := e.ads.PublicFeed(ctx, domain.FeedFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, ids[2], feed[0].ID)
	assert.Equal(t, ids[1], feed[1].ID)

	feed, err = e.ads.PublicFeed(ctx, domain.FeedFilter{Query: "SEC"})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, ids[1], feed[0].ID)
}
