package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteapp/internal/domain"
	"noteapp/internal/repo"
	"noteapp/internal/testutil"
	"noteapp/pkg/utils"
)

func TestFavoriteUniquePerUserAndAd(t *testing.T) {
	ctx := context.Background()
	r := repo.NewFavoriteRepo(testutil.NewDB(t))
	uid, adID := utils.NewID(), utils.NewID()

	require.NoError(t, r.Insert(ctx, &domain.Favorite{ID: utils.NewID(), UserID: uid, AdID: adID}))
	err := r.Insert(ctx, &domain.Favorite{ID: utils.NewID(), UserID: uid, AdID: adID})
	require.Error(t, err)
	assert.True(t, repo.IsDupKey(err))

	n, err := r.Count(ctx, uid, adID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// 另一个用户收藏同一广告不冲突
	require.NoError(t, r.Insert(ctx, &domain.Favorite{ID: utils.NewID(), UserID: utils.NewID(), AdID: adID}))
}

func TestFavoriteListNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := repo.NewFavoriteRepo(testutil.NewDB(t))
	uid := utils.NewID()
	base := time.Now()

	var ids []string
	for i := 0; i < 3; i++ {
		f := &domain.Favorite{ID: utils.NewID(), UserID: uid, AdID: utils.NewID(), CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, r.Insert(ctx, f))
		ids = append(ids, f.ID)
	}

	fs, err := r.ListByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, fs, 3)
	assert.Equal(t, ids[2], fs[0].ID)
	assert.Equal(t, ids[0], fs[2].ID)

	n, err := r.Delete(ctx, uid, fs[0].AdID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := r.Find(ctx, uid, fs[0].AdID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIsDupKey(t *testing.T) {
	assert.False(t, repo.IsDupKey(nil))
	assert.False(t, repo.IsDupKey(assert.AnError))
}
