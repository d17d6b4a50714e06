package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/testutil"
)

func TestCreateFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewGormFollowRepository(db)
	user := testutil.NewUser(t, db, "")
	author := testutil.NewUser(t, db, "")

	require.NoError(t, repo.CreateFollow(ctx, user.ID, author.ID))
	require.NoError(t, repo.CreateFollow(ctx, user.ID, author.ID))

	var rows int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	following, err := repo.IsFollowing(ctx, user.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	reverse, err := repo.IsFollowing(ctx, author.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestFollowRejectsSelfEdge(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewGormFollowRepository(db)
	user := testutil.NewUser(t, db, "")

	assert.Error(t, repo.CreateFollow(ctx, user.ID, user.ID))
}

func TestFollowCountsAndIDs(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewGormFollowRepository(db)
	user := testutil.NewUser(t, db, "")
	a := testutil.NewUser(t, db, "")
	b := testutil.NewUser(t, db, "")

	require.NoError(t, repo.CreateFollow(ctx, user.ID, a.ID))
	require.NoError(t, repo.CreateFollow(ctx, user.ID, b.ID))
	require.NoError(t, repo.CreateFollow(ctx, a.ID, b.ID))

	ids, err := repo.GetFollowingIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, ids)

	followers, err := repo.GetFollowersCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers)

	following, err := repo.GetFollowingCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), following)

	require.NoError(t, repo.DeleteFollow(ctx, user.ID, b.ID))
	require.NoError(t, repo.DeleteFollow(ctx, user.ID, b.ID))
	followers, err = repo.GetFollowersCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
}
