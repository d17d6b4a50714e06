package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/testutil"
)

func TestIndexPageSize(t *testing.T) {
	f := newFixture(t)
	author := testutil.NewUser(t, f.db, "")
	posts := testutil.NewPosts(t, f.db, author, nil, 13)

	first, err := f.feed.Index(ctx(), "")
	require.NoError(t, err)
	assert.Equal(t, 10, first.Len())
	assert.Equal(t, posts[12].ID, first.Items[0].ID)

	second, err := f.feed.Index(ctx(), "2")
	require.NoError(t, err)
	assert.Equal(t, 3, second.Len())
}

func TestGroupPosts(t *testing.T) {
	f := newFixture(t)
	author := testutil.NewUser(t, f.db, "")
	group := testutil.NewGroup(t, f.db)
	other := testutil.NewGroup(t, f.db)
	in := testutil.NewPost(t, f.db, author, group, "")
	testutil.NewPost(t, f.db, author, other, "")
	testutil.NewPost(t, f.db, author, nil, "")

	got, page, err := f.feed.GroupPosts(ctx(), group.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.ID)
	require.Equal(t, 1, page.Len())
	assert.Equal(t, in.ID, page.Items[0].ID)

	_, _, err = f.feed.GroupPosts(ctx(), "missing", "")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	author := testutil.NewUser(t, f.db, "writer")
	viewer := testutil.NewUser(t, f.db, "")
	testutil.NewPost(t, f.db, author, nil, "older")
	testutil.NewPost(t, f.db, author, nil, "hello")
	testutil.NewPost(t, f.db, viewer, nil, "")

	anon, err := f.feed.Profile(ctx(), "writer", nil, "")
	require.NoError(t, err)
	assert.False(t, anon.ShowFollowing)
	assert.Equal(t, int64(2), anon.Page.Count)
	assert.Equal(t, "hello", anon.Page.Items[0].Text)

	_, err = f.follows.Follow(ctx(), viewer, "writer")
	require.NoError(t, err)

	view, err := f.feed.Profile(ctx(), "writer", viewer, "")
	require.NoError(t, err)
	assert.True(t, view.ShowFollowing)
	assert.True(t, view.Following)
	assert.Equal(t, int64(1), view.FollowersCount)
	assert.Equal(t, int64(0), view.FollowingCount)

	_, err = f.feed.Profile(ctx(), "nobody", nil, "")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestFollowFeed(t *testing.T) {
	f := newFixture(t)
	reader := testutil.NewUser(t, f.db, "")
	followed := testutil.NewUser(t, f.db, "")
	stranger := testutil.NewUser(t, f.db, "")
	post := testutil.NewPost(t, f.db, followed, nil, "")
	testutil.NewPost(t, f.db, stranger, nil, "")

	empty, err := f.feed.FollowFeed(ctx(), reader, "")
	require.NoError(t, err)
	assert.Zero(t, empty.Len())

	_, err = f.follows.Follow(ctx(), reader, followed.Username)
	require.NoError(t, err)

	page, err := f.feed.FollowFeed(ctx(), reader, "")
	require.NoError(t, err)
	require.Equal(t, 1, page.Len())
	assert.Equal(t, post.ID, page.Items[0].ID)

	other, err := f.feed.FollowFeed(ctx(), stranger, "")
	require.NoError(t, err)
	assert.Zero(t, other.Len())
}

func TestPostDetail(t *testing.T) {
	f := newFixture(t)
	author := testutil.NewUser(t, f.db, "")
	post := testutil.NewPost(t, f.db, author, nil, "")
	testutil.NewPost(t, f.db, author, nil, "")

	view, err := f.feed.PostDetail(ctx(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, view.Post.ID)
	assert.Equal(t, int64(2), view.AuthorPosts)
	assert.Empty(t, view.Comments)

	_, err = f.feed.PostDetail(ctx(), 9999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
