// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/pkg/config"
)

var seq atomic.Uint64

// NewDB opens a fresh migrated in-memory SQLite database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQL("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewUser stores a user. An empty username gets a generated one.
func NewUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	if username == "" {
		username = fmt.Sprintf("%s%d", gofakeit.Username(), seq.Add(1))
	}
	user := &models.User{Username: username, Email: gofakeit.Email()}
	require.NoError(t, db.Create(user).Error)
	return user
}

// NewGroup stores a group with a generated unique slug.
func NewGroup(t testing.TB, db *gorm.DB) *models.Group {
	t.Helper()
	n := seq.Add(1)
	group := &models.Group{
		Title:       fmt.Sprintf("%s %d", gofakeit.Word(), n),
		Slug:        fmt.Sprintf("group-%d", n),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

// NewPost stores a post by author, optionally in group. An empty text gets
// a generated sentence.
func NewPost(t testing.TB, db *gorm.DB, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	if text == "" {
		text = gofakeit.Paragraph(1, 1, 10, " ")
	}
	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Omit("Author", "Group").Create(post).Error)
	return post
}

// NewPosts stores n posts by author, one second apart, oldest first.
func NewPosts(t testing.TB, db *gorm.DB, author *models.User, group *models.Group, n int) []*models.Post {
	t.Helper()
	start := time.Now().Add(-time.Duration(n) * time.Second)
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		post := &models.Post{
			Text:      fmt.Sprintf("post %d %s", i, gofakeit.Paragraph(1, 1, 5, " ")),
			AuthorID:  author.ID,
			CreatedAt: start.Add(time.Duration(i) * time.Second),
		}
		if group != nil {
			post.GroupID = &group.ID
		}
		require.NoError(t, db.Omit("Author", "Group").Create(post).Error)
		posts = append(posts, post)
	}
	return posts
}
