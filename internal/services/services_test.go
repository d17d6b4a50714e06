package services_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/media"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/testutil"
	"github.com/anonto42/yatube/pkg/validators"
)

// smallGIF is a 2x1 GIF image.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

type fixture struct {
	db      *gorm.DB
	storage *media.LocalStorage
	feed    *services.FeedService
	posts   *services.PostService
	follows *services.FollowService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	storage, err := media.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	users := repositories.NewGormUserRepository(db)
	groups := repositories.NewGormGroupRepository(db)
	posts := repositories.NewGormPostRepository(db)
	comments := repositories.NewGormCommentRepository(db)
	follows := repositories.NewGormFollowRepository(db)
	v := validators.NewValidator()

	return &fixture{
		db:      db,
		storage: storage,
		feed:    services.NewFeedService(posts, groups, users, follows, comments, 10),
		posts:   services.NewPostService(posts, groups, comments, storage, v),
		follows: services.NewFollowService(users, follows),
	}
}

func gif() *services.Upload {
	return &services.Upload{Filename: "small.gif", Reader: bytes.NewReader(smallGIF)}
}

func ctx() context.Context { return context.Background() }
