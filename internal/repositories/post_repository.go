package repositories

import (
	"context"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/pagination"
	"gorm.io/gorm"
)

// Scope narrows the set of posts a page is cut from.
type Scope = func(*gorm.DB) *gorm.DB

// InGroup selects the posts published into a group.
func InGroup(groupID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", groupID)
	}
}

// ByAuthor selects the posts of one author.
func ByAuthor(authorID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}
}

// ByAuthors selects the posts of any of the given authors; an empty list selects nothing.
func ByAuthors(authorIDs []uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if len(authorIDs) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("posts.author_id IN ?", authorIDs)
	}
}

// withRelations joins author and group and applies the timeline ordering:
// newest first, later inserts first on equal timestamps.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.Joins("Author").Joins("Group").Order("posts.created_at DESC").Order("posts.id DESC")
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) (int64, error)
	PagePosts(ctx context.Context, rawPage string, perPage int, scopes ...Scope) (*pagination.Page[models.Post], error)
	CountPosts(ctx context.Context, scopes ...Scope) (int64, error)
}

type GormPostRepository struct {
	db *gorm.DB
}

func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error
}

// GetPostByID loads a post together with its author and group
func (r *GormPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Joins("Author").Joins("Group").Where("posts.id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost writes the editable columns; a nil GroupID clears the group.
func (r *GormPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Model(post).Select("text", "group_id", "image").Updates(post).Error
}

func (r *GormPostRepository) DeletePost(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	return res.RowsAffected, res.Error
}

func (r *GormPostRepository) PagePosts(ctx context.Context, rawPage string, perPage int, scopes ...Scope) (*pagination.Page[models.Post], error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(scopes...)
	return pagination.Paginate[models.Post](query, rawPage, perPage, withRelations)
}

func (r *GormPostRepository) CountPosts(ctx context.Context, scopes ...Scope) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(scopes...).Count(&count).Error
	return count, err
}
