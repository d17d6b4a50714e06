package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/media"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/pkg/logger"
	"github.com/anonto42/yatube/pkg/validators"
)

const (
	msgInvalidGroup = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// StructValidator validates tagged form structs.
type StructValidator interface {
	Validate(i interface{}) error
}

// Upload is an image submitted with a post form.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// PostService is the write path for posts and comments.
type PostService struct {
	posts     repositories.PostRepository
	groups    repositories.GroupRepository
	comments  repositories.CommentRepository
	storage   media.Storage
	validator StructValidator
}

func NewPostService(
	posts repositories.PostRepository,
	groups repositories.GroupRepository,
	comments repositories.CommentRepository,
	storage media.Storage,
	validator StructValidator,
) *PostService {
	return &PostService{
		posts:     posts,
		groups:    groups,
		comments:  comments,
		storage:   storage,
		validator: validator,
	}
}

// Get loads a post with its author and group.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, notFound(fmt.Sprintf("post %d", id), err)
	}
	return post, nil
}

// Groups lists the groups a post can be published into.
func (s *PostService) Groups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Create validates the form and stores a new post by author. On field
// errors nothing is stored.
func (s *PostService) Create(ctx context.Context, author *models.User, form models.PostForm, image *Upload) (*models.Post, FieldErrors, error) {
	groupID, imgReader, ferrs, err := s.clean(ctx, &form, image)
	if err != nil || len(ferrs) > 0 {
		return nil, ferrs, err
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: author.ID,
		GroupID:  groupID,
	}
	if imgReader != nil {
		if post.Image, err = s.saveImage(ctx, image.Filename, imgReader); err != nil {
			return nil, nil, err
		}
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.removeImage(ctx, post.Image)
		return nil, nil, fmt.Errorf("create post: %w", err)
	}
	post.Author = *author
	logger.Info("post created", zap.Uint("post", post.ID), zap.Uint("author", author.ID))
	return post, nil, nil
}

// Edit applies the form to post id. Only the author may edit, anybody else
// gets ErrNotAuthor and the post is left as it was. A missing image keeps
// the current one.
func (s *PostService) Edit(ctx context.Context, editor *models.User, id uint, form models.PostForm, image *Upload) (*models.Post, FieldErrors, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if post.AuthorID != editor.ID {
		return post, nil, ErrNotAuthor
	}

	groupID, imgReader, ferrs, err := s.clean(ctx, &form, image)
	if err != nil || len(ferrs) > 0 {
		return post, ferrs, err
	}

	oldImage := post.Image
	post.Text = form.Text
	post.GroupID = groupID
	post.Group = nil
	if imgReader != nil {
		if post.Image, err = s.saveImage(ctx, image.Filename, imgReader); err != nil {
			return nil, nil, err
		}
	}

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if post.Image != oldImage {
			s.removeImage(ctx, post.Image)
		}
		return nil, nil, fmt.Errorf("update post %d: %w", id, err)
	}
	if post.Image != oldImage {
		s.removeImage(ctx, oldImage)
	}
	return post, nil, nil
}

// AddComment stores a comment by author on post postID.
//
// The submitted text is not rejected when it fails validation: the comment
// is saved as submitted and the failure is only logged.
func (s *PostService) AddComment(ctx context.Context, author *models.User, postID uint, form models.CommentForm) (*models.Comment, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if verr := s.validator.Validate(form); verr != nil {
		logger.Warn("saving comment that failed validation",
			zap.Uint("post", post.ID), zap.Any("errors", validators.FieldErrors(verr)))
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     form.Text,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = *author
	return comment, nil
}

// Delete removes a post together with its comments and image.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.posts.DeletePost(ctx, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	s.removeImage(ctx, post.Image)
	logger.Info("post deleted", zap.Uint("post", id))
	return nil
}

// clean normalises and validates a post form.
func (s *PostService) clean(ctx context.Context, form *models.PostForm, image *Upload) (*uint, io.Reader, FieldErrors, error) {
	form.Text = strings.TrimSpace(form.Text)

	ferrs := FieldErrors{}
	if err := s.validator.Validate(*form); err != nil {
		for field, msg := range validators.FieldErrors(err) {
			ferrs[field] = msg
		}
	}

	var groupID *uint
	if form.Group != 0 {
		group, err := s.groups.GetGroupByID(ctx, form.Group)
		switch {
		case err == nil:
			groupID = &group.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			ferrs["group"] = msgInvalidGroup
		default:
			return nil, nil, nil, fmt.Errorf("load group %d: %w", form.Group, err)
		}
	}

	var imgReader io.Reader
	if image != nil {
		r, _, err := media.DetectImage(image.Reader)
		switch {
		case err == nil:
			imgReader = r
		case errors.Is(err, media.ErrNotImage):
			ferrs["image"] = msgInvalidImage
		default:
			return nil, nil, nil, err
		}
	}

	if len(ferrs) > 0 {
		return nil, nil, ferrs, nil
	}
	return groupID, imgReader, nil, nil
}

func (s *PostService) saveImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	key := media.NewPostImageKey(filename)
	if err := s.storage.Save(ctx, key, r); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

func (s *PostService) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.Warn("failed to delete image", zap.String("key", key), zap.Error(err))
	}
}
