package services

import (
	"context"
	"fmt"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/pagination"
	"github.com/anonto42/yatube/internal/repositories"
)

type PostPage = pagination.Page[models.Post]

// ProfileView is everything the profile page shows about an author.
type ProfileView struct {
	Author         *models.User
	Page           *PostPage
	ShowFollowing  bool // viewer is authenticated
	Following      bool
	FollowersCount int64
	FollowingCount int64
}

// PostDetailView is a post with its comments, newest first.
type PostDetailView struct {
	Post        *models.Post
	Comments    []models.Comment
	AuthorPosts int64
}

// FeedService assembles the paginated post lists.
type FeedService struct {
	posts    repositories.PostRepository
	groups   repositories.GroupRepository
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	comments repositories.CommentRepository
	perPage  int
}

func NewFeedService(
	posts repositories.PostRepository,
	groups repositories.GroupRepository,
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	comments repositories.CommentRepository,
	perPage int,
) *FeedService {
	return &FeedService{
		posts:    posts,
		groups:   groups,
		users:    users,
		follows:  follows,
		comments: comments,
		perPage:  perPage,
	}
}

func (s *FeedService) PerPage() int { return s.perPage }

// Index is the home timeline: every post.
func (s *FeedService) Index(ctx context.Context, rawPage string) (*PostPage, error) {
	page, err := s.posts.PagePosts(ctx, rawPage, s.perPage)
	if err != nil {
		return nil, fmt.Errorf("index page: %w", err)
	}
	return page, nil
}

// GroupPosts lists the posts of the group with the given slug.
func (s *FeedService) GroupPosts(ctx context.Context, slug, rawPage string) (*models.Group, *PostPage, error) {
	group, err := s.groups.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, nil, notFound("group "+slug, err)
	}
	page, err := s.posts.PagePosts(ctx, rawPage, s.perPage, repositories.InGroup(group.ID))
	if err != nil {
		return nil, nil, fmt.Errorf("group page: %w", err)
	}
	return group, page, nil
}

// Profile lists the posts of one author. Following is only filled in for
// an authenticated viewer.
func (s *FeedService) Profile(ctx context.Context, username string, viewer *models.User, rawPage string) (*ProfileView, error) {
	author, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound("user "+username, err)
	}
	page, err := s.posts.PagePosts(ctx, rawPage, s.perPage, repositories.ByAuthor(author.ID))
	if err != nil {
		return nil, fmt.Errorf("profile page: %w", err)
	}

	view := &ProfileView{Author: author, Page: page}
	if view.FollowersCount, err = s.follows.GetFollowersCount(ctx, author.ID); err != nil {
		return nil, fmt.Errorf("followers count: %w", err)
	}
	if view.FollowingCount, err = s.follows.GetFollowingCount(ctx, author.ID); err != nil {
		return nil, fmt.Errorf("following count: %w", err)
	}
	if viewer != nil {
		view.ShowFollowing = true
		if view.Following, err = s.follows.IsFollowing(ctx, viewer.ID, author.ID); err != nil {
			return nil, fmt.Errorf("follow status: %w", err)
		}
	}
	return view, nil
}

// FollowFeed lists the posts of every author the viewer follows.
func (s *FeedService) FollowFeed(ctx context.Context, viewer *models.User, rawPage string) (*PostPage, error) {
	ids, err := s.follows.GetFollowingIDs(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("followed authors: %w", err)
	}
	page, err := s.posts.PagePosts(ctx, rawPage, s.perPage, repositories.ByAuthors(ids))
	if err != nil {
		return nil, fmt.Errorf("follow page: %w", err)
	}
	return page, nil
}

// PostDetail loads a post, its comments and the author's post count.
func (s *FeedService) PostDetail(ctx context.Context, id uint) (*PostDetailView, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, notFound(fmt.Sprintf("post %d", id), err)
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("comments of post %d: %w", id, err)
	}
	count, err := s.posts.CountPosts(ctx, repositories.ByAuthor(post.AuthorID))
	if err != nil {
		return nil, fmt.Errorf("author post count: %w", err)
	}
	return &PostDetailView{Post: post, Comments: comments, AuthorPosts: count}, nil
}
