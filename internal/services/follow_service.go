package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/pkg/logger"
)

// FollowService creates and removes follow edges. Self-follows and repeated
// follows are silently skipped, unfollowing a missing edge is a no-op.
type FollowService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

func NewFollowService(users repositories.UserRepository, follows repositories.FollowRepository) *FollowService {
	return &FollowService{users: users, follows: follows}
}

// Follow subscribes follower to username and returns the resolved author.
func (s *FollowService) Follow(ctx context.Context, follower *models.User, username string) (*models.User, error) {
	author, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound("user "+username, err)
	}
	if author.ID == follower.ID {
		logger.Debug("self follow skipped", zap.Uint("user", follower.ID))
		return author, nil
	}
	// The unique index makes concurrent duplicates collapse into one row.
	if err := s.follows.CreateFollow(ctx, follower.ID, author.ID); err != nil {
		return nil, fmt.Errorf("create follow: %w", err)
	}
	return author, nil
}

// Unfollow removes the subscription of follower to username, if any.
func (s *FollowService) Unfollow(ctx context.Context, follower *models.User, username string) (*models.User, error) {
	author, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound("user "+username, err)
	}
	if err := s.follows.DeleteFollow(ctx, follower.ID, author.ID); err != nil {
		return nil, fmt.Errorf("delete follow: %w", err)
	}
	return author, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, follower, author *models.User) (bool, error) {
	return s.follows.IsFollowing(ctx, follower.ID, author.ID)
}
