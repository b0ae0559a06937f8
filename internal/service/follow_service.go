package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users}
}

// Follow makes userID follow the author named username and returns the author.
// Following yourself or someone already followed changes nothing.
func (s *FollowService) Follow(ctx context.Context, userID uint, username string) (*models.User, bool, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if author.ID == userID {
		return author, false, nil
	}
	created, err := s.follows.Create(ctx, userID, author.ID)
	if err != nil {
		return nil, false, err
	}
	if created {
		observability.ContentWrites.WithLabelValues("follow").Inc()
	}
	return author, created, nil
}

// Unfollow removes the edge if there is one.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) (*models.User, bool, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	deleted, err := s.follows.Delete(ctx, userID, author.ID)
	if err != nil {
		return nil, false, err
	}
	if deleted {
		observability.ContentWrites.WithLabelValues("unfollow").Inc()
	}
	return author, deleted, nil
}
