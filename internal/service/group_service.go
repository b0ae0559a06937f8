package service

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

// GroupInput describes a group for admin tooling.
type GroupInput struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

type GroupService struct {
	groups repository.GroupRepository
}

func NewGroupService(groups repository.GroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

func (in GroupInput) normalized() (*models.Group, error) {
	g := &models.Group{
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.TrimSpace(in.Slug),
		Description: strings.TrimSpace(in.Description),
	}
	if err := validation.ValidateGroupTitle(g.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateGroupSlug(g.Slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return g, nil
}

// Add creates a group. A duplicate slug is a validation error.
func (s *GroupService) Add(ctx context.Context, in GroupInput) (*models.Group, error) {
	g, err := in.normalized()
	if err != nil {
		return nil, err
	}
	if err := s.groups.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Import upserts every group by slug. Nothing is written if any entry is invalid.
func (s *GroupService) Import(ctx context.Context, ins []GroupInput) (int, error) {
	groups := make([]*models.Group, 0, len(ins))
	for _, in := range ins {
		g, err := in.normalized()
		if err != nil {
			return 0, err
		}
		groups = append(groups, g)
	}
	for i, g := range groups {
		if err := s.groups.Upsert(ctx, g); err != nil {
			return i, err
		}
	}
	return len(groups), nil
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}
