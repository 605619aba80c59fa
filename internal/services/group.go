package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/okleong/campscore/internal/common/clock"
	"github.com/okleong/campscore/internal/errors"
	"github.com/okleong/campscore/internal/logger"
	"github.com/okleong/campscore/internal/models"
	"github.com/okleong/campscore/internal/repository"
)

// GroupService handles roster business logic. Group ids are externally
// assigned and stable; only names may change, and names never affect
// scoring.
type GroupService struct {
	log   logger.Logger
	repo  repository.GroupRepository
	clock clock.Clock
}

// NewGroupService creates a new GroupService
func NewGroupService(log logger.Logger, repo repository.GroupRepository, clk clock.Clock) *GroupService {
	return &GroupService{log: log, repo: repo, clock: clk}
}

// ListGroups returns the full roster ordered by id
func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.repo.ListGroups(ctx)
}

// GetGroup retrieves one group
func (s *GroupService) GetGroup(ctx context.Context, id int) (*models.Group, error) {
	g, err := s.repo.GetGroup(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("group %d not found", id)
	}
	return g, err
}

// CreateGroup adds a group with an externally assigned id
func (s *GroupService) CreateGroup(ctx context.Context, id int, name string) (*models.Group, error) {
	if id <= 0 {
		return nil, errors.Validation("group id must be positive")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("group name must not be empty")
	}

	now := s.clock.Now()
	if err := s.repo.CreateGroup(ctx, id, name, now); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.Conflictf("group %d already exists", id)
		}
		return nil, err
	}

	s.log.Info("Group created", "group_id", id, "name", name)
	return &models.Group{ID: id, Name: name, CreatedAt: now}, nil
}

// RenameGroup changes a group's display name
func (s *GroupService) RenameGroup(ctx context.Context, id int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Validation("group name must not be empty")
	}
	err := s.repo.RenameGroup(ctx, id, name)
	if err == repository.ErrNotFound {
		return errors.NotFoundf("group %d not found", id)
	}
	if err == nil {
		s.log.Info("Group renamed", "group_id", id, "name", name)
	}
	return err
}

// SeedDefaultGroups creates groups 1..count when the roster is empty.
// Returns the number of groups created; zero when the roster already has
// entries or seeding is disabled.
func (s *GroupService) SeedDefaultGroups(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	existing, err := s.repo.CountGroups(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	now := s.clock.Now()
	for id := 1; id <= count; id++ {
		if err := s.repo.CreateGroup(ctx, id, fmt.Sprintf("Group %d", id), now); err != nil {
			return id - 1, err
		}
	}
	s.log.Info("Seeded default roster", "groups", count)
	return count, nil
}
