package services

import (
	"context"
	"strings"

	"github.com/okleong/campscore/internal/errors"
	"github.com/okleong/campscore/internal/logger"
	"github.com/okleong/campscore/internal/models"
	"github.com/okleong/campscore/internal/repository"
)

// ActivityService handles activity schedule business logic. Activities
// are immutable once created; submissions and awards reference them by id.
type ActivityService struct {
	log  logger.Logger
	repo repository.ActivityRepository
}

// NewActivityService creates a new ActivityService
func NewActivityService(log logger.Logger, repo repository.ActivityRepository) *ActivityService {
	return &ActivityService{log: log, repo: repo}
}

// ListActivities returns all activities ordered by day then id
func (s *ActivityService) ListActivities(ctx context.Context) ([]models.Activity, error) {
	return s.repo.ListActivities(ctx)
}

// GetActivity retrieves one activity
func (s *ActivityService) GetActivity(ctx context.Context, id int) (*models.Activity, error) {
	a, err := s.repo.GetActivity(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("activity %d not found", id)
	}
	return a, err
}

// CreateActivity validates and adds a new activity
func (s *ActivityService) CreateActivity(ctx context.Context, displayName string, category models.ActivityCategory, day int) (*models.Activity, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, errors.Validation("activity name must not be empty")
	}
	if !category.Valid() {
		return nil, errors.Validationf("unknown activity category %q", category)
	}
	if day < 1 {
		return nil, errors.Validation("day must be at least 1")
	}

	id, err := s.repo.CreateActivity(ctx, displayName, category, day)
	if err != nil {
		return nil, err
	}

	s.log.Info("Activity created", "activity_id", id, "name", displayName, "category", category, "day", day)
	return &models.Activity{
		ID:          int(id),
		DisplayName: displayName,
		Category:    category,
		Day:         day,
	}, nil
}
