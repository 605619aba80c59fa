package services

import (
	"context"
	"strings"

	"github.com/okleong/campscore/internal/common/clock"
	"github.com/okleong/campscore/internal/common/uuid"
	"github.com/okleong/campscore/internal/errors"
	"github.com/okleong/campscore/internal/logger"
	"github.com/okleong/campscore/internal/metrics"
	"github.com/okleong/campscore/internal/models"
	"github.com/okleong/campscore/internal/repository"
)

// PointsServiceRepository defines the repository methods needed by PointsService
type PointsServiceRepository interface {
	repository.GroupRepository
	repository.ActivityRepository
	repository.PointEventRepository
}

// PointsService handles the manual point entry path, bypassing ranking
type PointsService struct {
	log     logger.Logger
	repo    PointsServiceRepository
	clock   clock.Clock
	ids     uuid.Generator
	pub     Publisher
	metrics *metrics.Metrics
}

// NewPointsService creates a new PointsService
func NewPointsService(log logger.Logger, repo PointsServiceRepository, clk clock.Clock, ids uuid.Generator, pub Publisher, m *metrics.Metrics) *PointsService {
	return &PointsService{log: log, repo: repo, clock: clk, ids: ids, pub: pub, metrics: m}
}

// RecordPointParams carries one manual point adjustment
type RecordPointParams struct {
	GroupID    int
	ActivityID int
	Points     int
	Remarks    string
	AwardedBy  string
}

// RecordPointEvent validates and appends a signed point event. Positive
// points award, negative penalise; manual adjustments always carry
// remarks explaining why.
func (s *PointsService) RecordPointEvent(ctx context.Context, p RecordPointParams) (*models.PointEvent, error) {
	if p.Points == 0 {
		return nil, ErrZeroPoints
	}
	if strings.TrimSpace(p.Remarks) == "" {
		return nil, ErrRemarksRequired
	}
	if p.AwardedBy == "" {
		return nil, ErrSubmitterRequired
	}

	if _, err := s.repo.GetGroup(ctx, p.GroupID); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("group %d not found", p.GroupID)
		}
		return nil, err
	}
	if _, err := s.repo.GetActivity(ctx, p.ActivityID); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("activity %d not found", p.ActivityID)
		}
		return nil, err
	}

	ev := models.PointEvent{
		ID:         s.ids.New(),
		GroupID:    p.GroupID,
		ActivityID: p.ActivityID,
		AwardedBy:  p.AwardedBy,
		Points:     p.Points,
		Remarks:    p.Remarks,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.InsertPointEvent(ctx, ev); err != nil {
		return nil, err
	}

	s.metrics.PointEvents.WithLabelValues("manual").Inc()
	s.log.Info("Point event recorded",
		"group_id", p.GroupID, "activity_id", p.ActivityID,
		"points", p.Points, "awarded_by", p.AwardedBy)
	s.pub.PointRecorded(p.GroupID, p.ActivityID, p.Points)

	return &ev, nil
}

// ListGroupPoints returns a group's point history, newest first
func (s *PointsService) ListGroupPoints(ctx context.Context, groupID int) ([]models.PointEvent, error) {
	if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("group %d not found", groupID)
		}
		return nil, err
	}
	return s.repo.ListPointEventsForGroup(ctx, groupID)
}
