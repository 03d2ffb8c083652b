package services

import (
	"context"
	"math"
	"time"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
	"github.com/vytor/vocabflash/internal/srs"
)

// LearnedIntervalDays is the review interval at which a card counts as learned.
const LearnedIntervalDays = srs.MaxIntervalDays

// StatsService handles learning statistics
type StatsService interface {
	Summary(ctx context.Context, userID int64, now time.Time) (*models.Stats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) Summary(ctx context.Context, userID int64, now time.Time) (*models.Stats, error) {
	log := logger.FromContext(ctx)
	log.Debug("building stats summary: user_id=%d", userID)

	total, err := s.statsRepo.TotalCards(ctx, userID)
	if err != nil {
		log.WithError(err).Error("failed to count cards")
		return nil, errors.NewStoreError(err)
	}

	completed, err := s.statsRepo.CompletedSessions(ctx, userID)
	if err != nil {
		log.WithError(err).Error("failed to count sessions")
		return nil, errors.NewStoreError(err)
	}

	due, err := s.statsRepo.DueCount(ctx, userID, now)
	if err != nil {
		log.WithError(err).Error("failed to count due cards")
		return nil, errors.NewStoreError(err)
	}

	modules, err := s.statsRepo.ModuleStats(ctx, userID, LearnedIntervalDays)
	if err != nil {
		log.WithError(err).Error("failed to get module stats")
		return nil, errors.NewStoreError(err)
	}
	for i := range modules {
		if modules[i].Reviewed > 0 {
			modules[i].Percent = int(math.Round(float64(modules[i].Learned) / float64(modules[i].Reviewed) * 100))
		}
	}
	if modules == nil {
		modules = []models.ModuleStats{}
	}

	return &models.Stats{
		TotalCards:        total,
		CompletedSessions: completed,
		DueToday:          due,
		Modules:           modules,
	}, nil
}
