package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/repository"
	"visa-consultancy/backend/pkg/clock"
)

// DashboardService read-only statistics over every entity
type DashboardService interface {
	// GetStatistics computes a fresh snapshot; nothing is cached between calls
	GetStatistics(ctx context.Context) (*dto.DashboardResponse, error)
	// PortalHome record counts shown on the portal landing page
	PortalHome(ctx context.Context) (*dto.PortalHomeResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewDashboardService creates a DashboardService
func NewDashboardService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, clock: clk, logger: logger}
}

func (s *dashboardService) GetStatistics(ctx context.Context) (*dto.DashboardResponse, error) {
	anchor, err := s.repo.Dashboard.Anchor(ctx)
	if err != nil {
		s.logger.Error("load dashboard anchor failed", zap.Error(err))
		return nil, err
	}

	now := s.clock.Now()
	today := clock.DateOf(now)

	var stats *model.DashboardStatistics
	err = s.repo.ReadSnapshot(ctx, func(tx *repository.Repository) error {
		var err error
		stats, err = tx.Dashboard.Counts(ctx, clock.MonthStart(today), today)
		return err
	})
	if err != nil {
		s.logger.Error("compute dashboard statistics failed", zap.Error(err))
		return nil, err
	}
	stats.SuccessRate = model.ComputeSuccessRate(stats.ApprovedApplications, stats.RejectedApplications)

	return &dto.DashboardResponse{
		DashboardID:         anchor.DashboardID,
		Name:                anchor.Name,
		GeneratedAt:         now.Format(time.RFC3339),
		DashboardStatistics: *stats,
	}, nil
}

func (s *dashboardService) PortalHome(ctx context.Context) (*dto.PortalHomeResponse, error) {
	resp := &dto.PortalHomeResponse{}
	err := s.repo.ReadSnapshot(ctx, func(tx *repository.Repository) error {
		var err error
		all := repository.ListFilter{}
		if resp.StudentCount, err = tx.Student.Count(ctx, all); err != nil {
			return err
		}
		if resp.ApplicationCount, err = tx.Application.Count(ctx, all); err != nil {
			return err
		}
		if resp.DocumentCount, err = tx.Document.Count(ctx, all); err != nil {
			return err
		}
		resp.PaymentCount, err = tx.Payment.Count(ctx, all)
		return err
	})
	if err != nil {
		s.logger.Error("count portal records failed", zap.Error(err))
		return nil, err
	}
	return resp, nil
}
