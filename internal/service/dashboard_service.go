package service

import (
	"context"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
)

// DashboardData consolidates all metrics for the teacher dashboard.
type DashboardData struct {
	Summary     *repository.DashboardSummary `json:"summary"`
	RecentPolls []model.Poll                 `json:"recent_polls"`
}

// DashboardService handles teacher dashboard business logic.
type DashboardService struct {
	repo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// GetDashboardData fetches the headline counts and the latest polls.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	summary, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.GetRecentPolls(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &DashboardData{Summary: summary, RecentPolls: recent}, nil
}
