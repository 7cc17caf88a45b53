package service

import (
	"context"
	"fmt"

	"tixbay/internal/models"
	"tixbay/internal/repository"
)

// StatsService serves read-only rollups for vendors and admins.
type StatsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

func (s *StatsService) VendorOverview(ctx context.Context, sellerEmail string) (*models.VendorOverviewResponse, error) {
	overview, err := s.statsRepo.VendorOverview(ctx, sellerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to compute vendor overview: %w", err)
	}
	return overview, nil
}

func (s *StatsService) PlatformStats(ctx context.Context) (*models.PlatformStatsResponse, error) {
	stats, err := s.statsRepo.PlatformStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute platform stats: %w", err)
	}
	return stats, nil
}
