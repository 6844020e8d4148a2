package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
)

// StatisticsService serves the store dashboard: pure read queries over
// the store tables, no business logic.
type StatisticsService interface {
	GetStoreSummary(ctx context.Context) (model.StoreSummaryResponse, error)
}

type statisticsService struct {
	statsRepo      repository.StatisticsRepository
	adjustmentRepo repository.StoreAdjustmentRepository
	orderRepo      repository.OrderRepository
}

func NewStatisticsService(
	statsRepo repository.StatisticsRepository,
	adjustmentRepo repository.StoreAdjustmentRepository,
	orderRepo repository.OrderRepository,
) StatisticsService {
	return &statisticsService{
		statsRepo:      statsRepo,
		adjustmentRepo: adjustmentRepo,
		orderRepo:      orderRepo,
	}
}

func (s *statisticsService) GetStoreSummary(ctx context.Context) (model.StoreSummaryResponse, error) {
	var summary model.StoreSummaryResponse

	items, quantity, err := s.statsRepo.TotalItemCounts(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to count store items: %w", err)
	}
	summary.TotalItems = items
	summary.TotalQuantity = quantity

	value, err := s.statsRepo.TotalInventoryValue(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to compute inventory value: %w", err)
	}
	summary.TotalValue = value.StringFixed(2)

	pending, err := s.adjustmentRepo.CountPending(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to count pending adjustments: %w", err)
	}
	summary.PendingAdjustments = pending

	byQuality, err := s.statsRepo.CountItemsByQuality(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to count items by quality: %w", err)
	}
	summary.ItemsByQuality = byQuality

	bySource, err := s.statsRepo.CountItemsBySource(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to count items by source: %w", err)
	}
	summary.ItemsBySource = bySource

	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to count orders by status: %w", err)
	}
	summary.OrdersByStatus = byStatus

	return summary, nil
}
