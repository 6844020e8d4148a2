package repository

import (
	"context"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatisticsRepository serves the read-only dashboard aggregates over
// the store. No core logic lives here.
type StatisticsRepository interface {
	CountItemsByQuality(ctx context.Context) ([]model.QualityCount, error)
	CountItemsBySource(ctx context.Context) ([]model.SourceCount, error)
	TotalInventoryValue(ctx context.Context) (decimal.Decimal, error)
	TotalItemCounts(ctx context.Context) (items int64, quantity int64, err error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountItemsByQuality(ctx context.Context) ([]model.QualityCount, error) {
	var counts []model.QualityCount
	if err := GetDB(ctx, r.db).Model(&model.StoreItem{}).
		Select("quality, COUNT(*) as count, COALESCE(SUM(quantity), 0) as quantity").
		Group("quality").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *statisticsRepository) CountItemsBySource(ctx context.Context) ([]model.SourceCount, error) {
	var counts []model.SourceCount
	if err := GetDB(ctx, r.db).Model(&model.StoreItem{}).
		Select("source_type, COUNT(*) as count, COALESCE(SUM(quantity), 0) as quantity").
		Group("source_type").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *statisticsRepository) TotalInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Value decimal.Decimal
	}
	if err := GetDB(ctx, r.db).Model(&model.StoreItem{}).
		Select("COALESCE(SUM(quantity * original_unit_price), 0) as value").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Value, nil
}

func (r *statisticsRepository) TotalItemCounts(ctx context.Context) (int64, int64, error) {
	var result struct {
		Items    int64
		Quantity int64
	}
	if err := GetDB(ctx, r.db).Model(&model.StoreItem{}).
		Select("COUNT(*) as items, COALESCE(SUM(quantity), 0) as quantity").
		Scan(&result).Error; err != nil {
		return 0, 0, err
	}
	return result.Items, result.Quantity, nil
}
