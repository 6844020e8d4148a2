package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreItemFilter narrows store item listings.
type StoreItemFilter struct {
	Quality    model.StoreItemQuality
	SourceType string
	FabricID   *uuid.UUID
	Search     string // matches SKU or order number
}

type StoreItemRepository interface {
	Create(ctx context.Context, item *model.StoreItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StoreItem, error)
	// FindByIDForUpdate loads the item under a row lock; callers must
	// hold an open transaction via TransactionManager.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StoreItem, error)
	Update(ctx context.Context, item *model.StoreItem) error
	ExistsBySKU(ctx context.Context, skuCode string) (bool, error)
	List(ctx context.Context, filter StoreItemFilter, page, limit int) ([]model.StoreItem, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type storeItemRepository struct {
	db *gorm.DB
}

func NewStoreItemRepository(db *gorm.DB) StoreItemRepository {
	return &storeItemRepository{db: db}
}

func (r *storeItemRepository) Create(ctx context.Context, item *model.StoreItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *storeItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StoreItem, error) {
	var item model.StoreItem
	if err := GetDB(ctx, r.db).
		Preload("Fabric").
		Preload("ProductType").
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *storeItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StoreItem, error) {
	var item model.StoreItem
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *storeItemRepository) Update(ctx context.Context, item *model.StoreItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *storeItemRepository) ExistsBySKU(ctx context.Context, skuCode string) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.StoreItem{}).
		Where("sku = ?", skuCode).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *storeItemRepository) List(ctx context.Context, filter StoreItemFilter, page, limit int) ([]model.StoreItem, int64, error) {
	var items []model.StoreItem
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Quality != "" {
			q = q.Where("quality = ?", filter.Quality)
		}
		if filter.SourceType != "" {
			q = q.Where("source_type = ?", filter.SourceType)
		}
		if filter.FabricID != nil {
			q = q.Where("fabric_id = ?", *filter.FabricID)
		}
		if filter.Search != "" {
			q = q.Where("sku ILIKE ? OR order_number ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.StoreItem{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := apply(db.Preload("Fabric").Preload("ProductType")).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *storeItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.StoreItem{}, "id = ?", id).Error
}
