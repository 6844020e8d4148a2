package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreAdjustmentRepository interface {
	Create(ctx context.Context, adj *model.StoreAdjustment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StoreAdjustment, error)
	// FindByIDForUpdate loads the adjustment under a row lock so
	// concurrent approve/reject calls serialize on the same row.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StoreAdjustment, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.StoreAdjustment, error)
	ExistsByOrderItemID(ctx context.Context, orderItemID uuid.UUID) (bool, error)
	Update(ctx context.Context, adj *model.StoreAdjustment) error
	List(ctx context.Context, status string, page, limit int) ([]model.StoreAdjustment, int64, error)
	CountPending(ctx context.Context) (int64, error)
}

type storeAdjustmentRepository struct {
	db *gorm.DB
}

func NewStoreAdjustmentRepository(db *gorm.DB) StoreAdjustmentRepository {
	return &storeAdjustmentRepository{db: db}
}

func (r *storeAdjustmentRepository) Create(ctx context.Context, adj *model.StoreAdjustment) error {
	return GetDB(ctx, r.db).Create(adj).Error
}

func (r *storeAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StoreAdjustment, error) {
	var adj model.StoreAdjustment
	if err := GetDB(ctx, r.db).First(&adj, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &adj, nil
}

func (r *storeAdjustmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StoreAdjustment, error) {
	var adj model.StoreAdjustment
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&adj, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &adj, nil
}

func (r *storeAdjustmentRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.StoreAdjustment, error) {
	var adj model.StoreAdjustment
	if err := GetDB(ctx, r.db).
		Preload("Fabric").
		Preload("ProductType").
		Preload("Requester").
		Preload("Resolver").
		Preload("StoreItem").
		First(&adj, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &adj, nil
}

func (r *storeAdjustmentRepository) ExistsByOrderItemID(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.StoreAdjustment{}).
		Where("order_item_id = ?", orderItemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *storeAdjustmentRepository) Update(ctx context.Context, adj *model.StoreAdjustment) error {
	return GetDB(ctx, r.db).Save(adj).Error
}

func (r *storeAdjustmentRepository) List(ctx context.Context, status string, page, limit int) ([]model.StoreAdjustment, int64, error) {
	var adjustments []model.StoreAdjustment
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.StoreAdjustment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	fetchQuery := db.
		Preload("Fabric").
		Preload("ProductType").
		Preload("Requester").
		Preload("Resolver").
		Preload("StoreItem")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&adjustments).Error; err != nil {
		return nil, 0, err
	}

	return adjustments, total, nil
}

func (r *storeAdjustmentRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.StoreAdjustment{}).
		Where("status = ?", model.AdjustmentPending).
		Count(&count).Error
	return count, err
}
