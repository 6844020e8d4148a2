package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreTransactionRepository persists the append-only store ledger.
// There is deliberately no update or delete.
type StoreTransactionRepository interface {
	Create(ctx context.Context, tx *model.StoreTransaction) error
	ListByItem(ctx context.Context, storeItemID uuid.UUID, page, limit int) ([]model.StoreTransaction, int64, error)
}

type storeTransactionRepository struct {
	db *gorm.DB
}

func NewStoreTransactionRepository(db *gorm.DB) StoreTransactionRepository {
	return &storeTransactionRepository{db: db}
}

func (r *storeTransactionRepository) Create(ctx context.Context, tx *model.StoreTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *storeTransactionRepository) ListByItem(ctx context.Context, storeItemID uuid.UUID, page, limit int) ([]model.StoreTransaction, int64, error) {
	var transactions []model.StoreTransaction
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.StoreTransaction{}).
		Where("store_item_id = ?", storeItemID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := db.
		Where("store_item_id = ?", storeItemID).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}
