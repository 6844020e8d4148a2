package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductTypeRepository interface {
	Create(ctx context.Context, pt *model.ProductType) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductType, error)
	List(ctx context.Context, page, limit int) ([]model.ProductType, int64, error)
	Update(ctx context.Context, pt *model.ProductType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productTypeRepository struct {
	db *gorm.DB
}

func NewProductTypeRepository(db *gorm.DB) ProductTypeRepository {
	return &productTypeRepository{db: db}
}

func (r *productTypeRepository) Create(ctx context.Context, pt *model.ProductType) error {
	return GetDB(ctx, r.db).Create(pt).Error
}

func (r *productTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductType, error) {
	var pt model.ProductType
	if err := GetDB(ctx, r.db).First(&pt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pt, nil
}

func (r *productTypeRepository) List(ctx context.Context, page, limit int) ([]model.ProductType, int64, error) {
	var types []model.ProductType
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ProductType{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := db.Order("code ASC").Offset(offset).Limit(limit).Find(&types).Error; err != nil {
		return nil, 0, err
	}

	return types, total, nil
}

func (r *productTypeRepository) Update(ctx context.Context, pt *model.ProductType) error {
	return GetDB(ctx, r.db).Save(pt).Error
}

func (r *productTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.ProductType{}, "id = ?", id).Error
}
