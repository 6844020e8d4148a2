package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FabricRepository interface {
	Create(ctx context.Context, fabric *model.Fabric) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Fabric, error)
	FindByCode(ctx context.Context, code string) (*model.Fabric, error)
	List(ctx context.Context, page, limit int) ([]model.Fabric, int64, error)
	Update(ctx context.Context, fabric *model.Fabric) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type fabricRepository struct {
	db *gorm.DB
}

func NewFabricRepository(db *gorm.DB) FabricRepository {
	return &fabricRepository{db: db}
}

func (r *fabricRepository) Create(ctx context.Context, fabric *model.Fabric) error {
	return GetDB(ctx, r.db).Create(fabric).Error
}

func (r *fabricRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Fabric, error) {
	var fabric model.Fabric
	if err := GetDB(ctx, r.db).First(&fabric, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fabric, nil
}

func (r *fabricRepository) FindByCode(ctx context.Context, code string) (*model.Fabric, error) {
	var fabric model.Fabric
	if err := GetDB(ctx, r.db).First(&fabric, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &fabric, nil
}

func (r *fabricRepository) List(ctx context.Context, page, limit int) ([]model.Fabric, int64, error) {
	var fabrics []model.Fabric
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Fabric{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := db.Order("code ASC").Offset(offset).Limit(limit).Find(&fabrics).Error; err != nil {
		return nil, 0, err
	}

	return fabrics, total, nil
}

func (r *fabricRepository) Update(ctx context.Context, fabric *model.Fabric) error {
	return GetDB(ctx, r.db).Save(fabric).Error
}

func (r *fabricRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Fabric{}, "id = ?", id).Error
}
