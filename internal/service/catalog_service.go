package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type FabricRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Composition string `json:"composition"`
	Color       string `json:"color"`
}

type ProductTypeRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CatalogService manages the fabric and product-type reference data
// that orders and store items point at.
type CatalogService interface {
	CreateFabric(ctx context.Context, actorID string, req FabricRequest) (*model.Fabric, error)
	UpdateFabric(ctx context.Context, actorID string, id string, req FabricRequest) (*model.Fabric, error)
	DeleteFabric(ctx context.Context, actorID string, id string) error
	ListFabrics(ctx context.Context, page, limit int) ([]model.Fabric, int64, error)

	CreateProductType(ctx context.Context, actorID string, req ProductTypeRequest) (*model.ProductType, error)
	UpdateProductType(ctx context.Context, actorID string, id string, req ProductTypeRequest) (*model.ProductType, error)
	DeleteProductType(ctx context.Context, actorID string, id string) error
	ListProductTypes(ctx context.Context, page, limit int) ([]model.ProductType, int64, error)
}

type catalogService struct {
	fabricRepo      repository.FabricRepository
	productTypeRepo repository.ProductTypeRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
}

func NewCatalogService(
	fabricRepo repository.FabricRepository,
	productTypeRepo repository.ProductTypeRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) CatalogService {
	return &catalogService{
		fabricRepo:      fabricRepo,
		productTypeRepo: productTypeRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
	}
}

func (s *catalogService) CreateFabric(ctx context.Context, actorID string, req FabricRequest) (*model.Fabric, error) {
	fabric := &model.Fabric{
		Code:        req.Code,
		Name:        req.Name,
		Composition: req.Composition,
		Color:       req.Color,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.fabricRepo.Create(txCtx, fabric); createErr != nil {
			return fmt.Errorf("failed to create fabric: %w", createErr)
		}
		return s.logCatalogAction(txCtx, actorID, model.ActionCreateFabric, fabric.ID.String(), fabric.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return fabric, nil
}

func (s *catalogService) UpdateFabric(ctx context.Context, actorID string, id string, req FabricRequest) (*model.Fabric, error) {
	fabricID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.InvalidArgumentf("invalid fabric id %q", id)
	}

	fabric, err := s.fabricRepo.FindByID(ctx, fabricID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("fabric %s", id)
		}
		return nil, fmt.Errorf("failed to load fabric: %w", err)
	}

	fabric.Code = req.Code
	fabric.Name = req.Name
	fabric.Composition = req.Composition
	fabric.Color = req.Color

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.fabricRepo.Update(txCtx, fabric); saveErr != nil {
			return fmt.Errorf("failed to update fabric: %w", saveErr)
		}
		return s.logCatalogAction(txCtx, actorID, model.ActionUpdateFabric, fabric.ID.String(), fabric.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return fabric, nil
}

func (s *catalogService) DeleteFabric(ctx context.Context, actorID string, id string) error {
	fabricID, err := uuid.Parse(id)
	if err != nil {
		return apperr.InvalidArgumentf("invalid fabric id %q", id)
	}

	fabric, err := s.fabricRepo.FindByID(ctx, fabricID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("fabric %s", id)
		}
		return fmt.Errorf("failed to load fabric: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.fabricRepo.Delete(txCtx, fabricID); deleteErr != nil {
			return fmt.Errorf("failed to delete fabric: %w", deleteErr)
		}
		return s.logCatalogAction(txCtx, actorID, model.ActionDeleteFabric, fabric.ID.String(), fabric.Name, nil)
	})
}

func (s *catalogService) ListFabrics(ctx context.Context, page, limit int) ([]model.Fabric, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.fabricRepo.List(ctx, page, limit)
}

func (s *catalogService) CreateProductType(ctx context.Context, actorID string, req ProductTypeRequest) (*model.ProductType, error) {
	pt := &model.ProductType{
		Code: req.Code,
		Name: req.Name,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.productTypeRepo.Create(txCtx, pt); createErr != nil {
			return fmt.Errorf("failed to create product type: %w", createErr)
		}
		return s.logCatalogAction(txCtx, actorID, model.ActionCreateProductType, pt.ID.String(), pt.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *catalogService) UpdateProductType(ctx context.Context, actorID string, id string, req ProductTypeRequest) (*model.ProductType, error) {
	ptID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.InvalidArgumentf("invalid product type id %q", id)
	}

	pt, err := s.productTypeRepo.FindByID(ctx, ptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("product type %s", id)
		}
		return nil, fmt.Errorf("failed to load product type: %w", err)
	}

	pt.Code = req.Code
	pt.Name = req.Name

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.productTypeRepo.Update(txCtx, pt); saveErr != nil {
			return fmt.Errorf("failed to update product type: %w", saveErr)
		}
		return s.logCatalogAction(txCtx, actorID, model.ActionUpdateProductType, pt.ID.String(), pt.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *catalogService) DeleteProductType(ctx context.Context, actorID string, id string) error {
	ptID, err := uuid.Parse(id)
	if err != nil {
		return apperr.InvalidArgumentf("invalid product type id %q", id)
	}

	pt, err := s.productTypeRepo.FindByID(ctx, ptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("product type %s", id)
		}
		return fmt.Errorf("failed to load product type: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.productTypeRepo.Delete(txCtx, ptID); deleteErr != nil {
			return fmt.Errorf("failed to delete product type: %w", deleteErr)
		}
		return s.logCatalogAction(txCtx, actorID, model.ActionDeleteProductType, pt.ID.String(), pt.Name, nil)
	})
}

func (s *catalogService) ListProductTypes(ctx context.Context, page, limit int) ([]model.ProductType, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.productTypeRepo.List(ctx, page, limit)
}

func (s *catalogService) logCatalogAction(ctx context.Context, actorID, action, entityID, entityName string, payload interface{}) error {
	details := "{}"
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			details = string(raw)
		}
	}
	audit := &model.AuditLog{
		UserID:     parseActorID(actorID),
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
	}
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
