package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperr"
	"backend/pkg/sku"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

// ManualAdjustmentRequest identifies the fabric either by id or by its
// catalog code; exactly one of the two must be set.
type ManualAdjustmentRequest struct {
	FabricID      string `json:"fabric_id"`
	FabricCode    string `json:"fabric_code"`
	ProductTypeID string `json:"product_type_id" binding:"required"`
	StyleCode     string `json:"style_code"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	Quality       string `json:"quality" binding:"required"`
	UnitPrice     string `json:"unit_price"`
	Reason        string `json:"reason" binding:"required"`
	Notes         string `json:"notes"`
}

type RejectAdjustmentRequest struct {
	Reason string `json:"reason"`
}

type StoreAdjustmentResponse struct {
	ID              string  `json:"id"`
	AdjustmentType  string  `json:"adjustment_type"`
	Status          string  `json:"status"`
	FabricCode      string  `json:"fabric_code"`
	ProductTypeCode string  `json:"product_type_code"`
	StyleCode       string  `json:"style_code"`
	Quantity        int     `json:"quantity"`
	Quality         string  `json:"quality"`
	SourceType      string  `json:"source_type"`
	OrderItemID     *string `json:"order_item_id"`
	OrderNumber     string  `json:"order_number"`
	Reason          string  `json:"reason"`
	Notes           string  `json:"notes"`
	RequesterName   string  `json:"requester_name"`
	ResolverName    string  `json:"resolver_name"`
	ResolvedAt      *string `json:"resolved_at"`
	StoreItemSKU    string  `json:"store_item_sku"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

// StoreAdjustmentService implements the two-phase stock intake
// workflow: pending adjustments are raised automatically from order
// events or manually by operators, and only an approval turns one
// into a store item plus its opening ledger entry.
type StoreAdjustmentService interface {
	// RequestAutoAdd raises a pending AUTO_ADD adjustment for one
	// order line. It is idempotent on the line id: if an adjustment
	// already references it, nothing is created and created=false.
	RequestAutoAdd(ctx context.Context, order *model.Order, item model.OrderItem, newStatus model.OrderStatus, actorID string) (adj *model.StoreAdjustment, created bool, err error)
	RequestManual(ctx context.Context, actorID string, req ManualAdjustmentRequest) (StoreAdjustmentResponse, error)
	Approve(ctx context.Context, id string, actorID string) (StoreItemResponse, error)
	Reject(ctx context.Context, id string, actorID string, reason string) (StoreAdjustmentResponse, error)
	Get(ctx context.Context, id string) (StoreAdjustmentResponse, error)
	List(ctx context.Context, status string, page, limit int) ([]StoreAdjustmentResponse, int64, error)
}

type storeAdjustmentService struct {
	adjustmentRepo  repository.StoreAdjustmentRepository
	itemRepo        repository.StoreItemRepository
	storeTxRepo     repository.StoreTransactionRepository
	fabricRepo      repository.FabricRepository
	productTypeRepo repository.ProductTypeRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	hub             *ws.Hub
}

func NewStoreAdjustmentService(
	adjustmentRepo repository.StoreAdjustmentRepository,
	itemRepo repository.StoreItemRepository,
	storeTxRepo repository.StoreTransactionRepository,
	fabricRepo repository.FabricRepository,
	productTypeRepo repository.ProductTypeRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) StoreAdjustmentService {
	return &storeAdjustmentService{
		adjustmentRepo:  adjustmentRepo,
		itemRepo:        itemRepo,
		storeTxRepo:     storeTxRepo,
		fabricRepo:      fabricRepo,
		productTypeRepo: productTypeRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		hub:             hub,
	}
}

// SKU collision retry bounds. All attempts colliding is not fatal:
// the last generated value is used and the unique index on sku is the
// final guard.
const (
	skuMaxAttempts   = 10
	skuRetryInterval = 5 * time.Millisecond
)

// qualityForSource maps the triggering order status to the proposed
// quality and source type: cancelled stock never shipped (NEW),
// returned stock has been handled (GOOD).
func qualityForSource(status model.OrderStatus) (model.StoreItemQuality, string) {
	if status == model.StatusCancelled {
		return model.QualityNew, model.SourceCancelledOrder
	}
	return model.QualityGood, model.SourceReturnedOrder
}

func (s *storeAdjustmentService) RequestAutoAdd(ctx context.Context, order *model.Order, item model.OrderItem, newStatus model.OrderStatus, actorID string) (*model.StoreAdjustment, bool, error) {
	if newStatus != model.StatusReturned && newStatus != model.StatusCancelled {
		return nil, false, apperr.InvalidArgumentf("auto add is only triggered by RETURNED or CANCELLED, got %s", newStatus)
	}

	exists, err := s.adjustmentRepo.ExistsByOrderItemID(ctx, item.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing adjustment: %w", err)
	}
	if exists {
		return nil, false, nil
	}

	quality, sourceType := qualityForSource(newStatus)
	actor := parseActorID(actorID)

	orderItemID := item.ID
	adjustment := &model.StoreAdjustment{
		AdjustmentType:    model.AdjustmentAutoAdd,
		Status:            model.AdjustmentPending,
		FabricID:          item.FabricID,
		ProductTypeID:     item.ProductTypeID,
		StyleCode:         item.StyleCode,
		Quantity:          item.Quantity,
		Quality:           quality,
		SourceType:        sourceType,
		OrderItemID:       &orderItemID,
		OrderNumber:       order.OrderNumber,
		OriginalUnitPrice: item.UnitPrice,
		Reason:            fmt.Sprintf("order %s moved to %s", order.OrderNumber, newStatus),
		RequestedBy:       actor,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.adjustmentRepo.Create(txCtx, adjustment); createErr != nil {
			return fmt.Errorf("failed to create adjustment: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"adjustment_type": model.AdjustmentAutoAdd,
			"order_number":    order.OrderNumber,
			"order_item_id":   item.ID.String(),
			"quantity":        item.Quantity,
			"quality":         quality,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionCreateAdjustment,
			EntityID:   adjustment.ID.String(),
			EntityName: order.OrderNumber,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.publish("store.adjustment.created", map[string]interface{}{
		"id":           adjustment.ID.String(),
		"order_number": order.OrderNumber,
		"type":         model.AdjustmentAutoAdd,
	})

	return adjustment, true, nil
}

func (s *storeAdjustmentService) RequestManual(ctx context.Context, actorID string, req ManualAdjustmentRequest) (StoreAdjustmentResponse, error) {
	quality, ok := model.ParseStoreItemQuality(req.Quality)
	if !ok {
		return StoreAdjustmentResponse{}, apperr.InvalidArgumentf("unknown quality %q", req.Quality)
	}
	if req.Quantity <= 0 {
		return StoreAdjustmentResponse{}, apperr.InvalidArgumentf("quantity must be positive, got %d", req.Quantity)
	}

	fabric, err := s.resolveFabric(ctx, req.FabricID, req.FabricCode)
	if err != nil {
		return StoreAdjustmentResponse{}, err
	}
	productTypeID, err := uuid.Parse(req.ProductTypeID)
	if err != nil {
		return StoreAdjustmentResponse{}, apperr.InvalidArgumentf("invalid product type id %q", req.ProductTypeID)
	}

	if _, err := s.productTypeRepo.FindByID(ctx, productTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StoreAdjustmentResponse{}, apperr.NotFoundf("product type %s", req.ProductTypeID)
		}
		return StoreAdjustmentResponse{}, fmt.Errorf("failed to load product type: %w", err)
	}

	unitPrice := decimal.Zero
	if req.UnitPrice != "" {
		unitPrice, err = decimal.NewFromString(req.UnitPrice)
		if err != nil {
			return StoreAdjustmentResponse{}, apperr.InvalidArgumentf("invalid unit price %q", req.UnitPrice)
		}
	}

	actor := parseActorID(actorID)
	adjustment := &model.StoreAdjustment{
		AdjustmentType:    model.AdjustmentManualEntry,
		Status:            model.AdjustmentPending,
		FabricID:          fabric.ID,
		ProductTypeID:     productTypeID,
		StyleCode:         req.StyleCode,
		Quantity:          req.Quantity,
		Quality:           quality,
		SourceType:        model.SourceManualEntry,
		OriginalUnitPrice: unitPrice,
		Reason:            req.Reason,
		Notes:             req.Notes,
		RequestedBy:       actor,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.adjustmentRepo.Create(txCtx, adjustment); createErr != nil {
			return fmt.Errorf("failed to create adjustment: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"adjustment_type": model.AdjustmentManualEntry,
			"quantity":        req.Quantity,
			"quality":         quality,
			"reason":          req.Reason,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionCreateAdjustment,
			EntityID:   adjustment.ID.String(),
			EntityName: string(quality),
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return StoreAdjustmentResponse{}, err
	}

	s.publish("store.adjustment.created", map[string]interface{}{
		"id":   adjustment.ID.String(),
		"type": model.AdjustmentManualEntry,
	})

	return s.Get(ctx, adjustment.ID.String())
}

func (s *storeAdjustmentService) Approve(ctx context.Context, id string, actorID string) (StoreItemResponse, error) {
	adjustmentID, err := uuid.Parse(id)
	if err != nil {
		return StoreItemResponse{}, apperr.InvalidArgumentf("invalid adjustment id %q", id)
	}
	actor := parseActorID(actorID)

	var item *model.StoreItem
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		adjustment, findErr := s.adjustmentRepo.FindByIDForUpdate(txCtx, adjustmentID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("adjustment %s", id)
			}
			return fmt.Errorf("failed to load adjustment: %w", findErr)
		}
		if adjustment.Status != model.AdjustmentPending {
			return apperr.InvalidStatef("adjustment %s is already %s", id, adjustment.Status)
		}

		fabric, fabricErr := s.fabricRepo.FindByID(txCtx, adjustment.FabricID)
		if fabricErr != nil {
			return fmt.Errorf("failed to load fabric: %w", fabricErr)
		}
		productType, ptErr := s.productTypeRepo.FindByID(txCtx, adjustment.ProductTypeID)
		if ptErr != nil {
			return fmt.Errorf("failed to load product type: %w", ptErr)
		}

		skuCode, skuErr := s.generateUniqueSKU(txCtx, fabric.Code, productType.Code)
		if skuErr != nil {
			return skuErr
		}

		item = &model.StoreItem{
			SKU:               skuCode,
			FabricID:          adjustment.FabricID,
			ProductTypeID:     adjustment.ProductTypeID,
			StyleCode:         adjustment.StyleCode,
			Quantity:          adjustment.Quantity,
			Quality:           adjustment.Quality,
			SourceType:        adjustment.SourceType,
			OrderItemID:       adjustment.OrderItemID,
			OrderNumber:       adjustment.OrderNumber,
			OriginalUnitPrice: adjustment.OriginalUnitPrice,
			Notes:             adjustment.Notes,
			CreatedBy:         actor,
		}
		if createErr := s.itemRepo.Create(txCtx, item); createErr != nil {
			return fmt.Errorf("failed to create store item: %w", createErr)
		}

		now := time.Now()
		adjustment.Status = model.AdjustmentApproved
		adjustment.ResolvedBy = actor
		adjustment.ResolvedAt = &now
		adjustment.StoreItemID = &item.ID
		if saveErr := s.adjustmentRepo.Update(txCtx, adjustment); saveErr != nil {
			return fmt.Errorf("failed to update adjustment: %w", saveErr)
		}

		qualityAfter := adjustment.Quality
		receive := &model.StoreTransaction{
			StoreItemID:  item.ID,
			Kind:         model.StoreTxReceive,
			Quantity:     adjustment.Quantity,
			QualityAfter: &qualityAfter,
			Notes:        adjustment.Reason,
			CreatedBy:    actor,
		}
		if txErr := s.storeTxRepo.Create(txCtx, receive); txErr != nil {
			return fmt.Errorf("failed to record receive transaction: %w", txErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"sku":      skuCode,
			"quantity": adjustment.Quantity,
			"quality":  adjustment.Quality,
			"source":   adjustment.SourceType,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionApproveAdjustment,
			EntityID:   adjustment.ID.String(),
			EntityName: skuCode,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return StoreItemResponse{}, err
	}

	s.publish("store.adjustment.approved", map[string]interface{}{
		"adjustment_id": id,
		"store_item_id": item.ID.String(),
		"sku":           item.SKU,
	})

	loaded, err := s.itemRepo.FindByID(ctx, item.ID)
	if err != nil {
		return StoreItemResponse{}, fmt.Errorf("failed to reload store item: %w", err)
	}
	return toStoreItemResponse(*loaded), nil
}

func (s *storeAdjustmentService) Reject(ctx context.Context, id string, actorID string, reason string) (StoreAdjustmentResponse, error) {
	adjustmentID, err := uuid.Parse(id)
	if err != nil {
		return StoreAdjustmentResponse{}, apperr.InvalidArgumentf("invalid adjustment id %q", id)
	}
	actor := parseActorID(actorID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		adjustment, findErr := s.adjustmentRepo.FindByIDForUpdate(txCtx, adjustmentID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("adjustment %s", id)
			}
			return fmt.Errorf("failed to load adjustment: %w", findErr)
		}
		if adjustment.Status != model.AdjustmentPending {
			return apperr.InvalidStatef("adjustment %s is already %s", id, adjustment.Status)
		}

		now := time.Now()
		adjustment.Status = model.AdjustmentRejected
		adjustment.ResolvedBy = actor
		adjustment.ResolvedAt = &now
		if reason != "" {
			if adjustment.Notes != "" {
				adjustment.Notes += "\n"
			}
			adjustment.Notes += "rejected: " + reason
		}
		if saveErr := s.adjustmentRepo.Update(txCtx, adjustment); saveErr != nil {
			return fmt.Errorf("failed to update adjustment: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"reason": reason,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionRejectAdjustment,
			EntityID:   adjustment.ID.String(),
			EntityName: adjustment.OrderNumber,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return StoreAdjustmentResponse{}, err
	}

	s.publish("store.adjustment.rejected", map[string]interface{}{
		"adjustment_id": id,
	})

	return s.Get(ctx, id)
}

func (s *storeAdjustmentService) Get(ctx context.Context, id string) (StoreAdjustmentResponse, error) {
	adjustmentID, err := uuid.Parse(id)
	if err != nil {
		return StoreAdjustmentResponse{}, apperr.InvalidArgumentf("invalid adjustment id %q", id)
	}

	adjustment, err := s.adjustmentRepo.FindByIDWithRelations(ctx, adjustmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StoreAdjustmentResponse{}, apperr.NotFoundf("adjustment %s", id)
		}
		return StoreAdjustmentResponse{}, fmt.Errorf("failed to load adjustment: %w", err)
	}
	return toStoreAdjustmentResponse(*adjustment), nil
}

func (s *storeAdjustmentService) List(ctx context.Context, status string, page, limit int) ([]StoreAdjustmentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	adjustments, total, err := s.adjustmentRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list adjustments: %w", err)
	}

	result := make([]StoreAdjustmentResponse, 0, len(adjustments))
	for _, a := range adjustments {
		result = append(result, toStoreAdjustmentResponse(a))
	}
	return result, total, nil
}

// resolveFabric loads the fabric reference for a manual adjustment.
// Callers identify it by id or by its catalog code, not both.
func (s *storeAdjustmentService) resolveFabric(ctx context.Context, id, code string) (*model.Fabric, error) {
	switch {
	case id != "" && code != "":
		return nil, apperr.InvalidArgumentf("provide either fabric_id or fabric_code, not both")
	case id != "":
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
		return fabric, nil
	case code != "":
		fabric, err := s.fabricRepo.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFoundf("fabric with code %q", code)
			}
			return nil, fmt.Errorf("failed to load fabric: %w", err)
		}
		return fabric, nil
	default:
		return nil, apperr.InvalidArgumentf("fabric_id or fabric_code is required")
	}
}

func (s *storeAdjustmentService) generateUniqueSKU(ctx context.Context, fabricCode, productTypeCode string) (string, error) {
	var code string
	for attempt := 0; attempt < skuMaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(skuRetryInterval)
		}
		code = sku.Generate(fabricCode, productTypeCode)
		exists, err := s.itemRepo.ExistsBySKU(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check sku uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
		log.Printf("sku %s already taken (attempt %d/%d), regenerating", code, attempt+1, skuMaxAttempts)
	}
	return code, nil
}

func (s *storeAdjustmentService) publish(event string, data interface{}) {
	broadcast(s.hub, event, data)
}

// --- Helpers ---

func parseActorID(actorID string) *uuid.UUID {
	if parsed, err := uuid.Parse(actorID); err == nil {
		return &parsed
	}
	return nil
}

func toStoreAdjustmentResponse(a model.StoreAdjustment) StoreAdjustmentResponse {
	resp := StoreAdjustmentResponse{
		ID:              a.ID.String(),
		AdjustmentType:  a.AdjustmentType,
		Status:          a.Status,
		FabricCode:      a.Fabric.Code,
		ProductTypeCode: a.ProductType.Code,
		StyleCode:       a.StyleCode,
		Quantity:        a.Quantity,
		Quality:         string(a.Quality),
		SourceType:      a.SourceType,
		OrderNumber:     a.OrderNumber,
		Reason:          a.Reason,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}

	if a.OrderItemID != nil {
		s := a.OrderItemID.String()
		resp.OrderItemID = &s
	}
	if a.Requester != nil {
		resp.RequesterName = a.Requester.Username
	}
	if a.Resolver != nil {
		resp.ResolverName = a.Resolver.Username
	}
	if a.ResolvedAt != nil {
		s := a.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &s
	}
	if a.StoreItem != nil {
		resp.StoreItemSKU = a.StoreItem.SKU
	}
	return resp
}
