package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type ChangeQualityRequest struct {
	Quality string `json:"quality" binding:"required"`
	Notes   string `json:"notes"`
}

type AdjustQuantityRequest struct {
	Delta int    `json:"delta" binding:"required"`
	Notes string `json:"notes"`
}

type UseItemRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Notes    string `json:"notes"`
}

type WriteOffRequest struct {
	Notes string `json:"notes"`
}

type StoreItemResponse struct {
	ID                string  `json:"id"`
	SKU               string  `json:"sku"`
	FabricCode        string  `json:"fabric_code"`
	FabricName        string  `json:"fabric_name"`
	ProductTypeCode   string  `json:"product_type_code"`
	ProductTypeName   string  `json:"product_type_name"`
	StyleCode         string  `json:"style_code"`
	Quantity          int     `json:"quantity"`
	Quality           string  `json:"quality"`
	SourceType        string  `json:"source_type"`
	OrderItemID       *string `json:"order_item_id"`
	OrderNumber       string  `json:"order_number"`
	OriginalUnitPrice string  `json:"original_unit_price"`
	Notes             string  `json:"notes"`
	CreatedAt         string  `json:"created_at"`
}

type StoreTransactionResponse struct {
	ID            string  `json:"id"`
	StoreItemID   string  `json:"store_item_id"`
	Kind          string  `json:"kind"`
	Quantity      int     `json:"quantity"`
	QualityBefore *string `json:"quality_before"`
	QualityAfter  *string `json:"quality_after"`
	Notes         string  `json:"notes"`
	CreatedAt     string  `json:"created_at"`
}

// --- Interface ---

// StoreItemService mutates existing store items. Every successful
// mutation appends exactly one ledger transaction inside the same
// database transaction as the item update.
type StoreItemService interface {
	GetItem(ctx context.Context, id string) (StoreItemResponse, error)
	ListItems(ctx context.Context, filter repository.StoreItemFilter, page, limit int) ([]StoreItemResponse, int64, error)
	ListTransactions(ctx context.Context, itemID string, page, limit int) ([]StoreTransactionResponse, int64, error)
	ChangeQuality(ctx context.Context, id string, actorID string, req ChangeQualityRequest) (StoreItemResponse, error)
	AdjustQuantity(ctx context.Context, id string, actorID string, req AdjustQuantityRequest) (StoreItemResponse, error)
	Use(ctx context.Context, id string, actorID string, req UseItemRequest) (StoreItemResponse, error)
	WriteOff(ctx context.Context, id string, actorID string, req WriteOffRequest) (StoreItemResponse, error)
	// DeleteItem is the administrative escape hatch: it soft deletes
	// the item without writing a ledger entry.
	DeleteItem(ctx context.Context, id string, actorID string) error
}

type storeItemService struct {
	itemRepo    repository.StoreItemRepository
	storeTxRepo repository.StoreTransactionRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewStoreItemService(
	itemRepo repository.StoreItemRepository,
	storeTxRepo repository.StoreTransactionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) StoreItemService {
	return &storeItemService{
		itemRepo:    itemRepo,
		storeTxRepo: storeTxRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

func (s *storeItemService) GetItem(ctx context.Context, id string) (StoreItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return StoreItemResponse{}, apperr.InvalidArgumentf("invalid store item id %q", id)
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StoreItemResponse{}, apperr.NotFoundf("store item %s", id)
		}
		return StoreItemResponse{}, fmt.Errorf("failed to load store item: %w", err)
	}
	return toStoreItemResponse(*item), nil
}

func (s *storeItemService) ListItems(ctx context.Context, filter repository.StoreItemFilter, page, limit int) ([]StoreItemResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	items, total, err := s.itemRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list store items: %w", err)
	}

	result := make([]StoreItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, toStoreItemResponse(item))
	}
	return result, total, nil
}

func (s *storeItemService) ListTransactions(ctx context.Context, itemID string, page, limit int) ([]StoreTransactionResponse, int64, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, 0, apperr.InvalidArgumentf("invalid store item id %q", itemID)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	if _, err := s.itemRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperr.NotFoundf("store item %s", itemID)
		}
		return nil, 0, fmt.Errorf("failed to load store item: %w", err)
	}

	transactions, total, err := s.storeTxRepo.ListByItem(ctx, id, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list store transactions: %w", err)
	}

	result := make([]StoreTransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		result = append(result, toStoreTransactionResponse(tx))
	}
	return result, total, nil
}

func (s *storeItemService) ChangeQuality(ctx context.Context, id string, actorID string, req ChangeQualityRequest) (StoreItemResponse, error) {
	newQuality, ok := model.ParseStoreItemQuality(req.Quality)
	if !ok {
		return StoreItemResponse{}, apperr.InvalidArgumentf("unknown quality %q", req.Quality)
	}

	return s.mutate(ctx, id, actorID, model.ActionChangeItemQuality, func(item *model.StoreItem) (*model.StoreTransaction, error) {
		before := item.Quality
		item.Quality = newQuality
		return &model.StoreTransaction{
			Kind:          model.StoreTxQualityChange,
			Quantity:      0,
			QualityBefore: &before,
			QualityAfter:  &newQuality,
			Notes:         req.Notes,
		}, nil
	})
}

func (s *storeItemService) AdjustQuantity(ctx context.Context, id string, actorID string, req AdjustQuantityRequest) (StoreItemResponse, error) {
	return s.mutate(ctx, id, actorID, model.ActionAdjustItemQuantity, func(item *model.StoreItem) (*model.StoreTransaction, error) {
		newQuantity := item.Quantity + req.Delta
		if newQuantity < 0 {
			return nil, apperr.InvalidArgumentf("quantity cannot go negative (current %d, delta %d)", item.Quantity, req.Delta)
		}
		item.Quantity = newQuantity

		magnitude := req.Delta
		if magnitude < 0 {
			magnitude = -magnitude
		}
		return &model.StoreTransaction{
			Kind:     model.StoreTxAdjust,
			Quantity: magnitude,
			Notes:    req.Notes,
		}, nil
	})
}

func (s *storeItemService) Use(ctx context.Context, id string, actorID string, req UseItemRequest) (StoreItemResponse, error) {
	if req.Quantity <= 0 {
		return StoreItemResponse{}, apperr.InvalidArgumentf("quantity must be positive, got %d", req.Quantity)
	}

	return s.mutate(ctx, id, actorID, model.ActionUseItem, func(item *model.StoreItem) (*model.StoreTransaction, error) {
		if req.Quantity > item.Quantity {
			return nil, apperr.InvalidArgumentf("insufficient quantity (current %d, requested %d)", item.Quantity, req.Quantity)
		}
		item.Quantity -= req.Quantity
		return &model.StoreTransaction{
			Kind:     model.StoreTxUse,
			Quantity: req.Quantity,
			Notes:    req.Notes,
		}, nil
	})
}

func (s *storeItemService) WriteOff(ctx context.Context, id string, actorID string, req WriteOffRequest) (StoreItemResponse, error) {
	return s.mutate(ctx, id, actorID, model.ActionWriteOffItem, func(item *model.StoreItem) (*model.StoreTransaction, error) {
		before := item.Quality
		after := model.QualityWriteOff
		quantityBefore := item.Quantity

		item.Quantity = 0
		item.Quality = model.QualityWriteOff
		return &model.StoreTransaction{
			Kind:          model.StoreTxWriteOff,
			Quantity:      quantityBefore,
			QualityBefore: &before,
			QualityAfter:  &after,
			Notes:         req.Notes,
		}, nil
	})
}

func (s *storeItemService) DeleteItem(ctx context.Context, id string, actorID string) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return apperr.InvalidArgumentf("invalid store item id %q", id)
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("store item %s", id)
		}
		return fmt.Errorf("failed to load store item: %w", err)
	}

	actor := parseActorID(actorID)
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.itemRepo.Delete(txCtx, itemID); deleteErr != nil {
			return fmt.Errorf("failed to delete store item: %w", deleteErr)
		}

		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionDeleteStoreItem,
			EntityID:   item.ID.String(),
			EntityName: item.SKU,
			Details:    `{"deleted": true}`,
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

// mutate applies one ledger-producing change to a store item: lock the
// row, run the mutation, persist item + transaction + audit as one
// unit. The mutation callback returns the ledger entry skeleton; item
// id, actor and timestamps are filled in here.
func (s *storeItemService) mutate(ctx context.Context, id string, actorID string, action string, fn func(item *model.StoreItem) (*model.StoreTransaction, error)) (StoreItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return StoreItemResponse{}, apperr.InvalidArgumentf("invalid store item id %q", id)
	}
	actor := parseActorID(actorID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, findErr := s.itemRepo.FindByIDForUpdate(txCtx, itemID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("store item %s", id)
			}
			return fmt.Errorf("failed to load store item: %w", findErr)
		}

		entry, mutErr := fn(item)
		if mutErr != nil {
			return mutErr
		}

		if saveErr := s.itemRepo.Update(txCtx, item); saveErr != nil {
			return fmt.Errorf("failed to update store item: %w", saveErr)
		}

		entry.StoreItemID = item.ID
		entry.CreatedBy = actor
		if txErr := s.storeTxRepo.Create(txCtx, entry); txErr != nil {
			return fmt.Errorf("failed to record store transaction: %w", txErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"kind":     entry.Kind,
			"quantity": entry.Quantity,
			"notes":    entry.Notes,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     action,
			EntityID:   item.ID.String(),
			EntityName: item.SKU,
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

	broadcast(s.hub, "store.item.updated", map[string]interface{}{
		"id":     id,
		"action": action,
	})

	loaded, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return StoreItemResponse{}, fmt.Errorf("failed to reload store item: %w", err)
	}
	return toStoreItemResponse(*loaded), nil
}

// --- Helpers ---

func toStoreItemResponse(item model.StoreItem) StoreItemResponse {
	resp := StoreItemResponse{
		ID:                item.ID.String(),
		SKU:               item.SKU,
		FabricCode:        item.Fabric.Code,
		FabricName:        item.Fabric.Name,
		ProductTypeCode:   item.ProductType.Code,
		ProductTypeName:   item.ProductType.Name,
		StyleCode:         item.StyleCode,
		Quantity:          item.Quantity,
		Quality:           string(item.Quality),
		SourceType:        item.SourceType,
		OrderNumber:       item.OrderNumber,
		OriginalUnitPrice: item.OriginalUnitPrice.StringFixed(2),
		Notes:             item.Notes,
		CreatedAt:         item.CreatedAt.Format(time.RFC3339),
	}
	if item.OrderItemID != nil {
		s := item.OrderItemID.String()
		resp.OrderItemID = &s
	}
	return resp
}

func toStoreTransactionResponse(tx model.StoreTransaction) StoreTransactionResponse {
	resp := StoreTransactionResponse{
		ID:          tx.ID.String(),
		StoreItemID: tx.StoreItemID.String(),
		Kind:        tx.Kind,
		Quantity:    tx.Quantity,
		Notes:       tx.Notes,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.QualityBefore != nil {
		s := string(*tx.QualityBefore)
		resp.QualityBefore = &s
	}
	if tx.QualityAfter != nil {
		s := string(*tx.QualityAfter)
		resp.QualityAfter = &s
	}
	return resp
}
