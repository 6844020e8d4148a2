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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// LineAdjustmentResult reports the outcome of the auto-add fan-out for
// one order line. A line failing does not undo the status change or
// block the remaining lines.
type LineAdjustmentResult struct {
	OrderItemID  string `json:"order_item_id"`
	Created      bool   `json:"created"`
	AdjustmentID string `json:"adjustment_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

type OrderStatusUpdateResponse struct {
	OrderID        string                 `json:"order_id"`
	OrderNumber    string                 `json:"order_number"`
	PreviousStatus model.OrderStatus      `json:"previous_status"`
	Status         model.OrderStatus      `json:"status"`
	Notes          string                 `json:"notes"`
	LineResults    []LineAdjustmentResult `json:"line_results,omitempty"`
}

type OrderStatusHistoryResponse struct {
	ID        string            `json:"id"`
	Status    model.OrderStatus `json:"status"`
	Notes     string            `json:"notes"`
	ChangedBy string            `json:"changed_by"`
	Username  string            `json:"username"`
	CreatedAt string            `json:"created_at"`
}

// --- Interface ---

// OrderStatusService owns every order status mutation: it validates
// the transition against the graph, appends the history record, and
// when an order turns RETURNED or CANCELLED raises one pending store
// adjustment per line.
type OrderStatusService interface {
	UpdateStatus(ctx context.Context, orderID string, actorID string, req UpdateOrderStatusRequest) (OrderStatusUpdateResponse, error)
	GetStatusHistory(ctx context.Context, orderID string) ([]OrderStatusHistoryResponse, error)
	ValidNextStatuses(current string) ([]model.OrderStatus, error)
}

type orderStatusService struct {
	orderRepo     repository.OrderRepository
	adjustmentSvc StoreAdjustmentService
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	hub           *ws.Hub
}

func NewOrderStatusService(
	orderRepo repository.OrderRepository,
	adjustmentSvc StoreAdjustmentService,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OrderStatusService {
	return &orderStatusService{
		orderRepo:     orderRepo,
		adjustmentSvc: adjustmentSvc,
		auditRepo:     auditRepo,
		txManager:     txManager,
		hub:           hub,
	}
}

func (s *orderStatusService) UpdateStatus(ctx context.Context, orderID string, actorID string, req UpdateOrderStatusRequest) (OrderStatusUpdateResponse, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return OrderStatusUpdateResponse{}, apperr.InvalidArgumentf("invalid order id %q", orderID)
	}

	newStatus, ok := model.ParseOrderStatus(req.Status)
	if !ok {
		return OrderStatusUpdateResponse{}, apperr.InvalidArgumentf("unknown order status %q", req.Status)
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderStatusUpdateResponse{}, apperr.NotFoundf("order %s", orderID)
		}
		return OrderStatusUpdateResponse{}, fmt.Errorf("failed to load order: %w", err)
	}

	previous := order.Status
	if !model.IsValidTransition(previous, newStatus) {
		return OrderStatusUpdateResponse{}, &model.StatusTransitionError{Current: previous, Attempted: newStatus}
	}

	actor := parseActorID(actorID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.orderRepo.UpdateStatus(txCtx, id, newStatus); updateErr != nil {
			return fmt.Errorf("failed to update order status: %w", updateErr)
		}

		history := &model.OrderStatusHistory{
			OrderID:   id,
			Status:    newStatus,
			Notes:     req.Notes,
			ChangedBy: actor,
		}
		if historyErr := s.orderRepo.AppendHistory(txCtx, history); historyErr != nil {
			return fmt.Errorf("failed to append status history: %w", historyErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"order_number": order.OrderNumber,
			"from":         previous,
			"to":           newStatus,
			"notes":        req.Notes,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionUpdateOrderStatus,
			EntityID:   order.ID.String(),
			EntityName: order.OrderNumber,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return OrderStatusUpdateResponse{}, err
	}

	resp := OrderStatusUpdateResponse{
		OrderID:        order.ID.String(),
		OrderNumber:    order.OrderNumber,
		PreviousStatus: previous,
		Status:         newStatus,
		Notes:          req.Notes,
	}

	// Returned and cancelled orders feed the store: raise one pending
	// adjustment per line, each in its own transaction. A failing line
	// is logged and skipped so it cannot undo the committed status
	// change or starve the remaining lines.
	if newStatus == model.StatusReturned || newStatus == model.StatusCancelled {
		resp.LineResults = s.fanOutAdjustments(ctx, order, newStatus, actorID)
	}

	broadcast(s.hub, "order.status_changed", map[string]interface{}{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"from":         previous,
		"to":           newStatus,
	})

	return resp, nil
}

func (s *orderStatusService) fanOutAdjustments(ctx context.Context, order *model.Order, newStatus model.OrderStatus, actorID string) []LineAdjustmentResult {
	results := make([]LineAdjustmentResult, 0, len(order.Items))
	for _, item := range order.Items {
		result := LineAdjustmentResult{OrderItemID: item.ID.String()}

		adjustment, created, err := s.adjustmentSvc.RequestAutoAdd(ctx, order, item, newStatus, actorID)
		if err != nil {
			log.Printf("auto add for order %s line %s failed, skipping: %v",
				order.OrderNumber, item.ID, err)
			result.Error = err.Error()
		} else if created {
			result.Created = true
			result.AdjustmentID = adjustment.ID.String()
		}

		results = append(results, result)
	}
	return results
}

func (s *orderStatusService) GetStatusHistory(ctx context.Context, orderID string) ([]OrderStatusHistoryResponse, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apperr.InvalidArgumentf("invalid order id %q", orderID)
	}

	if _, err := s.orderRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order %s", orderID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	history, err := s.orderRepo.ListHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}

	result := make([]OrderStatusHistoryResponse, 0, len(history))
	for _, entry := range history {
		item := OrderStatusHistoryResponse{
			ID:        entry.ID.String(),
			Status:    entry.Status,
			Notes:     entry.Notes,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		}
		if entry.ChangedBy != nil {
			item.ChangedBy = entry.ChangedBy.String()
		}
		if entry.User != nil {
			item.Username = entry.User.Username
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *orderStatusService) ValidNextStatuses(current string) ([]model.OrderStatus, error) {
	status, ok := model.ParseOrderStatus(current)
	if !ok {
		return nil, apperr.InvalidArgumentf("unknown order status %q", current)
	}
	return model.ValidNextStatuses(status), nil
}
