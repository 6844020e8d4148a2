package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type OrderLineRequest struct {
	FabricID      string `json:"fabric_id" binding:"required"`
	ProductTypeID string `json:"product_type_id" binding:"required"`
	StyleCode     string `json:"style_code"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	UnitPrice     string `json:"unit_price" binding:"required"`
}

type CreateOrderRequest struct {
	OrderNumber string             `json:"order_number" binding:"required"`
	CustomerID  string             `json:"customer_id"`
	Notes       string             `json:"notes"`
	Items       []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

type OrderLineResponse struct {
	ID              string `json:"id"`
	FabricCode      string `json:"fabric_code"`
	ProductTypeCode string `json:"product_type_code"`
	StyleCode       string `json:"style_code"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
}

type OrderResponse struct {
	ID           string              `json:"id"`
	OrderNumber  string              `json:"order_number"`
	CustomerName string              `json:"customer_name,omitempty"`
	Status       model.OrderStatus   `json:"status"`
	Notes        string              `json:"notes"`
	Items        []OrderLineResponse `json:"items"`
	CreatedAt    string              `json:"created_at"`
}

// --- Interface ---

type OrderService interface {
	CreateOrder(ctx context.Context, actorID string, req CreateOrderRequest) (OrderResponse, error)
	GetOrder(ctx context.Context, id string) (OrderResponse, error)
	ListOrders(ctx context.Context, status string, page, limit int) ([]OrderResponse, int64, error)
}

type orderService struct {
	orderRepo       repository.OrderRepository
	customerRepo    repository.CustomerRepository
	fabricRepo      repository.FabricRepository
	productTypeRepo repository.ProductTypeRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	fabricRepo repository.FabricRepository,
	productTypeRepo repository.ProductTypeRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) OrderService {
	return &orderService{
		orderRepo:       orderRepo,
		customerRepo:    customerRepo,
		fabricRepo:      fabricRepo,
		productTypeRepo: productTypeRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, actorID string, req CreateOrderRequest) (OrderResponse, error) {
	var customerID *uuid.UUID
	if req.CustomerID != "" {
		parsed, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return OrderResponse{}, apperr.InvalidArgumentf("invalid customer id %q", req.CustomerID)
		}
		if _, err := s.customerRepo.FindByID(ctx, parsed); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return OrderResponse{}, apperr.NotFoundf("customer %s", req.CustomerID)
			}
			return OrderResponse{}, fmt.Errorf("failed to load customer: %w", err)
		}
		customerID = &parsed
	}

	type preparedLine struct {
		fabricID      uuid.UUID
		productTypeID uuid.UUID
		styleCode     string
		quantity      int
		unitPrice     decimal.Decimal
	}

	lines := make([]preparedLine, 0, len(req.Items))
	for _, line := range req.Items {
		fabricID, err := uuid.Parse(line.FabricID)
		if err != nil {
			return OrderResponse{}, apperr.InvalidArgumentf("invalid fabric id %q", line.FabricID)
		}
		productTypeID, err := uuid.Parse(line.ProductTypeID)
		if err != nil {
			return OrderResponse{}, apperr.InvalidArgumentf("invalid product type id %q", line.ProductTypeID)
		}
		unitPrice, err := decimal.NewFromString(line.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			return OrderResponse{}, apperr.InvalidArgumentf("invalid unit price %q", line.UnitPrice)
		}

		if _, err := s.fabricRepo.FindByID(ctx, fabricID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return OrderResponse{}, apperr.NotFoundf("fabric %s", line.FabricID)
			}
			return OrderResponse{}, fmt.Errorf("failed to load fabric: %w", err)
		}
		if _, err := s.productTypeRepo.FindByID(ctx, productTypeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return OrderResponse{}, apperr.NotFoundf("product type %s", line.ProductTypeID)
			}
			return OrderResponse{}, fmt.Errorf("failed to load product type: %w", err)
		}

		lines = append(lines, preparedLine{
			fabricID:      fabricID,
			productTypeID: productTypeID,
			styleCode:     line.StyleCode,
			quantity:      line.Quantity,
			unitPrice:     unitPrice,
		})
	}

	actor := parseActorID(actorID)
	order := model.Order{
		OrderNumber: req.OrderNumber,
		CustomerID:  customerID,
		Status:      model.StatusOrderCreated,
		Notes:       req.Notes,
		CreatedBy:   actor,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.orderRepo.Create(txCtx, &order); createErr != nil {
			return fmt.Errorf("failed to create order: %w", createErr)
		}

		for _, line := range lines {
			item := &model.OrderItem{
				OrderID:       order.ID,
				FabricID:      line.fabricID,
				ProductTypeID: line.productTypeID,
				StyleCode:     line.styleCode,
				Quantity:      line.quantity,
				UnitPrice:     line.unitPrice,
			}
			if itemErr := s.orderRepo.CreateItem(txCtx, item); itemErr != nil {
				return fmt.Errorf("failed to create order item: %w", itemErr)
			}
		}

		history := &model.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    model.StatusOrderCreated,
			Notes:     "order created",
			ChangedBy: actor,
		}
		if historyErr := s.orderRepo.AppendHistory(txCtx, history); historyErr != nil {
			return fmt.Errorf("failed to append status history: %w", historyErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"order_number": req.OrderNumber,
			"lines":        len(lines),
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionCreateOrder,
			EntityID:   order.ID.String(),
			EntityName: req.OrderNumber,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	return s.GetOrder(ctx, order.ID.String())
}

func (s *orderService) GetOrder(ctx context.Context, id string) (OrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return OrderResponse{}, apperr.InvalidArgumentf("invalid order id %q", id)
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, apperr.NotFoundf("order %s", id)
		}
		return OrderResponse{}, fmt.Errorf("failed to load order: %w", err)
	}
	return toOrderResponse(*order), nil
}

func (s *orderService) ListOrders(ctx context.Context, status string, page, limit int) ([]OrderResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var filter model.OrderStatus
	if status != "" {
		parsed, ok := model.ParseOrderStatus(status)
		if !ok {
			return nil, 0, apperr.InvalidArgumentf("unknown order status %q", status)
		}
		filter = parsed
	}

	orders, total, err := s.orderRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	result := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	return result, total, nil
}

// --- Helpers ---

func toOrderResponse(order model.Order) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Notes:       order.Notes,
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
	}
	if order.Customer != nil {
		resp.CustomerName = order.Customer.Name
	}

	resp.Items = make([]OrderLineResponse, 0, len(order.Items))
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderLineResponse{
			ID:              item.ID.String(),
			FabricCode:      item.Fabric.Code,
			ProductTypeCode: item.ProductType.Code,
			StyleCode:       item.StyleCode,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice.StringFixed(2),
		})
	}
	return resp
}
