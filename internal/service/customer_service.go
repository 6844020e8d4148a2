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

type CustomerRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Marketplace string `json:"marketplace"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, actorID string, req CustomerRequest) (*model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, actorID string, id string, req CustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, actorID string, id string) error
	ListCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

var validMarketplaces = map[string]bool{
	model.MarketplaceShopee:  true,
	model.MarketplaceLazada:  true,
	model.MarketplaceTiktok:  true,
	model.MarketplaceDirect:  true,
	model.MarketplaceUnknown: true,
}

func (s *customerService) CreateCustomer(ctx context.Context, actorID string, req CustomerRequest) (*model.Customer, error) {
	marketplace, err := normalizeMarketplace(req.Marketplace)
	if err != nil {
		return nil, err
	}

	customer := &model.Customer{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Marketplace: marketplace,
		Address:     req.Address,
		Notes:       req.Notes,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.customerRepo.Create(txCtx, customer); createErr != nil {
			return fmt.Errorf("failed to create customer: %w", createErr)
		}
		return s.logCustomerAction(txCtx, actorID, model.ActionCreateCustomer, customer, req)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.InvalidArgumentf("invalid customer id %q", id)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("customer %s", id)
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, actorID string, id string, req CustomerRequest) (*model.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	marketplace, err := normalizeMarketplace(req.Marketplace)
	if err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Marketplace = marketplace
	customer.Address = req.Address
	customer.Notes = req.Notes

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.customerRepo.Update(txCtx, customer); saveErr != nil {
			return fmt.Errorf("failed to update customer: %w", saveErr)
		}
		return s.logCustomerAction(txCtx, actorID, model.ActionUpdateCustomer, customer, req)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, actorID string, id string) error {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.customerRepo.Delete(txCtx, customer.ID); deleteErr != nil {
			return fmt.Errorf("failed to delete customer: %w", deleteErr)
		}
		return s.logCustomerAction(txCtx, actorID, model.ActionDeleteCustomer, customer, nil)
	})
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.customerRepo.List(ctx, search, page, limit)
}

func normalizeMarketplace(marketplace string) (string, error) {
	if marketplace == "" {
		return model.MarketplaceUnknown, nil
	}
	if !validMarketplaces[marketplace] {
		return "", apperr.InvalidArgumentf("unknown marketplace %q", marketplace)
	}
	return marketplace, nil
}

func (s *customerService) logCustomerAction(ctx context.Context, actorID, action string, customer *model.Customer, payload interface{}) error {
	details := "{}"
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			details = string(raw)
		}
	}
	audit := &model.AuditLog{
		UserID:     parseActorID(actorID),
		Action:     action,
		EntityID:   customer.ID.String(),
		EntityName: customer.Name,
		Details:    details,
	}
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
