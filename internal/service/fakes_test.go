package service

import (
	"context"
	"errors"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They return copies so a service mutating
// a loaded entity only becomes visible through an explicit Update.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- store items ---

type fakeStoreItemRepo struct {
	items map[uuid.UUID]*model.StoreItem

	// skuCollisions makes the next N ExistsBySKU calls report a taken
	// SKU; skuChecks counts every call.
	skuCollisions int
	skuChecks     int
}

func newFakeStoreItemRepo() *fakeStoreItemRepo {
	return &fakeStoreItemRepo{items: make(map[uuid.UUID]*model.StoreItem)}
}

func (f *fakeStoreItemRepo) Create(_ context.Context, item *model.StoreItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeStoreItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StoreItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := *item
	return &loaded, nil
}

func (f *fakeStoreItemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StoreItem, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeStoreItemRepo) Update(_ context.Context, item *model.StoreItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeStoreItemRepo) ExistsBySKU(_ context.Context, skuCode string) (bool, error) {
	f.skuChecks++
	if f.skuCollisions > 0 {
		f.skuCollisions--
		return true, nil
	}
	for _, item := range f.items {
		if item.SKU == skuCode {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStoreItemRepo) List(_ context.Context, filter repository.StoreItemFilter, _, _ int) ([]model.StoreItem, int64, error) {
	var out []model.StoreItem
	for _, item := range f.items {
		if filter.Quality != "" && item.Quality != filter.Quality {
			continue
		}
		if filter.SourceType != "" && item.SourceType != filter.SourceType {
			continue
		}
		if filter.FabricID != nil && item.FabricID != *filter.FabricID {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(item.SKU, filter.Search) &&
			!strings.Contains(item.OrderNumber, filter.Search) {
			continue
		}
		out = append(out, *item)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStoreItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

// --- store adjustments ---

type fakeStoreAdjustmentRepo struct {
	adjustments map[uuid.UUID]*model.StoreAdjustment
	// failCreateFor makes Create fail for an adjustment referencing the
	// given order item, to exercise partial fan-out failures.
	failCreateFor map[uuid.UUID]bool
}

func newFakeStoreAdjustmentRepo() *fakeStoreAdjustmentRepo {
	return &fakeStoreAdjustmentRepo{
		adjustments:   make(map[uuid.UUID]*model.StoreAdjustment),
		failCreateFor: make(map[uuid.UUID]bool),
	}
}

func (f *fakeStoreAdjustmentRepo) Create(_ context.Context, adj *model.StoreAdjustment) error {
	if adj.OrderItemID != nil && f.failCreateFor[*adj.OrderItemID] {
		return errors.New("simulated insert failure")
	}
	if adj.ID == uuid.Nil {
		adj.ID = uuid.New()
	}
	stored := *adj
	f.adjustments[adj.ID] = &stored
	return nil
}

func (f *fakeStoreAdjustmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StoreAdjustment, error) {
	adj, ok := f.adjustments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := *adj
	return &loaded, nil
}

func (f *fakeStoreAdjustmentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StoreAdjustment, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeStoreAdjustmentRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.StoreAdjustment, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeStoreAdjustmentRepo) ExistsByOrderItemID(_ context.Context, orderItemID uuid.UUID) (bool, error) {
	for _, adj := range f.adjustments {
		if adj.OrderItemID != nil && *adj.OrderItemID == orderItemID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStoreAdjustmentRepo) Update(_ context.Context, adj *model.StoreAdjustment) error {
	if _, ok := f.adjustments[adj.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *adj
	f.adjustments[adj.ID] = &stored
	return nil
}

func (f *fakeStoreAdjustmentRepo) List(_ context.Context, status string, _, _ int) ([]model.StoreAdjustment, int64, error) {
	var out []model.StoreAdjustment
	for _, adj := range f.adjustments {
		if status != "" && adj.Status != status {
			continue
		}
		out = append(out, *adj)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStoreAdjustmentRepo) CountPending(_ context.Context) (int64, error) {
	var count int64
	for _, adj := range f.adjustments {
		if adj.Status == model.AdjustmentPending {
			count++
		}
	}
	return count, nil
}

// --- store transactions ---

type fakeStoreTxRepo struct {
	entries []model.StoreTransaction
}

func newFakeStoreTxRepo() *fakeStoreTxRepo {
	return &fakeStoreTxRepo{}
}

func (f *fakeStoreTxRepo) Create(_ context.Context, tx *model.StoreTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	f.entries = append(f.entries, *tx)
	return nil
}

func (f *fakeStoreTxRepo) ListByItem(_ context.Context, storeItemID uuid.UUID, _, _ int) ([]model.StoreTransaction, int64, error) {
	var out []model.StoreTransaction
	for _, entry := range f.entries {
		if entry.StoreItemID == storeItemID {
			out = append(out, entry)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStoreTxRepo) byItem(storeItemID uuid.UUID) []model.StoreTransaction {
	out, _, _ := f.ListByItem(context.Background(), storeItemID, 1, 100)
	return out
}

// --- catalog ---

type fakeFabricRepo struct {
	fabrics map[uuid.UUID]*model.Fabric
}

func newFakeFabricRepo() *fakeFabricRepo {
	return &fakeFabricRepo{fabrics: make(map[uuid.UUID]*model.Fabric)}
}

func (f *fakeFabricRepo) Create(_ context.Context, fabric *model.Fabric) error {
	if fabric.ID == uuid.Nil {
		fabric.ID = uuid.New()
	}
	stored := *fabric
	f.fabrics[fabric.ID] = &stored
	return nil
}

func (f *fakeFabricRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Fabric, error) {
	fabric, ok := f.fabrics[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := *fabric
	return &loaded, nil
}

func (f *fakeFabricRepo) FindByCode(_ context.Context, code string) (*model.Fabric, error) {
	for _, fabric := range f.fabrics {
		if fabric.Code == code {
			loaded := *fabric
			return &loaded, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFabricRepo) List(_ context.Context, _, _ int) ([]model.Fabric, int64, error) {
	var out []model.Fabric
	for _, fabric := range f.fabrics {
		out = append(out, *fabric)
	}
	return out, int64(len(out)), nil
}

func (f *fakeFabricRepo) Update(_ context.Context, fabric *model.Fabric) error {
	stored := *fabric
	f.fabrics[fabric.ID] = &stored
	return nil
}

func (f *fakeFabricRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.fabrics, id)
	return nil
}

type fakeProductTypeRepo struct {
	productTypes map[uuid.UUID]*model.ProductType
}

func newFakeProductTypeRepo() *fakeProductTypeRepo {
	return &fakeProductTypeRepo{productTypes: make(map[uuid.UUID]*model.ProductType)}
}

func (f *fakeProductTypeRepo) Create(_ context.Context, pt *model.ProductType) error {
	if pt.ID == uuid.Nil {
		pt.ID = uuid.New()
	}
	stored := *pt
	f.productTypes[pt.ID] = &stored
	return nil
}

func (f *fakeProductTypeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductType, error) {
	pt, ok := f.productTypes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := *pt
	return &loaded, nil
}

func (f *fakeProductTypeRepo) List(_ context.Context, _, _ int) ([]model.ProductType, int64, error) {
	var out []model.ProductType
	for _, pt := range f.productTypes {
		out = append(out, *pt)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductTypeRepo) Update(_ context.Context, pt *model.ProductType) error {
	stored := *pt
	f.productTypes[pt.ID] = &stored
	return nil
}

func (f *fakeProductTypeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.productTypes, id)
	return nil
}

// --- audit ---

type fakeAuditRepo struct {
	logs []model.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (f *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return f.logs, int64(len(f.logs)), nil
}

func (f *fakeAuditRepo) actions() []string {
	out := make([]string, 0, len(f.logs))
	for _, l := range f.logs {
		out = append(out, l.Action)
	}
	return out
}

// --- orders ---

type fakeOrderRepo struct {
	orders  map[uuid.UUID]*model.Order
	history []model.OrderStatusHistory
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	stored := *order
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeOrderRepo) CreateItem(_ context.Context, item *model.OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	order, ok := f.orders[item.OrderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Items = append(order.Items, *item)
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := *order
	return &loaded, nil
}

func (f *fakeOrderRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	return nil
}

func (f *fakeOrderRepo) AppendHistory(_ context.Context, entry *model.OrderStatusHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeOrderRepo) ListHistory(_ context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	var out []model.OrderStatusHistory
	for _, entry := range f.history {
		if entry.OrderID == orderID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) List(_ context.Context, status model.OrderStatus, _, _ int) ([]model.Order, int64, error) {
	var out []model.Order
	for _, order := range f.orders {
		if status != "" && order.Status != status {
			continue
		}
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) CountByStatus(_ context.Context) ([]model.StatusCount, error) {
	counts := make(map[model.OrderStatus]int64)
	for _, order := range f.orders {
		counts[order.Status]++
	}
	out := make([]model.StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, model.StatusCount{Status: status, Count: count})
	}
	return out, nil
}

// --- fixture ---

// storeFixture wires the store and order status services over the
// in-memory fakes. The websocket hub is nil; broadcast tolerates that.
type storeFixture struct {
	itemRepo        *fakeStoreItemRepo
	adjustmentRepo  *fakeStoreAdjustmentRepo
	storeTxRepo     *fakeStoreTxRepo
	fabricRepo      *fakeFabricRepo
	productTypeRepo *fakeProductTypeRepo
	auditRepo       *fakeAuditRepo
	orderRepo       *fakeOrderRepo

	adjustmentSvc StoreAdjustmentService
	itemSvc       StoreItemService
	statusSvc     OrderStatusService

	fabric      *model.Fabric
	productType *model.ProductType
	actorID     string
}

func newStoreFixture() *storeFixture {
	f := &storeFixture{
		itemRepo:        newFakeStoreItemRepo(),
		adjustmentRepo:  newFakeStoreAdjustmentRepo(),
		storeTxRepo:     newFakeStoreTxRepo(),
		fabricRepo:      newFakeFabricRepo(),
		productTypeRepo: newFakeProductTypeRepo(),
		auditRepo:       newFakeAuditRepo(),
		orderRepo:       newFakeOrderRepo(),
		actorID:         uuid.NewString(),
	}

	f.fabric = &model.Fabric{Code: "COT", Name: "Cotton"}
	_ = f.fabricRepo.Create(context.Background(), f.fabric)
	f.productType = &model.ProductType{Code: "TSH", Name: "T-Shirt"}
	_ = f.productTypeRepo.Create(context.Background(), f.productType)

	tx := fakeTxManager{}
	f.adjustmentSvc = NewStoreAdjustmentService(
		f.adjustmentRepo, f.itemRepo, f.storeTxRepo,
		f.fabricRepo, f.productTypeRepo, f.auditRepo, tx, nil)
	f.itemSvc = NewStoreItemService(f.itemRepo, f.storeTxRepo, f.auditRepo, tx, nil)
	f.statusSvc = NewOrderStatusService(f.orderRepo, f.adjustmentSvc, f.auditRepo, tx, nil)

	return f
}

// seedOrder stores an order with n single-line items in the given status.
func (f *storeFixture) seedOrder(status model.OrderStatus, lineQuantities ...int) *model.Order {
	order := &model.Order{
		OrderNumber: "ORD-1001",
		Status:      status,
	}
	_ = f.orderRepo.Create(context.Background(), order)
	for _, qty := range lineQuantities {
		item := model.OrderItem{
			ID:            uuid.New(),
			OrderID:       order.ID,
			FabricID:      f.fabric.ID,
			ProductTypeID: f.productType.ID,
			StyleCode:     "ST-01",
			Quantity:      qty,
		}
		f.orderRepo.orders[order.ID].Items = append(f.orderRepo.orders[order.ID].Items, item)
	}
	loaded, _ := f.orderRepo.FindByID(context.Background(), order.ID)
	return loaded
}

// seedItem stores a ready-made store item outside the approval flow.
func (f *storeFixture) seedItem(quantity int, quality model.StoreItemQuality) *model.StoreItem {
	item := &model.StoreItem{
		SKU:           "COT-TSH-260828-ABC123",
		FabricID:      f.fabric.ID,
		ProductTypeID: f.productType.ID,
		Quantity:      quantity,
		Quality:       quality,
		SourceType:    model.SourceManualEntry,
	}
	_ = f.itemRepo.Create(context.Background(), item)
	return item
}
