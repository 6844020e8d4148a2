package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StoreHandler struct {
	adjustmentService service.StoreAdjustmentService
	itemService       service.StoreItemService
}

func NewStoreHandler(adjustmentService service.StoreAdjustmentService, itemService service.StoreItemService) *StoreHandler {
	return &StoreHandler{adjustmentService: adjustmentService, itemService: itemService}
}

func (h *StoreHandler) RegisterRoutes(router *gin.RouterGroup) {
	store := router.Group("/api/store")
	{
		adjustments := store.Group("/adjustments")
		{
			adjustments.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ListAdjustments)
			adjustments.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.RequestManualAdjustment)
			adjustments.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.GetAdjustment)
			adjustments.PUT("/:id/approve", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.ApproveAdjustment)
			adjustments.PUT("/:id/reject", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.RejectAdjustment)
		}

		items := store.Group("/items")
		{
			items.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ListItems)
			items.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.GetItem)
			items.GET("/:id/transactions", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ListItemTransactions)
			items.PUT("/:id/quality", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ChangeQuality)
			items.PUT("/:id/quantity", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.AdjustQuantity)
			items.PUT("/:id/use", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.UseItem)
			items.PUT("/:id/write-off", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.WriteOffItem)
			items.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteItem)
		}
	}
}

// ListAdjustments returns store adjustments, optionally filtered by status
// @Summary      List store adjustments
// @Description  Retrieves a paginated list of store adjustments, optionally filtered by status
// @Tags         store
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        status  query     string  false  "Filter by adjustment status (PENDING, APPROVED, REJECTED)"
// @Success      200     {object}  response.Response{data=response.PagedData}
// @Failure      500     {object}  response.Response
// @Router       /api/store/adjustments [get]
func (h *StoreHandler) ListAdjustments(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")

	adjustments, total, err := h.adjustmentService.List(c.Request.Context(), status, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, adjustments, total, params.Page, params.Limit))
}

// RequestManualAdjustment raises a pending manual stock-in request
// @Summary      Request manual adjustment
// @Description  Creates a pending MANUAL_ENTRY adjustment that an approver can turn into a store item
// @Tags         store
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ManualAdjustmentRequest  true  "Manual Adjustment Payload"
// @Success      201      {object}  response.Response{data=service.StoreAdjustmentResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/store/adjustments [post]
func (h *StoreHandler) RequestManualAdjustment(c *gin.Context) {
	var req service.ManualAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	adjustment, err := h.adjustmentService.RequestManual(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, adjustment))
}

// GetAdjustment returns one adjustment with its relations
// @Summary      Get store adjustment
// @Description  Retrieves a single store adjustment by ID
// @Tags         store
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Adjustment ID"
// @Success      200  {object}  response.Response{data=service.StoreAdjustmentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/store/adjustments/{id} [get]
func (h *StoreHandler) GetAdjustment(c *gin.Context) {
	adjustment, err := h.adjustmentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, adjustment))
}

// ApproveAdjustment turns a pending adjustment into a store item
// @Summary      Approve store adjustment
// @Description  Approves a pending adjustment, creating the store item and its opening ledger entry
// @Tags         store
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Adjustment ID"
// @Success      200  {object}  response.Response{data=service.StoreItemResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/store/adjustments/{id}/approve [put]
func (h *StoreHandler) ApproveAdjustment(c *gin.Context) {
	userID := c.GetString("userID")

	item, err := h.adjustmentService.Approve(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// RejectAdjustment closes a pending adjustment without stock intake
// @Summary      Reject store adjustment
// @Description  Rejects a pending adjustment; no store item is created
// @Tags         store
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true   "Adjustment ID"
// @Param        payload  body      service.RejectAdjustmentRequest  false  "Rejection Reason"
// @Success      200      {object}  response.Response{data=service.StoreAdjustmentResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/store/adjustments/{id}/reject [put]
func (h *StoreHandler) RejectAdjustment(c *gin.Context) {
	userID := c.GetString("userID")

	var req service.RejectAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Allow empty body, reason is optional
		req.Reason = ""
	}

	adjustment, err := h.adjustmentService.Reject(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, adjustment))
}

// ListItems returns store items with optional filters
// @Summary      List store items
// @Description  Retrieves a paginated list of store items filtered by quality, source type, fabric or search term
// @Tags         store
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        quality      query     string  false  "Filter by quality (NEW, GOOD, DAMAGED, WRITE_OFF)"
// @Param        source_type  query     string  false  "Filter by source type"
// @Param        fabric_id    query     string  false  "Filter by fabric ID"
// @Param        search       query     string  false  "Search by SKU or order number"
// @Success      200          {object}  response.Response{data=response.PagedData}
// @Failure      400          {object}  response.Response
// @Router       /api/store/items [get]
func (h *StoreHandler) ListItems(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.StoreItemFilter{
		SourceType: c.Query("source_type"),
		Search:     c.Query("search"),
	}
	if q := c.Query("quality"); q != "" {
		quality, ok := model.ParseStoreItemQuality(q)
		if !ok {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unknown quality: "+q))
			return
		}
		filter.Quality = quality
	}
	if f := c.Query("fabric_id"); f != "" {
		fabricID, err := uuid.Parse(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid fabric ID: "+f))
			return
		}
		filter.FabricID = &fabricID
	}

	items, total, err := h.itemService.ListItems(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, items, total, params.Page, params.Limit))
}

// GetItem returns one store item
// @Summary      Get store item
// @Description  Retrieves a single store item by ID
// @Tags         store
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Store Item ID"
// @Success      200  {object}  response.Response{data=service.StoreItemResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/store/items/{id} [get]
func (h *StoreHandler) GetItem(c *gin.Context) {
	item, err := h.itemService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// ListItemTransactions returns the ledger trail of one store item
// @Summary      List store item transactions
// @Description  Retrieves the append-only transaction ledger of a store item, newest first
// @Tags         store
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Store Item ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 50)"
// @Success      200    {object}  response.Response{data=response.PagedData}
// @Failure      404    {object}  response.Response
// @Router       /api/store/items/{id}/transactions [get]
func (h *StoreHandler) ListItemTransactions(c *gin.Context) {
	params := pagination.Parse(c)

	transactions, total, err := h.itemService.ListTransactions(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, transactions, total, params.Page, params.Limit))
}

// ChangeQuality regrades a store item
// @Summary      Change store item quality
// @Description  Changes the quality grade of a store item and records a QUALITY_CHANGE ledger entry
// @Tags         store
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Store Item ID"
// @Param        payload  body      service.ChangeQualityRequest  true  "New Quality Payload"
// @Success      200      {object}  response.Response{data=service.StoreItemResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/store/items/{id}/quality [put]
func (h *StoreHandler) ChangeQuality(c *gin.Context) {
	var req service.ChangeQualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	item, err := h.itemService.ChangeQuality(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// AdjustQuantity applies a signed quantity correction
// @Summary      Adjust store item quantity
// @Description  Applies a positive or negative delta to the stock count and records an ADJUST ledger entry
// @Tags         store
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Store Item ID"
// @Param        payload  body      service.AdjustQuantityRequest  true  "Quantity Delta Payload"
// @Success      200      {object}  response.Response{data=service.StoreItemResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/store/items/{id}/quantity [put]
func (h *StoreHandler) AdjustQuantity(c *gin.Context) {
	var req service.AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	item, err := h.itemService.AdjustQuantity(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// UseItem consumes stock for production or resale
// @Summary      Use store item
// @Description  Deducts stock from a store item and records a USE ledger entry
// @Tags         store
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Store Item ID"
// @Param        payload  body      service.UseItemRequest  true  "Use Quantity Payload"
// @Success      200      {object}  response.Response{data=service.StoreItemResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/store/items/{id}/use [put]
func (h *StoreHandler) UseItem(c *gin.Context) {
	var req service.UseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	item, err := h.itemService.Use(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// WriteOffItem zeroes out unusable stock
// @Summary      Write off store item
// @Description  Sets quantity to zero and quality to WRITE_OFF, recording a WRITE_OFF ledger entry
// @Tags         store
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true   "Store Item ID"
// @Param        payload  body      service.WriteOffRequest  false  "Write Off Notes"
// @Success      200      {object}  response.Response{data=service.StoreItemResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/store/items/{id}/write-off [put]
func (h *StoreHandler) WriteOffItem(c *gin.Context) {
	var req service.WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Allow empty body, notes are optional
		req.Notes = ""
	}

	userID := c.GetString("userID")
	item, err := h.itemService.WriteOff(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteItem soft deletes a store item
// @Summary      Delete store item
// @Description  Soft deletes a store item record; its ledger history is preserved
// @Tags         store
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Store Item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/store/items/{id} [delete]
func (h *StoreHandler) DeleteItem(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.itemService.DeleteItem(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
