package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService  service.OrderService
	statusService service.OrderStatusService
}

func NewOrderHandler(orderService service.OrderService, statusService service.OrderStatusService) *OrderHandler {
	return &OrderHandler{orderService: orderService, statusService: statusService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/orders")
	{
		orders.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.CreateOrder)
		orders.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ListOrders)
		orders.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.GetOrder)
		orders.PUT("/:id/status", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateStatus)
		orders.GET("/:id/history", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.GetStatusHistory)
	}
	router.GET("/api/order-statuses/:status/next",
		middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ValidNextStatuses)
}

// CreateOrder registers a new order with its lines
// @Summary      Create order
// @Description  Creates an order in ORDER_CREATED status with its order lines
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Create Order Payload"
// @Success      201      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListOrders returns paginated orders, optionally filtered by status
// @Summary      List orders
// @Description  Retrieves a paginated list of orders, optionally filtered by status
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        status  query     string  false  "Filter by order status"
// @Success      200     {object}  response.Response{data=response.PagedData}
// @Failure      400     {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), status, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, orders, total, params.Page, params.Limit))
}

// GetOrder returns one order with its lines and customer
// @Summary      Get order
// @Description  Retrieves a single order by ID including its lines
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateStatus moves an order to a new lifecycle status
// @Summary      Update order status
// @Description  Validates and applies a status transition; RETURNED and CANCELLED raise pending store adjustments per line
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Order ID"
// @Param        payload  body      service.UpdateOrderStatusRequest  true  "New Status Payload"
// @Success      200      {object}  response.Response{data=service.OrderStatusUpdateResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	result, err := h.statusService.UpdateStatus(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetStatusHistory returns the full status trail of an order
// @Summary      Get order status history
// @Description  Retrieves the append-only status history of an order, oldest first
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=[]service.OrderStatusHistoryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/history [get]
func (h *OrderHandler) GetStatusHistory(c *gin.Context) {
	history, err := h.statusService.GetStatusHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

// ValidNextStatuses returns the statuses reachable from a given status
// @Summary      Get valid next statuses
// @Description  Lists the statuses an order in the given status may move to
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status  path      string  true  "Current order status"
// @Success      200     {object}  response.Response{data=[]string}
// @Failure      400     {object}  response.Response
// @Router       /api/order-statuses/{status}/next [get]
func (h *OrderHandler) ValidNextStatuses(c *gin.Context) {
	next, err := h.statusService.ValidNextStatuses(c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, next))
}
