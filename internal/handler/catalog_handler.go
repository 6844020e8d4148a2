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

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	fabrics := router.Group("/api/fabrics")
	{
		fabrics.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ListFabrics)
		fabrics.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.CreateFabric)
		fabrics.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateFabric)
		fabrics.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteFabric)
	}

	productTypes := router.Group("/api/product-types")
	{
		productTypes.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.ListProductTypes)
		productTypes.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.CreateProductType)
		productTypes.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateProductType)
		productTypes.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteProductType)
	}
}

// ListFabrics returns paginated fabrics
// @Summary      List fabrics
// @Description  Retrieves a paginated list of fabrics ordered by code
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.PagedData}
// @Failure      500    {object}  response.Response
// @Router       /api/fabrics [get]
func (h *CatalogHandler) ListFabrics(c *gin.Context) {
	params := pagination.Parse(c)

	fabrics, total, err := h.catalogService.ListFabrics(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, fabrics, total, params.Page, params.Limit))
}

// CreateFabric registers a new fabric
// @Summary      Create fabric
// @Description  Creates a new fabric reference entry
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.FabricRequest  true  "Fabric Payload"
// @Success      201      {object}  response.Response{data=model.Fabric}
// @Failure      400      {object}  response.Response
// @Router       /api/fabrics [post]
func (h *CatalogHandler) CreateFabric(c *gin.Context) {
	var req service.FabricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	fabric, err := h.catalogService.CreateFabric(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, fabric))
}

// UpdateFabric updates an existing fabric
// @Summary      Update fabric
// @Description  Updates a fabric reference entry by ID
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Fabric ID"
// @Param        payload  body      service.FabricRequest  true  "Fabric Payload"
// @Success      200      {object}  response.Response{data=model.Fabric}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/fabrics/{id} [put]
func (h *CatalogHandler) UpdateFabric(c *gin.Context) {
	var req service.FabricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	fabric, err := h.catalogService.UpdateFabric(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, fabric))
}

// DeleteFabric removes a fabric
// @Summary      Delete fabric
// @Description  Soft deletes a fabric reference entry by ID
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Fabric ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/fabrics/{id} [delete]
func (h *CatalogHandler) DeleteFabric(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.catalogService.DeleteFabric(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ListProductTypes returns paginated product types
// @Summary      List product types
// @Description  Retrieves a paginated list of product types ordered by code
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.PagedData}
// @Failure      500    {object}  response.Response
// @Router       /api/product-types [get]
func (h *CatalogHandler) ListProductTypes(c *gin.Context) {
	params := pagination.Parse(c)

	productTypes, total, err := h.catalogService.ListProductTypes(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, productTypes, total, params.Page, params.Limit))
}

// CreateProductType registers a new product type
// @Summary      Create product type
// @Description  Creates a new product type reference entry
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ProductTypeRequest  true  "Product Type Payload"
// @Success      201      {object}  response.Response{data=model.ProductType}
// @Failure      400      {object}  response.Response
// @Router       /api/product-types [post]
func (h *CatalogHandler) CreateProductType(c *gin.Context) {
	var req service.ProductTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	pt, err := h.catalogService.CreateProductType(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, pt))
}

// UpdateProductType updates an existing product type
// @Summary      Update product type
// @Description  Updates a product type reference entry by ID
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Product Type ID"
// @Param        payload  body      service.ProductTypeRequest  true  "Product Type Payload"
// @Success      200      {object}  response.Response{data=model.ProductType}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/product-types/{id} [put]
func (h *CatalogHandler) UpdateProductType(c *gin.Context) {
	var req service.ProductTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	pt, err := h.catalogService.UpdateProductType(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pt))
}

// DeleteProductType removes a product type
// @Summary      Delete product type
// @Description  Soft deletes a product type reference entry by ID
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product Type ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/product-types/{id} [delete]
func (h *CatalogHandler) DeleteProductType(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.catalogService.DeleteProductType(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
