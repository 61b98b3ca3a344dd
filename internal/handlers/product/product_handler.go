// internal/handlers/product/product_handler.go
package product

import (
	"net/http"
	"strconv"

	"softmarket-service/internal/domain/catalog"
	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/response"
	catalogsvc "softmarket-service/internal/service/catalog"
	pricingsvc "softmarket-service/internal/service/pricing"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	catalogService *catalogsvc.Service
	pricingService *pricingsvc.Service
}

func NewProductHandler(catalogService *catalogsvc.Service, pricingService *pricingsvc.Service) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		pricingService: pricingService,
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid product ID", err)
		return 0, false
	}
	return id, true
}

// CreateProduct creates a new product listing
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.catalogService.CreateProduct(c.Request.Context(), principal, &req)
	if err != nil {
		response.FromError(c, err, "failed to create product")
		return
	}

	response.Success(c, http.StatusCreated, "product created successfully", result)
}

// GetProduct retrieves a product with its subscription options
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	software, subs, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "product not found")
		return
	}

	response.Success(c, http.StatusOK, "product retrieved", gin.H{
		"product":       software,
		"subscriptions": subs,
	})
}

// ListProducts retrieves products with filters
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var filters catalog.ProductListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.catalogService.ListProducts(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err, "failed to list products")
		return
	}

	response.Success(c, http.StatusOK, "products retrieved", result)
}

// UpdateProduct partially updates a product and re-derives its prices
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch catalog.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.pricingService.ApplyDiscount(c.Request.Context(), principal, id, &patch)
	if err != nil {
		response.FromError(c, err, "failed to update product")
		return
	}

	response.Success(c, http.StatusOK, "product updated successfully", result)
}

// GetPriceHistory retrieves the recorded price drops of a product
func (h *ProductHandler) GetPriceHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.pricingService.PriceHistory(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to get price history")
		return
	}

	response.Success(c, http.StatusOK, "price history retrieved", result)
}

// UpdateProductStatus is the admin moderation endpoint
func (h *ProductHandler) UpdateProductStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Status int `json:"status" binding:"min=0,max=2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.catalogService.UpdateProductStatus(c.Request.Context(), id, catalog.SoftwareStatus(req.Status)); err != nil {
		response.FromError(c, err, "failed to update product status")
		return
	}

	response.Success(c, http.StatusOK, "product status updated", nil)
}
