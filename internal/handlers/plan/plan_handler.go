// internal/handlers/plan/plan_handler.go
package plan

import (
	"net/http"
	"strconv"

	"softmarket-service/internal/domain/catalog"
	"softmarket-service/internal/pkg/response"
	catalogsvc "softmarket-service/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

// PlanHandler manages subscription plan duration templates. Mutations are
// admin-only; listing is public.
type PlanHandler struct {
	catalogService *catalogsvc.Service
}

func NewPlanHandler(catalogService *catalogsvc.Service) *PlanHandler {
	return &PlanHandler{catalogService: catalogService}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return 0, false
	}
	return id, true
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req catalog.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.catalogService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to create plan")
		return
	}

	response.Success(c, http.StatusCreated, "plan created successfully", result)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.catalogService.GetPlan(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "plan not found")
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", result)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	result, err := h.catalogService.ListPlans(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "failed to list plans")
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", result)
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req catalog.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.catalogService.UpdatePlan(c.Request.Context(), id, &req); err != nil {
		response.FromError(c, err, "failed to update plan")
		return
	}

	response.Success(c, http.StatusOK, "plan updated successfully", nil)
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeletePlan(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "failed to delete plan")
		return
	}

	response.Success(c, http.StatusOK, "plan deleted successfully", nil)
}
