// internal/handlers/dashboard/dashboard_handler.go
package dashboard

import (
	"net/http"

	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/response"
	analyticssvc "softmarket-service/internal/service/analytics"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	analyticsService *analyticssvc.Service
}

func NewDashboardHandler(analyticsService *analyticssvc.Service) *DashboardHandler {
	return &DashboardHandler{analyticsService: analyticsService}
}

// SellerDashboard returns the caller's aggregate sales figures
func (h *DashboardHandler) SellerDashboard(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	result, err := h.analyticsService.SellerDashboard(c.Request.Context(), principal)
	if err != nil {
		response.FromError(c, err, "failed to get dashboard")
		return
	}

	response.Success(c, http.StatusOK, "dashboard retrieved", result)
}
