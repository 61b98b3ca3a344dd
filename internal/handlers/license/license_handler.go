// internal/handlers/license/license_handler.go
package license

import (
	"net/http"
	"strconv"

	"softmarket-service/internal/domain/license"
	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/response"
	licensesvc "softmarket-service/internal/service/license"

	"github.com/gin-gonic/gin"
)

type LicenseHandler struct {
	licenseService *licensesvc.Service
}

func NewLicenseHandler(licenseService *licensesvc.Service) *LicenseHandler {
	return &LicenseHandler{licenseService: licenseService}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid license ID", err)
		return 0, false
	}
	return id, true
}

// ValidateLicense checks a key without redeeming it
func (h *LicenseHandler) ValidateLicense(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var req license.ValidateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.licenseService.Validate(c.Request.Context(), principal, req.Key)
	if err != nil {
		response.FromError(c, err, "failed to validate license")
		return
	}

	response.Success(c, http.StatusOK, "license validated", result)
}

// ActivateLicense redeems a key; repeated activation is not an error
func (h *LicenseHandler) ActivateLicense(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var req license.ActivateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.licenseService.Activate(c.Request.Context(), principal, req.Key)
	if err != nil {
		response.FromError(c, err, "failed to activate license")
		return
	}

	message := "license activated"
	if result.AlreadyActivated {
		message = "license was already activated"
	}
	response.Success(c, http.StatusOK, message, result)
}

// DeactivateLicense releases a license
func (h *LicenseHandler) DeactivateLicense(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.licenseService.Deactivate(c.Request.Context(), principal, id); err != nil {
		response.FromError(c, err, "failed to deactivate license")
		return
	}

	response.Success(c, http.StatusOK, "license deactivated", nil)
}

// RenewLicense extends a license by its plan duration
func (h *LicenseHandler) RenewLicense(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.licenseService.Renew(c.Request.Context(), principal, id)
	if err != nil {
		response.FromError(c, err, "failed to renew license")
		return
	}

	response.Success(c, http.StatusOK, "license renewed", result)
}

// CheckExpired runs the expiry sweep on demand and reports how many
// licenses were flagged. Admin only; the worker also runs this on a
// schedule.
func (h *LicenseHandler) CheckExpired(c *gin.Context) {
	count, err := h.licenseService.SweepExpired(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "failed to sweep expired licenses")
		return
	}

	response.Success(c, http.StatusOK, "expired licenses swept", gin.H{"count": count})
}

// GetLicense retrieves one of the caller's licenses
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.licenseService.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		response.FromError(c, err, "license not found")
		return
	}

	response.Success(c, http.StatusOK, "license retrieved", result)
}

// ListLicenses retrieves the caller's licenses
func (h *LicenseHandler) ListLicenses(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	result, err := h.licenseService.ListByUser(c.Request.Context(), principal)
	if err != nil {
		response.FromError(c, err, "failed to list licenses")
		return
	}

	response.Success(c, http.StatusOK, "licenses retrieved", result)
}
