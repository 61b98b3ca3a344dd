// internal/domain/license/dto.go
package license

import "time"

type ValidateLicenseRequest struct {
	Key string `json:"key" binding:"required"`
}

type ActivateLicenseRequest struct {
	Key string `json:"key" binding:"required"`
}

// ValidationResult is the non-mutating validity check response.
type ValidationResult struct {
	IsValid      bool      `json:"isValid"`
	LicenseID    int64     `json:"licenseId,omitempty"`
	SoftwareName string    `json:"softwareName,omitempty"`
	ValidUntil   time.Time `json:"validUntil,omitempty"`
}

// ActivationResult carries the idempotent-activation indicator.
type ActivationResult struct {
	License          *LicenseKey `json:"license"`
	AlreadyActivated bool        `json:"alreadyActivated"`
}
