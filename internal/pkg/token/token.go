// internal/pkg/token/token.go
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// licenseKeyBytes is the entropy of a license key before encoding.
const licenseKeyBytes = 16

// NewLicenseKey generates a cryptographically random license key of the
// form XXXX-XXXX-XXXX-XXXX-XXXX-XXXX-XXXX-XXXX. Uniqueness is enforced by
// the database unique index, not retried here.
func NewLicenseKey() (string, error) {
	buf := make([]byte, licenseKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate license key: %w", err)
	}

	encoded := strings.ToUpper(hex.EncodeToString(buf))
	groups := make([]string, 0, len(encoded)/4)
	for i := 0; i < len(encoded); i += 4 {
		groups = append(groups, encoded[i:i+4])
	}
	return strings.Join(groups, "-"), nil
}
