// internal/service/pricing/price.go
package pricing

import "math"

// DerivePrice computes the effective price for a base price under a
// percentage discount, rounded half away from zero to cents. A product's
// stored prices are always the output of this derivation.
func DerivePrice(basePrice, discount float64) float64 {
	return math.Round(basePrice*(1-discount/100)*100) / 100
}

// ValidDiscount reports whether d is a usable percentage.
func ValidDiscount(d float64) bool {
	return d >= 0 && d <= 100
}
