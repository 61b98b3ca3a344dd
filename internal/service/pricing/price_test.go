package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePrice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100.0, DerivePrice(100, 0))
	assert.Equal(t, 90.0, DerivePrice(100, 10))
	assert.Equal(t, 0.0, DerivePrice(100, 100))
	assert.Equal(t, 50.0, DerivePrice(100, 50))

	// Rounding to cents
	assert.Equal(t, 33.33, DerivePrice(49.99, 33.33))
	assert.Equal(t, 9.99, DerivePrice(9.99, 0))
	assert.Equal(t, 6.66, DerivePrice(9.99, 33.33))
}

func TestDerivePriceIsDeterministic(t *testing.T) {
	t.Parallel()

	// Re-applying the same discount to the same base must always yield
	// the same stored price, no drift across repeated updates.
	for i := 0; i < 10; i++ {
		assert.Equal(t, 13.49, DerivePrice(17.99, 25))
	}
}

func TestValidDiscount(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidDiscount(0))
	assert.True(t, ValidDiscount(100))
	assert.True(t, ValidDiscount(12.5))
	assert.False(t, ValidDiscount(-0.01))
	assert.False(t, ValidDiscount(100.01))
}
