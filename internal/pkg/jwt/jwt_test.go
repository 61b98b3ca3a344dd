package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testManager(t *testing.T) *Manager {
	m, err := NewManager(Config{
		Secret:   "test-secret",
		Issuer:   "softmarket",
		Audience: "softmarket-users",
		TTL:      time.Hour,
	})
	assert.NoError(t, err)
	return m
}

func TestGenerateAndVerify(t *testing.T) {
	t.Parallel()

	m := testManager(t)

	token, err := m.Generate(42, "seller")
	assert.NoError(t, err)

	claims, err := m.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "seller", claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	m := testManager(t)
	other, err := NewManager(Config{Secret: "different-secret", TTL: time.Hour})
	assert.NoError(t, err)

	token, err := m.Generate(1, "user")
	assert.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewManager(Config{})
	assert.Error(t, err)
}
