package token

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLicenseKeyFormat(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^([0-9A-F]{4}-){7}[0-9A-F]{4}$`)

	key, err := NewLicenseKey()
	assert.NoError(t, err)
	assert.Regexp(t, pattern, key)
}

func TestNewLicenseKeyUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := NewLicenseKey()
		assert.NoError(t, err)
		assert.False(t, seen[key], "generated a duplicate key")
		seen[key] = true
	}
}
