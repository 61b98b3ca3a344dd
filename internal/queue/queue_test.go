package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffSequence(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	assert.Equal(t, time.Second, opts.Backoff(1))
	assert.Equal(t, 2*time.Second, opts.Backoff(2))
	assert.Equal(t, 4*time.Second, opts.Backoff(3))
}

func TestBackoffClampsBelowOne(t *testing.T) {
	t.Parallel()

	opts := Options{MaxAttempts: 3, BackoffDelay: time.Second}
	assert.Equal(t, time.Second, opts.Backoff(0))
	assert.Equal(t, time.Second, opts.Backoff(-5))
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Equal(t, time.Second, opts.BackoffDelay)
}

func TestNewNormalizesOptions(t *testing.T) {
	t.Parallel()

	q := New(nil, "test", Options{})
	assert.Equal(t, 1, q.opts.MaxAttempts)
	assert.Equal(t, time.Second, q.opts.BackoffDelay)
	assert.Equal(t, "test:jobs", q.jobsKey())
	assert.Equal(t, "test:delayed", q.delayedKey())
}
