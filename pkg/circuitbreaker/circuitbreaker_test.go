package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 2, Timeout: time.Minute})
	boom := errors.New("boom")

	assert.Equal(t, "closed", cb.State())

	require.Error(t, cb.Execute(func() error { return boom }))
	assert.Equal(t, "closed", cb.State())

	require.Error(t, cb.Execute(func() error { return boom }))
	assert.Equal(t, "open", cb.State())

	// Open breaker short-circuits without calling fn.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.Error(t, err)
	assert.False(t, called)
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	assert.Equal(t, "open", cb.State())

	time.Sleep(20 * time.Millisecond)

	// After the timeout one probe is allowed; success closes the breaker.
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, "closed", cb.State())
}

func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 2, Timeout: time.Minute})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))

	// One failure after a success is still below the threshold.
	assert.Equal(t, "closed", cb.State())
}
