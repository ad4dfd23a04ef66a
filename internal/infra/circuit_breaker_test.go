package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerTripsAndRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "smtp", FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	cb.now = func() time.Time { return now }
	fail := errors.New("smtp down")

	assert.ErrorIs(t, cb.Execute(func() error { return fail }), fail)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return fail }), fail)
	assert.Equal(t, CBOpen, cb.State())

	calls := 0
	assert.ErrorIs(t, cb.Execute(func() error { calls++; return nil }), ErrCircuitOpen)
	assert.Zero(t, calls)

	now = now.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(func() error { calls++; return nil }))
	assert.Equal(t, 1, calls)
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	cb.now = func() time.Time { return now }
	fail := errors.New("nope")

	_ = cb.Execute(func() error { return fail })
	now = now.Add(time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return fail })
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	fail := errors.New("nope")

	_ = cb.Execute(func() error { return fail })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return fail })

	assert.Equal(t, CBClosed, cb.State())
}
