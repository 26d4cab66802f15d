package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalogsearch/pkg/logger"
)

func testConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Timeout:      50 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  2,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("elasticsearch")
	assert.Equal(t, "elasticsearch", cfg.Name)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestNew_TripsAfterFailureRatio(t *testing.T) {
	cb := New[int](testConfig("trip-test"), logger.Discard(), nil)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(stateGauge.WithLabelValues("trip-test")))

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestNew_RecoversThroughHalfOpen(t *testing.T) {
	cb := New[int](testConfig("recover-test"), logger.Discard(), nil)
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(func() (int, error) { return 0, errors.New("fail") })
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(80 * time.Millisecond)
	v, err := cb.Execute(func() (int, error) { return 7, nil })

	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestNew_IsSuccessfulExcludesErrors(t *testing.T) {
	ignoreCanceled := func(err error) bool { return err == nil || errors.Is(err, context.Canceled) }
	cb := New[int](testConfig("canceled-test"), logger.Discard(), ignoreCanceled)

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (int, error) { return 0, context.Canceled })
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestStateValue(t *testing.T) {
	assert.Equal(t, 0.0, StateValue(gobreaker.StateClosed))
	assert.Equal(t, 1.0, StateValue(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, StateValue(gobreaker.StateOpen))
}
