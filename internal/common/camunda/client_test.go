// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry_RetriesTransientErrors(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	calls := 0
	err := retry(context.Background(), cfg, "complete-job", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("rpc error: code = Unavailable")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := retry(context.Background(), cfg, "throw-error", func(ctx context.Context) error {
		calls++
		return errors.New("job not found")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ClassifiesExhaustedTimeouts(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	err := retry(context.Background(), cfg, "topology", func(ctx context.Context) error {
		return errors.New("context deadline exceeded")
	})

	assert.ErrorIs(t, err, ErrBrokerTimeout)
}

func TestRetry_HonoursCancellation(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry(ctx, cfg, "topology", func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
