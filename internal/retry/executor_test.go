package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
	"github.com/trebuchet-org/treb-upgrades/internal/logging"
)

func transientErr() error {
	return &domain.TransientRPCError{Method: "eth_sendRawTransaction", Err: errors.New("nonce too low")}
}

func TestExecutor_Run(t *testing.T) {
	tests := []struct {
		name         string
		failures     int
		failWith     func() error
		wantAttempts int
		wantErr      bool
		wantErrIs    error
	}{
		{
			name:         "succeeds first time",
			failures:     0,
			wantAttempts: 1,
		},
		{
			name:         "four transient failures then success",
			failures:     4,
			failWith:     transientErr,
			wantAttempts: 5,
		},
		{
			name:         "transient on every attempt",
			failures:     5,
			failWith:     transientErr,
			wantAttempts: 5,
			wantErr:      true,
			wantErrIs:    domain.ErrTransientRPC,
		},
		{
			name:         "non transient fails immediately",
			failures:     5,
			failWith:     func() error { return domain.ErrUnauthorized },
			wantAttempts: 1,
			wantErr:      true,
			wantErrIs:    domain.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewExecutor(logging.NewNop())
			attempts := 0
			err := exec.Run(context.Background(), "op", func(context.Context) error {
				attempts++
				if attempts <= tt.failures {
					return tt.failWith()
				}
				return nil
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestExecutor_ReturnsLastTransientErrorUnmodified(t *testing.T) {
	exec := NewExecutor(logging.NewNop(), WithMaxAttempts(3))
	var last error
	err := exec.Run(context.Background(), "op", func(context.Context) error {
		last = transientErr()
		return last
	})
	assert.Same(t, last, err)
}

func TestExecutor_StopsOnCancelledContext(t *testing.T) {
	exec := NewExecutor(logging.NewNop(), WithBackoff(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	attempts := 0

	err := exec.Run(ctx, "op", func(context.Context) error {
		attempts++
		cancel()
		return transientErr()
	})

	assert.ErrorIs(t, err, domain.ErrTransientRPC)
	assert.Equal(t, 1, attempts)
}

func TestDo_ReturnsValue(t *testing.T) {
	exec := NewExecutor(logging.NewNop())
	calls := 0
	v, err := Do(context.Background(), exec, "read", func(context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, transientErr()
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestExecutor_NonTransientErrorIsNotWrapped(t *testing.T) {
	exec := NewExecutor(logging.NewNop())
	want := errors.New("execution reverted")
	err := exec.Run(context.Background(), "op", func(context.Context) error { return want })
	assert.Same(t, want, err)
}

func TestExecutor_NonTransientOnLastAttemptIsNotWrapped(t *testing.T) {
	exec := NewExecutor(logging.NewNop(), WithMaxAttempts(2))
	want := errors.New("execution reverted")
	attempts := 0
	err := exec.Run(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts == 1 {
			return transientErr()
		}
		return want
	})
	assert.Equal(t, 2, attempts)
	assert.Same(t, want, err)
}

func TestExecutor_WaitsBetweenAttempts(t *testing.T) {
	exec := NewExecutor(logging.NewNop(), WithMaxAttempts(3), WithBackoff(10*time.Millisecond))
	start := time.Now()
	err := exec.Run(context.Background(), "op", func(context.Context) error { return transientErr() })
	assert.ErrorIs(t, err, domain.ErrTransientRPC)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
