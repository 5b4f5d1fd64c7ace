package chain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimited_SequentialLowerBound(t *testing.T) {
	inner := NewMemoryClient()
	wallet := mustAddress(t)
	_, err := inner.RequestAirdrop(context.Background(), wallet, 500)
	require.NoError(t, err)

	const (
		rps   = 20.0
		calls = 5
	)
	client := RateLimited(inner, rps)

	start := time.Now()
	for i := 0; i < calls; i++ {
		balance, err := client.GetBalance(context.Background(), wallet)
		require.NoError(t, err)
		// Return values pass through the gate unchanged.
		assert.Equal(t, uint64(500), balance)
	}
	elapsed := time.Since(start)

	minElapsed := time.Duration(float64(calls-1) / rps * float64(time.Second))
	assert.GreaterOrEqual(t, elapsed, minElapsed)
}

func TestRateLimited_ConcurrentCallersShareGate(t *testing.T) {
	inner := NewMemoryClient()
	wallet := mustAddress(t)
	_, err := inner.RequestAirdrop(context.Background(), wallet, 7)
	require.NoError(t, err)

	const (
		rps   = 20.0
		calls = 6
	)
	client := RateLimited(inner, rps)

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			balance, err := client.GetBalance(context.Background(), wallet)
			assert.NoError(t, err)
			assert.Equal(t, uint64(7), balance)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	minElapsed := time.Duration(float64(calls-1) / rps * float64(time.Second))
	assert.GreaterOrEqual(t, elapsed, minElapsed)
}

func TestRateLimited_CancelledContext(t *testing.T) {
	client := RateLimited(NewMemoryClient(), 0.001)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetBalance(ctx, mustAddress(t))
	assert.Error(t, err)
}

func TestRateLimited_NonPositiveRateReturnsInner(t *testing.T) {
	inner := NewMemoryClient()
	assert.Same(t, Client(inner), RateLimited(inner, 0))
	assert.Same(t, Client(inner), RateLimited(inner, -1))
}

func mustAddress(t *testing.T) Address {
	t.Helper()
	kp, err := NewKeypair()
	require.NoError(t, err)
	return kp.Address()
}
