package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmelnik/token-lending/internal/chain"
)

var noSleep = &chain.ConfirmOptions{
	MaxAttempts:   3,
	InitialDelay:  time.Nanosecond,
	BackoffFactor: 1,
	Sleep:         func(ctx context.Context, d time.Duration) error { return nil },
}

// newTestGateway provisions a custodian with a funded supply on a fresh
// simulated cluster.
func newTestGateway(t *testing.T, client *chain.MemoryClient) *TokenGateway {
	t.Helper()
	ctx := context.Background()

	factory := NewFactory(client, 10, 1_000_000).WithConfirmOptions(noSleep)
	wallet, err := factory.wallets.Create(ctx, 10)
	require.NoError(t, err)

	gw, err := factory.FromWallet(ctx, wallet)
	require.NoError(t, err)
	return gw.WithConfirmOptions(noSleep)
}

func newBorrowerWallet(t *testing.T) chain.Address {
	t.Helper()
	kp, err := chain.NewKeypair()
	require.NoError(t, err)
	return kp.Address()
}

func TestTokenGateway_TransferMovesFullAmount(t *testing.T) {
	client := chain.NewMemoryClient()
	gw := newTestGateway(t, client)
	ctx := context.Background()
	borrower := newBorrowerWallet(t)

	ownerBefore, ok := gw.GetAccountAmount(ctx, gw.OwnerWallet())
	require.True(t, ok)

	done, err := gw.Transfer(ctx, borrower, 12345)
	require.NoError(t, err)
	assert.True(t, done)

	got, ok := gw.GetAccountAmount(ctx, borrower)
	require.True(t, ok)
	assert.Equal(t, uint64(12345), got)

	ownerAfter, ok := gw.GetAccountAmount(ctx, gw.OwnerWallet())
	require.True(t, ok)
	assert.Equal(t, ownerBefore-12345, ownerAfter)
}

func TestTokenGateway_SubmissionErrorIsNotFatal(t *testing.T) {
	client := chain.NewMemoryClient()
	gw := newTestGateway(t, client)
	ctx := context.Background()

	client.SetTransferError(errors.New("node rejected the transaction"))

	done, err := gw.Transfer(ctx, newBorrowerWallet(t), 100)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestTokenGateway_ConfirmationTimeout(t *testing.T) {
	client := chain.NewMemoryClient()
	gw := newTestGateway(t, client)
	ctx := context.Background()

	// More non-final polls than the confirmation budget allows.
	client.SetFinalizeAfterPolls(noSleep.MaxAttempts + 1)

	done, err := gw.Transfer(ctx, newBorrowerWallet(t), 100)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestTokenGateway_GetAccountAmountMissingAccount(t *testing.T) {
	client := chain.NewMemoryClient()
	gw := newTestGateway(t, client)

	_, ok := gw.GetAccountAmount(context.Background(), newBorrowerWallet(t))
	assert.False(t, ok)
}

func TestTokenGateway_GetOrCreateAccountIdempotent(t *testing.T) {
	client := chain.NewMemoryClient()
	gw := newTestGateway(t, client)
	ctx := context.Background()
	borrower := newBorrowerWallet(t)

	first, err := gw.GetOrCreateAccount(ctx, borrower)
	require.NoError(t, err)
	assert.Equal(t, gw.Account(borrower), first)

	second, err := gw.GetOrCreateAccount(ctx, borrower)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
