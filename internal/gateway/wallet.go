package gateway

import (
	"context"
	"fmt"
	"log"

	"github.com/dmelnik/token-lending/internal/chain"
)

// WalletGateway provisions funded wallets on the asset network. Setup-time
// operations only; the steady-state lending saga never calls it.
type WalletGateway struct {
	client  chain.Client
	confirm *chain.ConfirmOptions
}

func NewWalletGateway(client chain.Client) *WalletGateway {
	return &WalletGateway{client: client}
}

// WithConfirmOptions overrides the retry/confirmation budget. Mainly for
// tests.
func (w *WalletGateway) WithConfirmOptions(opts *chain.ConfirmOptions) *WalletGateway {
	w.confirm = opts
	return w
}

// Create generates a keypair and funds it with the given native amount.
func (w *WalletGateway) Create(ctx context.Context, amount uint64) (chain.Keypair, error) {
	wallet, err := chain.NewKeypair()
	if err != nil {
		return chain.Keypair{}, err
	}

	if err := w.InitBalance(ctx, wallet.Address(), amount); err != nil {
		return chain.Keypair{}, err
	}

	return wallet, nil
}

// InitBalance airdrops amount to the wallet, retrying the request with the
// standard backoff budget and waiting for the funding transaction to
// finalize.
func (w *WalletGateway) InitBalance(ctx context.Context, wallet chain.Address, amount uint64) error {
	log.Printf("requesting airdrop: wallet=%s amount=%d", wallet, amount)

	ref, err := w.requestAirdrop(ctx, wallet, amount)
	if err != nil {
		return fmt.Errorf("airdrop request failed: %w", err)
	}

	finalized, err := chain.AwaitConfirmation(ctx, w.client, ref, chain.StatusFinalized, w.confirm)
	if err != nil {
		return err
	}
	if !finalized {
		return fmt.Errorf("airdrop transaction %s was not finalized", ref)
	}

	log.Printf("airdrop finalized: wallet=%s amount=%d ref=%s", wallet, amount, ref)
	return nil
}

func (w *WalletGateway) requestAirdrop(ctx context.Context, wallet chain.Address, amount uint64) (chain.TxRef, error) {
	var lastErr error

	opts := w.confirm.Normalize()
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		ref, err := w.client.RequestAirdrop(ctx, wallet, amount)
		if err == nil {
			return ref, nil
		}
		lastErr = err
		log.Printf("airdrop attempt failed: wallet=%s attempt=%d err=%v", wallet, attempt, err)

		if attempt+1 < opts.MaxAttempts {
			if err := opts.Sleep(ctx, opts.Delay(attempt)); err != nil {
				return "", err
			}
		}
	}

	return "", lastErr
}
