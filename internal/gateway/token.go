package gateway

import (
	"context"
	"log"

	"github.com/dmelnik/token-lending/internal/chain"
)

// TokenGateway wraps balance inspection and value movement for one token mint
// custodied by the owner keypair. It holds no durable state of its own; the
// asset network is the source of truth.
type TokenGateway struct {
	client  chain.Client
	owner   chain.Keypair
	mint    chain.Address
	confirm *chain.ConfirmOptions
}

func NewTokenGateway(client chain.Client, owner chain.Keypair, mint chain.Address) *TokenGateway {
	return &TokenGateway{
		client: client,
		owner:  owner,
		mint:   mint,
	}
}

// WithConfirmOptions overrides the confirmation polling budget used by
// Transfer. Mainly for tests.
func (g *TokenGateway) WithConfirmOptions(opts *chain.ConfirmOptions) *TokenGateway {
	g.confirm = opts
	return g
}

func (g *TokenGateway) Mint() chain.Address { return g.mint }

// OwnerWallet is the custodian's own wallet address, the source of all
// transferred value.
func (g *TokenGateway) OwnerWallet() chain.Address { return g.owner.Address() }

// Account resolves the holding account associated with a wallet for this
// gateway's mint. Pure derivation, no network call.
func (g *TokenGateway) Account(wallet chain.Address) chain.Address {
	return chain.DeriveTokenAccount(wallet, g.mint)
}

// GetAccountAmount returns the token amount held for the wallet. ok is false
// when the holding account does not exist or the network call failed in a way
// indistinguishable from "no balance"; failures are logged, not propagated.
func (g *TokenGateway) GetAccountAmount(ctx context.Context, wallet chain.Address) (uint64, bool) {
	account := g.Account(wallet)

	amount, err := g.client.GetTokenBalance(ctx, account)
	if err != nil {
		log.Printf("token balance lookup failed: wallet=%s account=%s err=%v", wallet, account, err)
		return 0, false
	}

	return amount, true
}

// GetOrCreateAccount resolves the wallet's holding account, provisioning it
// on the network when it does not exist yet. Idempotent from the caller's
// perspective.
func (g *TokenGateway) GetOrCreateAccount(ctx context.Context, wallet chain.Address) (chain.Address, error) {
	account := g.Account(wallet)

	exists, err := g.client.AccountExists(ctx, account)
	if err != nil {
		return "", err
	}
	if !exists {
		return g.CreateAccount(ctx, wallet)
	}

	return account, nil
}

// CreateAccount provisions the wallet's holding account on the network.
func (g *TokenGateway) CreateAccount(ctx context.Context, wallet chain.Address) (chain.Address, error) {
	log.Printf("creating token account: wallet=%s mint=%s", wallet, g.mint)

	account, err := g.client.CreateTokenAccount(ctx, wallet, g.mint)
	if err != nil {
		return "", err
	}
	log.Printf("token account created: wallet=%s account=%s", wallet, account)

	return account, nil
}

// Transfer moves amount from the custodian's holding account to the wallet's
// and awaits transaction finality. A submission error yields (false, nil),
// logged rather than propagated, because the caller decides the ledger rollback. A
// confirmation timeout also yields (false, nil) even though the movement may
// have completed on-network; that ambiguity is accepted and the ledger treats
// it as a failure. Errors while provisioning the destination account are
// infrastructure faults and are returned as such.
func (g *TokenGateway) Transfer(ctx context.Context, wallet chain.Address, amount uint64) (bool, error) {
	source := g.Account(g.owner.Address())

	dest, err := g.GetOrCreateAccount(ctx, wallet)
	if err != nil {
		return false, err
	}

	log.Printf("transfer started: source=%s dest=%s amount=%d", source, dest, amount)
	ref, err := g.client.TransferTokens(ctx, source, dest, g.owner, amount)
	if err != nil {
		log.Printf("transfer failed: source=%s dest=%s amount=%d err=%v", source, dest, amount, err)
		return false, nil
	}

	ok, err := chain.AwaitConfirmation(ctx, g.client, ref, chain.StatusFinalized, g.confirm)
	if err != nil {
		return false, err
	}
	if !ok {
		log.Printf("transfer finalized status was not received, assuming transaction failed: source=%s dest=%s amount=%d ref=%s",
			source, dest, amount, ref)
		return false, nil
	}

	log.Printf("transfer succeeded: source=%s dest=%s amount=%d ref=%s", source, dest, amount, ref)
	return true, nil
}
