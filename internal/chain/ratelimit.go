package chain

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps inner so that every forwarded call first waits on a
// shared token bucket of rps calls per second. The limiter serializes its
// internal state, so concurrently suspended callers cannot exceed the gate.
// A non-positive rps returns inner unwrapped.
func RateLimited(inner Client, rps float64) Client {
	if rps <= 0 {
		return inner
	}
	return &rateLimitedClient{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type rateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

func (c *rateLimitedClient) AccountExists(ctx context.Context, account Address) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}
	return c.inner.AccountExists(ctx, account)
}

func (c *rateLimitedClient) GetBalance(ctx context.Context, account Address) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return c.inner.GetBalance(ctx, account)
}

func (c *rateLimitedClient) GetTokenBalance(ctx context.Context, account Address) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return c.inner.GetTokenBalance(ctx, account)
}

func (c *rateLimitedClient) CreateTokenAccount(ctx context.Context, wallet, mint Address) (Address, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.CreateTokenAccount(ctx, wallet, mint)
}

func (c *rateLimitedClient) TransferTokens(ctx context.Context, source, dest Address, owner Keypair, amount uint64) (TxRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.TransferTokens(ctx, source, dest, owner, amount)
}

func (c *rateLimitedClient) CreateMint(ctx context.Context, authority Keypair, decimals uint8) (Address, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.CreateMint(ctx, authority, decimals)
}

func (c *rateLimitedClient) MintTo(ctx context.Context, mint, dest Address, authority Keypair, amount uint64) (TxRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.MintTo(ctx, mint, dest, authority, amount)
}

func (c *rateLimitedClient) RequestAirdrop(ctx context.Context, wallet Address, amount uint64) (TxRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.RequestAirdrop(ctx, wallet, amount)
}

func (c *rateLimitedClient) SignatureStatus(ctx context.Context, ref TxRef) (ConfirmationStatus, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return StatusUnknown, err
	}
	return c.inner.SignatureStatus(ctx, ref)
}
