package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmelnik/token-lending/internal/chain"
)

// TokenDecimals is the precision of custodied token mints.
const TokenDecimals = 9

// GatewayConfig is the persisted custodian identity: the owner keypair and
// the token mint it controls, both in base58 text form.
type GatewayConfig struct {
	Owner string `json:"owner"`
	Mint  string `json:"mint"`
}

// Factory stands up TokenGateways, provisioning a fresh custodian identity
// (wallet, mint, initial supply) when none exists yet.
type Factory struct {
	client        chain.Client
	wallets       *WalletGateway
	airdropAmount uint64
	mintAmount    uint64
	confirm       *chain.ConfirmOptions
}

func NewFactory(client chain.Client, airdropAmount, mintAmount uint64) *Factory {
	return &Factory{
		client:        client,
		wallets:       NewWalletGateway(client),
		airdropAmount: airdropAmount,
		mintAmount:    mintAmount,
	}
}

// WithConfirmOptions overrides the confirmation budget used during
// provisioning. Mainly for tests.
func (f *Factory) WithConfirmOptions(opts *chain.ConfirmOptions) *Factory {
	f.confirm = opts
	f.wallets.WithConfirmOptions(opts)
	return f
}

// FromConfig builds a gateway for an existing custodian identity.
func (f *Factory) FromConfig(cfg GatewayConfig) (*TokenGateway, error) {
	owner, err := chain.KeypairFromBase58(cfg.Owner)
	if err != nil {
		return nil, fmt.Errorf("gateway config owner: %w", err)
	}
	mint, err := chain.ParseAddress(cfg.Mint)
	if err != nil {
		return nil, fmt.Errorf("gateway config mint: %w", err)
	}

	return NewTokenGateway(f.client, owner, mint).WithConfirmOptions(f.confirm), nil
}

// FromWallet provisions a brand-new custodian identity around the given
// funded wallet: creates the token mint, the custodian's holding account, and
// mints the initial supply into it.
func (f *Factory) FromWallet(ctx context.Context, wallet chain.Keypair) (*TokenGateway, error) {
	cfg, err := f.provision(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return f.FromConfig(cfg)
}

// FromPath loads the custodian identity from a JSON config file, provisioning
// a new funded wallet plus mint and writing the file when it does not exist.
func (f *Factory) FromPath(ctx context.Context, path string) (*TokenGateway, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		var cfg GatewayConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse gateway config %s: %w", path, err)
		}
		return f.FromConfig(cfg)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read gateway config %s: %w", path, err)
	}

	log.Printf("gateway config %s not found, provisioning a new custodian", path)

	wallet, err := f.wallets.Create(ctx, f.airdropAmount)
	if err != nil {
		return nil, fmt.Errorf("provision custodian wallet: %w", err)
	}

	cfg, err := f.provision(ctx, wallet)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("save gateway config %s: %w", path, err)
	}
	log.Printf("gateway config saved: path=%s mint=%s owner=%s", path, cfg.Mint, wallet.Address())

	return f.FromConfig(cfg)
}

func (f *Factory) provision(ctx context.Context, wallet chain.Keypair) (GatewayConfig, error) {
	log.Printf("initializing a new token mint: wallet=%s", wallet.Address())
	mint, err := f.client.CreateMint(ctx, wallet, TokenDecimals)
	if err != nil {
		return GatewayConfig{}, fmt.Errorf("create mint: %w", err)
	}

	account, err := f.client.CreateTokenAccount(ctx, wallet.Address(), mint)
	if err != nil {
		return GatewayConfig{}, fmt.Errorf("create custodian token account: %w", err)
	}

	ref, err := f.client.MintTo(ctx, mint, account, wallet, f.mintAmount)
	if err != nil {
		return GatewayConfig{}, fmt.Errorf("mint initial supply: %w", err)
	}

	ok, err := chain.AwaitConfirmation(ctx, f.client, ref, chain.StatusFinalized, f.confirm)
	if err != nil {
		return GatewayConfig{}, err
	}
	if !ok {
		return GatewayConfig{}, fmt.Errorf("mint transaction %s was not finalized", ref)
	}

	log.Printf("new token minted: mint=%s account=%s amount=%d", mint, account, f.mintAmount)

	return GatewayConfig{
		Owner: wallet.Base58(),
		Mint:  mint.String(),
	}, nil
}
