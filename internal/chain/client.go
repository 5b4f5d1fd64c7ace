package chain

import (
	"context"
	"errors"
)

// TxRef identifies a transaction submitted to the asset network.
type TxRef string

// ConfirmationStatus is the network's attestation level for a submitted
// transaction. StatusUnknown means the network does not know the reference
// (yet); StatusFinalized means the transaction is durably committed.
type ConfirmationStatus int

const (
	StatusUnknown ConfirmationStatus = iota
	StatusProcessed
	StatusConfirmed
	StatusFinalized
)

func (s ConfirmationStatus) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusProcessed:
		return "processed"
	case StatusConfirmed:
		return "confirmed"
	case StatusFinalized:
		return "finalized"
	default:
		return "invalid"
	}
}

// AtLeast reports whether s has reached the target confirmation level.
func (s ConfirmationStatus) AtLeast(target ConfirmationStatus) bool {
	return s != StatusUnknown && s >= target
}

// ErrAccountNotFound is returned by balance queries for accounts the network
// has never seen.
var ErrAccountNotFound = errors.New("account not found")

// Client is the asset-network client the token gateway is built over.
// Implementations must be safe for concurrent use.
type Client interface {
	// AccountExists reports whether the network knows the account.
	AccountExists(ctx context.Context, account Address) (bool, error)

	// GetBalance returns the native balance of an account.
	GetBalance(ctx context.Context, account Address) (uint64, error)

	// GetTokenBalance returns the token amount held by a holding account.
	// Returns ErrAccountNotFound when the account was never provisioned.
	GetTokenBalance(ctx context.Context, account Address) (uint64, error)

	// CreateTokenAccount provisions the holding account associated with the
	// wallet for the given mint and returns its address.
	CreateTokenAccount(ctx context.Context, wallet, mint Address) (Address, error)

	// TransferTokens submits a token transfer between two holding accounts,
	// signed by the owner of the source account, and returns the transaction
	// reference to poll for finality.
	TransferTokens(ctx context.Context, source, dest Address, owner Keypair, amount uint64) (TxRef, error)

	// CreateMint provisions a new token mint controlled by authority.
	CreateMint(ctx context.Context, authority Keypair, decimals uint8) (Address, error)

	// MintTo issues new token supply into a holding account.
	MintTo(ctx context.Context, mint, dest Address, authority Keypair, amount uint64) (TxRef, error)

	// RequestAirdrop credits native balance to a wallet (test clusters only).
	RequestAirdrop(ctx context.Context, wallet Address, amount uint64) (TxRef, error)

	// SignatureStatus returns the current confirmation level of a submitted
	// transaction. StatusUnknown for references the network has not seen.
	SignatureStatus(ctx context.Context, ref TxRef) (ConfirmationStatus, error)
}
