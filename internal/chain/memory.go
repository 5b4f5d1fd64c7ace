package chain

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"
)

// MemoryClient is an in-process simulated cluster implementing Client. It
// models native balances, token mints, holding accounts and transaction
// confirmation levels, and offers fault-injection knobs for tests and local
// runs. Value moves at submission time; SignatureStatus only controls when
// the movement becomes observable as finalized.
type MemoryClient struct {
	mu sync.Mutex

	balances      map[Address]uint64
	mints         map[Address]*mintState
	tokenAccounts map[Address]*tokenAccountState
	txs           map[TxRef]*txState

	seq uint64

	// fault injection
	finalizeAfterPolls int
	transferErr        error
	airdropErr         error
}

type mintState struct {
	authority Address
	decimals  uint8
	supply    uint64
}

type tokenAccountState struct {
	mint   Address
	wallet Address
	amount uint64
}

type txState struct {
	polls int
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		balances:      make(map[Address]uint64),
		mints:         make(map[Address]*mintState),
		tokenAccounts: make(map[Address]*tokenAccountState),
		txs:           make(map[TxRef]*txState),
	}
}

// SetFinalizeAfterPolls makes every transaction report a non-final status for
// the first n SignatureStatus calls. Zero finalizes on the first poll.
func (c *MemoryClient) SetFinalizeAfterPolls(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finalizeAfterPolls = n
}

// SetTransferError makes TransferTokens fail at submission with err.
func (c *MemoryClient) SetTransferError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transferErr = err
}

// SetAirdropError makes RequestAirdrop fail with err.
func (c *MemoryClient) SetAirdropError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.airdropErr = err
}

func (c *MemoryClient) AccountExists(ctx context.Context, account Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tokenAccounts[account]; ok {
		return true, nil
	}
	if _, ok := c.mints[account]; ok {
		return true, nil
	}
	_, ok := c.balances[account]
	return ok, nil
}

func (c *MemoryClient) GetBalance(ctx context.Context, account Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	balance, ok := c.balances[account]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return balance, nil
}

func (c *MemoryClient) GetTokenBalance(ctx context.Context, account Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.tokenAccounts[account]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return state.amount, nil
}

func (c *MemoryClient) CreateTokenAccount(ctx context.Context, wallet, mint Address) (Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.mints[mint]; !ok {
		return "", fmt.Errorf("mint %s does not exist", mint)
	}
	account := DeriveTokenAccount(wallet, mint)
	if _, ok := c.tokenAccounts[account]; ok {
		return "", fmt.Errorf("token account %s already exists", account)
	}
	c.tokenAccounts[account] = &tokenAccountState{mint: mint, wallet: wallet}
	return account, nil
}

func (c *MemoryClient) TransferTokens(ctx context.Context, source, dest Address, owner Keypair, amount uint64) (TxRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transferErr != nil {
		return "", c.transferErr
	}

	src, ok := c.tokenAccounts[source]
	if !ok {
		return "", fmt.Errorf("source account %s does not exist", source)
	}
	dst, ok := c.tokenAccounts[dest]
	if !ok {
		return "", fmt.Errorf("destination account %s does not exist", dest)
	}
	if src.mint != dst.mint {
		return "", fmt.Errorf("accounts belong to different mints")
	}
	if src.wallet != owner.Address() {
		return "", fmt.Errorf("owner %s does not control source account", owner.Address())
	}
	if src.amount < amount {
		return "", fmt.Errorf("insufficient token balance: have %d, want %d", src.amount, amount)
	}

	src.amount -= amount
	dst.amount += amount

	return c.recordTx(), nil
}

func (c *MemoryClient) CreateMint(ctx context.Context, authority Keypair, decimals uint8) (Address, error) {
	kp, err := NewKeypair()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	mint := kp.Address()
	c.mints[mint] = &mintState{authority: authority.Address(), decimals: decimals}
	return mint, nil
}

func (c *MemoryClient) MintTo(ctx context.Context, mint, dest Address, authority Keypair, amount uint64) (TxRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.mints[mint]
	if !ok {
		return "", fmt.Errorf("mint %s does not exist", mint)
	}
	if m.authority != authority.Address() {
		return "", fmt.Errorf("%s is not the mint authority", authority.Address())
	}
	dst, ok := c.tokenAccounts[dest]
	if !ok {
		return "", fmt.Errorf("destination account %s does not exist", dest)
	}
	if dst.mint != mint {
		return "", fmt.Errorf("destination account belongs to another mint")
	}

	m.supply += amount
	dst.amount += amount

	return c.recordTx(), nil
}

func (c *MemoryClient) RequestAirdrop(ctx context.Context, wallet Address, amount uint64) (TxRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.airdropErr != nil {
		return "", c.airdropErr
	}

	c.balances[wallet] += amount
	return c.recordTx(), nil
}

func (c *MemoryClient) SignatureStatus(ctx context.Context, ref TxRef) (ConfirmationStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, ok := c.txs[ref]
	if !ok {
		return StatusUnknown, nil
	}
	tx.polls++
	if tx.polls <= c.finalizeAfterPolls {
		return StatusConfirmed, nil
	}
	return StatusFinalized, nil
}

// recordTx must be called with the lock held.
func (c *MemoryClient) recordTx() TxRef {
	c.seq++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], c.seq)
	sum := sha256.Sum256(buf[:])
	ref := TxRef(base58.Encode(sum[:]))
	c.txs[ref] = &txState{}
	return ref
}
