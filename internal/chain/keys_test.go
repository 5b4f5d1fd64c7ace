package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeypairRoundtrip(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)

	restored, err := KeypairFromBase58(kp.Base58())
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), restored.Address())
}

func TestParseAddress(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)

	addr, err := ParseAddress(kp.Address().String())
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), addr)

	_, err = ParseAddress("not-base58-0OIl")
	assert.Error(t, err)

	// Valid base58 but wrong length.
	_, err = ParseAddress("3yZe7d")
	assert.Error(t, err)
}

func TestSignatureVerify(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)
	msg := []byte("loan-id-bytes")

	sig := kp.Sign(msg)
	assert.True(t, sig.Verify(kp.Address(), msg))

	// Tampered message.
	assert.False(t, sig.Verify(kp.Address(), []byte("other-bytes")))

	// Signature from a different keypair.
	other, err := NewKeypair()
	require.NoError(t, err)
	assert.False(t, other.Sign(msg).Verify(kp.Address(), msg))

	// Unparseable wallet never verifies.
	assert.False(t, sig.Verify(Address("garbage"), msg))
}

func TestParseSignatureRoundtrip(t *testing.T) {
	kp, err := NewKeypair()
	require.NoError(t, err)
	sig := kp.Sign([]byte("msg"))

	parsed, err := ParseSignature(sig.String())
	require.NoError(t, err)
	assert.True(t, parsed.Verify(kp.Address(), []byte("msg")))

	_, err = ParseSignature("3yZe7d")
	assert.Error(t, err)
}

func TestDeriveTokenAccount(t *testing.T) {
	walletA := Address("walletA")
	walletB := Address("walletB")
	mint := Address("mint")

	// Deterministic for the same inputs, distinct across wallets and from
	// the inputs themselves.
	assert.Equal(t, DeriveTokenAccount(walletA, mint), DeriveTokenAccount(walletA, mint))
	assert.NotEqual(t, DeriveTokenAccount(walletA, mint), DeriveTokenAccount(walletB, mint))
	assert.NotEqual(t, walletA, DeriveTokenAccount(walletA, mint))
	assert.NotEqual(t, mint, DeriveTokenAccount(walletA, mint))
}
