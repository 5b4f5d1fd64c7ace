package chain

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// Address is a base58-encoded ed25519 public key on the asset network.
type Address string

// ParseAddress validates that s is base58 text decoding to a 32-byte key.
func ParseAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return "", fmt.Errorf("address must decode to %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return Address(s), nil
}

func (a Address) String() string { return string(a) }

// PublicKey returns the raw ed25519 public key behind the address.
func (a Address) PublicKey() (ed25519.PublicKey, error) {
	raw, err := base58.Decode(string(a))
	if err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("address must decode to %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// Keypair is an ed25519 signing identity. The base58 text form encodes the
// 64-byte private key (seed followed by public key), matching the common
// wallet export format.
type Keypair struct {
	priv ed25519.PrivateKey
}

func NewKeypair() (Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, fmt.Errorf("generate keypair: %w", err)
	}
	return Keypair{priv: priv}, nil
}

func KeypairFromBase58(s string) (Keypair, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Keypair{}, fmt.Errorf("decode keypair: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return Keypair{}, fmt.Errorf("keypair must decode to %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return Keypair{priv: ed25519.PrivateKey(raw)}, nil
}

func (k Keypair) Address() Address {
	pub := k.priv.Public().(ed25519.PublicKey)
	return Address(base58.Encode(pub))
}

func (k Keypair) Sign(msg []byte) Signature {
	return Signature(ed25519.Sign(k.priv, msg))
}

func (k Keypair) Base58() string {
	return base58.Encode(k.priv)
}

// Signature is a 64-byte ed25519 signature.
type Signature []byte

func ParseSignature(s string) (Signature, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != ed25519.SignatureSize {
		return nil, fmt.Errorf("signature must decode to %d bytes, got %d", ed25519.SignatureSize, len(raw))
	}
	return Signature(raw), nil
}

// Verify reports whether the signature was produced over msg by the private
// key behind wallet. An unparseable wallet address fails verification.
func (s Signature) Verify(wallet Address, msg []byte) bool {
	pub, err := wallet.PublicKey()
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, msg, s)
}

func (s Signature) String() string { return base58.Encode(s) }

// DeriveTokenAccount computes the holding-account address associated with a
// wallet for a given token mint. The derivation is deterministic, so callers
// can resolve the account without a network round trip.
func DeriveTokenAccount(wallet, mint Address) Address {
	h := sha256.New()
	h.Write([]byte("token-account"))
	h.Write([]byte(wallet))
	h.Write([]byte(mint))
	return Address(base58.Encode(h.Sum(nil)))
}
