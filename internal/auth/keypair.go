package auth

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// Keypair is an owner's signing key.
type Keypair struct {
	key solana.PrivateKey
}

// NewKeypair generates a fresh ed25519 keypair.
func NewKeypair() (*Keypair, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Keypair{key: key}, nil
}

// KeypairFromSeed derives a keypair from a 32-byte ed25519 seed.
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("keypair seed: want %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Keypair{key: solana.PrivateKey(ed25519.NewKeyFromSeed(seed))}, nil
}

// LoadKeypair reads a solana-keygen JSON keypair file.
func LoadKeypair(path string) (*Keypair, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", path, err)
	}
	return &Keypair{key: key}, nil
}

// Save writes the keypair in solana-keygen format (a JSON array of the 64
// secret key bytes). The file is created with mode 0600.
func (k *Keypair) Save(path string) error {
	ints := make([]int, len(k.key))
	for i, b := range k.key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return fmt.Errorf("save keypair: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save keypair: %w", err)
	}
	return nil
}

// PublicKey returns the owner identity.
func (k *Keypair) PublicKey() solana.PublicKey {
	return k.key.PublicKey()
}

// Sign produces a Proof for one request.
func (k *Keypair) Sign(programID solana.PublicKey, op, requestID string, data []byte) (Proof, error) {
	signer := k.PublicKey()
	msg, err := Message(programID, op, signer, requestID, data)
	if err != nil {
		return Proof{}, err
	}
	sig, err := k.key.Sign(msg)
	if err != nil {
		return Proof{}, fmt.Errorf("sign %s: %w", op, err)
	}
	return Proof{Signer: signer, RequestID: requestID, Signature: sig}, nil
}
