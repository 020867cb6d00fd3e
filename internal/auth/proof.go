package auth

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/roach88/stockslot/internal/canon"
)

// RequestDomain separates request signatures from any other use of the
// same key.
const RequestDomain = "stockslot/request/v1"

// ErrUnauthorized means the caller did not prove control of the owner key.
var ErrUnauthorized = errors.New("unauthorized")

// Proof is what a caller presents with every request.
type Proof struct {
	Signer    solana.PublicKey `json:"signer"`
	RequestID string           `json:"request_id"`
	Signature solana.Signature `json:"signature"`
}

// Message returns the digest the signer signs for one request. data is
// the request's instruction data; it is carried base58 encoded so the
// signature covers it byte for byte.
func Message(programID solana.PublicKey, op string, signer solana.PublicKey, requestID string, data []byte) ([]byte, error) {
	payload, err := canon.Marshal(map[string]any{
		"data":       base58.Encode(data),
		"op":         op,
		"program":    programID.String(),
		"request_id": requestID,
		"signer":     signer.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("request message: %w", err)
	}
	sum := canon.Hash(RequestDomain, payload)
	return sum[:], nil
}

// Verifier checks proofs before any slot logic runs.
type Verifier interface {
	Verify(p Proof, op string, data []byte) error
}

// SignatureVerifier verifies ed25519 proofs bound to one program.
type SignatureVerifier struct {
	ProgramID solana.PublicKey
}

// Verify implements Verifier.
func (v SignatureVerifier) Verify(p Proof, op string, data []byte) error {
	if p.Signer.IsZero() {
		return fmt.Errorf("%w: missing signer", ErrUnauthorized)
	}
	if p.RequestID == "" {
		return fmt.Errorf("%w: missing request id", ErrUnauthorized)
	}
	msg, err := Message(v.ProgramID, op, p.Signer, p.RequestID, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !p.Signature.Verify(p.Signer, msg) {
		return fmt.Errorf("%w: bad signature from %s", ErrUnauthorized, p.Signer)
	}
	return nil
}
