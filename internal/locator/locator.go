package locator

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MaxTagLen is the largest seed the address derivation accepts.
const MaxTagLen = 32

var (
	// ErrAddressMismatch means (tag, owner, bump) does not reproduce the
	// address a caller presented or a slot was stored under.
	ErrAddressMismatch = errors.New("address mismatch")

	// ErrInvalidTag means the namespace tag is empty or too long to be a seed.
	ErrInvalidTag = errors.New("invalid namespace tag")
)

// Namespace is the process-wide derivation context: the fixed tag mixed
// into every slot address and the program the addresses belong to.
type Namespace struct {
	Tag       string
	ProgramID solana.PublicKey
}

// Locator is a derived slot address together with its bump.
type Locator struct {
	Address solana.PublicKey `json:"address"`
	Bump    uint8            `json:"bump"`
}

// Guard rejects calls whose claimed address cannot be re-derived.
type Guard interface {
	Verify(owner solana.PublicKey, bump uint8, claimed solana.PublicKey) error
}

// NewNamespace validates tag and returns a Namespace.
func NewNamespace(tag string, programID solana.PublicKey) (Namespace, error) {
	if len(tag) == 0 || len(tag) > MaxTagLen {
		return Namespace{}, fmt.Errorf("%w: %d bytes (want 1..%d)", ErrInvalidTag, len(tag), MaxTagLen)
	}
	return Namespace{Tag: tag, ProgramID: programID}, nil
}

func (n Namespace) seeds(owner solana.PublicKey) [][]byte {
	return [][]byte{[]byte(n.Tag), owner.Bytes()}
}

// Derive returns the canonical address and bump for owner.
func (n Namespace) Derive(owner solana.PublicKey) (Locator, error) {
	addr, bump, err := solana.FindProgramAddress(n.seeds(owner), n.ProgramID)
	if err != nil {
		return Locator{}, fmt.Errorf("derive %s: %w", owner, err)
	}
	return Locator{Address: addr, Bump: bump}, nil
}

// Address computes the address for an explicit bump. Bumps that land on
// the curve have no address and return an error.
func (n Namespace) Address(owner solana.PublicKey, bump uint8) (solana.PublicKey, error) {
	seeds := append(n.seeds(owner), []byte{bump})
	addr, err := solana.CreateProgramAddress(seeds, n.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("address %s bump %d: %w", owner, bump, err)
	}
	return addr, nil
}

// Verify checks that (tag, owner, bump) derives to claimed.
func (n Namespace) Verify(owner solana.PublicKey, bump uint8, claimed solana.PublicKey) error {
	addr, err := n.Address(owner, bump)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAddressMismatch, err)
	}
	if !addr.Equals(claimed) {
		return fmt.Errorf("%w: derived %s, claimed %s", ErrAddressMismatch, addr, claimed)
	}
	return nil
}

// VerifyCanonical is Verify plus the requirement that bump is the one
// Derive would pick. Slot creation uses it so an owner cannot register a
// second, non-canonical slot.
func (n Namespace) VerifyCanonical(owner solana.PublicKey, bump uint8, claimed solana.PublicKey) error {
	loc, err := n.Derive(owner)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAddressMismatch, err)
	}
	if bump != loc.Bump {
		return fmt.Errorf("%w: bump %d is not canonical (want %d)", ErrAddressMismatch, bump, loc.Bump)
	}
	return n.Verify(owner, bump, claimed)
}
