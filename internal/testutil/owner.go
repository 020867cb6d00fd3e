package testutil

import (
	"crypto/sha256"
	"fmt"

	"github.com/roach88/stockslot/internal/auth"
)

// Owner returns the keypair for a named test owner. The ed25519 seed is
// sha256("stockslot/test-owner/" + name), so a name always maps to the
// same public key and slot address.
func Owner(name string) (*auth.Keypair, error) {
	if name == "" {
		return nil, fmt.Errorf("owner name is empty")
	}
	seed := sha256.Sum256([]byte("stockslot/test-owner/" + name))
	return auth.KeypairFromSeed(seed[:])
}

// Owners returns keypairs for every name, keyed by name.
func Owners(names ...string) (map[string]*auth.Keypair, error) {
	owners := make(map[string]*auth.Keypair, len(names))
	for _, name := range names {
		if _, dup := owners[name]; dup {
			return nil, fmt.Errorf("duplicate owner %q", name)
		}
		kp, err := Owner(name)
		if err != nil {
			return nil, err
		}
		owners[name] = kp
	}
	return owners, nil
}
