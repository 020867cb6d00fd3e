// Package locator computes where an owner's slot lives.
//
// A slot address is a program-derived address (PDA): the first
// SHA-256("seed..." || programID || "ProgramDerivedAddress") that does not
// lie on the ed25519 curve, searched from bump 255 downward. The seeds are
// the namespace tag, the owner's public key and the bump byte, so an owner
// maps to exactly one canonical address and no private key can ever sign
// for it.
//
// Nothing here performs I/O. The dispatcher calls Verify before any slot
// logic runs; a failed check is ErrAddressMismatch.
package locator
