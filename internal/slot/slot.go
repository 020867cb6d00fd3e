// Package slot holds an owner's append-only product records.
//
// A Slot is created once with an empty record list and a fixed bump,
// grows only through Append and is read through List. Persistence lives
// elsewhere; this package owns the in-memory container, its fixed-size
// account encoding and the capacity rule.
package slot

import (
	"errors"
	"fmt"
)

// DefaultCapacity is the payload budget of a slot account, excluding the
// 8-byte discriminator.
const DefaultCapacity = 1000

var (
	// ErrNoProducts is returned by List on a slot with no records.
	ErrNoProducts = errors.New("No Products in Store.")

	// ErrStorageExhausted means the record does not fit in the account.
	ErrStorageExhausted = errors.New("storage exhausted")

	// ErrInvalidAccount means account bytes are not a slot.
	ErrInvalidAccount = errors.New("invalid slot account")
)

// Record is one incoming stock entry. Price is free text and is kept
// byte-for-byte; see ParsePrice for a structured view.
type Record struct {
	Item      string `json:"item"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
	EntryDate int64  `json:"entrydate"`
}

// Slot is the per-owner record container.
type Slot struct {
	Records []Record
	Bump    uint8
}

// New returns an empty slot bound to bump.
func New(bump uint8) *Slot {
	return &Slot{Records: []Record{}, Bump: bump}
}

// Append adds rec at the end. If the encoded slot would exceed capacity
// the slot is left unchanged and ErrStorageExhausted is returned.
func (s *Slot) Append(rec Record, capacity int) error {
	need := s.EncodedLen() + recordLen(rec)
	if need > capacity {
		return fmt.Errorf("%w: need %d bytes, capacity %d", ErrStorageExhausted, need, capacity)
	}
	s.Records = append(s.Records, rec)
	return nil
}

// List returns a copy of the records in insertion order.
func (s *Slot) List() ([]Record, error) {
	if len(s.Records) == 0 {
		return nil, ErrNoProducts
	}
	out := make([]Record, len(s.Records))
	copy(out, s.Records)
	return out, nil
}

// Len returns the number of records.
func (s *Slot) Len() int {
	return len(s.Records)
}

// EncodedLen is the size of the Borsh body: vec length prefix, records,
// trailing bump byte.
func (s *Slot) EncodedLen() int {
	n := 4 + 1
	for _, r := range s.Records {
		n += recordLen(r)
	}
	return n
}

// Remaining reports how many payload bytes are still free.
func (s *Slot) Remaining(capacity int) int {
	return capacity - s.EncodedLen()
}

func recordLen(r Record) int {
	return 4 + len(r.Item) + 4 + len(r.Price) + 8 + 8
}
