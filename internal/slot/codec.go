package slot

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// AccountName names the account type in its discriminator.
const AccountName = "StoreAccount"

// DiscriminatorLen is the account header size.
const DiscriminatorLen = 8

// Discriminator is sha256("account:StoreAccount")[:8], the header every
// slot account starts with.
var Discriminator = accountDiscriminator(AccountName)

func accountDiscriminator(name string) [DiscriminatorLen]byte {
	var d [DiscriminatorLen]byte
	sum := sha256.Sum256([]byte("account:" + name))
	copy(d[:], sum[:DiscriminatorLen])
	return d
}

// AccountSize is the fixed number of bytes allocated for a slot account.
func AccountSize(capacity int) int {
	return DiscriminatorLen + capacity
}

// Encode lays the slot out as discriminator || borsh(records) || bump,
// zero-padded to AccountSize(capacity).
func (s *Slot) Encode(capacity int) ([]byte, error) {
	if n := s.EncodedLen(); n > capacity {
		return nil, fmt.Errorf("encode slot: %w: need %d bytes, capacity %d", ErrStorageExhausted, n, capacity)
	}

	buf := bytes.NewBuffer(make([]byte, 0, AccountSize(capacity)))
	buf.Write(Discriminator[:])

	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint32(uint32(len(s.Records)), bin.LE); err != nil {
		return nil, fmt.Errorf("encode slot: %w", err)
	}
	for i, r := range s.Records {
		if err := r.MarshalWithEncoder(enc); err != nil {
			return nil, fmt.Errorf("encode slot: record %d: %w", i, err)
		}
	}
	if err := enc.WriteUint8(s.Bump); err != nil {
		return nil, fmt.Errorf("encode slot: %w", err)
	}

	out := buf.Bytes()
	return append(out, make([]byte, AccountSize(capacity)-len(out))...), nil
}

// MarshalWithEncoder writes r as borsh (string, string, i64, i64).
func (r Record) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteString(r.Item); err != nil {
		return err
	}
	if err := enc.WriteString(r.Price); err != nil {
		return err
	}
	if err := enc.WriteInt64(r.Quantity, bin.LE); err != nil {
		return err
	}
	return enc.WriteInt64(r.EntryDate, bin.LE)
}

// minRecordLen is the encoded size of a record with empty strings.
const minRecordLen = 4 + 4 + 8 + 8

// Decode parses account bytes produced by Encode. Trailing padding is
// ignored.
func Decode(data []byte) (*Slot, error) {
	if len(data) < DiscriminatorLen+5 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidAccount, len(data))
	}
	if !bytes.Equal(data[:DiscriminatorLen], Discriminator[:]) {
		return nil, fmt.Errorf("%w: discriminator %x", ErrInvalidAccount, data[:DiscriminatorLen])
	}

	body := data[DiscriminatorLen:]
	dec := bin.NewBorshDecoder(body)

	count, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("%w: record count: %v", ErrInvalidAccount, err)
	}
	if int64(count)*minRecordLen > int64(len(body)) {
		return nil, fmt.Errorf("%w: %d records cannot fit in %d bytes", ErrInvalidAccount, count, len(body))
	}

	s := &Slot{Records: make([]Record, 0, count)}
	for i := uint32(0); i < count; i++ {
		var r Record
		if err := r.UnmarshalWithDecoder(dec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidAccount, i, err)
		}
		s.Records = append(s.Records, r)
	}

	if s.Bump, err = dec.ReadUint8(); err != nil {
		return nil, fmt.Errorf("%w: bump: %v", ErrInvalidAccount, err)
	}
	return s, nil
}

// UnmarshalWithDecoder reads a record written by MarshalWithEncoder.
func (r *Record) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if r.Item, err = dec.ReadString(); err != nil {
		return fmt.Errorf("item: %w", err)
	}
	if r.Price, err = dec.ReadString(); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	if r.Quantity, err = dec.ReadInt64(bin.LE); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	if r.EntryDate, err = dec.ReadInt64(bin.LE); err != nil {
		return fmt.Errorf("entrydate: %w", err)
	}
	return nil
}
