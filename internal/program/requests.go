package program

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/roach88/stockslot/internal/auth"
	"github.com/roach88/stockslot/internal/slot"
)

// Operation names, as signed and journaled.
const (
	OpInitialize     = "initialize"
	OpRecordIncoming = "record_incoming"
	OpCheckStore     = "check_store"
	OpHistory        = "history"
)

// InitializeRequest creates the caller's slot. Address is optional; when
// set it must equal the canonical derived address.
type InitializeRequest struct {
	Proof   auth.Proof
	Bump    uint8
	Address solana.PublicKey
}

// Op implements Request.
func (InitializeRequest) Op() string { return OpInitialize }

// Data implements Request: bump u8, address Option<Pubkey>.
func (r InitializeRequest) Data() ([]byte, error) {
	return instructionData(OpInitialize, func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(r.Bump); err != nil {
			return err
		}
		return writeOptionalAddress(enc, r.Address)
	})
}

// Args returns the journaled arguments.
func (r InitializeRequest) Args() map[string]any {
	return withAddress(map[string]any{"bump": r.Bump}, r.Address)
}

// RecordRequest appends one record to the caller's slot.
type RecordRequest struct {
	Proof     auth.Proof
	Address   solana.PublicKey
	Item      string
	Price     string
	Quantity  int64
	EntryDate int64
}

// Record returns the record the request appends.
func (r RecordRequest) Record() slot.Record {
	return slot.Record{
		Item:      r.Item,
		Price:     r.Price,
		Quantity:  r.Quantity,
		EntryDate: r.EntryDate,
	}
}

// Op implements Request.
func (RecordRequest) Op() string { return OpRecordIncoming }

// Data implements Request: the record as borsh (string, string, i64, i64),
// then address Option<Pubkey>.
func (r RecordRequest) Data() ([]byte, error) {
	return instructionData(OpRecordIncoming, func(enc *bin.Encoder) error {
		if err := r.Record().MarshalWithEncoder(enc); err != nil {
			return err
		}
		return writeOptionalAddress(enc, r.Address)
	})
}

// Args returns the journaled arguments in readable form. String values
// are NFC normalized here; Data keeps the exact bytes.
func (r RecordRequest) Args() map[string]any {
	return withAddress(map[string]any{
		"item":      r.Item,
		"price":     r.Price,
		"quantity":  r.Quantity,
		"entrydate": r.EntryDate,
	}, r.Address)
}

// CheckRequest reads the caller's slot.
type CheckRequest struct {
	Proof   auth.Proof
	Address solana.PublicKey
}

// Op implements Request.
func (CheckRequest) Op() string { return OpCheckStore }

// Data implements Request: address Option<Pubkey>.
func (r CheckRequest) Data() ([]byte, error) {
	return instructionData(OpCheckStore, func(enc *bin.Encoder) error {
		return writeOptionalAddress(enc, r.Address)
	})
}

// HistoryRequest reads the caller's journal.
type HistoryRequest struct {
	Proof auth.Proof
}

// Op implements Request.
func (HistoryRequest) Op() string { return OpHistory }

// Data implements Request. History takes no arguments.
func (HistoryRequest) Data() ([]byte, error) {
	return instructionData(OpHistory, nil)
}

func withAddress(args map[string]any, addr solana.PublicKey) map[string]any {
	if !addr.IsZero() {
		args["address"] = addr.String()
	}
	return args
}

// Receipt describes a committed mutating request.
type Receipt struct {
	RequestID string `json:"request_id"`
	Seq       int64  `json:"seq"`
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
	Records   int    `json:"records"`
	Remaining int    `json:"remaining"`
}
