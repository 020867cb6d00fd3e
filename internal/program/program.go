package program

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/roach88/stockslot/internal/auth"
	"github.com/roach88/stockslot/internal/canon"
	"github.com/roach88/stockslot/internal/locator"
	"github.com/roach88/stockslot/internal/slot"
	"github.com/roach88/stockslot/internal/store"
)

// Program dispatches requests to slots in one namespace.
type Program struct {
	ns       locator.Namespace
	capacity int
	store    *store.Store
	verifier auth.Verifier
	logger   *slog.Logger
}

// Option configures a Program.
type Option func(*Program)

// WithCapacity sets the payload size allocated for new slots.
func WithCapacity(n int) Option {
	return func(p *Program) { p.capacity = n }
}

// WithVerifier replaces the signature verifier.
func WithVerifier(v auth.Verifier) Option {
	return func(p *Program) { p.verifier = v }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Program) { p.logger = l }
}

// New returns a Program over st.
func New(st *store.Store, ns locator.Namespace, opts ...Option) *Program {
	p := &Program{
		ns:       ns,
		capacity: slot.DefaultCapacity,
		store:    st,
		verifier: auth.SignatureVerifier{ProgramID: ns.ProgramID},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Namespace returns the derivation namespace.
func (p *Program) Namespace() locator.Namespace {
	return p.ns
}

// Locate derives owner's slot address and canonical bump.
func (p *Program) Locate(owner solana.PublicKey) (locator.Locator, error) {
	return p.ns.Derive(owner)
}

// Initialize allocates the caller's slot with an empty record list.
func (p *Program) Initialize(ctx context.Context, req InitializeRequest) (Receipt, error) {
	owner := req.Proof.Signer
	args := req.Args()

	data, err := p.authorize(req.Proof, req)
	if err != nil {
		return Receipt{}, p.fail(OpInitialize, owner, "", err)
	}

	address, err := p.resolve(owner, req.Address)
	if err != nil {
		return Receipt{}, p.fail(OpInitialize, owner, "", err)
	}
	addr := address.String()

	if err := p.ns.VerifyCanonical(owner, req.Bump, address); err != nil {
		return Receipt{}, p.fail(OpInitialize, owner, addr, err)
	}

	s := slot.New(req.Bump)
	account, err := s.Encode(p.capacity)
	if err != nil {
		return Receipt{}, p.fail(OpInitialize, owner, addr, err)
	}
	argsJSON, err := canon.Marshal(args)
	if err != nil {
		return Receipt{}, p.fail(OpInitialize, owner, addr, err)
	}

	var rc Receipt
	err = p.store.Update(ctx, func(tx *store.Tx) error {
		seq, err := tx.NextSeq(ctx)
		if err != nil {
			return err
		}
		if err := tx.CreateAccount(ctx, store.Account{
			Address:    addr,
			ProgramID:  p.ns.ProgramID.String(),
			Owner:      owner.String(),
			Payer:      owner.String(),
			Space:      len(account),
			Data:       account,
			CreatedSeq: seq,
			UpdatedSeq: seq,
		}); err != nil {
			return err
		}
		if err := tx.WriteInvocation(ctx, store.Invocation{
			ID:      req.Proof.RequestID,
			Seq:     seq,
			Op:      OpInitialize,
			Owner:   owner.String(),
			Address: addr,
			Args:    string(argsJSON),
			Data:    data,
		}); err != nil {
			return err
		}
		rc = Receipt{
			RequestID: req.Proof.RequestID,
			Seq:       seq,
			Address:   addr,
			Bump:      req.Bump,
			Remaining: s.Remaining(p.capacity),
		}
		return nil
	})
	if err != nil {
		return Receipt{}, p.fail(OpInitialize, owner, addr, err)
	}

	p.logger.Debug("slot created",
		"owner", owner.String(), "address", addr, "bump", req.Bump,
		"space", len(account), "request_id", rc.RequestID, "seq", rc.Seq)
	return rc, nil
}

// RecordIncoming appends one record to the caller's slot.
func (p *Program) RecordIncoming(ctx context.Context, req RecordRequest) (Receipt, error) {
	owner := req.Proof.Signer
	args := req.Args()

	data, err := p.authorize(req.Proof, req)
	if err != nil {
		return Receipt{}, p.fail(OpRecordIncoming, owner, "", err)
	}

	address, err := p.resolve(owner, req.Address)
	if err != nil {
		return Receipt{}, p.fail(OpRecordIncoming, owner, "", err)
	}
	addr := address.String()

	argsJSON, err := canon.Marshal(args)
	if err != nil {
		return Receipt{}, p.fail(OpRecordIncoming, owner, addr, err)
	}

	rec := req.Record()

	var rc Receipt
	err = p.store.Update(ctx, func(tx *store.Tx) error {
		acct, err := tx.LoadAccount(ctx, addr)
		if err != nil {
			return err
		}
		s, err := p.openSlot(owner, address, acct)
		if err != nil {
			return err
		}

		capacity := acct.Space - slot.DiscriminatorLen
		if err := s.Append(rec, capacity); err != nil {
			return err
		}
		account, err := s.Encode(capacity)
		if err != nil {
			return err
		}

		seq, err := tx.NextSeq(ctx)
		if err != nil {
			return err
		}
		if err := tx.WriteInvocation(ctx, store.Invocation{
			ID:      req.Proof.RequestID,
			Seq:     seq,
			Op:      OpRecordIncoming,
			Owner:   owner.String(),
			Address: addr,
			Args:    string(argsJSON),
			Data:    data,
			Records: s.Len(),
		}); err != nil {
			return err
		}
		if err := tx.UpdateAccountData(ctx, addr, account, seq); err != nil {
			return err
		}

		rc = Receipt{
			RequestID: req.Proof.RequestID,
			Seq:       seq,
			Address:   addr,
			Bump:      s.Bump,
			Records:   s.Len(),
			Remaining: s.Remaining(capacity),
		}
		return nil
	})
	if err != nil {
		return Receipt{}, p.fail(OpRecordIncoming, owner, addr, err)
	}

	p.logger.Debug("record appended",
		"owner", owner.String(), "address", addr, "item", req.Item,
		"records", rc.Records, "remaining", rc.Remaining,
		"request_id", rc.RequestID, "seq", rc.Seq)
	return rc, nil
}

// CheckStore returns the caller's records in insertion order. An empty
// slot is NO_PRODUCTS; a missing one is SLOT_NOT_FOUND.
func (p *Program) CheckStore(ctx context.Context, req CheckRequest) ([]slot.Record, error) {
	owner := req.Proof.Signer

	if _, err := p.authorize(req.Proof, req); err != nil {
		return nil, p.fail(OpCheckStore, owner, "", err)
	}

	address, err := p.resolve(owner, req.Address)
	if err != nil {
		return nil, p.fail(OpCheckStore, owner, "", err)
	}
	addr := address.String()

	acct, err := p.store.ReadAccount(ctx, addr)
	if err != nil {
		return nil, p.fail(OpCheckStore, owner, addr, err)
	}
	s, err := p.openSlot(owner, address, acct)
	if err != nil {
		return nil, p.fail(OpCheckStore, owner, addr, err)
	}

	records, err := s.List()
	if err != nil {
		return nil, p.fail(OpCheckStore, owner, addr, err)
	}

	p.logger.Debug("store checked", "owner", owner.String(), "address", addr, "records", len(records))
	return records, nil
}

// History returns the caller's committed requests in seq order.
func (p *Program) History(ctx context.Context, req HistoryRequest) ([]store.Invocation, error) {
	owner := req.Proof.Signer

	if _, err := p.authorize(req.Proof, req); err != nil {
		return nil, p.fail(OpHistory, owner, "", err)
	}

	invocations, err := p.store.ReadInvocations(ctx, owner.String())
	if err != nil {
		return nil, p.fail(OpHistory, owner, "", err)
	}
	return invocations, nil
}

// authorize checks proof against req's instruction data and returns the
// data for journaling.
func (p *Program) authorize(proof auth.Proof, req Request) ([]byte, error) {
	data, err := req.Data()
	if err != nil {
		return nil, err
	}
	if err := p.verifier.Verify(proof, req.Op(), data); err != nil {
		return nil, err
	}
	return data, nil
}

// resolve returns the claimed address, or the canonical one if none was
// claimed.
func (p *Program) resolve(owner, claimed solana.PublicKey) (solana.PublicKey, error) {
	if !claimed.IsZero() {
		return claimed, nil
	}
	loc, err := p.ns.Derive(owner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return loc.Address, nil
}

// openSlot decodes an account and guards its address with the stored bump.
func (p *Program) openSlot(owner, address solana.PublicKey, acct store.Account) (*slot.Slot, error) {
	if acct.ProgramID != p.ns.ProgramID.String() {
		return nil, fmt.Errorf("%w: owned by program %s", slot.ErrInvalidAccount, acct.ProgramID)
	}
	s, err := slot.Decode(acct.Data)
	if err != nil {
		return nil, err
	}
	if err := p.ns.Verify(owner, s.Bump, address); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Program) fail(op string, owner solana.PublicKey, address string, err error) *Error {
	perr := newError(op, owner.String(), address, err)
	level := slog.LevelWarn
	if perr.Code == ErrCodeInternal {
		level = slog.LevelError
	}
	p.logger.Log(context.Background(), level, op+" failed",
		"owner", perr.Owner, "address", address, "code", string(perr.Code), "error", err)
	return perr
}
