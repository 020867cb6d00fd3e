package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/roach88/stockslot/internal/auth"
	"github.com/roach88/stockslot/internal/config"
	"github.com/roach88/stockslot/internal/locator"
	"github.com/roach88/stockslot/internal/program"
	"github.com/roach88/stockslot/internal/slot"
	"github.com/roach88/stockslot/internal/store"
	"github.com/roach88/stockslot/internal/testutil"
)

// entryDateEpoch is where the harness clock starts.
const entryDateEpoch = 1700000000

// Harness executes one scenario.
type Harness struct {
	name    string
	store   *store.Store
	program *program.Program
	owners  map[string]*auth.Keypair
	clock   *testutil.DeterministicClock
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// A step whose outcome differs from its expect clause, or a failed
// assertion, marks the result as failed; the returned error is reserved
// for scenarios the harness cannot execute at all.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h, err := newHarness(scenario, st)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Flow {
		ev, err := h.execute(ctx, i, step)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
		result.AddTrace(ev)
		checkExpect(i, step, ev, result)
	}

	actx := &AssertionContext{Ctx: ctx, Harness: h}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func newHarness(scenario *Scenario, st *store.Store) (*Harness, error) {
	owners, err := testutil.Owners(scenario.Owners...)
	if err != nil {
		return nil, err
	}

	seed := scenario.Seed
	if seed == "" {
		seed = config.DefaultSeed
	}
	ns, err := locator.NewNamespace(seed, solana.MustPublicKeyFromBase58(config.DefaultProgramID))
	if err != nil {
		return nil, err
	}

	opts := []program.Option{
		program.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	}
	if scenario.Capacity > 0 {
		opts = append(opts, program.WithCapacity(scenario.Capacity))
	}

	return &Harness{
		name:    scenario.Name,
		store:   st,
		program: program.New(st, ns, opts...),
		owners:  owners,
		clock:   testutil.NewDeterministicClock(entryDateEpoch),
	}, nil
}

// execute runs one step. Program errors become the event's outcome; only
// failures to build the request are returned.
func (h *Harness) execute(ctx context.Context, i int, step Step) (TraceEvent, error) {
	ev := TraceEvent{
		Seq:   int64(i + 1),
		Owner: step.Owner,
		Op:    step.Op,
		Args:  map[string]any{},
	}
	kp := h.owners[step.Owner]

	var claimed solana.PublicKey
	if step.AddressOf != "" {
		loc, err := h.program.Locate(h.owners[step.AddressOf].PublicKey())
		if err != nil {
			return ev, err
		}
		claimed = loc.Address
		ev.Args["address_of"] = step.AddressOf
	}

	requestID := step.RequestID
	if requestID == "" {
		requestID = fmt.Sprintf("%s-%03d", h.name, i+1)
	}
	sign := func(req program.Request) (auth.Proof, error) {
		return program.SignRequest(kp, h.program.Namespace().ProgramID, requestID, req)
	}

	var (
		records int
		opErr   error
		err     error
	)

	switch step.Op {
	case OpCreate:
		loc, err := h.program.Locate(kp.PublicKey())
		if err != nil {
			return ev, err
		}
		bump := int(loc.Bump) + step.BumpOffset
		if bump < 0 || bump > 255 {
			return ev, fmt.Errorf("bump %d out of range", bump)
		}
		if step.BumpOffset != 0 {
			ev.Args["bump_offset"] = step.BumpOffset
		}

		req := program.InitializeRequest{Bump: uint8(bump), Address: claimed}
		if req.Proof, err = sign(req); err != nil {
			return ev, err
		}
		var rc program.Receipt
		rc, opErr = h.program.Initialize(ctx, req)
		records = rc.Records

	case OpAppend:
		rec := recordFromArgs(*step.Record, h.clock)
		ev.Args["item"] = rec.Item
		ev.Args["price"] = rec.Price
		ev.Args["quantity"] = rec.Quantity
		ev.Args["entrydate"] = rec.EntryDate

		req := program.RecordRequest{
			Address:   claimed,
			Item:      rec.Item,
			Price:     rec.Price,
			Quantity:  rec.Quantity,
			EntryDate: rec.EntryDate,
		}
		if req.Proof, err = sign(req); err != nil {
			return ev, err
		}
		var rc program.Receipt
		rc, opErr = h.program.RecordIncoming(ctx, req)
		records = rc.Records

	case OpList:
		req := program.CheckRequest{Address: claimed}
		if req.Proof, err = sign(req); err != nil {
			return ev, err
		}
		var listed []slot.Record
		listed, opErr = h.program.CheckStore(ctx, req)
		records = len(listed)

	case OpHistory:
		req := program.HistoryRequest{}
		if req.Proof, err = sign(req); err != nil {
			return ev, err
		}
		var journal []store.Invocation
		journal, opErr = h.program.History(ctx, req)
		records = len(journal)

	default:
		return ev, fmt.Errorf("unknown op %q", step.Op)
	}

	ev.Outcome = outcomeOf(opErr)
	if opErr == nil {
		ev.Records = records
	}
	if len(ev.Args) == 0 {
		ev.Args = nil
	}
	return ev, nil
}

func recordFromArgs(a RecordArgs, clock *testutil.DeterministicClock) slot.Record {
	rec := slot.Record{Item: a.Item, Price: a.Price, Quantity: a.Quantity}
	if a.EntryDate != nil {
		rec.EntryDate = *a.EntryDate
	} else {
		rec.EntryDate = clock.Next()
	}
	return rec
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := program.CodeOf(err); code != "" {
		return string(code)
	}
	return string(program.ErrCodeInternal)
}

// checkExpect compares a step's event with its expect clause.
func checkExpect(i int, step Step, ev TraceEvent, result *Result) {
	want := OutcomeOK
	if step.Expect != nil {
		want = step.Expect.Outcome
	}
	if ev.Outcome != want {
		result.AddError(fmt.Sprintf("flow[%d] %s %s: outcome %s, expected %s", i, step.Owner, step.Op, ev.Outcome, want))
		return
	}
	if step.Expect != nil && step.Expect.Records != nil && *step.Expect.Records != ev.Records {
		result.AddError(fmt.Sprintf("flow[%d] %s %s: %d records, expected %d", i, step.Owner, step.Op, ev.Records, *step.Expect.Records))
	}
}
