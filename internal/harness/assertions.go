package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/stockslot/internal/program"
	"github.com/roach88/stockslot/internal/slot"
)

// AssertionContext gives assertions access to the scenario's final state.
type AssertionContext struct {
	Ctx     context.Context
	Harness *Harness
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s %v -> %s\n", event.Seq, event.Owner, event.Op, event.Args, event.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertRecords:
			err = assertRecords(result.Trace, a, actx)
		case AssertNoProducts:
			err = assertNoProducts(result.Trace, a, actx)
		case AssertJournal:
			err = assertJournal(result.Trace, a, actx)
		case AssertSlotCount:
			err = assertSlotCount(result.Trace, a, actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

// listRecords reads an owner's slot through the program, as the owner.
func listRecords(actx *AssertionContext, owner string) ([]slot.Record, error) {
	h := actx.Harness
	kp := h.owners[owner]
	req := program.CheckRequest{}
	proof, err := program.SignRequest(kp, h.program.Namespace().ProgramID, h.name+"-assert", req)
	if err != nil {
		return nil, err
	}
	req.Proof = proof
	return h.program.CheckStore(actx.Ctx, req)
}

// assertRecords checks the owner's slot lists exactly the expected records.
func assertRecords(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	want := make([]slot.Record, len(a.Records))
	for i, r := range a.Records {
		want[i] = slot.Record{Item: r.Item, Price: r.Price, Quantity: r.Quantity, EntryDate: *r.EntryDate}
	}

	got, err := listRecords(actx, a.Owner)
	if err != nil {
		return &AssertionError{
			Type:     AssertRecords,
			Expected: fmt.Sprintf("%s lists %v", a.Owner, want),
			Actual:   err.Error(),
			Trace:    trace,
		}
	}
	if !reflect.DeepEqual(got, want) {
		return &AssertionError{
			Type:     AssertRecords,
			Expected: fmt.Sprintf("%s lists %v", a.Owner, want),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertNoProducts checks the owner's slot exists and is empty.
func assertNoProducts(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	got, err := listRecords(actx, a.Owner)
	if program.IsNoProducts(err) {
		return nil
	}
	actual := fmt.Sprintf("%d records", len(got))
	if err != nil {
		actual = err.Error()
	}
	return &AssertionError{
		Type:     AssertNoProducts,
		Expected: fmt.Sprintf("%s's slot is empty", a.Owner),
		Actual:   actual,
		Trace:    trace,
	}
}

// assertJournal checks the owner's committed ops, in order.
func assertJournal(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	h := actx.Harness
	invocations, err := h.store.ReadInvocations(actx.Ctx, h.owners[a.Owner].PublicKey().String())
	if err != nil {
		return err
	}

	got := make([]string, len(invocations))
	for i, inv := range invocations {
		got[i] = inv.Op
	}
	if !reflect.DeepEqual(got, a.Ops) {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("%s journal %v", a.Owner, a.Ops),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertSlotCount checks how many slots are allocated.
func assertSlotCount(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	n, err := actx.Harness.store.CountAccounts(actx.Ctx)
	if err != nil {
		return err
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertSlotCount,
			Expected: fmt.Sprintf("%d slots", a.Count),
			Actual:   fmt.Sprintf("%d slots", n),
			Trace:    trace,
		}
	}
	return nil
}
