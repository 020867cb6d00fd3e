package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertSlotCount,
		Expected: "2 slots",
		Actual:   "1 slots",
		Trace: []TraceEvent{
			{Seq: 1, Owner: "alice", Op: OpCreate, Outcome: OutcomeOK},
			{Seq: 2, Owner: "bob", Op: OpCreate, Outcome: "SLOT_ALREADY_EXISTS"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: slot_count")
	assert.Contains(t, msg, "  Expected: 2 slots\n")
	assert.Contains(t, msg, "  Actual: 1 slots\n")
	assert.Contains(t, msg, "  [1] alice create map[] -> OK\n")
	assert.Contains(t, msg, "  [2] bob create map[] -> SLOT_ALREADY_EXISTS\n")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	failures := EvaluateAssertions(NewResult(), []Assertion{{Type: "bogus"}}, &AssertionContext{})
	assert.Equal(t, []string{`assertions[0]: unknown assertion type "bogus"`}, failures)
}
