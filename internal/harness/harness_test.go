package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name must match its file")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Flow))
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/owner_isolation.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_UnexpectedOutcome(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectation
description: "list on an empty slot expected to succeed"
owners: [alice]
flow:
  - owner: alice
    op: create
  - owner: alice
    op: list
assertions:
  - type: slot_count
    count: 1
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "flow[1] alice list: outcome NO_PRODUCTS, expected OK")
}

func TestRun_UnexpectedRecordCount(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_count
description: "append reports the new length"
owners: [alice]
flow:
  - owner: alice
    op: create
  - owner: alice
    op: append
    record: { item: Milk, price: "1", quantity: 5 }
    expect: { outcome: OK, records: 2 }
assertions:
  - type: slot_count
    count: 1
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "1 records, expected 2")
}

func TestRun_FailedAssertion(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: failed_assertion
description: "records assertion sees the real slot"
owners: [alice]
flow:
  - owner: alice
    op: create
  - owner: alice
    op: append
    record: { item: Milk, price: "1", quantity: 5, entrydate: 7 }
assertions:
  - type: records
    owner: alice
    records:
      - { item: Cheese, price: "1", quantity: 5, entrydate: 7 }
  - type: no_products
    owner: alice
  - type: journal
    owner: alice
    ops: [initialize]
  - type: slot_count
    count: 3
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Assertion failed: records")
	assert.Contains(t, result.Errors[1], "Assertion failed: no_products")
	assert.Contains(t, result.Errors[2], "Assertion failed: journal")
	assert.Contains(t, result.Errors[3], "Expected: 3 slots")
}

func TestRun_DefaultEntryDates(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: clock
description: "omitted entry dates tick one second per append"
owners: [alice]
flow:
  - owner: alice
    op: create
  - owner: alice
    op: append
    record: { item: A, price: "1", quantity: 1 }
  - owner: alice
    op: append
    record: { item: B, price: "1", quantity: 1, entrydate: 42 }
  - owner: alice
    op: append
    record: { item: C, price: "1", quantity: 1 }
assertions:
  - type: records
    owner: alice
    records:
      - { item: A, price: "1", quantity: 1, entrydate: 1700000001 }
      - { item: B, price: "1", quantity: 1, entrydate: 42 }
      - { item: C, price: "1", quantity: 1, entrydate: 1700000002 }
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_CustomSeed(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: custom_seed
description: "slots work under any namespace tag"
seed: warehouse
owners: [alice]
flow:
  - owner: alice
    op: create
  - owner: alice
    op: history
    expect: { outcome: OK, records: 1 }
assertions:
  - type: no_products
    owner: alice
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_InvalidSeed(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: long_seed
description: "tags longer than 32 bytes cannot derive"
seed: abcdefghijklmnopqrstuvwxyz0123456789
owners: [alice]
flow:
  - owner: alice
    op: create
assertions:
  - type: slot_count
    count: 0
`))
	require.NoError(t, err)

	_, err = Run(scenario)
	assert.Error(t, err)
}

func TestTraceSnapshot_Marshal(t *testing.T) {
	snapshot := TraceSnapshot{
		ScenarioName: "s",
		Trace: []TraceEvent{
			{Seq: 1, Owner: "alice", Op: OpCreate, Outcome: OutcomeOK},
			{Seq: 2, Owner: "alice", Op: OpList, Args: map[string]any{"address_of": "bob"}, Outcome: "ADDRESS_MISMATCH"},
		},
	}

	data, err := snapshot.Marshal()
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"s","trace":[`+
			`{"op":"create","outcome":"OK","owner":"alice","records":0,"seq":1},`+
			`{"args":{"address_of":"bob"},"op":"list","outcome":"ADDRESS_MISMATCH","owner":"alice","records":0,"seq":2}]}`,
		string(data))
}
