// Package harness runs slot scenarios as executable contract tests.
//
// A scenario names a set of owners, a flow of signed requests against a
// fresh in-memory store, and assertions over the resulting slots and
// journal. Every step records a trace event; traces are compared against
// golden files.
//
// # Scenario Format
//
//	name: yoghurt_and_milk
//	description: "Records come back in insertion order"
//	capacity: 1000        # optional, payload bytes per slot
//	seed: store_account   # optional, namespace tag
//	owners: [alice, bob]
//	flow:
//	  - owner: alice
//	    op: create        # create | append | list | history
//	  - owner: alice
//	    op: append
//	    record: { item: Milk, price: "1", quantity: 5, entrydate: 1001 }
//	  - owner: bob
//	    op: list
//	    address_of: alice # claim alice's slot address
//	    expect: { outcome: ADDRESS_MISMATCH }
//	assertions:
//	  - type: records
//	    owner: alice
//	    records:
//	      - { item: Milk, price: "1", quantity: 5, entrydate: 1001 }
//	  - type: no_products
//	    owner: bob
//	  - type: journal
//	    owner: alice
//	    ops: [initialize, record_incoming]
//	  - type: slot_count
//	    count: 2
//
// A step without expect must succeed (outcome OK).
//
// # Deterministic Testing
//
// Owner keys come from testutil.Owner, so a name always maps to the same
// slot address. Request ids are "<scenario>-<step>" unless a step sets
// request_id, and omitted entry dates come from a logical clock starting
// at 1700000000.
package harness
