// Package program is the host boundary around a slot.
//
// Every operation runs the same pipeline: verify the caller's proof,
// resolve the slot address, guard the address against (tag, owner, bump),
// then run slot logic inside one store transaction. Any failure aborts the
// whole request and is returned as *Error with a stable code.
//
// Operations:
//   - Initialize: allocate an owner's slot (payer is the owner)
//   - RecordIncoming: append one record
//   - CheckStore: list records, NO_PRODUCTS when empty
//   - History: the owner's journal of committed requests
package program
