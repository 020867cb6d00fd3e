// Package store provides SQLite-backed durable storage for slot accounts.
//
// Two tables:
//   - accounts: one fixed-size row per derived slot address, holding the
//     encoded slot bytes plus owner, payer and allocated space
//   - invocations: an append-only journal of committed mutating requests,
//     keyed by request id and ordered by seq
//
// # Allocation Boundary
//
// CreateAccount inserts with ON CONFLICT(address) DO NOTHING. A zero row
// count means the address is taken and surfaces as ErrSlotAlreadyExists;
// the existing row is never touched.
//
// # Atomicity
//
// Callers group their reads and writes with Update, which runs them in one
// transaction and rolls back on any error. Nothing a failed call did is
// visible afterwards.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
