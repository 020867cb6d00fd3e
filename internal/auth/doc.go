// Package auth models the caller capability check: a request is accepted
// only if it carries an ed25519 signature by the owner over the canonical
// request message.
//
// The signed message is SHA256("stockslot/request/v1" || 0x00 || canon(m))
// where m = {data, op, program, request_id, signer} and data is the base58
// instruction data, so every argument byte is covered. Request ids are
// UUIDv7 strings; the journal refuses to commit the same id twice.
package auth
