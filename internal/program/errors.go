package program

import (
	"errors"
	"fmt"

	"github.com/roach88/stockslot/internal/auth"
	"github.com/roach88/stockslot/internal/locator"
	"github.com/roach88/stockslot/internal/slot"
	"github.com/roach88/stockslot/internal/store"
)

// ErrorCode categorizes a failed request.
type ErrorCode string

const (
	// ErrCodeNoProducts: check_store on a slot with no records.
	ErrCodeNoProducts ErrorCode = "NO_PRODUCTS"

	// ErrCodeSlotAlreadyExists: initialize on an allocated address.
	ErrCodeSlotAlreadyExists ErrorCode = "SLOT_ALREADY_EXISTS"

	// ErrCodeAddressMismatch: (tag, owner, bump) does not derive the address.
	ErrCodeAddressMismatch ErrorCode = "ADDRESS_MISMATCH"

	// ErrCodeStorageExhausted: the record does not fit in the slot account.
	ErrCodeStorageExhausted ErrorCode = "STORAGE_EXHAUSTED"

	// ErrCodeSlotNotFound: the owner has no slot.
	ErrCodeSlotNotFound ErrorCode = "SLOT_NOT_FOUND"

	// ErrCodeUnauthorized: the proof does not verify.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// ErrCodeDuplicateRequest: the request id was already committed.
	ErrCodeDuplicateRequest ErrorCode = "DUPLICATE_REQUEST"

	// ErrCodeInvalidAccount: stored bytes are not a slot account.
	ErrCodeInvalidAccount ErrorCode = "INVALID_ACCOUNT"

	// ErrCodeInternal: anything else (I/O, database).
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error is returned by every Program operation. Err keeps the underlying
// sentinel so errors.Is works through it.
type Error struct {
	Code    ErrorCode
	Op      string
	Owner   string
	Address string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("%s: %s: %v (address=%s)", e.Code, e.Op, e.Err, e.Address)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// sentinels maps package errors to codes. Order matters only if an error
// wraps more than one sentinel.
var sentinels = []struct {
	err  error
	code ErrorCode
}{
	{auth.ErrUnauthorized, ErrCodeUnauthorized},
	{locator.ErrAddressMismatch, ErrCodeAddressMismatch},
	{store.ErrDuplicateRequest, ErrCodeDuplicateRequest},
	{store.ErrSlotAlreadyExists, ErrCodeSlotAlreadyExists},
	{store.ErrSlotNotFound, ErrCodeSlotNotFound},
	{slot.ErrNoProducts, ErrCodeNoProducts},
	{slot.ErrStorageExhausted, ErrCodeStorageExhausted},
	{slot.ErrInvalidAccount, ErrCodeInvalidAccount},
}

// classify returns the code for err.
func classify(err error) ErrorCode {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return ErrCodeInternal
}

func newError(op, owner, address string, err error) *Error {
	return &Error{Code: classify(err), Op: op, Owner: owner, Address: address, Err: err}
}

// CodeOf returns the code of a Program error, or "" if err is not one.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsNoProducts reports whether err is NO_PRODUCTS.
func IsNoProducts(err error) bool { return CodeOf(err) == ErrCodeNoProducts }

// IsSlotAlreadyExists reports whether err is SLOT_ALREADY_EXISTS.
func IsSlotAlreadyExists(err error) bool { return CodeOf(err) == ErrCodeSlotAlreadyExists }

// IsAddressMismatch reports whether err is ADDRESS_MISMATCH.
func IsAddressMismatch(err error) bool { return CodeOf(err) == ErrCodeAddressMismatch }

// IsStorageExhausted reports whether err is STORAGE_EXHAUSTED.
func IsStorageExhausted(err error) bool { return CodeOf(err) == ErrCodeStorageExhausted }

// IsSlotNotFound reports whether err is SLOT_NOT_FOUND.
func IsSlotNotFound(err error) bool { return CodeOf(err) == ErrCodeSlotNotFound }
