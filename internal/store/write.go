package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Tx is a store transaction handed to Update callbacks.
type Tx struct {
	tx *sql.Tx
}

// NextSeq returns the next journal sequence number.
func (t *Tx) NextSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := t.tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM invocations`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

// CreateAccount allocates a new account. Returns ErrSlotAlreadyExists if
// the address is taken; the existing row is left as it was.
func (t *Tx) CreateAccount(ctx context.Context, acct Account) error {
	if len(acct.Data) != acct.Space {
		return fmt.Errorf("create account %s: data is %d bytes, space is %d", acct.Address, len(acct.Data), acct.Space)
	}

	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO accounts
		(address, program_id, owner, payer, space, data, created_seq, updated_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(address) DO NOTHING
	`,
		acct.Address,
		acct.ProgramID,
		acct.Owner,
		acct.Payer,
		acct.Space,
		acct.Data,
		acct.CreatedSeq,
		acct.UpdatedSeq,
	)
	if err != nil {
		return fmt.Errorf("create account %s: %w", acct.Address, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create account %s: rows affected: %w", acct.Address, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("create account %s: %w", acct.Address, ErrSlotAlreadyExists)
	}
	return nil
}

// LoadAccount reads an account inside the transaction.
// Returns ErrSlotNotFound if nothing is allocated at address.
func (t *Tx) LoadAccount(ctx context.Context, address string) (Account, error) {
	row := t.tx.QueryRowContext(ctx, selectAccount+` WHERE address = ?`, address)
	return scanAccount(row, address)
}

// UpdateAccountData replaces an account's bytes. The size is fixed at
// allocation and may not change.
func (t *Tx) UpdateAccountData(ctx context.Context, address string, data []byte, seq int64) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE accounts SET data = ?, updated_seq = ?
		WHERE address = ? AND space = ?
	`, data, seq, address, len(data))
	if err != nil {
		return fmt.Errorf("update account %s: %w", address, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account %s: rows affected: %w", address, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("update account %s: no account of %d bytes: %w", address, len(data), ErrSlotNotFound)
	}
	return nil
}

// WriteInvocation journals a committed request. Returns
// ErrDuplicateRequest if the id was already journaled.
func (t *Tx) WriteInvocation(ctx context.Context, inv Invocation) error {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO invocations
		(id, seq, op, owner, address, args, data, records)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		inv.ID,
		inv.Seq,
		inv.Op,
		inv.Owner,
		inv.Address,
		inv.Args,
		nonNil(inv.Data),
		inv.Records,
	)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write invocation: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("write invocation %s: %w", inv.ID, ErrDuplicateRequest)
	}
	return nil
}

const selectAccount = `
	SELECT address, program_id, owner, payer, space, data, created_seq, updated_seq
	FROM accounts`

func scanAccount(row *sql.Row, address string) (Account, error) {
	var a Account
	err := row.Scan(&a.Address, &a.ProgramID, &a.Owner, &a.Payer, &a.Space, &a.Data, &a.CreatedSeq, &a.UpdatedSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("load account %s: %w", address, ErrSlotNotFound)
	}
	if err != nil {
		return Account{}, fmt.Errorf("load account %s: %w", address, err)
	}
	return a, nil
}

// nonNil keeps a nil slice from binding as NULL.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
