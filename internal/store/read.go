package store

import (
	"context"
	"fmt"
)

// ReadAccount retrieves an account outside any transaction.
// Returns ErrSlotNotFound if nothing is allocated at address.
func (s *Store) ReadAccount(ctx context.Context, address string) (Account, error) {
	row := s.db.QueryRowContext(ctx, selectAccount+` WHERE address = ?`, address)
	return scanAccount(row, address)
}

// ReadInvocations returns an owner's journal ordered by seq.
//
// Returns an empty slice (not nil) if the owner has no entries.
func (s *Store) ReadInvocations(ctx context.Context, owner string) ([]Invocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, op, owner, address, args, data, records
		FROM invocations
		WHERE owner = ?
		ORDER BY seq ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	invocations := []Invocation{}
	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(&inv.ID, &inv.Seq, &inv.Op, &inv.Owner, &inv.Address, &inv.Args, &inv.Data, &inv.Records); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		invocations = append(invocations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}

	return invocations, nil
}

// CountAccounts returns how many slots are allocated.
func (s *Store) CountAccounts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}
