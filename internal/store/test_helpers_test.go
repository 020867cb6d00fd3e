package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestAccount returns an account with minimal required fields.
func createTestAccount(address, owner string, space int) Account {
	return Account{
		Address:    address,
		ProgramID:  "program",
		Owner:      owner,
		Payer:      owner,
		Space:      space,
		Data:       make([]byte, space),
		CreatedSeq: 1,
		UpdatedSeq: 1,
	}
}

// mustCreate allocates acct and journals it, failing the test on error.
func mustCreate(t *testing.T, s *Store, acct Account, requestID string) {
	t.Helper()
	err := s.Update(context.Background(), func(tx *Tx) error {
		if err := tx.CreateAccount(context.Background(), acct); err != nil {
			return err
		}
		return tx.WriteInvocation(context.Background(), Invocation{
			ID: requestID, Seq: acct.CreatedSeq, Op: "initialize",
			Owner: acct.Owner, Address: acct.Address, Args: "{}",
		})
	})
	if err != nil {
		t.Fatalf("create %s: %v", acct.Address, err)
	}
}

// getTableColumns returns column names for a table.
func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table info %s: %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}
