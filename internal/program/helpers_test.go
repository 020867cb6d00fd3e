package program

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockslot/internal/auth"
	"github.com/roach88/stockslot/internal/locator"
	"github.com/roach88/stockslot/internal/store"
)

var testProgramID = solana.MustPublicKeyFromBase58("865m9ePhc85sKxN5LgTzYkxG3hQWiwgfxfuzGQUjjiCM")

type fixture struct {
	t     *testing.T
	prog  *Program
	store *store.Store
	reqs  atomic.Int64
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ns, err := locator.NewNamespace("store_account", testProgramID)
	require.NoError(t, err)

	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return &fixture{t: t, prog: New(st, ns, opts...), store: st}
}

func (f *fixture) newOwner() *auth.Keypair {
	f.t.Helper()
	kp, err := auth.NewKeypair()
	require.NoError(f.t, err)
	return kp
}

func (f *fixture) proof(kp *auth.Keypair, req Request) auth.Proof {
	f.t.Helper()
	id := fmt.Sprintf("req-%d", f.reqs.Add(1))
	p, err := SignRequest(kp, testProgramID, id, req)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) create(kp *auth.Keypair) (Receipt, error) {
	f.t.Helper()
	loc, err := f.prog.Locate(kp.PublicKey())
	require.NoError(f.t, err)
	req := InitializeRequest{Bump: loc.Bump}
	req.Proof = f.proof(kp, req)
	return f.prog.Initialize(context.Background(), req)
}

func (f *fixture) append(kp *auth.Keypair, item, price string, qty, date int64) (Receipt, error) {
	f.t.Helper()
	req := RecordRequest{Item: item, Price: price, Quantity: qty, EntryDate: date}
	req.Proof = f.proof(kp, req)
	return f.prog.RecordIncoming(context.Background(), req)
}

func (f *fixture) list(kp *auth.Keypair) ([]recordView, error) {
	f.t.Helper()
	req := CheckRequest{}
	req.Proof = f.proof(kp, req)
	records, err := f.prog.CheckStore(context.Background(), req)
	if err != nil {
		return nil, err
	}
	out := make([]recordView, len(records))
	for i, r := range records {
		out[i] = recordView{r.Item, r.Price, r.Quantity, r.EntryDate}
	}
	return out, nil
}

type recordView struct {
	Item      string
	Price     string
	Quantity  int64
	EntryDate int64
}
