package auth

import (
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = solana.MustPublicKeyFromBase58("865m9ePhc85sKxN5LgTzYkxG3hQWiwgfxfuzGQUjjiCM")

func newKeypair(t *testing.T) *Keypair {
	t.Helper()
	kp, err := NewKeypair()
	require.NoError(t, err)
	return kp
}

func TestSignVerify(t *testing.T) {
	kp := newKeypair(t)
	v := SignatureVerifier{ProgramID: testProgramID}
	data := []byte("\x01\x07\x00\x00\x00Yoghurt")

	proof, err := kp.Sign(testProgramID, "record_incoming", "req-1", data)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey(), proof.Signer)

	require.NoError(t, v.Verify(proof, "record_incoming", data))
}

func TestVerify_Rejects(t *testing.T) {
	kp := newKeypair(t)
	other := newKeypair(t)
	v := SignatureVerifier{ProgramID: testProgramID}
	data := []byte{0xfe}

	proof, err := kp.Sign(testProgramID, "initialize", "req-1", data)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(p Proof) Proof
		op     string
		data   []byte
	}{
		{
			name:   "tampered data",
			mutate: func(p Proof) Proof { return p },
			op:     "initialize",
			data:   []byte{0xfd},
		},
		{
			name:   "invalid utf-8 swapped",
			mutate: func(p Proof) Proof { return p },
			op:     "initialize",
			data:   []byte{0xff},
		},
		{
			name:   "truncated data",
			mutate: func(p Proof) Proof { return p },
			op:     "initialize",
			data:   nil,
		},
		{
			name:   "different op",
			mutate: func(p Proof) Proof { return p },
			op:     "check_store",
			data:   data,
		},
		{
			name:   "signer swapped",
			mutate: func(p Proof) Proof { p.Signer = other.PublicKey(); return p },
			op:     "initialize",
			data:   data,
		},
		{
			name:   "request id swapped",
			mutate: func(p Proof) Proof { p.RequestID = "req-2"; return p },
			op:     "initialize",
			data:   data,
		},
		{
			name:   "missing request id",
			mutate: func(p Proof) Proof { p.RequestID = ""; return p },
			op:     "initialize",
			data:   data,
		},
		{
			name:   "missing signer",
			mutate: func(p Proof) Proof { p.Signer = solana.PublicKey{}; return p },
			op:     "initialize",
			data:   data,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.mutate(proof), tt.op, tt.data)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestVerify_TextIsNotNormalized(t *testing.T) {
	kp := newKeypair(t)
	v := SignatureVerifier{ProgramID: testProgramID}

	tests := []struct {
		name    string
		signed  string
		swapped string
	}{
		{"composed to decomposed", "caf\u00e9", "cafe\u0301"},
		{"decomposed to composed", "cafe\u0301", "caf\u00e9"},
		{"invalid byte", "\xff", "\xfe"},
		{"invalid byte to replacement char", "\xff", "\ufffd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof, err := kp.Sign(testProgramID, "record_incoming", "req-1", []byte(tt.signed))
			require.NoError(t, err)

			require.NoError(t, v.Verify(proof, "record_incoming", []byte(tt.signed)))
			assert.ErrorIs(t, v.Verify(proof, "record_incoming", []byte(tt.swapped)), ErrUnauthorized)
		})
	}
}

func TestMessage_Deterministic(t *testing.T) {
	signer := newKeypair(t).PublicKey()

	a, err := Message(testProgramID, "check_store", signer, "req-1", []byte{1, 2, 3})
	require.NoError(t, err)
	b, err := Message(testProgramID, "check_store", signer, "req-1", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	c, err := Message(testProgramID, "check_store", signer, "req-1", []byte{1, 2, 4})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestVerify_OtherProgram(t *testing.T) {
	kp := newKeypair(t)
	otherProgram := newKeypair(t).PublicKey()

	proof, err := kp.Sign(otherProgram, "check_store", "req-1", nil)
	require.NoError(t, err)

	v := SignatureVerifier{ProgramID: testProgramID}
	assert.ErrorIs(t, v.Verify(proof, "check_store", nil), ErrUnauthorized)
}

func TestKeypair_SaveLoad(t *testing.T) {
	kp := newKeypair(t)
	path := filepath.Join(t.TempDir(), "id.json")

	require.NoError(t, kp.Save(path))
	loaded, err := LoadKeypair(path)
	require.NoError(t, err)

	assert.Equal(t, kp.PublicKey(), loaded.PublicKey())
}

func TestKeypairFromSeed(t *testing.T) {
	seed := make([]byte, 32)
	seed[0] = 7

	a, err := KeypairFromSeed(seed)
	require.NoError(t, err)
	b, err := KeypairFromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	seed[0] = 8
	c, err := KeypairFromSeed(seed)
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey(), c.PublicKey())

	proof, err := a.Sign(testProgramID, "check_store", "req-1", []byte{0})
	require.NoError(t, err)
	assert.NoError(t, SignatureVerifier{ProgramID: testProgramID}.Verify(proof, "check_store", []byte{0}))

	_, err = KeypairFromSeed(seed[:31])
	assert.Error(t, err)
}

func TestLoadKeypair_Missing(t *testing.T) {
	_, err := LoadKeypair(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()

	assert.NotEqual(t, a, b)
	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
