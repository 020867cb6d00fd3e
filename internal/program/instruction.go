package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/roach88/stockslot/internal/auth"
)

// Request is implemented by every request type. Data is what the owner
// signs and what the journal keeps.
type Request interface {
	Op() string
	Data() ([]byte, error)
}

// SignRequest signs req for programID with requestID.
func SignRequest(kp *auth.Keypair, programID solana.PublicKey, requestID string, req Request) (auth.Proof, error) {
	data, err := req.Data()
	if err != nil {
		return auth.Proof{}, err
	}
	return kp.Sign(programID, req.Op(), requestID, data)
}

// InstructionDiscriminator is sha256("global:<op>")[:8].
func InstructionDiscriminator(op string) [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte("global:" + op))
	copy(d[:], sum[:8])
	return d
}

// instructionData lays out discriminator || borsh(args).
func instructionData(op string, write func(enc *bin.Encoder) error) ([]byte, error) {
	var buf bytes.Buffer
	d := InstructionDiscriminator(op)
	buf.Write(d[:])

	if write != nil {
		if err := write(bin.NewBorshEncoder(&buf)); err != nil {
			return nil, fmt.Errorf("%s instruction data: %w", op, err)
		}
	}
	return buf.Bytes(), nil
}

// writeOptionalAddress writes addr as Option<Pubkey>; the zero key is None.
func writeOptionalAddress(enc *bin.Encoder, addr solana.PublicKey) error {
	if addr.IsZero() {
		return enc.WriteBool(false)
	}
	if err := enc.WriteBool(true); err != nil {
		return err
	}
	return enc.WriteBytes(addr[:], false)
}
