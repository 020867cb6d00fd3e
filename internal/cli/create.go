package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stockslot/internal/program"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Keypair string
	Bump    int // -1 means canonical
	Address string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the owner's slot",
		Long: `Create the owner's slot with an empty record list.

The bump defaults to the canonical bump for the owner. Each owner has
exactly one slot; creating it twice fails with SLOT_ALREADY_EXISTS.

Example:
  stockslot create --db ./stockslot.db --keypair ./owner.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Keypair, "keypair", "k", "", "owner keypair file (required)")
	_ = cmd.MarkFlagRequired("keypair")
	cmd.Flags().IntVar(&opts.Bump, "bump", -1, "bump seed (default: canonical)")
	cmd.Flags().StringVar(&opts.Address, "address", "", "expected slot address (base58)")

	return cmd
}

func runCreate(opts *CreateOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	if opts.Bump < -1 || opts.Bump > 255 {
		return commandFailed(f, ErrCodeInput, "invalid --bump", fmt.Errorf("%d is outside 0..255", opts.Bump))
	}
	address, err := parseAddress(f, opts.Address)
	if err != nil {
		return err
	}

	s, err := opts.openSession(cmd, f, opts.Keypair)
	if err != nil {
		return err
	}
	defer s.Close()

	bump := uint8(opts.Bump)
	if opts.Bump == -1 {
		loc, err := s.program.Locate(s.key.PublicKey())
		if err != nil {
			return commandFailed(f, ErrCodeGeneric, "derivation failed", err)
		}
		bump = loc.Bump
	}

	req := program.InitializeRequest{Bump: bump, Address: address}
	req.Proof, err = s.sign(opts.RootOptions, req)
	if err != nil {
		return commandFailed(f, ErrCodeKeypair, "failed to sign request", err)
	}

	receipt, err := s.program.Initialize(ctx, req)
	if err != nil {
		return operationFailed(f, err)
	}

	if opts.Format == "json" {
		return f.Success(receipt)
	}
	fmt.Fprintln(f.Writer, "Slot created")
	printReceipt(f, receipt)
	return nil
}

func printReceipt(f *OutputFormatter, rc program.Receipt) {
	fmt.Fprintf(f.Writer, "  Address:   %s\n", rc.Address)
	fmt.Fprintf(f.Writer, "  Bump:      %d\n", rc.Bump)
	fmt.Fprintf(f.Writer, "  Records:   %d\n", rc.Records)
	fmt.Fprintf(f.Writer, "  Remaining: %d bytes\n", rc.Remaining)
	f.VerboseLog("request %s committed at seq %d", rc.RequestID, rc.Seq)
}
