package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/roach88/stockslot/internal/auth"
)

// DeriveOptions holds flags for the derive command.
type DeriveOptions struct {
	*RootOptions
	Keypair string
	Owner   string
}

// DeriveResult is the derive command's output.
type DeriveResult struct {
	Owner     string `json:"owner"`
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
	ProgramID string `json:"program_id"`
	Seed      string `json:"seed"`
}

// NewDeriveCommand creates the derive command.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeriveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print an owner's slot address",
		Long: `Derive the slot address and canonical bump for an owner.

Derivation is offline; no database is opened.

Examples:
  stockslot derive --keypair ./owner.json
  stockslot derive --owner 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Keypair, "keypair", "k", "", "owner keypair file")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner public key (base58)")
	cmd.MarkFlagsOneRequired("keypair", "owner")
	cmd.MarkFlagsMutuallyExclusive("keypair", "owner")

	return cmd
}

func runDerive(opts *DeriveOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}
	ns, err := cfg.Namespace()
	if err != nil {
		return commandFailed(f, ErrCodeConfig, "invalid namespace", err)
	}

	var owner solana.PublicKey
	if opts.Keypair != "" {
		key, err := auth.LoadKeypair(opts.Keypair)
		if err != nil {
			return commandFailed(f, ErrCodeKeypair, "failed to load keypair", err)
		}
		owner = key.PublicKey()
	} else {
		owner, err = solana.PublicKeyFromBase58(opts.Owner)
		if err != nil {
			return commandFailed(f, ErrCodeInput, "invalid --owner", err)
		}
	}

	loc, err := ns.Derive(owner)
	if err != nil {
		return commandFailed(f, ErrCodeGeneric, "derivation failed", err)
	}

	result := DeriveResult{
		Owner:     owner.String(),
		Address:   loc.Address.String(),
		Bump:      loc.Bump,
		ProgramID: ns.ProgramID.String(),
		Seed:      ns.Tag,
	}
	if opts.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "Owner:   %s\n", result.Owner)
	fmt.Fprintf(f.Writer, "Address: %s\n", result.Address)
	fmt.Fprintf(f.Writer, "Bump:    %d\n", result.Bump)
	fmt.Fprintf(f.Writer, "Program: %s\n", result.ProgramID)
	fmt.Fprintf(f.Writer, "Seed:    %s\n", result.Seed)
	return nil
}
