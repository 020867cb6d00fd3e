package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/stockslot/internal/auth"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Out   string
	Force bool
}

// KeygenResult is the keygen command's output.
type KeygenResult struct {
	Path  string `json:"path"`
	Owner string `json:"owner"`
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an owner keypair",
		Long: `Generate a new ed25519 owner keypair.

The file uses the solana-keygen format (a JSON array of the 64 secret key
bytes) and is written with mode 0600.

Example:
  stockslot keygen --out ./owner.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "keypair file to write (required)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing file")

	return cmd
}

func runKeygen(opts *KeygenOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if !opts.Force {
		if _, err := os.Stat(opts.Out); err == nil {
			return commandFailed(f, ErrCodeKeypair, "refusing to overwrite", fmt.Errorf("%s exists (use --force)", opts.Out))
		} else if !errors.Is(err, os.ErrNotExist) {
			return commandFailed(f, ErrCodeKeypair, "failed to stat keypair file", err)
		}
	}

	key, err := auth.NewKeypair()
	if err != nil {
		return commandFailed(f, ErrCodeKeypair, "failed to generate keypair", err)
	}
	if err := key.Save(opts.Out); err != nil {
		return commandFailed(f, ErrCodeKeypair, "failed to write keypair", err)
	}

	result := KeygenResult{Path: opts.Out, Owner: key.PublicKey().String()}
	if opts.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "Wrote keypair to %s\n", result.Path)
	fmt.Fprintf(f.Writer, "  Owner: %s\n", result.Owner)
	return nil
}
