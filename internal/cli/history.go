package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stockslot/internal/program"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Keypair string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the owner's committed requests",
		Long: `Show every committed create and append request for the owner,
in commit order.

Example:
  stockslot history --keypair ./owner.json --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Keypair, "keypair", "k", "", "owner keypair file (required)")
	_ = cmd.MarkFlagRequired("keypair")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	s, err := opts.openSession(cmd, f, opts.Keypair)
	if err != nil {
		return err
	}
	defer s.Close()

	req := program.HistoryRequest{}
	req.Proof, err = s.sign(opts.RootOptions, req)
	if err != nil {
		return commandFailed(f, ErrCodeKeypair, "failed to sign request", err)
	}

	invocations, err := s.program.History(ctx, req)
	if err != nil {
		return operationFailed(f, err)
	}

	if opts.Format == "json" {
		return f.Success(invocations)
	}

	fmt.Fprintf(f.Writer, "Requests: %d\n", len(invocations))
	for _, inv := range invocations {
		fmt.Fprintf(f.Writer, "  [%d] %s %s\n", inv.Seq, inv.Op, inv.Args)
		fmt.Fprintf(f.Writer, "      Records: %d  ID: %s\n", inv.Records, inv.ID)
	}
	return nil
}
