package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stockslot/internal/program"
)

// AppendOptions holds flags for the append command.
type AppendOptions struct {
	*RootOptions
	Keypair   string
	Address   string
	Item      string
	Price     string
	Quantity  int64
	EntryDate int64
}

// NewAppendCommand creates the append command.
func NewAppendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AppendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "append",
		Short: "Append a stock record",
		Long: `Append one record to the owner's slot.

Records are stored verbatim; price is free text. The entry date defaults
to the current Unix time.

Example:
  stockslot append --keypair ./owner.json --item Milk --price "1" --quantity 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("entrydate") {
				opts.EntryDate = opts.now().Unix()
			}
			return runAppend(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Keypair, "keypair", "k", "", "owner keypair file (required)")
	_ = cmd.MarkFlagRequired("keypair")
	cmd.Flags().StringVar(&opts.Address, "address", "", "slot address (base58, default: derived)")
	cmd.Flags().StringVar(&opts.Item, "item", "", "item name")
	cmd.Flags().StringVar(&opts.Price, "price", "", "price text")
	cmd.Flags().Int64Var(&opts.Quantity, "quantity", 0, "quantity")
	cmd.Flags().Int64Var(&opts.EntryDate, "entrydate", 0, "entry date in Unix seconds (default: now)")

	return cmd
}

func runAppend(opts *AppendOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	address, err := parseAddress(f, opts.Address)
	if err != nil {
		return err
	}

	s, err := opts.openSession(cmd, f, opts.Keypair)
	if err != nil {
		return err
	}
	defer s.Close()

	req := program.RecordRequest{
		Address:   address,
		Item:      opts.Item,
		Price:     opts.Price,
		Quantity:  opts.Quantity,
		EntryDate: opts.EntryDate,
	}
	req.Proof, err = s.sign(opts.RootOptions, req)
	if err != nil {
		return commandFailed(f, ErrCodeKeypair, "failed to sign request", err)
	}

	receipt, err := s.program.RecordIncoming(ctx, req)
	if err != nil {
		return operationFailed(f, err)
	}

	if opts.Format == "json" {
		return f.Success(receipt)
	}
	fmt.Fprintf(f.Writer, "Recorded %s\n", opts.Item)
	printReceipt(f, receipt)
	return nil
}
