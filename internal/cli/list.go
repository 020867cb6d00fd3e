package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stockslot/internal/program"
	"github.com/roach88/stockslot/internal/slot"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Keypair string
	Address string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the owner's stock records",
		Long: `List every record in the owner's slot in insertion order.

An empty slot fails with NO_PRODUCTS. Text output ends with the summed
value (price * quantity) per currency for records whose price parses.

Examples:
  stockslot list --keypair ./owner.json
  stockslot list --keypair ./owner.json --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Keypair, "keypair", "k", "", "owner keypair file (required)")
	_ = cmd.MarkFlagRequired("keypair")
	cmd.Flags().StringVar(&opts.Address, "address", "", "slot address (base58, default: derived)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
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

	req := program.CheckRequest{Address: address}
	req.Proof, err = s.sign(opts.RootOptions, req)
	if err != nil {
		return commandFailed(f, ErrCodeKeypair, "failed to sign request", err)
	}

	records, err := s.program.CheckStore(ctx, req)
	if err != nil {
		return operationFailed(f, err)
	}

	if opts.Format == "json" {
		return f.Success(records)
	}
	outputRecordsText(f.Writer, records)
	return nil
}

// outputRecordsText prints records followed by their valuation.
func outputRecordsText(w io.Writer, records []slot.Record) {
	fmt.Fprintf(w, "Products: %d\n", len(records))
	for i, r := range records {
		fmt.Fprintf(w, "  [%d] %s\n", i+1, r.Item)
		fmt.Fprintf(w, "      Price: %s  Quantity: %d  Entry Date: %s\n",
			r.Price, r.Quantity, formatEntryDate(r.EntryDate))
	}

	v := slot.Value(records)
	fmt.Fprintln(w, "Valuation:")
	for _, c := range v.Currencies {
		if c == "" {
			fmt.Fprintf(w, "  %s\n", v.Totals[c])
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", v.Totals[c], c)
	}
	if v.Unpriced > 0 {
		fmt.Fprintf(w, "  (%d unpriced)\n", v.Unpriced)
	}
}

func formatEntryDate(unix int64) string {
	return fmt.Sprintf("%d (%s)", unix, time.Unix(unix, 0).UTC().Format(time.RFC3339))
}
