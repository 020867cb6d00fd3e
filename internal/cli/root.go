package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stockslot/internal/auth"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides the configured database when set

	// RequestIDs overrides the request id generator (for testing).
	// If nil, defaults to auth.UUIDv7Generator.
	RequestIDs auth.RequestIDGenerator

	// Now overrides the clock used for default entry dates (for testing).
	Now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the stockslot CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stockslot",
		Short: "stockslot - per-owner inventory slots",
		Long: `Keep an append-only list of stock records per owner key.

Each owner gets exactly one slot, found at an address derived from the
namespace seed and the owner's public key. Requests are signed with the
owner's keypair.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (.yaml or .cue)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewDeriveCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewAppendCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) requestID() string {
	if o.RequestIDs != nil {
		return o.RequestIDs.Generate()
	}
	return auth.UUIDv7Generator{}.Generate()
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
