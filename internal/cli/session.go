package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/roach88/stockslot/internal/auth"
	"github.com/roach88/stockslot/internal/config"
	"github.com/roach88/stockslot/internal/program"
	"github.com/roach88/stockslot/internal/store"
)

// CLI error codes for failures outside the program's own error codes.
const (
	ErrCodeGeneric = "E001" // unclassified failure
	ErrCodeConfig  = "E002" // config file missing or invalid
	ErrCodeKeypair = "E003" // keypair missing or unreadable
	ErrCodeStore   = "E004" // database could not be opened
	ErrCodeInput   = "E005" // bad flag value
)

// session holds what a slot command needs for one invocation.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store
	program *program.Program
	key     *auth.Keypair
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loadConfig reads --config and applies --db.
func (o *RootOptions) loadConfig(f *OutputFormatter) (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, commandFailed(f, ErrCodeConfig, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose forces debug level.
func (o *RootOptions) newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// openSession loads config and keypair, then opens the store.
func (o *RootOptions) openSession(cmd *cobra.Command, f *OutputFormatter, keypairPath string) (*session, error) {
	cfg, err := o.loadConfig(f)
	if err != nil {
		return nil, err
	}
	logger := o.newLogger(cfg, cmd.ErrOrStderr())

	key, err := auth.LoadKeypair(keypairPath)
	if err != nil {
		return nil, commandFailed(f, ErrCodeKeypair, "failed to load keypair", err)
	}

	ns, err := cfg.Namespace()
	if err != nil {
		return nil, commandFailed(f, ErrCodeConfig, "invalid namespace", err)
	}

	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, commandFailed(f, ErrCodeStore, "failed to open database", err)
	}

	prog := program.New(st, ns,
		program.WithCapacity(cfg.Capacity),
		program.WithLogger(logger),
	)
	return &session{cfg: cfg, logger: logger, store: st, program: prog, key: key}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// sign builds a proof for req with a fresh request id.
func (s *session) sign(o *RootOptions, req program.Request) (auth.Proof, error) {
	return program.SignRequest(s.key, s.program.Namespace().ProgramID, o.requestID(), req)
}

// parseAddress reads an optional --address flag value.
func parseAddress(f *OutputFormatter, text string) (solana.PublicKey, error) {
	if text == "" {
		return solana.PublicKey{}, nil
	}
	addr, err := solana.PublicKeyFromBase58(text)
	if err != nil {
		return solana.PublicKey{}, commandFailed(f, ErrCodeInput, "invalid --address", err)
	}
	return addr, nil
}

// commandFailed reports a command error and maps it to ExitCommandError.
func commandFailed(f *OutputFormatter, code, message string, err error) error {
	_ = f.Error(code, message+": "+err.Error(), nil)
	return WrapExitError(ExitCommandError, message, err)
}

// operationFailed reports a Program error. Rejections carry the program's
// error code and exit with ExitFailure; internal failures are command errors.
func operationFailed(f *OutputFormatter, err error) error {
	var perr *program.Error
	if !errors.As(err, &perr) || perr.Code == program.ErrCodeInternal {
		return commandFailed(f, ErrCodeGeneric, "operation failed", err)
	}

	details := map[string]string{"op": perr.Op, "owner": perr.Owner}
	if perr.Address != "" {
		details["address"] = perr.Address
	}
	_ = f.Error(string(perr.Code), perr.Err.Error(), details)
	return WrapExitError(ExitFailure, string(perr.Code), err)
}
