package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes. Success exits 0.
const (
	ExitFailure      = 1 // the program rejected the request (NO_PRODUCTS, SLOT_ALREADY_EXISTS, ...)
	ExitCommandError = 2 // the request never reached the program (flags, keypair, config, database)
)

// ExitError carries the process exit code for a failed command. The
// command has already reported it through its OutputFormatter.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as a JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose diagnostics; never the JSON stream
	Verbose   bool
}

// CLIResponse is the JSON envelope every command prints.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" | "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of CLIResponse.
type CLIError struct {
	Code    string `json:"code"` // program code ("NO_PRODUCTS") or CLI code ("E001")
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success prints data. Text mode falls back to fmt's default rendering;
// commands with a richer text form print it themselves.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error prints a failure. Details appear in text mode only with --verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line to ErrWriter under --verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.ErrWriter, format+"\n", args...)
}
