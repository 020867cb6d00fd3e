package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(KeygenResult{Path: "owner.json", Owner: "abc"})
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok","data":{"path":"owner.json","owner":"abc"}}`+"\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NO_PRODUCTS", "No Products in Store.", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_PRODUCTS", resp.Error.Code)
	assert.Equal(t, "No Products in Store.", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
	assert.NotContains(t, buf.String(), `"data"`)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"op": "initialize", "address": "addr"}
	err := formatter.Error("SLOT_ALREADY_EXISTS", "slot already exists", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, map[string]any{"op": "initialize", "address": "addr"}, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("Slot created")
	require.NoError(t, err)
	assert.Equal(t, "Slot created\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("NO_PRODUCTS", "No Products in Store.", map[string]string{"op": "check_store"})
	require.NoError(t, err)
	assert.Equal(t, "Error [NO_PRODUCTS]: No Products in Store.\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"op": "check_store"}
	err := formatter.Error("NO_PRODUCTS", "No Products in Store.", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [NO_PRODUCTS]")
	assert.Contains(t, buf.String(), "Details: map[op:check_store]")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("request %s committed", "r1")

			assert.Empty(t, out.String(), "verbose output must not corrupt JSON")
			if tt.wantLog {
				assert.Equal(t, "request r1 committed\n", errOut.String())
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit error", WrapExitError(ExitCommandError, "bad flag", base), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "NO_PRODUCTS", base)), ExitFailure},
		{"plain error", base, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	base := errors.New("boom")
	err := WrapExitError(ExitCommandError, "failed to open database", base)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "failed to open database: boom", err.Error())
	assert.Equal(t, "bad flag", (&ExitError{Code: ExitCommandError, Message: "bad flag"}).Error())
}
