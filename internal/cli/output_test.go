package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/sampler"
	"github.com/roach88/bouttime/internal/session"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(CatalogSummary{Source: "built-in", Events: 24}, nil)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"source": "built-in", "events": float64(24)}, resp.Data)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("ignored", func(w io.Writer) {
		fmt.Fprintln(w, "custom text")
	}))
	assert.Equal(t, "custom text\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success("plain", nil))
	assert.Equal(t, "plain\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeGeneric, "it broke", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "it broke", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error("E005", "missing", map[string]string{"path": "x"}))
	assert.Equal(t, "Error [E005]: missing\n", buf.String())

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error("E005", "missing", "x.yaml"))
	assert.Contains(t, buf.String(), "Details: x.yaml")
}

func TestOutputFormatter_FailFormatError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	fe := &catalog.FormatError{Source: "events.yaml", Index: 2, Field: "name", Message: "must not be empty"}
	err := formatter.Fail(ExitFailure, "invalid catalog", fe)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.True(t, exitErr.Reported)
	assert.ErrorIs(t, err, fe)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeFormat, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "invalid catalog: events.yaml: entry 2: name")
	assert.Equal(t, map[string]any{"source": "events.yaml", "index": float64(2), "field": "name"}, resp.Error.Details)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut}

	formatter.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	formatter.Verbose = true
	formatter.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String())
}

func TestErrorCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&catalog.ResourceError{Source: "x"}, ErrCodeNotFound},
		{fmt.Errorf("load: %w", &catalog.FormatError{Index: -1}), ErrCodeFormat},
		{&sampler.InsufficientDataError{Need: 4, Available: 1}, ErrCodeInsufficient},
		{fmt.Errorf("%w: rounds=0", session.ErrInvalidConfig), ErrCodeConfig},
		{errors.New("other"), ErrCodeGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCodeFor(tt.err), "%v", tt.err)
	}
}

func TestExitError(t *testing.T) {
	err := NewExitError(ExitCommandError, "bad path")
	assert.Equal(t, "bad path", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	cause := errors.New("denied")
	wrapped := WrapExitError(ExitFailure, "open", cause)
	assert.Equal(t, "open: denied", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)

	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("ctx: %w", err)))
}
