package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	rockCook    = "testdata/rock.yaml"
	emptyCook   = "testdata/empty.yaml"
	invalidCook = "testdata/invalid.yaml"
)

// newTestOptions returns root options backed by a fresh database.
func newTestOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format:   format,
		Database: filepath.Join(t.TempDir(), "test.db"),
	}
}

// execute runs one subcommand and returns its stdout.
func execute(t *testing.T, opts *RootOptions, newCmd func(*RootOptions) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newCmd(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, opts *RootOptions, newCmd func(*RootOptions) *cobra.Command, args ...string) string {
	t.Helper()
	out, err := execute(t, opts, newCmd, args...)
	require.NoError(t, err, "output: %s", out)
	return out
}

// decodeResponse parses a JSON CLIResponse.
func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// runStatuses lists the journal statuses in order.
func runStatuses(t *testing.T, opts *RootOptions) []string {
	t.Helper()
	jsonOpts := *opts
	jsonOpts.Format = "json"
	resp := decodeResponse(t, mustExecute(t, &jsonOpts, NewRunsCommand))
	rows, ok := resp.Data.([]any)
	require.True(t, ok, "runs data: %#v", resp.Data)
	statuses := make([]string, 0, len(rows))
	for _, row := range rows {
		statuses = append(statuses, row.(map[string]any)["status"].(string))
	}
	return statuses
}
