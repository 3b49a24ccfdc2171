package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuns_Empty(t *testing.T) {
	opts := newTestOptions(t, "text")

	out := mustExecute(t, opts, NewRunsCommand)
	assert.Contains(t, out, "No sync runs recorded.")
}

func TestRuns_EmptyJSON(t *testing.T) {
	opts := newTestOptions(t, "json")

	resp := decodeResponse(t, mustExecute(t, opts, NewRunsCommand))
	assert.Equal(t, []any{}, resp.Data)
}

func TestRuns_Table(t *testing.T) {
	opts := newTestOptions(t, "text")
	mustExecute(t, opts, NewSyncCommand, rockCook)
	mustExecute(t, opts, NewSyncCommand, emptyCook, "--asset", "pebble")

	out := mustExecute(t, opts, NewRunsCommand)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "rock")
	assert.Contains(t, out, "applied (resync)")

	filtered := mustExecute(t, opts, NewRunsCommand, "--asset", "pebble")
	assert.NotContains(t, filtered, "rock ")
	assert.Contains(t, filtered, "pebble")
}
