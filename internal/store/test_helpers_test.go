package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// putTestSnapshot stores a snapshot whose body is derived from label.
func putTestSnapshot(t *testing.T, s *Store, asset, label string) string {
	t.Helper()
	id, err := s.PutSnapshot(context.Background(), asset, []byte(fmt.Sprintf(`{"label":%q}`, label)), 1)
	if err != nil {
		t.Fatalf("PutSnapshot(%q) failed: %v", label, err)
	}
	return id
}

// createTestRun creates an applied run with minimal required fields.
func createTestRun(id, asset, pre, post string) Run {
	return Run{
		ID:           id,
		Asset:        asset,
		CookHash:     "test-hash",
		Flags:        RunFlags{Attributes: true, Outputs: true, InstancerNode: true},
		PreSnapshot:  pre,
		PostSnapshot: post,
		Status:       RunApplied,
		Objects:      1,
		Parts:        2,
	}
}

// commitTestRun commits run and fails the test on error.
func commitTestRun(t *testing.T, s *Store, run Run) Run {
	t.Helper()
	stored, err := s.CommitRun(context.Background(), run)
	if err != nil {
		t.Fatalf("CommitRun(%q) failed: %v", run.ID, err)
	}
	return stored
}
