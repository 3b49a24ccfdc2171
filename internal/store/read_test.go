package store

import (
	"context"
	"errors"
	"testing"
)

func TestGetSnapshot_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	body := []byte(`{"nodes":[{"name":"rock"}]}`)

	id, err := s.PutSnapshot(ctx, "rock", body, 7)
	if err != nil {
		t.Fatalf("PutSnapshot() failed: %v", err)
	}

	snap, err := s.GetSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("GetSnapshot() failed: %v", err)
	}
	if snap.Asset != "rock" {
		t.Errorf("asset = %q, want rock", snap.Asset)
	}
	if string(snap.Body) != string(body) {
		t.Errorf("body = %s, want %s", snap.Body, body)
	}
	if snap.NodeCount != 7 {
		t.Errorf("node_count = %d, want 7", snap.NodeCount)
	}
}

func TestGetSnapshot_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetSnapshot(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSnapshot() error = %v, want ErrNotFound", err)
	}
}

func TestHead_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Head(context.Background(), "rock")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Head() error = %v, want ErrNotFound", err)
	}
}

func TestAssets_Sorted(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	assets, err := s.Assets(ctx)
	if err != nil {
		t.Fatalf("Assets() failed: %v", err)
	}
	if assets == nil {
		t.Error("Assets() returned nil, want empty slice")
	}

	for _, a := range []string{"tree", "Rock", "rock"} {
		id := putTestSnapshot(t, s, a, a)
		if err := s.SetHead(ctx, a, id); err != nil {
			t.Fatalf("SetHead(%q) failed: %v", a, err)
		}
	}

	assets, err = s.Assets(ctx)
	if err != nil {
		t.Fatalf("Assets() failed: %v", err)
	}
	want := []string{"Rock", "rock", "tree"}
	if len(assets) != len(want) {
		t.Fatalf("Assets() = %v, want %v", assets, want)
	}
	for i := range want {
		if assets[i] != want[i] {
			t.Errorf("Assets()[%d] = %q, want %q", i, assets[i], want[i])
		}
	}
}

func TestGetRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pre := putTestSnapshot(t, s, "rock", "pre")
	post := putTestSnapshot(t, s, "rock", "post")

	run := createTestRun("run-1", "rock", pre, post)
	run.Flags = RunFlags{Outputs: true, Hidden: true, TemplatedGeos: true}
	run.Instancers = 2
	run.Materials = 3
	run.Failures = 1
	run.NeedsResync = true
	stored := commitTestRun(t, s, run)

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got != stored {
		t.Errorf("GetRun() = %+v, want %+v", got, stored)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), "")
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs == nil {
		t.Error("ListRuns() returned nil, want empty slice")
	}
	if len(runs) != 0 {
		t.Errorf("ListRuns() returned %d runs, want 0", len(runs))
	}
}

func TestListRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snap := putTestSnapshot(t, s, "rock", "a")
	other := putTestSnapshot(t, s, "tree", "b")

	// Ids are deliberately out of lexical order
	commitTestRun(t, s, createTestRun("run-c", "rock", snap, snap))
	commitTestRun(t, s, createTestRun("run-a", "tree", other, other))
	commitTestRun(t, s, createTestRun("run-b", "rock", snap, snap))

	all, err := s.ListRuns(ctx, "")
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	wantAll := []string{"run-c", "run-a", "run-b"}
	if len(all) != len(wantAll) {
		t.Fatalf("ListRuns(all) returned %d runs, want %d", len(all), len(wantAll))
	}
	for i, id := range wantAll {
		if all[i].ID != id {
			t.Errorf("ListRuns(all)[%d] = %s, want %s", i, all[i].ID, id)
		}
	}

	rock, err := s.ListRuns(ctx, "rock")
	if err != nil {
		t.Fatalf("ListRuns(rock) failed: %v", err)
	}
	if len(rock) != 2 || rock[0].ID != "run-c" || rock[1].ID != "run-b" {
		t.Errorf("ListRuns(rock) = %v", rock)
	}
}

func TestListRuns_Deterministic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snap := putTestSnapshot(t, s, "rock", "a")
	for _, id := range []string{"run-1", "run-2", "run-3"} {
		commitTestRun(t, s, createTestRun(id, "rock", snap, snap))
	}

	first, err := s.ListRuns(ctx, "rock")
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := s.ListRuns(ctx, "rock")
		if err != nil {
			t.Fatalf("ListRuns() iteration %d failed: %v", i, err)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("iteration %d: run %d differs", i, j)
			}
		}
	}
}
