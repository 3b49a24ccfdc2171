package store

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrNothingToUndo and ErrNothingToRedo are returned when the asset's
// journal has no run to move the head across.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Snapshot is one stored scene graph encoding.
type Snapshot struct {
	ID        string
	Asset     string
	Body      []byte
	NodeCount int
	Seq       int64
}

// RunStatus is the journal state of a sync run.
type RunStatus string

const (
	// RunApplied: the run's post snapshot is (or was last) the head.
	RunApplied RunStatus = "applied"
	// RunUndone: the head was moved back to the run's pre snapshot.
	RunUndone RunStatus = "undone"
	// RunDiscarded: the run was undone and a later sync replaced it.
	RunDiscarded RunStatus = "discarded"
	// RunAborted: the pass failed and the scene was left unchanged.
	RunAborted RunStatus = "aborted"
)

// RunFlags are the modes a run was executed with.
type RunFlags struct {
	Attributes    bool `json:"attributes"`
	Outputs       bool `json:"outputs"`
	Hidden        bool `json:"hidden"`
	TemplatedGeos bool `json:"templated_geos"`
	InstancerNode bool `json:"instancer_node"`
}

// Run is one sync-run journal record.
type Run struct {
	ID           string
	Asset        string
	Seq          int64
	CookHash     string
	Flags        RunFlags
	PreSnapshot  string
	PostSnapshot string
	Status       RunStatus
	Objects      int
	Parts        int
	Instancers   int
	Materials    int
	Failures     int
	NeedsResync  bool
	Error        string
}
