package testutil

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cooksync/internal/scene"
)

// NewAssetGraph returns a fresh host scene holding the built-in nodes and
// one asset node with the given name.
func NewAssetGraph(name string) (*scene.Graph, scene.Handle, error) {
	g := scene.NewGraph()
	m := scene.NewModifier(g)
	asset := m.CreateNode(scene.TypeAsset, scene.NoHandle)
	m.RenameNode(asset, name)
	if err := m.Apply(); err != nil {
		return nil, scene.NoHandle, fmt.Errorf("create asset node %q: %w", name, err)
	}
	return g, asset, nil
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
