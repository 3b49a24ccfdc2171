package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/cooksync/internal/scene"
	"github.com/roach88/cooksync/internal/store"
)

// workspace is an open store plus the scene of one asset.
type workspace struct {
	st    *store.Store
	asset string
	graph *scene.Graph
	node  scene.Handle
	head  string // snapshot id the graph was loaded from, "" for a new scene
}

func openStore(opts *RootOptions) (*store.Store, error) {
	st, err := store.Open(opts.cfg.DB, store.WithLogger(opts.logger))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.cfg.DB, err)
	}
	return st, nil
}

// loadWorkspace restores the asset's head scene. Without a head, a new
// scene holding only the asset node is created.
func loadWorkspace(ctx context.Context, st *store.Store, asset string) (*workspace, error) {
	ws := &workspace{st: st, asset: asset}

	snap, err := st.Head(ctx, asset)
	switch {
	case errors.Is(err, store.ErrNotFound):
		ws.graph = scene.NewGraph()
		m := scene.NewModifier(ws.graph)
		ws.node = m.CreateNode(scene.TypeAsset, scene.NoHandle)
		m.RenameNode(ws.node, asset)
		if err := m.Apply(); err != nil {
			return nil, fmt.Errorf("create asset node: %w", err)
		}
		return ws, nil
	case err != nil:
		return nil, err
	}

	g, err := scene.UnmarshalSnapshot(snap.Body)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", shortID(snap.ID), err)
	}
	node, ok := g.FindByNameAndType(asset, scene.TypeAsset)
	if !ok {
		return nil, fmt.Errorf("snapshot %s has no %s node %q: %w", shortID(snap.ID), scene.TypeAsset, asset, scene.ErrNodeNotFound)
	}
	ws.graph, ws.node, ws.head = g, node, snap.ID
	return ws, nil
}

// save stores the current graph and returns its snapshot id.
func (ws *workspace) save(ctx context.Context) (string, error) {
	body, err := scene.MarshalSnapshot(ws.graph)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return ws.st.PutSnapshot(ctx, ws.asset, body, ws.graph.Count())
}

// resolveAsset returns name, or the only asset in the store when name is
// empty.
func resolveAsset(ctx context.Context, st *store.Store, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	assets, err := st.Assets(ctx)
	if err != nil {
		return "", err
	}
	switch len(assets) {
	case 0:
		return "", fmt.Errorf("no synced assets: %w", store.ErrNotFound)
	case 1:
		return assets[0], nil
	default:
		return "", fmt.Errorf("%w: %v", errAmbiguousAsset, assets)
	}
}

var errAmbiguousAsset = errors.New("several assets in database, pass --asset")

// assetErr maps an asset lookup error to a reported failure.
func assetErr(f *OutputFormatter, err error) error {
	switch {
	case errors.Is(err, errAmbiguousAsset):
		return f.Fail(ExitCommandError, ErrCodeAmbiguous, "asset is ambiguous", err)
	case errors.Is(err, store.ErrNotFound):
		return f.Fail(ExitCommandError, ErrCodeNotFound, "asset not found", err)
	default:
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read asset", err)
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
