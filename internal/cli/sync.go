package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/roach88/cooksync/internal/config"
	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/engine"
	"github.com/roach88/cooksync/internal/store"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Asset           string
	Attributes      bool
	Outputs         bool
	Hidden          bool
	TemplatedGeos   bool
	NoInstancerNode bool
}

// SyncSummary is the outcome of one sync, as reported to the user.
type SyncSummary struct {
	RunID       string `json:"run_id"`
	Asset       string `json:"asset"`
	Status      string `json:"status"`
	Snapshot    string `json:"snapshot"`
	Nodes       int    `json:"nodes"`
	NeedsResync bool   `json:"needs_resync"`
	engine.Stats
}

func (s SyncSummary) String() string {
	msg := fmt.Sprintf("Synced %s (run %s): %d object(s), %d part(s), %d instancer(s), %d material(s), %d failure(s); %d nodes",
		s.Asset, s.RunID, s.Objects, s.Parts, s.Instancers, s.Materials, s.Failures, s.Nodes)
	if s.NeedsResync {
		msg += "\nNo parts were synced; a resync is needed."
	}
	return msg
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync <cook.yaml>",
		Short: "Sync a cook result into the asset's scene",
		Long: `Sync a cook result into the asset's scene as one undoable run.

Without mode flags the modes from the config are used (all four by
default). With any mode flag, exactly the given modes run.

Exit codes:
  0 - Sync applied (unit failures are reported as warnings)
  1 - Invalid cook, or the host rejected a command buffer and the pass was unwound
  2 - Command error (missing file, database error)

Examples:
  cooksync sync rock.yaml
  cooksync sync rock.yaml --sync-attributes
  cooksync sync rock.yaml --asset rock1 --no-instancer-node --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.setup(cmd); err != nil {
				return err
			}
			return runSync(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Asset, "asset", "", "asset node name (default: the cook's asset name)")
	cmd.Flags().BoolVar(&opts.Attributes, "sync-attributes", false, "rebuild parameter attributes")
	cmd.Flags().BoolVar(&opts.Outputs, "sync-outputs", false, "rebuild geometry, instancer and material outputs")
	cmd.Flags().BoolVar(&opts.Hidden, "sync-hidden", false, "include invisible objects")
	cmd.Flags().BoolVar(&opts.TemplatedGeos, "sync-templated-geos", false, "include templated geos")
	cmd.Flags().BoolVar(&opts.NoInstancerNode, "no-instancer-node", false, "instance with one transform per point")

	return cmd
}

// modes resolves the mode flags against the config defaults.
func (o *SyncOptions) modes() engine.Modes {
	if !o.Attributes && !o.Outputs && !o.Hidden && !o.TemplatedGeos {
		return modesFromConfig(o.cfg.Sync)
	}
	return engine.Modes{
		Attributes:    o.Attributes,
		Outputs:       o.Outputs,
		Hidden:        o.Hidden,
		TemplatedGeos: o.TemplatedGeos,
	}
}

func modesFromConfig(c config.SyncConfig) engine.Modes {
	return engine.Modes{
		Attributes:    c.Attributes,
		Outputs:       c.Outputs,
		Hidden:        c.Hidden,
		TemplatedGeos: c.TemplatedGeos,
	}
}

func runSync(opts *SyncOptions, cookPath string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	req := syncRequest{
		cookPath:         cookPath,
		asset:            opts.Asset,
		modes:            opts.modes(),
		useInstancerNode: opts.cfg.UseInstancerNode && !opts.NoInstancerNode,
	}
	summary, err := syncCook(ctx, st, opts.cfg, req, opts.logger, nil)
	if err != nil {
		return syncErr(f, err)
	}
	return f.SuccessForRun(summary.RunID, summary)
}

// syncRequest is one sync invocation, shared by sync and watch.
type syncRequest struct {
	cookPath         string
	asset            string
	modes            engine.Modes
	useInstancerNode bool
}

// Failures returned by syncCook, mapped to exit codes by syncErr.
var (
	errCookMissing = errors.New("cook result not found")
	errCookInvalid = errors.New("invalid cook result")
	errAborted     = errors.New("sync aborted")
)

// syncCook runs one pass for the cook file against the asset's head scene
// and journals it. An aborted pass is journaled too, with the head
// unchanged.
func syncCook(ctx context.Context, st *store.Store, cfg *config.Config, req syncRequest, logger *slog.Logger, resync engine.ResyncScheduler) (SyncSummary, error) {
	data, err := os.ReadFile(req.cookPath)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("%w: %w", errCookMissing, err)
	}
	if err := cook.Validate(data); err != nil {
		return SyncSummary{}, fmt.Errorf("%w: %w", errCookInvalid, err)
	}
	result, err := cook.Parse(data)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("%w: %w", errCookInvalid, err)
	}

	asset := req.asset
	if asset == "" {
		asset = cook.SanitizeNodeName(result.Asset, "asset")
	}

	ws, err := loadWorkspace(ctx, st, asset)
	if err != nil {
		return SyncSummary{}, err
	}
	pre, err := ws.save(ctx)
	if err != nil {
		return SyncSummary{}, err
	}

	opts := []engine.Option{
		engine.WithModes(req.modes),
		engine.WithInstancerNode(req.useInstancerNode),
		engine.WithLogger(logger),
	}
	if cfg.Textures.Bake || cfg.Textures.Reuse {
		var renderer engine.TextureRenderer
		if cfg.Textures.Bake {
			renderer = engine.CopyRenderer{}
		}
		baker := engine.NewTextureBaker(afero.NewOsFs(), renderer, engine.TextureOptions{
			Bake:  cfg.Textures.Bake,
			Reuse: cfg.Textures.Reuse,
			Dir:   cfg.Textures.SourceImages,
		}, logger)
		opts = append(opts, engine.WithTextureBaker(baker))
	}
	if resync != nil {
		opts = append(opts, engine.WithResyncScheduler(resync))
	}

	o := engine.New(ws.graph, result, ws.node, opts...)
	res, syncErr := o.DoIt()

	run := store.Run{
		ID:       res.RunID,
		Asset:    asset,
		CookHash: cook.Fingerprint(data),
		Flags: store.RunFlags{
			Attributes:    req.modes.Attributes,
			Outputs:       req.modes.Outputs,
			Hidden:        req.modes.Hidden,
			TemplatedGeos: req.modes.TemplatedGeos,
			InstancerNode: req.useInstancerNode,
		},
		PreSnapshot: pre,
	}

	if syncErr != nil {
		if !engine.IsApplyFailure(syncErr) {
			return SyncSummary{}, syncErr
		}
		run.Status = store.RunAborted
		run.PostSnapshot = pre
		run.Error = syncErr.Error()
		if _, err := st.CommitRun(ctx, run); err != nil {
			return SyncSummary{}, errors.Join(fmt.Errorf("%w: %w", errAborted, syncErr), err)
		}
		return SyncSummary{}, fmt.Errorf("%w: %w", errAborted, syncErr)
	}

	post, err := ws.save(ctx)
	if err != nil {
		return SyncSummary{}, err
	}
	run.Status = store.RunApplied
	run.PostSnapshot = post
	run.Objects = res.Objects
	run.Parts = res.Parts
	run.Instancers = res.Instancers
	run.Materials = res.Materials
	run.Failures = res.Failures
	run.NeedsResync = res.NeedsResync
	if _, err := st.CommitRun(ctx, run); err != nil {
		return SyncSummary{}, err
	}

	return SyncSummary{
		RunID:       res.RunID,
		Asset:       asset,
		Status:      string(store.RunApplied),
		Snapshot:    post,
		Nodes:       ws.graph.Count(),
		NeedsResync: res.NeedsResync,
		Stats:       res.Stats,
	}, nil
}

// syncErr maps a syncCook failure to a reported error and exit code.
func syncErr(f *OutputFormatter, err error) error {
	switch {
	case errors.Is(err, errCookMissing):
		return f.Fail(ExitCommandError, ErrCodeNotFound, "cook result not found", err)
	case errors.Is(err, errCookInvalid):
		return f.Fail(ExitFailure, ErrCodeInvalidCook, "invalid cook result", err)
	case errors.Is(err, errAborted):
		return f.Fail(ExitFailure, ErrCodeAborted, "host rejected the sync; scene unchanged", err)
	default:
		return f.Fail(ExitCommandError, ErrCodeStore, "sync failed", err)
	}
}
