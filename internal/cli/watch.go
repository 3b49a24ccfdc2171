package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/roach88/cooksync/internal/engine"
	"github.com/roach88/cooksync/internal/scene"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <cook.yaml>",
		Short: "Re-sync whenever the cook result changes",
		Long: `Sync the cook result, then re-sync every time the file is written.

Bursts of writes are debounced (watch.debounce in the config). A sync that
produced no parts is retried once at the next idle point.

Examples:
  cooksync watch rock.yaml
  cooksync watch rock.yaml --sync-outputs`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.setup(cmd); err != nil {
				return err
			}
			return runWatch(opts, args[0], cmd)
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

func runWatch(opts *SyncOptions, cookPath string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	w := newCookWatcher(cookPath, opts.cfg.Watch.Debounce.Std(), opts.logger)
	w.sync = func(ctx context.Context) error {
		summary, err := syncCook(ctx, st, opts.cfg, req, opts.logger, w)
		if err != nil {
			return err
		}
		return f.SuccessForRun(summary.RunID, summary)
	}

	if err := w.run(ctx); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "watch failed", err)
	}
	return nil
}

// cookWatcher re-runs sync when a cook file changes. It is the resync
// scheduler of the passes it runs: an empty cook is retried once, and the
// retry is re-armed by the next file change.
type cookWatcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	sync     func(ctx context.Context) error

	resync chan struct{}
}

func newCookWatcher(path string, debounce time.Duration, logger *slog.Logger) *cookWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &cookWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logger,
		resync:   make(chan struct{}, 1),
	}
}

// ScheduleResync implements engine.ResyncScheduler.
func (w *cookWatcher) ScheduleResync(scene.Handle) {
	select {
	case w.resync <- struct{}{}:
	default:
	}
}

var _ engine.ResyncScheduler = (*cookWatcher)(nil)

// run syncs once, then watches until ctx is done. Sync failures are logged
// and watching continues.
func (w *cookWatcher) run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Editors often replace files, so watch the directory.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.syncNow(ctx, "initial")
	retried := false

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != w.path || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.logger.Debug("cook changed",
				"path", e.Name,
				"op", e.Op.String(),
			)
			retried = false
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error",
				"error", err,
			)

		case <-timer.C:
			w.syncNow(ctx, "change")

		case <-w.resync:
			if retried {
				w.logger.Debug("resync already retried; waiting for next change",
					"path", w.path,
				)
				continue
			}
			retried = true
			w.syncNow(ctx, "resync")
		}
	}
}

func (w *cookWatcher) syncNow(ctx context.Context, reason string) {
	w.logger.Info("syncing",
		"path", w.path,
		"reason", reason,
	)
	if err := w.sync(ctx); err != nil {
		w.logger.Error("sync failed",
			"path", w.path,
			"error", err,
		)
	}
}
