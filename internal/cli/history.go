package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cooksync/internal/store"
)

// HistoryOptions holds flags for the undo and redo commands.
type HistoryOptions struct {
	*RootOptions
	Asset string
}

// HistoryResult reports the run an undo or redo moved across.
type HistoryResult struct {
	Action string `json:"action"` // "undo" | "redo"
	RunID  string `json:"run_id"`
	Asset  string `json:"asset"`
	Head   string `json:"head"`
}

func (r HistoryResult) String() string {
	verb := "Undid"
	if r.Action == "redo" {
		verb = "Redid"
	}
	return fmt.Sprintf("%s run %s for %s (head %s)", verb, r.RunID, r.Asset, shortID(r.Head))
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the asset's latest sync",
		Long: `Move the asset's scene back to the state before its latest applied sync.

Undone runs can be redone until the next sync of the same asset.

Examples:
  cooksync undo
  cooksync undo --asset rock`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.setup(cmd); err != nil {
				return err
			}
			return runHistory(opts, "undo", cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Asset, "asset", "", "asset to undo (default: the only synced asset)")

	return cmd
}

// NewRedoCommand creates the redo command.
func NewRedoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "redo",
		Short: "Redo the asset's most recently undone sync",
		Long: `Move the asset's scene forward to the state after its earliest undone sync.

Examples:
  cooksync redo
  cooksync redo --asset rock`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.setup(cmd); err != nil {
				return err
			}
			return runHistory(opts, "redo", cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Asset, "asset", "", "asset to redo (default: the only synced asset)")

	return cmd
}

func runHistory(opts *HistoryOptions, action string, cmd *cobra.Command) error {
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

	asset, err := resolveAsset(ctx, st, opts.Asset)
	if err != nil {
		return assetErr(f, err)
	}

	var run store.Run
	if action == "undo" {
		run, err = st.UndoLatest(ctx, asset)
	} else {
		run, err = st.RedoNext(ctx, asset)
	}
	switch {
	case errors.Is(err, store.ErrNothingToUndo), errors.Is(err, store.ErrNothingToRedo):
		return f.Fail(ExitFailure, ErrCodeNoHistory, err.Error(), nil)
	case err != nil:
		return f.Fail(ExitCommandError, ErrCodeStore, action+" failed", err)
	}

	head := run.PreSnapshot
	if action == "redo" {
		head = run.PostSnapshot
	}
	opts.logger.Info(action,
		"asset", asset,
		"run", run.ID,
		"head", shortID(head),
	)
	return f.SuccessForRun(run.ID, HistoryResult{
		Action: action,
		RunID:  run.ID,
		Asset:  asset,
		Head:   head,
	})
}
