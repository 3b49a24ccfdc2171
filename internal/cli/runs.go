package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/cooksync/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Asset string
}

// RunView is one journal row as reported.
type RunView struct {
	Seq         int64          `json:"seq"`
	ID          string         `json:"id"`
	Asset       string         `json:"asset"`
	Status      string         `json:"status"`
	Flags       store.RunFlags `json:"flags"`
	Objects     int            `json:"objects"`
	Parts       int            `json:"parts"`
	Instancers  int            `json:"instancers"`
	Materials   int            `json:"materials"`
	Failures    int            `json:"failures"`
	NeedsResync bool           `json:"needs_resync"`
	Error       string         `json:"error,omitempty"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List the sync-run journal",
		Long: `List sync runs in logical-clock order with their status:
applied, undone, discarded (undone and then replaced) or aborted.

Examples:
  cooksync runs
  cooksync runs --asset rock --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.setup(cmd); err != nil {
				return err
			}
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Asset, "asset", "", "only runs of this asset")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
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

	runs, err := st.ListRuns(ctx, opts.Asset)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}

	views := make([]RunView, 0, len(runs))
	for _, r := range runs {
		views = append(views, RunView{
			Seq:         r.Seq,
			ID:          r.ID,
			Asset:       r.Asset,
			Status:      string(r.Status),
			Flags:       r.Flags,
			Objects:     r.Objects,
			Parts:       r.Parts,
			Instancers:  r.Instancers,
			Materials:   r.Materials,
			Failures:    r.Failures,
			NeedsResync: r.NeedsResync,
			Error:       r.Error,
		})
	}

	if opts.Format == "json" {
		return f.Success(views)
	}

	if len(views) == 0 {
		fmt.Fprintln(f.Writer, "No sync runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tASSET\tSTATUS\tOBJECTS\tPARTS\tFAILURES")
	for _, v := range views {
		status := v.Status
		if v.NeedsResync {
			status += " (resync)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n", v.Seq, v.ID, v.Asset, status, v.Objects, v.Parts, v.Failures)
	}
	return tw.Flush()
}
