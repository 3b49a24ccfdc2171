package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cooksync/internal/scene"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Asset string
}

// ShowResult is the JSON form of show.
type ShowResult struct {
	Asset    string          `json:"asset"`
	Snapshot string          `json:"snapshot"`
	Nodes    int             `json:"nodes"`
	Scene    json.RawMessage `json:"scene"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the asset's current scene",
		Long: `Print the asset's current scene: an indented node tree followed by
connections and set members in text format, or the snapshot in json format.

Examples:
  cooksync show
  cooksync show --asset rock --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.setup(cmd); err != nil {
				return err
			}
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Asset, "asset", "", "asset to show (default: the only synced asset)")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
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
	snap, err := st.Head(ctx, asset)
	if err != nil {
		return assetErr(f, err)
	}

	if opts.Format == "json" {
		return f.Success(ShowResult{
			Asset:    asset,
			Snapshot: snap.ID,
			Nodes:    snap.NodeCount,
			Scene:    json.RawMessage(snap.Body),
		})
	}

	g, err := scene.UnmarshalSnapshot(snap.Body)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to decode snapshot", err)
	}
	fmt.Fprint(f.Writer, scene.Dump(g))
	return nil
}
