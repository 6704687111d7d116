package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"winnow/internal/errors"
	"winnow/pkg/types"
)

// newDisposeCommands returns keep, reject and sort, which each decide the
// entry at the head of the queue without the interactive screen.
func newDisposeCommands(ctx *commandContext) []*cobra.Command {
	keep := &cobra.Command{
		Use:   "keep [directory]",
		Short: "Keep the current entry in place",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disposeOnce(ctx, cmd.OutOrStdout(), args, types.Keep())
		},
	}

	reject := &cobra.Command{
		Use:   "reject [directory]",
		Short: "Move the current entry to the reject bucket",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disposeOnce(ctx, cmd.OutOrStdout(), args, types.Reject())
		},
	}

	sort := &cobra.Command{
		Use:   "sort <slot 1-4> [directory]",
		Short: "Move the current entry to a flag folder",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			return disposeOnce(ctx, cmd.OutOrStdout(), args[1:], types.SortTo(slot))
		},
	}

	return []*cobra.Command{keep, reject, sort}
}

func disposeOnce(ctx *commandContext, out io.Writer, args []string, action types.Action) error {
	ctrl, err := ctx.openSession(args)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	res, err := ctrl.Dispose(action)
	if err != nil {
		if errors.IsExhausted(err) {
			fmt.Fprintln(out, emptyMessage(ctrl.State()))
			return nil
		}
		return err
	}

	switch {
	case !action.Moves() && ctrl.DryRun():
		fmt.Fprintf(out, "would keep %s\n", res.Entry.Name)
	case !action.Moves():
		fmt.Fprintf(out, "kept %s\n", res.Entry.Name)
	case res.Moved:
		fmt.Fprintf(out, "moved %s -> %s\n", res.Entry.Name, relativeTo(ctrl.Dir(), res.DestinationPath))
	default:
		fmt.Fprintf(out, "would move %s -> %s\n", res.Entry.Name, relativeTo(ctrl.Dir(), res.DestinationPath))
	}
	if res.Warning != nil {
		fmt.Fprintf(out, "warning: not recorded as viewed: %v\n", res.Warning)
	}
	return nil
}

// parseSlot converts a 1-based slot number to an index
func parseSlot(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > types.FlagSlotCount {
		return 0, errors.NewConfigError("flag slot must be 1-4", arg, errors.InvalidSlot, err)
	}
	return n - 1, nil
}

func relativeTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
