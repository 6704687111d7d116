package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"winnow/internal/errors"
	"winnow/internal/queue"
	"winnow/internal/session"
	"winnow/pkg/types"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list [directory]",
		Short: "Print the entries still waiting for a decision",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := ctx.openSession(args)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			pending := ctrl.Pending()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if pending == nil {
					pending = []types.Entry{}
				}
				return enc.Encode(pending)
			}

			if len(pending) == 0 {
				fmt.Fprintln(out, emptyMessage(ctrl.State()))
				return nil
			}

			rows := make([][]string, 0, len(pending))
			for i, e := range pending {
				size := humanize.Bytes(uint64(e.Size))
				if e.IsDir {
					size = "-"
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), e.Name, e.Class.String(), size})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Name", "Class", "Size"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the queue as JSON")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [directory]",
		Short: "Summarize pending and decided entries and bucket contents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := ctx.openSession(args)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			rows, err := statusRows(ctx, ctrl)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ctrl.Dir())
			fmt.Fprintln(out, renderTable([]string{"", "Entries"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func statusRows(ctx *commandContext, ctrl *session.Controller) ([][]string, error) {
	s, err := ctx.ensureSettings()
	if err != nil {
		return nil, err
	}
	state := ctrl.State()
	stats := ctrl.Stats()

	rows := [][]string{
		{"pending", strconv.Itoa(state.Len)},
		{"decided", strconv.Itoa(stats.Viewed)},
		{"viewed log", strconv.Itoa(state.Viewed)},
	}

	scanner, err := queue.NewScanner(nil)
	if err != nil {
		return nil, err
	}
	buckets := []string{s.RejectDir}
	buckets = append(buckets, ctrl.Slots().Names()...)
	for _, name := range buckets {
		entries, err := scanner.Scan(filepath.Join(ctrl.Dir(), name))
		count := len(entries)
		if err != nil {
			if !errors.IsScanError(err) {
				return nil, err
			}
			// a bucket that was never created holds nothing
			count = 0
		}
		rows = append(rows, []string{name + "/", strconv.Itoa(count)})
	}
	return rows, nil
}

func emptyMessage(state types.State) string {
	switch {
	case state.Empty:
		return "Nothing to triage in this directory."
	case state.PreviouslyCompleted:
		return fmt.Sprintf("Every entry here was already decided (%d). Run `winnow reset` to start over.", state.Viewed)
	default:
		return "All done."
	}
}
