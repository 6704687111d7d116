package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"winnow/internal/flags"
)

func newFlagsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Show the four flag slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flagStore(ctx)
			if err != nil {
				return err
			}
			printSlots(cmd.OutOrStdout(), store.Load())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <slot 1-4> <name>",
		Short: "Name a flag slot; an empty name clears it",
		Long: `Rename sets the folder name a flag slot files entries into. Entries filed
under the old name are not moved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			store := flags.NewStore(settings.FlagsFile)
			slots, err := store.Rename(index, args[1], settings.ReservedNames()...)
			if err != nil {
				return err
			}
			printSlots(cmd.OutOrStdout(), slots)
			return nil
		},
	})

	return cmd
}

func flagStore(ctx *commandContext) (*flags.Store, error) {
	s, err := ctx.ensureSettings()
	if err != nil {
		return nil, err
	}
	return flags.NewStore(s.FlagsFile), nil
}

func printSlots(out io.Writer, slots flags.Slots) {
	rows := make([][]string, 0, len(slots))
	for i, slot := range slots {
		name := slot.Name
		if name == "" {
			name = "(unnamed)"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), name, slot.Color})
	}
	fmt.Fprintln(out, renderTable([]string{"Slot", "Folder", "Color"}, rows, []columnAlignment{alignRight}))
}
