package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset [directory]",
		Short: "Forget every decision made in a directory",
		Long: `Reset removes the viewed log so every entry still in the directory is
offered again. Entries already moved into buckets stay where they are.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := ctx.openSession(args)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "Forget every decision in %s? [y/N] ", ctrl.Dir())
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			state, err := ctrl.Reset()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Reset %s: %d pending.\n", state.Dir, state.Len)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
