package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"winnow/internal/log"
	"winnow/internal/tui"
	"winnow/internal/watch"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:   "winnow [directory]",
		Short: "Triage the files in a directory one at a time",
		Long: `winnow shows the entries of a directory one by one. Keep leaves an entry
where it is, reject moves it to the reject bucket, and 1-4 file it under a
named flag folder. Decisions are remembered, so a later run only offers
what is new.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			ctx.configureLogging(s, cmd.ErrOrStderr(), cmd.Parent() == nil)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTriage(ctx, cmd, args)
		},
	}

	ctx.bindFlags(rootCmd)

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newResetCommand(ctx))
	for _, cmd := range newDisposeCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newFlagsCommand(ctx))

	return rootCmd
}

// runTriage runs the interactive triage screen until the user quits
func runTriage(ctx *commandContext, cmd *cobra.Command, args []string) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return fmt.Errorf("interactive triage needs a terminal; use `winnow list` to print the queue")
	}

	ctrl, err := ctx.openSession(args)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	s, _ := ctx.ensureSettings()
	var watcher *watch.Watcher
	if s.Watch {
		watcher, err = watch.New(ctrl.Dir(), ctrl.Reserved())
		if err != nil {
			log.LogWithError(err).Warn("Could not watch directory")
		} else if err := watcher.Start(); err != nil {
			log.LogWithError(err).Warn("Could not start watcher")
			watcher = nil
		} else {
			defer watcher.Stop()
		}
	}

	p := tea.NewProgram(tui.New(ctrl, watcher), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running triage screen: %w", err)
	}
	return nil
}
