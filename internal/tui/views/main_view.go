package views

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"winnow/internal/tui/common"
	"winnow/internal/tui/components"
	"winnow/internal/tui/styles"
	"winnow/pkg/types"
)

// RenderMainView draws the whole triage screen from m.
func RenderMainView(m common.ModelReader) string {
	var sb strings.Builder
	state := m.State()

	sb.WriteString(styles.Theme.Title.Render("winnow") + " " + styles.Theme.Meta.Render(state.Dir))
	sb.WriteString("\n\n")

	switch {
	case state.Empty:
		sb.WriteString(RenderEmpty())
	case state.PreviouslyCompleted:
		sb.WriteString(RenderPreviouslyCompleted(state))
	case state.Exhausted:
		sb.WriteString(RenderCompleted(state))
	default:
		sb.WriteString(RenderEntry(m))
	}
	sb.WriteString("\n\n")

	sb.WriteString(components.FlagLegend(m.Slots()))
	sb.WriteString("\n")

	if m.Stale() {
		sb.WriteString("\n" + styles.Theme.Notice.Render("Directory changed, press r to rescan"))
	}
	if m.Mode() == common.ConfirmReset {
		sb.WriteString("\n" + styles.Theme.Warning.Render("Forget every decision for this directory? [y/n]"))
	}
	if status := m.StatusView(); status != "" {
		sb.WriteString("\n" + status)
	}

	sb.WriteString("\n\n" + m.HelpView())

	return styles.Theme.App.Render(sb.String())
}

// RenderEntry shows the current entry with its position and metadata.
func RenderEntry(m common.ModelReader) string {
	state := m.State()
	if state.Current == nil {
		return ""
	}
	entry := *state.Current

	var sb strings.Builder
	sb.WriteString(styles.Theme.Meta.Render(fmt.Sprintf("%d/%d", state.Cursor+1, state.Len)))
	sb.WriteString("  ")
	sb.WriteString(styles.Theme.Name.Render(entry.Name))
	sb.WriteString("\n")
	sb.WriteString(styles.Theme.Meta.Render(Describe(entry)))

	if c := m.Content(); c != nil && c.Name == entry.Name {
		sb.WriteString(styles.Theme.Meta.Render(fmt.Sprintf("  %d×%d %s", c.Size.X, c.Size.Y, c.Format)))
	}
	return sb.String()
}

// Describe returns "class · size" for an entry
func Describe(entry types.Entry) string {
	if entry.IsDir {
		return entry.Class.String()
	}
	return fmt.Sprintf("%s · %s", entry.Class, humanize.Bytes(uint64(entry.Size)))
}

func RenderCompleted(state types.State) string {
	msg := "All done."
	if state.Len > 0 {
		msg = fmt.Sprintf("All done. %d kept in place.", state.Len)
	}
	return styles.Theme.Success.Render(msg) + "\n" +
		styles.Theme.Meta.Render("Press R to start over or q to quit.")
}

func RenderPreviouslyCompleted(state types.State) string {
	return styles.Theme.Success.Render(fmt.Sprintf("Every entry here was already decided (%d).", state.Viewed)) + "\n" +
		styles.Theme.Meta.Render("Press R to forget those decisions and start over.")
}

func RenderEmpty() string {
	return styles.Theme.Meta.Render("Nothing to triage in this directory.")
}
