package components

import (
	"fmt"
	"strings"

	"winnow/internal/flags"
	"winnow/internal/tui/styles"
)

// FlagLegend renders the four flag slots in their colors. Unnamed slots are
// dimmed since sorting to them is refused.
func FlagLegend(slots flags.Slots) string {
	parts := make([]string, 0, len(slots))
	for i, slot := range slots {
		if !slot.Named() {
			parts = append(parts, styles.Theme.Inactive.Render(fmt.Sprintf("[%d] unnamed", i+1)))
			continue
		}
		parts = append(parts, styles.Flag(slot.Color).Render(fmt.Sprintf("%d %s", i+1, slot.Name)))
	}
	return strings.Join(parts, " ")
}
