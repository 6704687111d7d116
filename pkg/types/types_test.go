package types

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestAction(t *testing.T) {
	assert.Equal(t, "keep", Keep().String())
	assert.Equal(t, "reject", Reject().String())
	assert.Equal(t, "sort:3", SortTo(2).String())

	assert.False(t, Keep().Moves())
	assert.True(t, Reject().Moves())
	assert.True(t, SortTo(0).Moves())
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"a.txt", "with space", "ünïcode", "..dots", "line\nbreak"} {
		assert.True(t, ValidName(name), name)
	}
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "nul\x00"} {
		assert.False(t, ValidName(name), name)
	}
}

func TestEntryString(t *testing.T) {
	assert.Equal(t, "album/ (directory)", Entry{Name: "album", IsDir: true, Class: ClassDirectory}.String())
	assert.Equal(t, "a.png (image)", Entry{Name: "a.png", Class: ClassImage}.String())
	assert.Equal(t, "other", Class(99).String())
}

func TestStateRemaining(t *testing.T) {
	assert.Equal(t, 3, State{Len: 5, Cursor: 2}.Remaining())
	assert.Equal(t, 0, State{Len: 2, Cursor: 2}.Remaining())
	assert.Equal(t, 0, State{}.Remaining())
}

func TestFlagSlotNamed(t *testing.T) {
	assert.False(t, FlagSlot{Color: "#fff"}.Named())
	assert.True(t, FlagSlot{Name: "birds"}.Named())
}

func TestKeyMap(t *testing.T) {
	keys := DefaultKeyMap()

	t.Run("sort slots", func(t *testing.T) {
		for pressed, want := range map[string]int{"1": 0, "2": 1, "4": 3} {
			got, ok := SortSlot(pressed)
			assert.True(t, ok, pressed)
			assert.Equal(t, want, got)
		}
		for _, pressed := range []string{"0", "5", "12", "a", ""} {
			_, ok := SortSlot(pressed)
			assert.False(t, ok, pressed)
		}
	})

	t.Run("bindings", func(t *testing.T) {
		assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRight}, keys.Keep))
		assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")}, keys.Reject))
		assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")}, keys.Sort))
		assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")}, keys.Reset))
		assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")}, keys.Rescan))
	})

	t.Run("help", func(t *testing.T) {
		assert.NotEmpty(t, keys.ShortHelp())
		assert.Len(t, keys.FullHelp(), 3)
	})
}
