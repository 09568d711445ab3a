// Package palette tracks the highlighted row over the visible command list
// and interprets the four logical input signals.
package palette

import "github.com/opencode-ai/commandbar/pkg/types"

// Signal is a logical input event, decoded upstream from raw key input.
type Signal int

// Input signals.
const (
	SignalDown Signal = iota
	SignalUp
	SignalConfirm
	SignalDismiss
)

// State is the ephemeral selection state over one visible list. Navigation
// wraps circularly in both directions; every operation is a no-op on an
// empty list.
type State struct {
	commands []types.Command
	selected int
}

// New creates an empty selection state.
func New() *State {
	return &State{}
}

// SetCommands replaces the visible list. The highlight resets to the first
// entry whenever the list changes identity.
func (s *State) SetCommands(commands []types.Command) {
	s.commands = commands
	s.selected = 0
}

// Commands returns the current visible list.
func (s *State) Commands() []types.Command {
	return s.commands
}

// Selected returns the highlighted index. Meaningless when the list is
// empty.
func (s *State) Selected() int {
	return s.selected
}

// Next moves the highlight down, wrapping to the top.
func (s *State) Next() {
	if len(s.commands) == 0 {
		return
	}
	s.selected = (s.selected + 1) % len(s.commands)
}

// Prev moves the highlight up, wrapping to the bottom.
func (s *State) Prev() {
	if len(s.commands) == 0 {
		return
	}
	s.selected = (s.selected - 1 + len(s.commands)) % len(s.commands)
}

// Confirm returns the highlighted command. The index is re-normalized
// before use so a stale highlight can never read out of bounds. Returns
// false when the list is empty.
func (s *State) Confirm() (types.Command, bool) {
	total := len(s.commands)
	if total == 0 {
		return types.Command{}, false
	}
	safe := ((s.selected % total) + total) % total
	return s.commands[safe], true
}
