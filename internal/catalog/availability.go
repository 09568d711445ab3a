package catalog

import "github.com/opencode-ai/commandbar/pkg/types"

// predicate decides whether a built-in command is usable for a given
// session snapshot.
type predicate func(snap types.SessionSnapshot) bool

// availability is the fixed name-to-predicate table for built-in commands.
// Built-ins not listed here are available by default so that adding a new
// built-in never silently hides it.
var availability = map[string]predicate{
	"init": func(snap types.SessionSnapshot) bool {
		return snap.MessageCount == 0
	},
	"summarize": func(snap types.SessionSnapshot) bool {
		return snap.MessageCount > 0
	},
	"revert": func(snap types.SessionSnapshot) bool {
		return snap.MessageCount > 1
	},
	"undo": func(snap types.SessionSnapshot) bool {
		return snap.MessageCount > 1
	},
	"unrevert": func(snap types.SessionSnapshot) bool {
		return snap.HasPendingRevert
	},
	"redo": func(snap types.SessionSnapshot) bool {
		return snap.HasPendingRevert
	},
	"abort": func(snap types.SessionSnapshot) bool {
		return snap.ActivityPhase == types.PhaseBusy
	},
	"edit": func(snap types.SessionSnapshot) bool {
		return snap.MessageCount > 0 && snap.LastMessageRole == types.RoleUser
	},
	"clear": func(snap types.SessionSnapshot) bool {
		return snap.MessageCount > 0
	},
	"compact": func(snap types.SessionSnapshot) bool {
		return snap.MessageCount > 0
	},
}

// IsAvailable reports whether a command is usable for the given snapshot.
// Dynamic commands are always available; built-ins are gated by the
// availability table. Pure function: identical inputs always yield
// identical results.
func IsAvailable(cmd types.Command, snap types.SessionSnapshot) bool {
	if !cmd.BuiltIn {
		return true
	}
	if pred, ok := availability[cmd.Name]; ok {
		return pred(snap)
	}
	return true
}
