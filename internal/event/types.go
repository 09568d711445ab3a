package event

import "github.com/opencode-ai/commandbar/pkg/types"

// Event types emitted by the engine.
const (
	CommandSelected EventType = "command.selected"
	CommandComposed EventType = "command.composed"
	CommandExecuted EventType = "command.executed"
	PaletteClosed   EventType = "palette.closed"
	CatalogUpdated  EventType = "catalog.updated"
)

// CommandSelectedData carries the command chosen on confirm.
type CommandSelectedData struct {
	SessionID string        `json:"sessionID"`
	Command   types.Command `json:"command"`
}

// CommandComposedData is the hand-back for a dynamic command: the caller
// composes the prompt text from the template and routing hints instead of
// the dispatcher executing anything.
type CommandComposedData struct {
	SessionID string        `json:"sessionID"`
	Command   types.Command `json:"command"`
}

// CommandExecutedData carries the history entry recorded for one attempt.
type CommandExecutedData struct {
	SessionID string             `json:"sessionID"`
	Entry     types.HistoryEntry `json:"entry"`
}

// PaletteClosedData signals that the caller should tear down the palette.
type PaletteClosedData struct {
	SessionID string `json:"sessionID"`
}

// CatalogUpdatedData signals that a dynamic source changed on disk and the
// visible list has been re-resolved.
type CatalogUpdatedData struct {
	Source string `json:"source"`
}
