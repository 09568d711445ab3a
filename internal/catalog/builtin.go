package catalog

import "github.com/opencode-ai/commandbar/pkg/types"

// Builtins returns the statically-known command set. Every name here has a
// route in the dispatcher; availability gating decides visibility per
// session snapshot.
func Builtins() []types.Command {
	return []types.Command{
		{
			Name:        "init",
			Description: "Initialize the session with project context",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
		{
			Name:        "summarize",
			Description: "Summarize recent conversation history",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
		{
			Name:        "revert",
			Description: "Revert the session to the last checkpoint",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
		{
			Name:        "undo",
			Description: "Undo the last message",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
		{
			Name:        "unrevert",
			Description: "Restore messages removed by a revert",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
		{
			Name:        "redo",
			Description: "Redo a reverted change",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
		{
			Name:        "abort",
			Description: "Interrupt the current response",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
		{
			Name:        "edit",
			Description: "Edit your last message",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
		{
			Name:        "clear",
			Description: "Clear the current conversation",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
		{
			Name:        "compact",
			Description: "Compact the conversation to save context",
			Source:      types.SourceBuiltin,
			BuiltIn:     true,
		},
	}
}
