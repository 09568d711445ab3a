// Package types provides the core data types for the commandbar engine.
package types

// Command source values.
const (
	SourceBuiltin = "builtin"
	SourceConfig  = "config"
	SourceFile    = "file"
	SourceRemote  = "remote"
)

// Command is the unit of action in a resolved catalog. Names are unique
// within one catalog snapshot; a dynamic command that shares a name with a
// built-in replaces it wholesale.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Template    string `json:"template,omitempty"`
	Agent       string `json:"agent,omitempty"`
	Model       string `json:"model,omitempty"`
	Source      string `json:"source,omitempty"` // "builtin", "config", "file" or "remote"
	BuiltIn     bool   `json:"builtin"`
}
