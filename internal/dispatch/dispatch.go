// Package dispatch routes a confirmed built-in command to its backend
// operation and records the outcome in the history log.
package dispatch

import (
	"context"
	"errors"

	"github.com/opencode-ai/commandbar/internal/logging"
	"github.com/opencode-ai/commandbar/pkg/types"
)

// SessionService is the session-mutation collaborator.
type SessionService interface {
	Revert(ctx context.Context, sessionID, messageID string) error
	Unrevert(ctx context.Context, sessionID string) error
	Interrupt(ctx context.Context, sessionID string) error
	Init(ctx context.Context, sessionID string) error
	Summarize(ctx context.Context, sessionID string) error
	Messages(ctx context.Context, sessionID string) ([]types.Message, error)
}

// MessageService is the direct network collaborator.
type MessageService interface {
	EditMessage(ctx context.Context, sessionID, messageID, content string) error
	ClearSession(ctx context.Context, sessionID string) error
	CompactSession(ctx context.Context, sessionID string) error
}

// route identifies the backend operation for a built-in command name.
// Representing the routing table as a closed set of variants (instead of
// scattering string comparisons) keeps the switch in execute exhaustive.
type route int

const (
	routeUnknown route = iota
	routeRevert
	routeUnrevert
	routeAbort
	routeEdit
	routeClear
	routeCompact
	routeInit
	routeSummarize
)

// routes maps built-in command names to their backend operation.
// Case-sensitive exact match.
var routes = map[string]route{
	"revert":    routeRevert,
	"undo":      routeRevert,
	"unrevert":  routeUnrevert,
	"redo":      routeUnrevert,
	"abort":     routeAbort,
	"edit":      routeEdit,
	"clear":     routeClear,
	"compact":   routeCompact,
	"init":      routeInit,
	"summarize": routeSummarize,
}

// knownNames is the suggestion pool for unknown-command errors.
var knownNames = func() []string {
	names := make([]string, 0, len(routes))
	for name := range routes {
		names = append(names, name)
	}
	return names
}()

// Request describes one execution attempt. EditContent carries the
// replacement text for the edit command; soliciting it from the user is the
// caller's responsibility, before Execute is called.
type Request struct {
	Command     types.Command
	SessionID   string
	EditContent string
}

// Dispatcher executes built-in commands against the collaborators. Dynamic
// commands are never dispatched; the engine hands them back to the caller
// for composition.
type Dispatcher struct {
	sessions SessionService
	messages MessageService
	history  *Log
}

// New creates a dispatcher.
func New(sessions SessionService, messages MessageService, history *Log) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		messages: messages,
		history:  history,
	}
}

// History returns the dispatcher's history log.
func (d *Dispatcher) History() *Log {
	return d.history
}

// Execute routes the command and appends exactly one history entry, on
// success and on failure alike. Entries land in completion order. The
// dispatcher never retries; every call is a single attempt. The recorded
// entry is returned alongside the error.
func (d *Dispatcher) Execute(ctx context.Context, req Request) (types.HistoryEntry, error) {
	err := d.execute(ctx, req)

	entry := d.history.Append(req.Command.Name, err)
	if err != nil {
		logging.Error().
			Str("command", req.Command.Name).
			Str("sessionID", req.SessionID).
			Str("entryID", entry.ID).
			Msg(err.Error())
	} else {
		logging.Debug().
			Str("command", req.Command.Name).
			Str("sessionID", req.SessionID).
			Str("entryID", entry.ID).
			Msg("command executed")
	}

	return entry, err
}

func (d *Dispatcher) execute(ctx context.Context, req Request) error {
	r, ok := routes[req.Command.Name]
	if !ok || !req.Command.BuiltIn {
		return errUnknownCommand(req.Command.Name, knownNames)
	}

	switch r {
	case routeRevert:
		return d.revert(ctx, req.SessionID)
	case routeUnrevert:
		return d.wrap("unrevert", d.sessions.Unrevert(ctx, req.SessionID))
	case routeAbort:
		return d.wrap("abort", d.sessions.Interrupt(ctx, req.SessionID))
	case routeEdit:
		return d.edit(ctx, req.SessionID, req.EditContent)
	case routeClear:
		return d.wrap("clear", d.messages.ClearSession(ctx, req.SessionID))
	case routeCompact:
		return d.wrap("compact", d.messages.CompactSession(ctx, req.SessionID))
	case routeInit:
		return d.wrap("init", d.sessions.Init(ctx, req.SessionID))
	case routeSummarize:
		return d.wrap("summarize", d.sessions.Summarize(ctx, req.SessionID))
	default:
		return errUnknownCommand(req.Command.Name, knownNames)
	}
}

// revert resolves the checkpoint target (the most recent user message) and
// delegates to the session collaborator.
func (d *Dispatcher) revert(ctx context.Context, sessionID string) error {
	target, err := d.lastUserMessage(ctx, sessionID)
	if err != nil {
		return err
	}
	if target == nil {
		return errNoRevertTarget()
	}
	return d.wrap("revert", d.sessions.Revert(ctx, sessionID, target.ID))
}

// edit patches the most recent user message with the supplied replacement
// content.
func (d *Dispatcher) edit(ctx context.Context, sessionID, content string) error {
	target, err := d.lastUserMessage(ctx, sessionID)
	if err != nil {
		return err
	}
	if target == nil {
		return errNoEditableMessage()
	}
	return d.wrap("edit", d.messages.EditMessage(ctx, sessionID, target.ID, content))
}

func (d *Dispatcher) lastUserMessage(ctx context.Context, sessionID string) (*types.Message, error) {
	messages, err := d.sessions.Messages(ctx, sessionID)
	if err != nil {
		return nil, errRemoteFailed("list messages", err)
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == types.RoleUser {
			return &messages[i], nil
		}
	}
	return nil, nil
}

// wrap converts a collaborator failure into an ExecutionError, passing
// through errors that are already classified.
func (d *Dispatcher) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr
	}
	return errRemoteFailed(op, err)
}
