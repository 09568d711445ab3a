// Package engine owns the ephemeral slash-command state for one palette
// instance: the query, the session snapshot, the highlighted row, and the
// wiring from a confirmed command to the dispatcher.
package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/opencode-ai/commandbar/internal/catalog"
	"github.com/opencode-ai/commandbar/internal/dispatch"
	"github.com/opencode-ai/commandbar/internal/event"
	"github.com/opencode-ai/commandbar/internal/logging"
	"github.com/opencode-ai/commandbar/internal/palette"
	"github.com/opencode-ai/commandbar/pkg/types"
)

// EditPrompt solicits replacement content for the edit command. Returning
// an error abandons the attempt before it reaches the dispatcher (a
// canceled prompt is not an execution attempt, so nothing is recorded).
type EditPrompt func(ctx context.Context) (string, error)

// Options configures an engine instance.
type Options struct {
	SessionID  string
	Builtins   []types.Command // defaults to catalog.Builtins()
	Sources    []catalog.Source
	Dispatcher *dispatch.Dispatcher
	Bus        *event.Bus
	EditPrompt EditPrompt
}

// Engine is the slash-command engine for a single session. One instance
// owns its query, selection and history exclusively; instances are never
// shared across sessions. State transitions run synchronously; the only
// suspension point is the dispatcher's delegated call, which runs in its
// own goroutine so navigation and search stay responsive while an
// execution is pending.
//
// There is deliberately no in-flight lock: a second confirm while an
// execution is pending starts a second, independent attempt, and history
// entries land in completion order.
type Engine struct {
	mu sync.Mutex

	sessionID  string
	builtins   []types.Command
	sources    []catalog.Source
	dispatcher *dispatch.Dispatcher
	bus        *event.Bus
	editPrompt EditPrompt

	query    string
	snapshot types.SessionSnapshot
	state    *palette.State
	watcher  *catalog.Watcher

	log zerolog.Logger
}

// New creates an engine and resolves the initial visible list.
func New(ctx context.Context, opts Options) *Engine {
	builtins := opts.Builtins
	if builtins == nil {
		builtins = catalog.Builtins()
	}

	e := &Engine{
		sessionID:  opts.SessionID,
		builtins:   builtins,
		sources:    opts.Sources,
		dispatcher: opts.Dispatcher,
		bus:        opts.Bus,
		editPrompt: opts.EditPrompt,
		state:      palette.New(),
		log:        logging.Component("engine"),
	}

	e.mu.Lock()
	e.resolve(ctx)
	e.mu.Unlock()

	return e
}

// SetQuery updates the filter text and re-resolves the visible list.
func (e *Engine) SetQuery(ctx context.Context, query string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.query = query
	e.resolve(ctx)
}

// SetSnapshot installs a new session-state snapshot and re-resolves.
func (e *Engine) SetSnapshot(ctx context.Context, snap types.SessionSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.snapshot = snap
	e.resolve(ctx)
}

// Refresh re-resolves the visible list after a dynamic source changed, and
// announces the change.
func (e *Engine) Refresh(ctx context.Context, source string) {
	e.mu.Lock()
	e.resolve(ctx)
	e.mu.Unlock()

	e.bus.PublishSync(event.Event{
		Type: event.CatalogUpdated,
		Data: event.CatalogUpdatedData{Source: source},
	})
}

// Watch re-resolves the catalog whenever a file in the source's command
// directory changes. A missing directory disables live reload silently.
func (e *Engine) Watch(src *catalog.FileSource) error {
	w, err := catalog.NewWatcher(src.CommandDir(), func() {
		e.Refresh(context.Background(), "file")
	})
	if err != nil {
		return err
	}
	if w == nil {
		return nil
	}
	w.Start()

	e.mu.Lock()
	e.watcher = w
	e.mu.Unlock()
	return nil
}

// Close stops the command-file watcher, if one is running.
func (e *Engine) Close() error {
	e.mu.Lock()
	w := e.watcher
	e.watcher = nil
	e.mu.Unlock()

	if w != nil {
		return w.Stop()
	}
	return nil
}

// Visible returns the current ordered, gated command list.
func (e *Engine) Visible() []types.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Commands()
}

// SelectedIndex returns the highlighted index.
func (e *Engine) SelectedIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Selected()
}

// Query returns the current filter text.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Handle processes one logical input signal.
func (e *Engine) Handle(ctx context.Context, sig palette.Signal) {
	e.mu.Lock()

	switch sig {
	case palette.SignalDown:
		e.state.Next()
		e.mu.Unlock()
	case palette.SignalUp:
		e.state.Prev()
		e.mu.Unlock()
	case palette.SignalDismiss:
		e.mu.Unlock()
		e.bus.PublishSync(event.Event{
			Type: event.PaletteClosed,
			Data: event.PaletteClosedData{SessionID: e.sessionID},
		})
	case palette.SignalConfirm:
		cmd, ok := e.state.Confirm()
		e.mu.Unlock()
		if !ok {
			return
		}
		e.confirm(ctx, cmd)
	default:
		e.mu.Unlock()
	}
}

// resolve recomputes the visible list. Source failures are absorbed: a
// broken dynamic catalog degrades to built-ins only and must never block
// them. Callers hold e.mu.
func (e *Engine) resolve(ctx context.Context) {
	var dynamic []types.Command
	for _, src := range e.sources {
		commands, err := src.List(ctx)
		if err != nil {
			e.log.Debug().Err(err).Msg("dynamic catalog fetch failed, using built-ins only")
			continue
		}
		dynamic = append(dynamic, commands...)
	}

	e.state.SetCommands(catalog.Resolve(e.builtins, dynamic, e.query, e.snapshot))
}

// confirm routes a confirmed command: built-ins go to the dispatcher in a
// detached goroutine, dynamic commands are handed back to the caller for
// composition.
func (e *Engine) confirm(ctx context.Context, cmd types.Command) {
	e.bus.PublishSync(event.Event{
		Type: event.CommandSelected,
		Data: event.CommandSelectedData{SessionID: e.sessionID, Command: cmd},
	})

	if !cmd.BuiltIn {
		e.bus.PublishSync(event.Event{
			Type: event.CommandComposed,
			Data: event.CommandComposedData{SessionID: e.sessionID, Command: cmd},
		})
		return
	}

	// Detach from the input context: an in-flight execution is never
	// canceled by subsequent palette input.
	go e.execute(context.WithoutCancel(ctx), cmd)
}

func (e *Engine) execute(ctx context.Context, cmd types.Command) {
	req := dispatch.Request{Command: cmd, SessionID: e.sessionID}

	if cmd.Name == "edit" && e.editPrompt != nil {
		content, err := e.editPrompt(ctx)
		if err != nil {
			e.log.Debug().Err(err).Msg("edit prompt abandoned")
			return
		}
		req.EditContent = content
	}

	// The dispatcher records and logs the outcome; the engine only announces it.
	entry, _ := e.dispatcher.Execute(ctx, req)

	e.bus.PublishSync(event.Event{
		Type: event.CommandExecuted,
		Data: event.CommandExecutedData{SessionID: e.sessionID, Entry: entry},
	})
}
