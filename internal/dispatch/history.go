package dispatch

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/opencode-ai/commandbar/internal/logging"
	"github.com/opencode-ai/commandbar/internal/storage"
	"github.com/opencode-ai/commandbar/pkg/types"
)

// Log is the append-only record of execution attempts. Entries are appended
// in the order executions complete and never mutated afterwards. The log is
// unbounded: no eviction, in-memory for the lifetime of the engine instance,
// with optional best-effort persistence.
type Log struct {
	mu      sync.Mutex
	entries []types.HistoryEntry

	// Optional persistence. Failures are logged, never surfaced: history
	// is an audit trail, not a dependency of execution.
	store *storage.Storage
	key   string
}

// NewLog creates an in-memory history log.
func NewLog() *Log {
	return &Log{}
}

// NewPersistentLog creates a history log that mirrors every append to the
// given store key.
func NewPersistentLog(store *storage.Storage, key string) *Log {
	l := &Log{store: store, key: key}
	if err := store.Get(key, &l.entries); err != nil && err != storage.ErrNotFound {
		logging.Warn().Err(err).Str("key", key).Msg("failed to load command history")
	}
	return l
}

// Append records one execution attempt.
func (l *Log) Append(commandName string, execErr error) types.HistoryEntry {
	entry := types.HistoryEntry{
		ID:          ulid.Make().String(),
		CommandName: commandName,
		Timestamp:   time.Now().UnixMilli(),
		Succeeded:   execErr == nil,
	}
	if execErr != nil {
		entry.ErrorMessage = execErr.Error()
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	snapshot := make([]types.HistoryEntry, len(l.entries))
	copy(snapshot, l.entries)
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.Put(l.key, snapshot); err != nil {
			logging.Warn().Err(err).Str("key", l.key).Msg("failed to persist command history")
		}
	}

	return entry
}

// Entries returns a copy of the log.
func (l *Log) Entries() []types.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]types.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded attempts.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
