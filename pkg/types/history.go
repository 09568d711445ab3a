package types

// HistoryEntry is an immutable audit record of one execution attempt.
// Exactly one entry is appended per attempt, success or failure, and
// entries are never mutated after creation.
type HistoryEntry struct {
	ID           string `json:"id"`
	CommandName  string `json:"commandName"`
	Timestamp    int64  `json:"timestamp"`
	Succeeded    bool   `json:"succeeded"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
