// Package stubserver provides an in-memory opencode-compatible server for
// integration tests and local development. It implements the command catalog
// and session endpoints the client talks to, with seeding helpers to set up
// scenarios.
package stubserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/opencode-ai/commandbar/pkg/types"
)

// Config holds server configuration.
type Config struct {
	Port       int
	EnableCORS bool
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:       8080,
		EnableCORS: true,
	}
}

// message is the server-side message record. It carries content, which the
// reduced wire shape the engine consumes does not need.
type message struct {
	ID        string            `json:"id"`
	SessionID string            `json:"sessionID"`
	Role      types.Role        `json:"role"`
	Content   string            `json:"content"`
	Time      types.MessageTime `json:"time"`
}

// sessionState is the in-memory state for one session.
type sessionState struct {
	messages []message
	reverted []message
	busy     bool
	nextID   int
}

// Server is the stub HTTP server.
type Server struct {
	config  *Config
	router  *chi.Mux
	httpSrv *http.Server

	mu       sync.Mutex
	commands []types.Command
	sessions map[string]*sessionState

	// When set, GET /command fails with this status. Lets tests exercise
	// the built-ins fallback.
	catalogFailStatus int
}

// New creates a stub server.
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		sessions: make(map[string]*sessionState),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/command", s.listCommands)

	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/message", s.getMessages)
		r.Patch("/message/{messageID}", s.editMessage)
		r.Delete("/message", s.clearMessages)

		r.Post("/revert", s.revertSession)
		r.Post("/unrevert", s.unrevertSession)
		r.Post("/abort", s.abortSession)
		r.Post("/init", s.initSession)
		r.Post("/summarize", s.summarizeSession)
		r.Post("/compact", s.compactSession)
	})
}

// Handler returns the router, for mounting under httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// SeedCommands installs the catalog served at GET /command.
func (s *Server) SeedCommands(commands []types.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = commands
}

// SeedConversation installs alternating user/assistant messages. Contents
// are generated; the first message is from the user.
func (s *Server) SeedConversation(sessionID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(sessionID)
	for i := 0; i < count; i++ {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		state.append(sessionID, role, fmt.Sprintf("message %d", i+1))
	}
}

// SetBusy marks the session as having a response in flight.
func (s *Server) SetBusy(sessionID string, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(sessionID).busy = busy
}

// FailCatalog makes GET /command return the given status until cleared with
// status 0.
func (s *Server) FailCatalog(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogFailStatus = status
}

// Snapshot derives the gating snapshot for a session.
func (s *Server) Snapshot(sessionID string) types.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(sessionID)
	snap := types.SessionSnapshot{
		SessionID:        sessionID,
		MessageCount:     len(state.messages),
		HasPendingRevert: len(state.reverted) > 0,
		ActivityPhase:    types.PhaseIdle,
	}
	if state.busy {
		snap.ActivityPhase = types.PhaseBusy
	}
	if n := len(state.messages); n > 0 {
		snap.LastMessageRole = state.messages[n-1].Role
	}
	return snap
}

// MessageContent returns the content of one message, for test assertions.
func (s *Server) MessageContent(sessionID, messageID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.state(sessionID).messages {
		if m.ID == messageID {
			return m.Content, true
		}
	}
	return "", false
}

// state returns the session record, creating it on first use. Callers hold
// s.mu.
func (s *Server) state(sessionID string) *sessionState {
	state, ok := s.sessions[sessionID]
	if !ok {
		state = &sessionState{}
		s.sessions[sessionID] = state
	}
	return state
}

func (st *sessionState) append(sessionID string, role types.Role, content string) message {
	st.nextID++
	m := message{
		ID:        fmt.Sprintf("msg_%d", st.nextID),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Time:      types.MessageTime{Created: time.Now().UnixMilli()},
	}
	st.messages = append(st.messages, m)
	return m
}

func (s *Server) listCommands(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	failStatus := s.catalogFailStatus
	commands := make([]types.Command, len(s.commands))
	copy(commands, s.commands)
	s.mu.Unlock()

	if failStatus != 0 {
		writeError(w, failStatus, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, commands)
}

func (s *Server) getMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	state := s.state(sessionID)
	messages := make([]message, len(state.messages))
	copy(messages, state.messages)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) editMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messageID := chi.URLParam(r, "messageID")

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(sessionID)
	for i := range state.messages {
		if state.messages[i].ID == messageID {
			state.messages[i].Content = body.Content
			writeJSON(w, http.StatusOK, state.messages[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "message not found")
}

func (s *Server) clearMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	state := s.state(sessionID)
	state.messages = nil
	state.reverted = nil
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) revertSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body struct {
		MessageID string `json:"messageID"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(sessionID)
	for i := range state.messages {
		if state.messages[i].ID == body.MessageID {
			// The target message and everything after it move to the
			// revert stack, restorable by unrevert.
			state.reverted = append(state.reverted, state.messages[i:]...)
			state.messages = state.messages[:i]
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusConflict, "revert target not found")
}

func (s *Server) unrevertSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(sessionID)
	if len(state.reverted) == 0 {
		writeError(w, http.StatusConflict, "nothing to unrevert")
		return
	}
	state.messages = append(state.messages, state.reverted...)
	state.reverted = nil
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) abortSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(sessionID)
	if !state.busy {
		writeError(w, http.StatusConflict, "no response in flight")
		return
	}
	state.busy = false
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) initSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(sessionID)
	state.append(sessionID, types.RoleAssistant, "Project context initialized")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) summarizeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(sessionID)
	if len(state.messages) == 0 {
		writeError(w, http.StatusConflict, "nothing to summarize")
		return
	}
	state.append(sessionID, types.RoleAssistant, "Summary of the conversation so far")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) compactSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(sessionID)
	if len(state.messages) == 0 {
		writeError(w, http.StatusConflict, "nothing to compact")
		return
	}
	compacted := state.append(sessionID, types.RoleAssistant, "Compacted conversation")
	state.messages = []message{compacted}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
