package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/commandbar/pkg/types"
)

type fakeSessions struct {
	messages []types.Message
	listErr  error

	reverted    []string
	unreverted  int
	interrupted int
	inited      int
	summarized  int

	err error
}

func (f *fakeSessions) Revert(ctx context.Context, sessionID, messageID string) error {
	f.reverted = append(f.reverted, messageID)
	return f.err
}

func (f *fakeSessions) Unrevert(ctx context.Context, sessionID string) error {
	f.unreverted++
	return f.err
}

func (f *fakeSessions) Interrupt(ctx context.Context, sessionID string) error {
	f.interrupted++
	return f.err
}

func (f *fakeSessions) Init(ctx context.Context, sessionID string) error {
	f.inited++
	return f.err
}

func (f *fakeSessions) Summarize(ctx context.Context, sessionID string) error {
	f.summarized++
	return f.err
}

func (f *fakeSessions) Messages(ctx context.Context, sessionID string) ([]types.Message, error) {
	return f.messages, f.listErr
}

type fakeMessages struct {
	edited    []string
	content   string
	cleared   int
	compacted int

	err error
}

func (f *fakeMessages) EditMessage(ctx context.Context, sessionID, messageID, content string) error {
	f.edited = append(f.edited, messageID)
	f.content = content
	return f.err
}

func (f *fakeMessages) ClearSession(ctx context.Context, sessionID string) error {
	f.cleared++
	return f.err
}

func (f *fakeMessages) CompactSession(ctx context.Context, sessionID string) error {
	f.compacted++
	return f.err
}

func builtin(name string) types.Command {
	return types.Command{Name: name, Source: types.SourceBuiltin, BuiltIn: true}
}

func conversation() []types.Message {
	return []types.Message{
		{ID: "msg_1", Role: types.RoleUser},
		{ID: "msg_2", Role: types.RoleAssistant},
		{ID: "msg_3", Role: types.RoleUser},
		{ID: "msg_4", Role: types.RoleAssistant},
	}
}

func TestRevertTargetsLastUserMessage(t *testing.T) {
	sessions := &fakeSessions{messages: conversation()}
	d := New(sessions, &fakeMessages{}, NewLog())

	entry, err := d.Execute(context.Background(), Request{Command: builtin("revert"), SessionID: "ses_1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"msg_3"}, sessions.reverted)
	assert.True(t, entry.Succeeded)
	assert.Equal(t, "revert", entry.CommandName)
}

func TestUndoIsAnAliasForRevert(t *testing.T) {
	sessions := &fakeSessions{messages: conversation()}
	d := New(sessions, &fakeMessages{}, NewLog())

	_, err := d.Execute(context.Background(), Request{Command: builtin("undo"), SessionID: "ses_1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"msg_3"}, sessions.reverted)
}

func TestRevertWithoutTarget(t *testing.T) {
	sessions := &fakeSessions{messages: []types.Message{
		{ID: "msg_1", Role: types.RoleAssistant},
	}}
	d := New(sessions, &fakeMessages{}, NewLog())

	_, err := d.Execute(context.Background(), Request{Command: builtin("revert"), SessionID: "ses_1"})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, CodeNoRevertTarget, execErr.Code)
	assert.Empty(t, sessions.reverted)
}

func TestEditPatchesLastUserMessage(t *testing.T) {
	sessions := &fakeSessions{messages: conversation()}
	messages := &fakeMessages{}
	d := New(sessions, messages, NewLog())

	_, err := d.Execute(context.Background(), Request{
		Command:     builtin("edit"),
		SessionID:   "ses_1",
		EditContent: "corrected text",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"msg_3"}, messages.edited)
	assert.Equal(t, "corrected text", messages.content)
}

func TestEditWithoutUserMessage(t *testing.T) {
	sessions := &fakeSessions{}
	d := New(sessions, &fakeMessages{}, NewLog())

	_, err := d.Execute(context.Background(), Request{Command: builtin("edit"), SessionID: "ses_1"})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, CodeNoEditableMessage, execErr.Code)
}

func TestRoutingTable(t *testing.T) {
	tests := []struct {
		command string
		check   func(t *testing.T, s *fakeSessions, m *fakeMessages)
	}{
		{"unrevert", func(t *testing.T, s *fakeSessions, m *fakeMessages) { assert.Equal(t, 1, s.unreverted) }},
		{"redo", func(t *testing.T, s *fakeSessions, m *fakeMessages) { assert.Equal(t, 1, s.unreverted) }},
		{"abort", func(t *testing.T, s *fakeSessions, m *fakeMessages) { assert.Equal(t, 1, s.interrupted) }},
		{"init", func(t *testing.T, s *fakeSessions, m *fakeMessages) { assert.Equal(t, 1, s.inited) }},
		{"summarize", func(t *testing.T, s *fakeSessions, m *fakeMessages) { assert.Equal(t, 1, s.summarized) }},
		{"clear", func(t *testing.T, s *fakeSessions, m *fakeMessages) { assert.Equal(t, 1, m.cleared) }},
		{"compact", func(t *testing.T, s *fakeSessions, m *fakeMessages) { assert.Equal(t, 1, m.compacted) }},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sessions := &fakeSessions{}
			messages := &fakeMessages{}
			d := New(sessions, messages, NewLog())

			_, err := d.Execute(context.Background(), Request{Command: builtin(tt.command), SessionID: "ses_1"})
			require.NoError(t, err)
			tt.check(t, sessions, messages)
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	d := New(&fakeSessions{}, &fakeMessages{}, NewLog())

	_, err := d.Execute(context.Background(), Request{Command: builtin("rever"), SessionID: "ses_1"})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, CodeUnknownCommand, execErr.Code)
	assert.Contains(t, execErr.Message, `did you mean "revert"?`)
}

func TestDynamicCommandIsNotDispatchable(t *testing.T) {
	d := New(&fakeSessions{}, &fakeMessages{}, NewLog())

	// Even a dynamic command that shadows a routed name is refused: the
	// routing table applies to built-ins only.
	_, err := d.Execute(context.Background(), Request{
		Command:   types.Command{Name: "compact", Source: types.SourceFile},
		SessionID: "ses_1",
	})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, CodeUnknownCommand, execErr.Code)
}

func TestRemoteFailureMessageIsRecordedVerbatim(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("session is locked")}
	log := NewLog()
	d := New(sessions, &fakeMessages{}, log)

	entry, err := d.Execute(context.Background(), Request{Command: builtin("summarize"), SessionID: "ses_1"})
	require.Error(t, err)

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
	assert.False(t, entries[0].Succeeded)
	assert.Equal(t, err.Error(), entries[0].ErrorMessage)
	assert.Contains(t, entries[0].ErrorMessage, "session is locked")
}

func TestHistoryAppendsOneEntryPerAttempt(t *testing.T) {
	sessions := &fakeSessions{messages: conversation()}
	log := NewLog()
	d := New(sessions, &fakeMessages{}, log)

	_, err := d.Execute(context.Background(), Request{Command: builtin("summarize"), SessionID: "ses_1"})
	require.NoError(t, err)
	_, err = d.Execute(context.Background(), Request{Command: builtin("revert"), SessionID: "ses_1"})
	require.NoError(t, err)
	_, err = d.Execute(context.Background(), Request{Command: builtin("nope"), SessionID: "ses_1"})
	require.Error(t, err)

	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Succeeded)
	assert.True(t, entries[1].Succeeded)
	assert.False(t, entries[2].Succeeded)
	assert.Equal(t, "nope", entries[2].CommandName)

	// Entries returns a copy: mutating it must not touch the log.
	entries[0].CommandName = "tampered"
	assert.Equal(t, "summarize", log.Entries()[0].CommandName)
}

func TestMessageListFailureSurfacesAsRemote(t *testing.T) {
	sessions := &fakeSessions{listErr: errors.New("connection refused")}
	d := New(sessions, &fakeMessages{}, NewLog())

	_, err := d.Execute(context.Background(), Request{Command: builtin("revert"), SessionID: "ses_1"})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, CodeRemoteFailed, execErr.Code)
	assert.Contains(t, execErr.Message, "connection refused")
}
