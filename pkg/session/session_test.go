package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuanfeiren/ai-agents/pkg/session"
)

func TestNewSession(t *testing.T) {
	dir := t.TempDir()
	s, err := session.New(dir)
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID())
	assert.True(t, filepath.IsAbs(s.WorkingRoot()))
	assert.Equal(t, 0, s.Conversation().Len())

	other, err := session.New(dir)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID(), other.ID())
}

func TestNewSessionRejectsBadRoot(t *testing.T) {
	dir := t.TempDir()
	_, err := session.New(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, session.ErrInvalidRoot)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = session.New(file)
	require.ErrorIs(t, err, session.ErrInvalidRoot)
}

func TestConversationToolRoundTrip(t *testing.T) {
	var c session.Conversation
	invs := []session.ToolInvocation{
		{CorrelationID: "call_1", ToolName: "read_file", RawArguments: `{"path":"a"}`},
		{CorrelationID: "call_2", ToolName: "list_directory", RawArguments: `{}`},
	}

	require.NoError(t, c.Append(session.UserTurn("hi")))
	require.NoError(t, c.Append(session.AssistantTurn("", invs)))
	require.NoError(t, c.Append(session.ToolResultTurn(session.ToolResult{CorrelationID: "call_1", ToolName: "read_file", Output: "a"})))
	require.NoError(t, c.Append(session.ToolResultTurn(session.ToolResult{CorrelationID: "call_2", ToolName: "list_directory", Output: "b"})))
	assert.Equal(t, 4, c.Len())

	turns := c.Turns()
	assert.True(t, turns[1].RequestsTools())
	assert.Equal(t, session.RoleTool, turns[2].Role)
	assert.Equal(t, "a", turns[2].Content)
}

func TestConversationRejectsUnmatchedResult(t *testing.T) {
	var c session.Conversation
	require.NoError(t, c.Append(session.UserTurn("hi")))

	err := c.Append(session.ToolResultTurn(session.ToolResult{CorrelationID: "ghost"}))
	require.ErrorIs(t, err, session.ErrUnmatchedResult)

	require.NoError(t, c.Append(session.AssistantTurn("", []session.ToolInvocation{{CorrelationID: "call_1", ToolName: "read_file"}})))
	require.NoError(t, c.Append(session.ToolResultTurn(session.ToolResult{CorrelationID: "call_1"})))

	err = c.Append(session.ToolResultTurn(session.ToolResult{CorrelationID: "call_1"}))
	require.ErrorIs(t, err, session.ErrUnmatchedResult, "an invocation is answered once")
	assert.Equal(t, 3, c.Len())
}

func TestConversationRejectsMalformedTurns(t *testing.T) {
	var c session.Conversation
	require.ErrorIs(t, c.Append(session.Turn{Role: "system", Content: "x"}), session.ErrInvalidTurn)
	require.ErrorIs(t, c.Append(session.Turn{Role: session.RoleTool}), session.ErrInvalidTurn)
	require.ErrorIs(t, c.Append(session.Turn{
		Role:        session.RoleUser,
		Invocations: []session.ToolInvocation{{CorrelationID: "x"}},
	}), session.ErrInvalidTurn)
	assert.Equal(t, 0, c.Len())
}

func TestConversationTurnsAreCopies(t *testing.T) {
	var c session.Conversation
	require.NoError(t, c.Append(session.AssistantTurn("x", []session.ToolInvocation{{CorrelationID: "1", ToolName: "read_file"}})))

	turns := c.Turns()
	turns[0].Content = "mutated"
	turns[0].Invocations[0].ToolName = "mutated"

	fresh := c.Turns()
	assert.Equal(t, "x", fresh[0].Content)
	assert.Equal(t, "read_file", fresh[0].Invocations[0].ToolName)
}

func TestSessionReset(t *testing.T) {
	s, err := session.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Conversation().Append(session.UserTurn("hi")))

	root := s.WorkingRoot()
	s.Reset()

	assert.Equal(t, 0, s.Conversation().Len())
	assert.Equal(t, root, s.WorkingRoot())
}
