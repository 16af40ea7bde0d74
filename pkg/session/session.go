// Package session holds the working root and the append-only conversation
// log that is replayed to the model on every call.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	// ErrUnmatchedResult is returned when a tool-result turn does not answer
	// an open invocation of the preceding assistant turn.
	ErrUnmatchedResult = errors.New("tool result does not match a pending invocation")
	ErrInvalidTurn     = errors.New("invalid turn")
	ErrInvalidRoot     = errors.New("invalid working root")
)

// Conversation is an ordered, append-only log of turns.
// It is not safe for concurrent use; a single control loop owns it.
type Conversation struct {
	turns []Turn
}

// Append validates and appends a turn.
func (c *Conversation) Append(t Turn) error {
	switch t.Role {
	case RoleUser, RoleAssistant:
		if t.Result != nil {
			return fmt.Errorf("%w: %s turn carries a tool result", ErrInvalidTurn, t.Role)
		}
		if t.Role == RoleUser && len(t.Invocations) > 0 {
			return fmt.Errorf("%w: user turn carries tool invocations", ErrInvalidTurn)
		}
	case RoleTool:
		if t.Result == nil {
			return fmt.Errorf("%w: tool turn without result", ErrInvalidTurn)
		}
		if !c.pending(t.Result.CorrelationID) {
			return fmt.Errorf("%w: %q", ErrUnmatchedResult, t.Result.CorrelationID)
		}
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidTurn, t.Role)
	}
	c.turns = append(c.turns, t.clone())
	return nil
}

// pending reports whether id belongs to the closest assistant turn and has
// not been answered yet.
func (c *Conversation) pending(id string) bool {
	for i := len(c.turns) - 1; i >= 0; i-- {
		t := c.turns[i]
		switch t.Role {
		case RoleTool:
			if t.Result.CorrelationID == id {
				return false
			}
		case RoleAssistant:
			for _, inv := range t.Invocations {
				if inv.CorrelationID == id {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}

// Turns returns a deep copy of the log.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	for i, t := range c.turns {
		out[i] = t.clone()
	}
	return out
}

// Len returns the number of stored turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Reset empties the log.
func (c *Conversation) Reset() {
	c.turns = nil
}

// Session binds a conversation to an immutable working root.
type Session struct {
	id           string
	workingRoot  string
	conversation Conversation
}

// New creates a session rooted at dir, which must be an existing directory.
func New(dir string) (*Session, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: '%s' is not a directory", ErrInvalidRoot, abs)
	}
	return &Session{
		id:          uuid.Must(uuid.NewV7()).String(),
		workingRoot: abs,
	}, nil
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// WorkingRoot returns the absolute sandbox directory.
func (s *Session) WorkingRoot() string { return s.workingRoot }

// Conversation returns the session's log.
func (s *Session) Conversation() *Conversation { return &s.conversation }

// Reset clears the conversation; the session itself stays alive.
func (s *Session) Reset() { s.conversation.Reset() }
