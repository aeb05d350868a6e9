// Package history persists chat sessions and their messages.
//
// Two stores implement Store: SQLiteStore for the on-disk history used by
// `fileagent chat`, and MemoryStore for sessions that should not outlive the
// process. Export renders a session transcript as Markdown or HTML.
package history

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ErrSessionNotFound is returned when a session ID does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Role is the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the assistant.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one persisted chat message.
type Message struct {
	ID        string
	SessionID string
	Role      Role
	Content   string

	// ToolCalls is set on assistant messages that requested tools
	ToolCalls []ToolCall

	// ToolCallID and Name are set on tool result messages
	ToolCallID string
	Name       string

	CreatedAt time.Time
}

// Session is a chat conversation.
type Session struct {
	ID           string
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// Store persists sessions and messages. Messages are returned in the order
// they were appended.
type Store interface {
	CreateSession(ctx context.Context, title string) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	// ListSessions returns sessions most recently updated first.
	ListSessions(ctx context.Context) ([]*Session, error)
	// AppendMessages assigns missing IDs and timestamps and bumps the
	// session's UpdatedAt.
	AppendMessages(ctx context.Context, sessionID string, msgs []Message) error
	Messages(ctx context.Context, sessionID string) ([]Message, error)
	DeleteSession(ctx context.Context, id string) error
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewSessionID returns a new lexically sortable session ID.
func NewSessionID() string {
	return ulid.Make().String()
}

// NewMessageID returns a new random message ID.
func NewMessageID() string {
	return uuid.NewString()
}

const maxTitleRunes = 60

// TitleFromText derives a session title from the first user message:
// the first line, trimmed and cut to 60 characters.
func TitleFromText(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return "Untitled chat"
	}
	if utf8.RuneCountInString(line) <= maxTitleRunes {
		return line
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[:maxTitleRunes-3])) + "..."
}

// prepare fills IDs and timestamps for messages about to be stored.
func prepare(sessionID string, msgs []Message, now time.Time) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		if m.ID == "" {
			m.ID = NewMessageID()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.SessionID = sessionID
		out[i] = m
	}
	return out
}
