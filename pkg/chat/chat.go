package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// DefaultMaxMessages caps a conversation; older messages are dropped first.
const DefaultMaxMessages = 200

// ErrUnknownConversation is returned when a conversation id was never
// opened or has been reset.
var ErrUnknownConversation = errors.New("chat: unknown conversation")

// Message is one bubble of the conversation.
type Message struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxMessages bounds each conversation.
func WithMaxMessages(n int) Option {
	return func(a *Assistant) {
		if n > 0 {
			a.maxMessages = n
		}
	}
}

// Assistant keeps one conversation per visitor and answers with a canned
// reply. It never calls out to a model.
type Assistant struct {
	mu            sync.Mutex
	conversations map[string][]Message
	reply         string
	maxMessages   int
	now           func() time.Time
	logger        *zap.Logger
}

// NewAssistant returns an assistant that answers every message with reply.
func NewAssistant(reply string, options ...Option) *Assistant {
	a := &Assistant{
		conversations: make(map[string][]Message),
		reply:         strings.TrimSpace(reply),
		maxMessages:   DefaultMaxMessages,
		now:           time.Now,
		logger:        zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Open starts an empty conversation and returns its id.
func (a *Assistant) Open() string {
	id := uuid.NewString()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conversations[id] = nil
	return id
}

// Send appends the visitor message and the assistant reply to conversation
// id. Blank input, or input that is blank once markup is stripped, is
// ignored and returns no messages.
func (a *Assistant) Send(ctx context.Context, id, input string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := SanitizeText(input)

	a.mu.Lock()
	defer a.mu.Unlock()

	history, ok := a.conversations[id]
	if !ok {
		return nil, ErrUnknownConversation
	}
	if text == "" {
		return nil, nil
	}

	now := a.now()
	added := []Message{
		{ID: uuid.NewString(), Role: RoleUser, Content: text, SentAt: now},
		{ID: uuid.NewString(), Role: RoleAI, Content: a.reply, SentAt: now},
	}
	history = append(history, added...)
	if over := len(history) - a.maxMessages; over > 0 {
		history = append([]Message(nil), history[over:]...)
	}
	a.conversations[id] = history
	a.logger.Debug("chat message answered", zap.String("conversation", id), zap.Int("messages", len(history)))

	out := make([]Message, len(added))
	copy(out, added)
	return out, nil
}

// History returns a copy of conversation id.
func (a *Assistant) History(id string) ([]Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	history, ok := a.conversations[id]
	if !ok {
		return nil, ErrUnknownConversation
	}
	out := make([]Message, len(history))
	copy(out, history)
	return out, nil
}

// Close forgets conversation id.
func (a *Assistant) Close(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.conversations, id)
}
