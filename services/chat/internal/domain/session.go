package domain

import (
	"slices"
	"strconv"
	"time"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
)

// Greeting is the first assistant message of every conversation.
const Greeting = "Hi! I'm here to help with your electrical needs. What can I assist you with today?"

// State is the display state of the chat widget.
type State string

const (
	StateClosed    State = "closed"
	StateExpanded  State = "open-expanded"
	StateMinimized State = "open-minimized"
)

// IsOpen reports whether the widget is visible, expanded or minimized.
func (s State) IsOpen() bool {
	return s == StateExpanded || s == StateMinimized
}

// Message is one chat bubble.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one visitor's chat widget and conversation.
//
// Generation changes whenever the conversation is reset; a reply computed
// for an older generation must be discarded.
type Session struct {
	ID               string    `json:"id"`
	State            State     `json:"state"`
	Typing           bool      `json:"typing"`
	Greeted          bool      `json:"greeted"`
	Generation       uint64    `json:"generation"`
	NextMessageID    uint64    `json:"next_message_id"`
	Messages         []Message `json:"messages"`
	HandoffSubmitted bool      `json:"handoff_submitted"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewSession returns a closed session, opened and greeted when startOpen is
// set.
func NewSession(id string, startOpen bool, now time.Time) *Session {
	s := &Session{
		ID:        id,
		State:     StateClosed,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if startOpen {
		s.Open(now)
	}
	return s
}

// Open expands a closed widget. The first open of a conversation adds the
// greeting. Opening an open widget does nothing.
func (s *Session) Open(now time.Time) {
	if s.State.IsOpen() {
		return
	}
	s.State = StateExpanded
	s.greet(now)
	s.UpdatedAt = now
}

// Minimize collapses an expanded widget.
func (s *Session) Minimize(now time.Time) error {
	if !s.State.IsOpen() {
		return apperrors.InvalidState("chat is closed")
	}
	s.State = StateMinimized
	s.UpdatedAt = now
	return nil
}

// Maximize expands a minimized widget.
func (s *Session) Maximize(now time.Time) error {
	if !s.State.IsOpen() {
		return apperrors.InvalidState("chat is closed")
	}
	s.State = StateExpanded
	s.UpdatedAt = now
	return nil
}

// Close hides the widget. The conversation is kept.
func (s *Session) Close(now time.Time) {
	s.State = StateClosed
	s.UpdatedAt = now
}

// Reset starts a new conversation in the current display state. Any reply
// still in flight belongs to the previous generation.
func (s *Session) Reset(now time.Time) {
	s.Messages = []Message{}
	s.Generation++
	s.Typing = false
	s.Greeted = false
	s.HandoffSubmitted = false
	if s.State.IsOpen() {
		s.greet(now)
	}
	s.UpdatedAt = now
}

// AppendUser adds a visitor message.
func (s *Session) AppendUser(text string, now time.Time) Message {
	return s.appendMessage(text, true, now)
}

// AppendAssistant adds an assistant message.
func (s *Session) AppendAssistant(text string, now time.Time) Message {
	return s.appendMessage(text, false, now)
}

// ShowQuickActions reports whether the quick-action menu is offered, i.e.
// nothing but the greeting has been said.
func (s *Session) ShowQuickActions() bool {
	return len(s.Messages) <= 1
}

// SubmitHandoff records that the visitor asked for a human follow-up.
func (s *Session) SubmitHandoff(now time.Time) {
	s.HandoffSubmitted = true
	s.UpdatedAt = now
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = slices.Clone(s.Messages)
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	return &c
}

func (s *Session) greet(now time.Time) {
	if s.Greeted {
		return
	}
	s.appendMessage(Greeting, false, now)
	s.Greeted = true
}

func (s *Session) appendMessage(text string, isUser bool, now time.Time) Message {
	s.NextMessageID++
	m := Message{
		ID:        strconv.FormatUint(s.NextMessageID, 10),
		Text:      text,
		IsUser:    isUser,
		Timestamp: now,
	}
	s.Messages = append(s.Messages, m)
	s.UpdatedAt = now
	return m
}
