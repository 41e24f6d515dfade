// Package responder chooses the assistant's reply to a visitor message.
package responder

import (
	"context"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
)

// Category is the topic a reply was chosen for.
type Category string

const (
	CategoryEmergency   Category = "emergency"
	CategoryGreeting    Category = "greeting"
	CategoryServices    Category = "services"
	CategoryPricing     Category = "pricing"
	CategoryAppointment Category = "appointment"
	CategoryDefault     Category = "default"
	CategoryDelegated   Category = "delegated"
)

// Outcome tells how a reply was produced.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeAuthFailed   Outcome = "auth_failed"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeFailed       Outcome = "failed"
	OutcomeUnconfigured Outcome = "unconfigured"
)

// Reply is the assistant's answer and how long to "type" before showing it.
type Reply struct {
	Text     string
	Category Category
	Outcome  Outcome
	Delay    time.Duration
}

// Responder produces a reply for a conversation whose last message is the
// visitor's. Failures are reported as reply text, never as errors.
type Responder interface {
	Name() string
	Respond(ctx context.Context, history []domain.Message) Reply
}

// RandomSource picks variants. Implementations must be safe for concurrent
// use.
type RandomSource interface {
	IntN(n int) int
}

// RandomFunc adapts a function to RandomSource.
type RandomFunc func(n int) int

func (f RandomFunc) IntN(n int) int { return f(n) }

// DefaultRandom draws from the shared math/rand/v2 source.
var DefaultRandom RandomSource = RandomFunc(rand.IntN)

const (
	delayPerChar = 30 * time.Millisecond
	maxDelay     = 3 * time.Second
)

// TypingDelay is how long the assistant appears to type text: 30ms per
// character, at most 3s.
func TypingDelay(text string) time.Duration {
	return min(time.Duration(utf8.RuneCountInString(text))*delayPerChar, maxDelay)
}

func lastUserText(history []domain.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].IsUser {
			return history[i].Text
		}
	}
	return ""
}
