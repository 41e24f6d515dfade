package responder

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
)

// Fixed replies for delegated failures.
const (
	MessageAuthFailed   = "Sorry, I can't answer right now because the assistant's API key is invalid or restricted. Please call us or use the contact form and we'll get back to you."
	MessageNotFound     = "Sorry, I can't answer right now because the assistant's endpoint or model is misconfigured. Please call us or use the contact form and we'll get back to you."
	MessageFailed       = "Sorry, I'm having trouble responding right now. Please try again in a moment."
	MessageUnconfigured = "The chat assistant is not configured: no API key has been set. Please set GEMINI_API_KEY and restart the chat service."
)

const modelAcknowledgement = "Understood. I will follow these instructions."

// DelegatedConfig configures the generative-language backends.
type DelegatedConfig struct {
	BaseURL      string
	Model        string
	APIKey       string
	SystemPrompt string
	// HistoryLimit caps how many of the most recent messages are sent.
	// Zero sends the whole conversation.
	HistoryLimit int
	Timeout      time.Duration

	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// DefaultDelegatedConfig returns the settings used by the site.
func DefaultDelegatedConfig() DelegatedConfig {
	return DelegatedConfig{
		BaseURL:         "https://generativelanguage.googleapis.com",
		Model:           "gemini-1.5-flash",
		HistoryLimit:    40,
		Timeout:         30 * time.Second,
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 1024,
	}
}

// SystemPrompt describes the assistant for a company reachable at phone.
func SystemPrompt(company, phone string) string {
	return fmt.Sprintf(`You are the website assistant for %[1]s, a licensed and insured electrical contractor.
Answer questions about residential and commercial electrical work: wiring, panel upgrades, lighting installation, smart home setup, repairs and safety inspections.
Keep answers short, friendly and practical. Never give instructions for dangerous live electrical work.
If the visitor describes sparks, a burning smell, exposed wires or any other hazard, tell them to call %[2]s immediately; the emergency team is available 24/7.
For prices, offer a free estimate. For appointments, say electricians are available Monday through Saturday and suggest the booking page.`, company, phone)
}

// turn is one entry of the conversation sent upstream.
type turn struct {
	role string // "user" or "model"
	text string
}

// conversation renders the system prompt as a user/model turn pair
// followed by the most recent history. The window always opens on a user
// message and consecutive messages from the same side are merged, so roles
// strictly alternate.
func (c DelegatedConfig) conversation(history []domain.Message) []turn {
	if c.HistoryLimit > 0 && len(history) > c.HistoryLimit {
		history = history[len(history)-c.HistoryLimit:]
	}
	for len(history) > 0 && !history[0].IsUser {
		history = history[1:]
	}

	turns := make([]turn, 0, len(history)+2)
	if prompt := strings.TrimSpace(c.SystemPrompt); prompt != "" {
		turns = append(turns,
			turn{role: "user", text: prompt},
			turn{role: "model", text: modelAcknowledgement},
		)
	}
	for _, m := range history {
		role := "model"
		if m.IsUser {
			role = "user"
		}
		if n := len(turns); n > 0 && turns[n-1].role == role {
			turns[n-1].text += "\n\n" + m.Text
			continue
		}
		turns = append(turns, turn{role: role, text: m.Text})
	}
	return turns
}

// failureReply maps an upstream HTTP status to the visitor-facing message.
// A zero status means no response was received.
func failureReply(status int) Reply {
	switch status {
	case http.StatusForbidden:
		return Reply{Text: MessageAuthFailed, Category: CategoryDelegated, Outcome: OutcomeAuthFailed}
	case http.StatusNotFound:
		return Reply{Text: MessageNotFound, Category: CategoryDelegated, Outcome: OutcomeNotFound}
	default:
		return Reply{Text: MessageFailed, Category: CategoryDelegated, Outcome: OutcomeFailed}
	}
}

func unconfiguredReply() Reply {
	return Reply{Text: MessageUnconfigured, Category: CategoryDelegated, Outcome: OutcomeUnconfigured}
}

// redact removes secret from s so error strings can be logged.
func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "REDACTED")
}
