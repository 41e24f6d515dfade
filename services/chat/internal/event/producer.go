package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/Shiro-Bankai7/electricians/pkg/kafka"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
)

// Event types published by the chat service.
const (
	EventHandoffRequested = "chat.handoff_requested"
)

// AggregateTypeSession is the aggregate every chat event refers to.
const AggregateTypeSession = "chat_session"

// SourceChatService identifies events originating from this service.
const SourceChatService = "chat-service"

// HandoffRequestedData is the payload for a chat.handoff_requested event.
// The transcript lets whoever follows up see what was already discussed.
type HandoffRequestedData struct {
	SessionID  string           `json:"session_id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Message    string           `json:"message"`
	Transcript []domain.Message `json:"transcript"`
}

// Producer publishes chat domain events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer for the chat service.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishHandoffRequested publishes a chat.handoff_requested event.
func (p *Producer) PublishHandoffRequested(ctx context.Context, req *domain.HandoffRequest, transcript []domain.Message) error {
	data := HandoffRequestedData{
		SessionID:  req.SessionID,
		Name:       req.Name,
		Email:      req.Email,
		Message:    req.Message,
		Transcript: transcript,
	}

	evt, err := pkgkafka.NewEvent(ctx, EventHandoffRequested, req.SessionID, AggregateTypeSession, SourceChatService, data)
	if err != nil {
		return fmt.Errorf("create chat.handoff_requested event: %w", err)
	}

	if err := p.publisher.Publish(ctx, pkgkafka.Topic(EventHandoffRequested), evt); err != nil {
		return fmt.Errorf("publish chat.handoff_requested event: %w", err)
	}

	p.logger.DebugContext(ctx, "published chat.handoff_requested event",
		slog.String("session_id", req.SessionID),
		slog.String("event_id", evt.EventID),
	)
	return nil
}
