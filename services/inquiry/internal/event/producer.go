package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/Shiro-Bankai7/electricians/pkg/kafka"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/domain"
)

// Event types published by the inquiry service.
const (
	EventBookingRequested = "inquiry.booking_requested"
	EventContactReceived  = "inquiry.contact_received"
)

// AggregateTypeInquiry is the aggregate every inquiry event refers to.
const AggregateTypeInquiry = "inquiry"

// SourceInquiryService identifies events originating from this service.
const SourceInquiryService = "inquiry-service"

// Producer publishes inquiry domain events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer for the inquiry service.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishInquiry publishes inquiry.booking_requested or
// inquiry.contact_received depending on the inquiry's kind. The payload is
// the inquiry itself.
func (p *Producer) PublishInquiry(ctx context.Context, inquiry *domain.Inquiry) error {
	eventType := EventContactReceived
	if inquiry.Kind == domain.KindBooking {
		eventType = EventBookingRequested
	}

	evt, err := pkgkafka.NewEvent(ctx, eventType, inquiry.ID, AggregateTypeInquiry, SourceInquiryService, inquiry)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if err := p.publisher.Publish(ctx, pkgkafka.Topic(eventType), evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published inquiry event",
		slog.String("event_type", eventType),
		slog.String("inquiry_id", inquiry.ID),
		slog.String("event_id", evt.EventID),
	)
	return nil
}
