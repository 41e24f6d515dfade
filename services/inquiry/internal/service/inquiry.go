package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/domain"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/event"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/sender"
)

// Options holds the site details quoted back to visitors.
type Options struct {
	CompanyName    string
	EmergencyPhone string
}

// Receipt is what a visitor sees after a successful submission.
type Receipt struct {
	ID      string      `json:"id"`
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

// InquiryService validates form submissions and hands them to a sender.
type InquiryService struct {
	sender   sender.Sender
	producer *event.Producer
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewInquiryService creates a new inquiry service.
func NewInquiryService(s sender.Sender, producer *event.Producer, opts Options, logger *slog.Logger) *InquiryService {
	return &InquiryService{
		sender:   s,
		producer: producer,
		opts:     opts,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitBooking accepts an appointment request.
func (s *InquiryService) SubmitBooking(ctx context.Context, b domain.Booking) (*Receipt, error) {
	b.Normalize()
	if err := b.Validate(); err != nil {
		inquiriesTotal.WithLabelValues(string(domain.KindBooking), "rejected").Inc()
		return nil, err
	}

	inquiry := s.newInquiry(domain.KindBooking)
	inquiry.Booking = &b
	if err := s.submit(ctx, inquiry); err != nil {
		return nil, err
	}
	return &Receipt{ID: inquiry.ID, Kind: inquiry.Kind, Message: domain.BookingConfirmation}, nil
}

// SubmitContact accepts a contact form message.
func (s *InquiryService) SubmitContact(ctx context.Context, c domain.Contact) (*Receipt, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		inquiriesTotal.WithLabelValues(string(domain.KindContact), "rejected").Inc()
		return nil, err
	}

	inquiry := s.newInquiry(domain.KindContact)
	inquiry.Contact = &c
	if err := s.submit(ctx, inquiry); err != nil {
		return nil, err
	}
	return &Receipt{ID: inquiry.ID, Kind: inquiry.Kind, Message: domain.ContactConfirmation(s.opts.CompanyName)}, nil
}

// Services lists what can be booked.
func (s *InquiryService) Services() []string {
	return domain.Services
}

func (s *InquiryService) newInquiry(kind domain.Kind) *domain.Inquiry {
	return &domain.Inquiry{
		ID:          uuid.New().String(),
		Kind:        kind,
		SubmittedAt: s.now(),
	}
}

func (s *InquiryService) submit(ctx context.Context, inquiry *domain.Inquiry) error {
	kind := string(inquiry.Kind)

	if err := s.sender.Send(ctx, inquiry); err != nil {
		inquiriesTotal.WithLabelValues(kind, "failed").Inc()
		s.logger.ErrorContext(ctx, "failed to deliver inquiry",
			slog.String("inquiry_id", inquiry.ID),
			slog.String("kind", kind),
			slog.String("sender", s.sender.Name()),
			slog.String("error", err.Error()),
		)
		return apperrors.UpstreamFailed(s.retryLater(), fmt.Errorf("send %s inquiry: %w", kind, err))
	}
	inquiriesTotal.WithLabelValues(kind, "accepted").Inc()

	if err := s.producer.PublishInquiry(ctx, inquiry); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish inquiry event",
			slog.String("inquiry_id", inquiry.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "inquiry accepted",
		slog.String("inquiry_id", inquiry.ID),
		slog.String("kind", kind),
		slog.String("sender", s.sender.Name()),
	)
	return nil
}

func (s *InquiryService) retryLater() string {
	msg := "We couldn't send your request right now. Please try again in a few minutes"
	if s.opts.EmergencyPhone != "" {
		return msg + " or call us at " + s.opts.EmergencyPhone + "."
	}
	return msg + "."
}
