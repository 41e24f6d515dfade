package sender

import (
	"context"
	"log/slog"

	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/domain"
)

// LogSender accepts every inquiry and records it in the service log.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(ctx context.Context, inquiry *domain.Inquiry) error {
	attrs := []any{
		slog.String("inquiry_id", inquiry.ID),
		slog.String("kind", string(inquiry.Kind)),
	}
	switch {
	case inquiry.Booking != nil:
		b := inquiry.Booking
		attrs = append(attrs,
			slog.String("name", b.Name),
			slog.String("email", b.Email),
			slog.String("phone", b.Phone),
			slog.String("service", b.Service),
			slog.String("date", b.Date),
			slog.String("time", b.Time),
		)
	case inquiry.Contact != nil:
		c := inquiry.Contact
		attrs = append(attrs,
			slog.String("name", c.Name),
			slog.String("email", c.Email),
			slog.String("company", c.Company),
			slog.Int("message_length", len(c.Message)),
		)
	}
	s.logger.InfoContext(ctx, "inquiry received", attrs...)
	return nil
}
