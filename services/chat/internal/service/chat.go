package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/event"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/repository"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/responder"
)

// finishTimeout bounds the store round trip that delivers a reply, which
// runs even after the job itself was cancelled.
const finishTimeout = 5 * time.Second

// Options tunes session behaviour.
type Options struct {
	// StartOpen creates sessions already expanded and greeted.
	StartOpen bool
	// HandoffEnabled allows visitors to leave contact details for a person.
	HandoffEnabled bool
}

// DefaultOptions matches the published site: the widget starts open and
// the keyword responder offers no handoff.
func DefaultOptions() Options {
	return Options{StartOpen: true}
}

// ChatService drives chat sessions and schedules assistant replies.
//
// Each session has at most one reply in flight. Every change to a session
// happens under that session's lock, so a reply computed for a conversation
// that has since been reset is recognised by its generation and dropped.
type ChatService struct {
	repo      repository.SessionRepository
	responder responder.Responder
	producer  *event.Producer
	sleeper   Sleeper
	opts      Options
	logger    *slog.Logger
	now       func() time.Time

	locks *keyedMutex
	jobs  *dispatcher
}

// NewChatService creates a new chat service. Call Shutdown to stop pending
// replies.
func NewChatService(
	repo repository.SessionRepository,
	resp responder.Responder,
	producer *event.Producer,
	sleeper Sleeper,
	opts Options,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		repo:      repo,
		responder: resp,
		producer:  producer,
		sleeper:   sleeper,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		locks:     newKeyedMutex(),
		jobs:      newDispatcher(),
	}
}

// HandoffEnabled reports whether Handoff is accepted.
func (s *ChatService) HandoffEnabled() bool {
	return s.opts.HandoffEnabled
}

// Create starts a new session.
func (s *ChatService) Create(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession(uuid.New().String(), s.opts.StartOpen, s.now())
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	chatSessionsCreatedTotal.Inc()

	s.logger.InfoContext(ctx, "chat session created",
		slog.String("session_id", session.ID),
		slog.String("state", string(session.State)),
	)
	return session, nil
}

// Get returns a session.
func (s *ChatService) Get(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// Open expands a closed widget, greeting on the first open.
func (s *ChatService) Open(ctx context.Context, id string) (*domain.Session, error) {
	return s.update(ctx, id, func(session *domain.Session, now time.Time) error {
		session.Open(now)
		return nil
	})
}

// Minimize collapses an open widget.
func (s *ChatService) Minimize(ctx context.Context, id string) (*domain.Session, error) {
	return s.update(ctx, id, (*domain.Session).Minimize)
}

// Maximize expands a minimized widget.
func (s *ChatService) Maximize(ctx context.Context, id string) (*domain.Session, error) {
	return s.update(ctx, id, (*domain.Session).Maximize)
}

// Close hides the widget and keeps the conversation. A reply in flight is
// still delivered.
func (s *ChatService) Close(ctx context.Context, id string) (*domain.Session, error) {
	return s.update(ctx, id, func(session *domain.Session, now time.Time) error {
		session.Close(now)
		return nil
	})
}

// Reset starts a fresh conversation. A reply in flight is discarded when it
// completes.
func (s *ChatService) Reset(ctx context.Context, id string) (*domain.Session, error) {
	return s.update(ctx, id, func(session *domain.Session, now time.Time) error {
		session.Reset(now)
		return nil
	})
}

// Send appends the visitor's message and schedules the assistant's reply.
// The returned session shows the message with typing set.
func (s *ChatService) Send(ctx context.Context, id, text string) (*domain.Session, error) {
	return s.send(ctx, id, text, nil)
}

// QuickAction sends one of the menu prompts. The menu is only offered
// before the conversation starts.
func (s *ChatService) QuickAction(ctx context.Context, id, action string) (*domain.Session, error) {
	if !domain.IsQuickAction(action) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown quick action %q", action))
	}
	return s.send(ctx, id, action, func(session *domain.Session) error {
		if !session.ShowQuickActions() {
			return apperrors.InvalidState("quick actions are only offered before the conversation starts")
		}
		return nil
	})
}

// send appends text as the visitor's message and dispatches the reply. check,
// when set, runs under the session lock against the state being changed.
// Nothing is stored unless the reply job has a slot to run in.
func (s *ChatService) send(ctx context.Context, id, text string, check func(*domain.Session) error) (*domain.Session, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.InvalidInput("message text is required")
	}

	if !s.jobs.reserve() {
		return nil, apperrors.Unavailable("chat is shutting down")
	}

	var job replyJob
	session, err := s.update(ctx, id, func(session *domain.Session, now time.Time) error {
		if check != nil {
			if err := check(session); err != nil {
				return err
			}
		}
		if !session.State.IsOpen() {
			return apperrors.InvalidState("chat is closed")
		}
		if session.Typing {
			return apperrors.ConflictWithCode("REPLY_PENDING", "the assistant is still replying")
		}
		session.AppendUser(text, now)
		session.Typing = true

		job = replyJob{
			sessionID:  session.ID,
			generation: session.Generation,
			history:    slices.Clone(session.Messages),
		}
		return nil
	})
	if err != nil {
		s.jobs.release()
		return nil, err
	}

	s.jobs.start(ctx, func(ctx context.Context) { s.reply(ctx, job) })
	return session, nil
}

// Handoff records the visitor's request for a person to follow up.
func (s *ChatService) Handoff(ctx context.Context, req *domain.HandoffRequest) (*domain.Session, error) {
	if !s.opts.HandoffEnabled {
		return nil, apperrors.Forbidden("human handoff is not available")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return nil, apperrors.InvalidInput("name, email and message are required")
	}

	session, err := s.update(ctx, req.SessionID, func(session *domain.Session, now time.Time) error {
		if session.HandoffSubmitted {
			return apperrors.ConflictWithCode("HANDOFF_SUBMITTED", "contact details were already sent for this conversation")
		}
		session.SubmitHandoff(now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	chatHandoffsTotal.Inc()

	if err := s.producer.PublishHandoffRequested(ctx, req, session.Messages); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish chat.handoff_requested event",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "chat handoff requested",
		slog.String("session_id", session.ID),
		slog.String("email", req.Email),
	)
	return session, nil
}

// Shutdown stops accepting messages, cancels replies in flight and waits for
// them to settle.
func (s *ChatService) Shutdown(ctx context.Context) error {
	return s.jobs.Close(ctx)
}

// update applies fn to the stored session under its lock and saves the
// result. Nothing is saved when fn fails.
func (s *ChatService) update(ctx context.Context, id string, fn func(*domain.Session, time.Time) error) (*domain.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := fn(session, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

type replyJob struct {
	sessionID  string
	generation uint64
	history    []domain.Message
}

func (s *ChatService) reply(ctx context.Context, job replyJob) {
	start := time.Now()
	r := s.responder.Respond(ctx, job.history)
	chatReplyDuration.WithLabelValues(s.responder.Name()).Observe(time.Since(start).Seconds())

	if err := s.sleeper.Sleep(ctx, r.Delay); err != nil {
		s.finish(ctx, job, nil, "cancelled")
		return
	}
	s.finish(ctx, job, &r, "")
}

// finish delivers r, or only clears typing when r is nil. Replies for an
// earlier generation are dropped without touching the session.
func (s *ChatService) finish(ctx context.Context, job replyJob, r *responder.Reply, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	_, err := s.update(ctx, job.sessionID, func(session *domain.Session, now time.Time) error {
		if session.Generation != job.generation {
			return errStaleReply
		}
		if r != nil {
			session.AppendAssistant(r.Text, now)
		}
		session.Typing = false
		return nil
	})

	switch {
	case errors.Is(err, errStaleReply):
		chatRepliesDiscardedTotal.WithLabelValues("stale").Inc()
		s.logger.DebugContext(ctx, "discarded reply for reset conversation",
			slog.String("session_id", job.sessionID),
		)
	case errors.Is(err, apperrors.ErrNotFound):
		chatRepliesDiscardedTotal.WithLabelValues("expired").Inc()
		s.logger.WarnContext(ctx, "session gone before reply was delivered",
			slog.String("session_id", job.sessionID),
		)
	case err != nil:
		chatRepliesDiscardedTotal.WithLabelValues("store").Inc()
		s.logger.ErrorContext(ctx, "failed to deliver reply",
			slog.String("session_id", job.sessionID),
			slog.String("error", err.Error()),
		)
	case r == nil:
		chatRepliesDiscardedTotal.WithLabelValues(reason).Inc()
	default:
		chatRepliesTotal.WithLabelValues(s.responder.Name(), string(r.Category), string(r.Outcome)).Inc()
	}
}

var errStaleReply = errors.New("reply belongs to an earlier conversation")
