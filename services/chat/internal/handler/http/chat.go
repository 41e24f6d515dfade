package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shiro-Bankai7/electricians/pkg/httputil"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/service"
)

// ChatHandler handles HTTP requests for chat session endpoints.
type ChatHandler struct {
	service *service.ChatService
	logger  *slog.Logger
}

// NewChatHandler creates a new chat HTTP handler.
func NewChatHandler(svc *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request/response DTOs ---

// SendMessageRequest is the JSON request body for a visitor message.
type SendMessageRequest struct {
	Text string `json:"text" validate:"notblank,max=2000"`
}

// QuickActionRequest is the JSON request body for a quick-action click.
type QuickActionRequest struct {
	Action string `json:"action" validate:"notblank"`
}

// HandoffRequest is the JSON request body for leaving contact details.
type HandoffRequest struct {
	Name    string `json:"name" validate:"notblank,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"notblank,max=2000"`
}

// SessionView is what the widget needs to draw itself.
type SessionView struct {
	ID               string           `json:"id"`
	State            domain.State     `json:"state"`
	Typing           bool             `json:"typing"`
	Messages         []domain.Message `json:"messages"`
	QuickActions     []string         `json:"quick_actions"`
	HandoffAvailable bool             `json:"handoff_available"`
	HandoffSubmitted bool             `json:"handoff_submitted"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (h *ChatHandler) view(s *domain.Session) SessionView {
	v := SessionView{
		ID:               s.ID,
		State:            s.State,
		Typing:           s.Typing,
		Messages:         s.Messages,
		QuickActions:     []string{},
		HandoffAvailable: h.service.HandoffEnabled(),
		HandoffSubmitted: s.HandoffSubmitted,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.ShowQuickActions() {
		v.QuickActions = domain.QuickActions
	}
	return v
}

// --- Handlers ---

// CreateSession handles POST /api/v1/chat/sessions
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Create(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, h.view(session))
}

// GetSession handles GET /api/v1/chat/sessions/{id}
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.Get)
}

// Open handles POST /api/v1/chat/sessions/{id}/open
func (h *ChatHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.Open)
}

// Minimize handles POST /api/v1/chat/sessions/{id}/minimize
func (h *ChatHandler) Minimize(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.Minimize)
}

// Maximize handles POST /api/v1/chat/sessions/{id}/maximize
func (h *ChatHandler) Maximize(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.Maximize)
}

// Close handles POST /api/v1/chat/sessions/{id}/close
func (h *ChatHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.Close)
}

// Reset handles POST /api/v1/chat/sessions/{id}/reset
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.Reset)
}

// SendMessage handles POST /api/v1/chat/sessions/{id}/messages. The reply
// arrives later; clients poll the session until typing is false.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !httputil.Bind(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusAccepted, func(ctx context.Context, id string) (*domain.Session, error) {
		return h.service.Send(ctx, id, req.Text)
	})
}

// SendQuickAction handles POST /api/v1/chat/sessions/{id}/quick-actions
func (h *ChatHandler) SendQuickAction(w http.ResponseWriter, r *http.Request) {
	var req QuickActionRequest
	if !httputil.Bind(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusAccepted, func(ctx context.Context, id string) (*domain.Session, error) {
		return h.service.QuickAction(ctx, id, req.Action)
	})
}

// Handoff handles POST /api/v1/chat/sessions/{id}/handoff
func (h *ChatHandler) Handoff(w http.ResponseWriter, r *http.Request) {
	var req HandoffRequest
	if !httputil.Bind(w, r, &req) {
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context, id string) (*domain.Session, error) {
		return h.service.Handoff(ctx, &domain.HandoffRequest{
			SessionID: id,
			Name:      req.Name,
			Email:     req.Email,
			Message:   req.Message,
		})
	})
}

// ListQuickActions handles GET /api/v1/chat/quick-actions
func (h *ChatHandler) ListQuickActions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, domain.QuickActions)
}

// --- Helpers ---

func (h *ChatHandler) respond(w http.ResponseWriter, r *http.Request, status int, fn func(context.Context, string) (*domain.Session, error)) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	session, err := fn(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, status, h.view(session))
}
