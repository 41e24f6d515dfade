package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
)

type modelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// SDK asks Gemini for a reply through the google.golang.org/genai client.
type SDK struct {
	cfg    DelegatedConfig
	models modelsClient
	logger *slog.Logger
}

// NewSDK builds the genai client. Without an API key no client is created
// and every reply is the configuration message.
func NewSDK(ctx context.Context, cfg DelegatedConfig, logger *slog.Logger) (*SDK, error) {
	s := &SDK{cfg: cfg, logger: logger}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return s, nil
	}

	client, err := newGenaiClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	s.models = client.Models
	return s, nil
}

func (s *SDK) Name() string { return "genai" }

func (s *SDK) Respond(ctx context.Context, history []domain.Message) Reply {
	if s.models == nil {
		s.logger.ErrorContext(ctx, "genai API key is not configured")
		return unconfiguredReply()
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	turns := s.cfg.conversation(history)
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleUser
		if t.role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.text, genai.Role(role)))
	}

	resp, err := s.models.GenerateContent(ctx, s.cfg.Model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(s.cfg.Temperature)),
		TopK:            genai.Ptr(float32(s.cfg.TopK)),
		TopP:            genai.Ptr(float32(s.cfg.TopP)),
		MaxOutputTokens: int32(s.cfg.MaxOutputTokens),
	})
	if err != nil {
		status := apiErrorCode(err)
		s.logger.WarnContext(ctx, "genai request failed",
			slog.Int("status", status),
			slog.String("error", redact(err.Error(), s.cfg.APIKey)),
		)
		return failureReply(status)
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		s.logger.WarnContext(ctx, "genai response has no text")
		return failureReply(0)
	}
	return Reply{Text: text, Category: CategoryDelegated, Outcome: OutcomeOK}
}

func apiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
