package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Shiro-Bankai7/electricians/pkg/httpclient"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
)

// Doer sends HTTP requests; *httpclient.CircuitBreakerClient satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Delegated asks the Gemini REST API for a reply.
type Delegated struct {
	cfg    DelegatedConfig
	client Doer
	logger *slog.Logger
}

// NewDelegated returns a REST responder. client should not retry: a failed
// call becomes a reply immediately.
func NewDelegated(cfg DelegatedConfig, client Doer, logger *slog.Logger) *Delegated {
	return &Delegated{cfg: cfg, client: client, logger: logger}
}

func (d *Delegated) Name() string { return "gemini" }

func (d *Delegated) Respond(ctx context.Context, history []domain.Message) Reply {
	if d.cfg.APIKey == "" {
		d.logger.ErrorContext(ctx, "gemini API key is not configured")
		return unconfiguredReply()
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	text, err := d.generate(ctx, history)
	if err != nil {
		status := 0
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			status = se.StatusCode
		}
		d.logger.WarnContext(ctx, "gemini request failed",
			slog.Int("status", status),
			slog.String("error", redact(err.Error(), d.cfg.APIKey)),
		)
		return failureReply(status)
	}

	return Reply{Text: text, Category: CategoryDelegated, Outcome: OutcomeOK}
}

func (d *Delegated) generate(ctx context.Context, history []domain.Message) (string, error) {
	body := generateRequest{
		GenerationConfig: generationConfig{
			Temperature:     d.cfg.Temperature,
			TopK:            d.cfg.TopK,
			TopP:            d.cfg.TopP,
			MaxOutputTokens: d.cfg.MaxOutputTokens,
		},
	}
	for _, t := range d.cfg.conversation(history) {
		body.Contents = append(body.Contents, geminiContent{Role: t.role, Parts: []geminiPart{{Text: t.text}}})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(d.cfg.BaseURL, "/"), url.PathEscape(d.cfg.Model), url.QueryEscape(d.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(ctx, req)
	if err != nil {
		return "", err
	}
	resp, err = httpclient.CheckResponse(resp, "gemini")
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response has no candidates")
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.New("gemini response text is empty")
	}
	return text, nil
}
