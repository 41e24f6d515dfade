package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Shiro-Bankai7/electricians/pkg/httpclient"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/domain"
)

// Doer sends HTTP requests. *httpclient.CircuitBreakerClient implements it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPSender POSTs each inquiry as JSON to a fixed endpoint. Any 2xx answer
// is success; the response body is ignored.
type HTTPSender struct {
	url    string
	client Doer
}

// NewHTTPSender creates a sender that forwards to url.
func NewHTTPSender(url string, client Doer) *HTTPSender {
	return &HTTPSender{url: url, client: client}
}

func (s *HTTPSender) Name() string { return "http" }

func (s *HTTPSender) Send(ctx context.Context, inquiry *domain.Inquiry) error {
	payload, err := json.Marshal(inquiry)
	if err != nil {
		return fmt.Errorf("marshal inquiry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", inquiry.ID)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("forward inquiry: %w", err)
	}
	resp, err = httpclient.CheckResponse(resp, "inquiry-forward")
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
