package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 64 << 10

// StatusError describes a non-2xx response from an upstream service.
type StatusError struct {
	Service    string
	StatusCode int
	// Reason is the upstream's symbolic error code when the body carried one,
	// e.g. "NOT_FOUND" or "PERMISSION_DENIED".
	Reason  string
	Message string
	Body    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}

// upstreamError covers both our own {"error":{"code":"X","message":...}}
// envelope and Google-style {"error":{"code":403,"status":"X",...}} bodies.
type upstreamError struct {
	Error *struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
		Status  string          `json:"status"`
	} `json:"error"`
}

// ParseResponseError consumes and closes resp.Body and describes the failure
// as a *StatusError. Call it only for non-2xx responses.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}
	return newStatusError(service, resp.StatusCode, body)
}

func newStatusError(service string, status int, body []byte) *StatusError {
	se := &StatusError{Service: service, StatusCode: status, Body: string(body)}

	var parsed upstreamError
	if json.Unmarshal(body, &parsed) != nil || parsed.Error == nil {
		return se
	}
	se.Message = parsed.Error.Message
	se.Reason = parsed.Error.Status
	var code string
	if json.Unmarshal(parsed.Error.Code, &code) == nil && code != "" {
		se.Reason = code
	}
	return se
}

// CheckResponse returns resp unchanged when it is 2xx and a *StatusError
// otherwise.
func CheckResponse(resp *http.Response, service string) (*http.Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	return nil, ParseResponseError(resp, service)
}

// IsClientError reports whether status is a 4xx code.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
