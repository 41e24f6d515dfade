package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiro-Bankai7/electricians/pkg/health"
	"github.com/Shiro-Bankai7/electricians/pkg/httpclient"
	"github.com/Shiro-Bankai7/electricians/pkg/httputil"
	pkgkafka "github.com/Shiro-Bankai7/electricians/pkg/kafka"
	"github.com/Shiro-Bankai7/electricians/pkg/middleware"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/event"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/sender"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/service"
)

func inquiryTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func inquiryRouter(s sender.Sender) http.Handler {
	l := inquiryTestLogger()
	producer := event.NewProducer(pkgkafka.NopPublisher{Logger: l}, l)
	svc := service.NewInquiryService(s, producer, service.Options{
		CompanyName:    "PowerPro Electric",
		EmergencyPhone: "(555) 123-4567",
	}, l)
	return NewRouter(svc, health.NewHandler(), l, RouterConfig{CORS: middleware.DefaultCORSConfig()})
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeReceipt(t *testing.T, rec *httptest.ResponseRecorder) service.Receipt {
	t.Helper()
	var resp struct {
		Data service.Receipt `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func validBookingRequest() BookingRequest {
	return BookingRequest{
		Name:    "Jordan Lee",
		Email:   "jordan@example.com",
		Phone:   "555-0100",
		Service: "Emergency Repair",
		Date:    "2026-11-03",
		Time:    "08:15",
	}
}

func TestSubmitBooking_Accepted(t *testing.T) {
	h := inquiryRouter(sender.NewLogSender(inquiryTestLogger()))

	rec := do(t, h, http.MethodPost, "/api/v1/bookings", validBookingRequest())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	receipt := decodeReceipt(t, rec)
	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, "Thank you! Your booking request has been received.", receipt.Message)
}

func TestSubmitBooking_Validation(t *testing.T) {
	h := inquiryRouter(sender.NewLogSender(inquiryTestLogger()))

	tests := []struct {
		name      string
		mutate    func(*BookingRequest)
		wantCode  string
		wantField string
	}{
		{name: "bad email", mutate: func(b *BookingRequest) { b.Email = "jordan" }, wantCode: "VALIDATION_ERROR", wantField: "Email"},
		{name: "missing phone", mutate: func(b *BookingRequest) { b.Phone = " " }, wantCode: "VALIDATION_ERROR", wantField: "Phone"},
		{name: "bad date", mutate: func(b *BookingRequest) { b.Date = "tomorrow" }, wantCode: "VALIDATION_ERROR", wantField: "Date"},
		{name: "bad time", mutate: func(b *BookingRequest) { b.Time = "8am" }, wantCode: "VALIDATION_ERROR", wantField: "Time"},
		{name: "unknown service", mutate: func(b *BookingRequest) { b.Service = "HVAC" }, wantCode: "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBookingRequest()
			tt.mutate(&req)

			rec := do(t, h, http.MethodPost, "/api/v1/bookings", req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, e.Code)
			if tt.wantField != "" {
				assert.Contains(t, e.Fields, tt.wantField)
			}
		})
	}
}

func TestSubmitBooking_ForwardFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = time.Second
	client := httpclient.NewCircuitBreakerClient(httpclient.New(cfg), httpclient.DefaultCircuitBreakerConfig("inquiry-forward-handler-test"), inquiryTestLogger())
	h := inquiryRouter(sender.NewHTTPSender(upstream.URL, client))

	rec := do(t, h, http.MethodPost, "/api/v1/bookings", validBookingRequest())
	require.Equal(t, http.StatusBadGateway, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "UPSTREAM_FAILED", e.Code)
	assert.Contains(t, e.Message, "try again")
}

func TestSubmitContact(t *testing.T) {
	h := inquiryRouter(sender.NewLogSender(inquiryTestLogger()))

	rec := do(t, h, http.MethodPost, "/api/v1/contact", ContactRequest{
		Name: "Sam", Email: "sam@example.com", Company: "Acme", Message: "Please quote a full rewire",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, decodeReceipt(t, rec).Message, "within 1 hour")

	rec = do(t, h, http.MethodPost, "/api/v1/contact", ContactRequest{
		Name: "Sam", Email: "sam@example.com", Message: "   short   ",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", e.Code)
	assert.Equal(t, "must be at least 10 characters", e.Fields["Message"])
}

func TestListServices(t *testing.T) {
	h := inquiryRouter(sender.NewLogSender(inquiryTestLogger()))

	rec := do(t, h, http.MethodGet, "/api/v1/bookings/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	var resp struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 5)
	assert.Contains(t, resp.Data, "Panel Upgrade")
}

func TestSubmitBooking_WrongContentType(t *testing.T) {
	h := inquiryRouter(sender.NewLogSender(inquiryTestLogger()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString("<booking/>"))
	req.Header.Set("Content-Type", "application/xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
