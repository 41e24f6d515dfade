package http

import (
	"log/slog"
	"net/http"

	"github.com/Shiro-Bankai7/electricians/pkg/httputil"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/domain"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/service"
)

// InquiryHandler handles HTTP requests for the booking and contact forms.
type InquiryHandler struct {
	service *service.InquiryService
	logger  *slog.Logger
}

// NewInquiryHandler creates a new inquiry HTTP handler.
func NewInquiryHandler(svc *service.InquiryService, logger *slog.Logger) *InquiryHandler {
	return &InquiryHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// BookingRequest is the JSON request body of the booking form. The service
// list is checked by the service so the error names the allowed values.
type BookingRequest struct {
	Name    string `json:"name" validate:"notblank,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"notblank,max=40"`
	Service string `json:"service" validate:"notblank"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
	Notes   string `json:"notes" validate:"max=2000"`
}

// ContactRequest is the JSON request body of the contact form.
type ContactRequest struct {
	Name    string `json:"name" validate:"notblank,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Company string `json:"company" validate:"max=200"`
	Message string `json:"message" validate:"notblank,mintrim=10,max=5000"`
}

// --- Handlers ---

// SubmitBooking handles POST /api/v1/bookings
func (h *InquiryHandler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if !httputil.Bind(w, r, &req) {
		return
	}

	receipt, err := h.service.SubmitBooking(r.Context(), domain.Booking{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Service: req.Service,
		Date:    req.Date,
		Time:    req.Time,
		Notes:   req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, receipt)
}

// SubmitContact handles POST /api/v1/contact
func (h *InquiryHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !httputil.Bind(w, r, &req) {
		return
	}

	receipt, err := h.service.SubmitContact(r.Context(), domain.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Message: req.Message,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, receipt)
}

// ListServices handles GET /api/v1/bookings/services
func (h *InquiryHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.Services())
}
