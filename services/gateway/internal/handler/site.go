package handler

import (
	"net/http"

	"github.com/Shiro-Bankai7/electricians/pkg/httputil"
)

// ContactInfo is the site-wide contact block rendered in the header, the
// footer and the chat widget.
type ContactInfo struct {
	Phone    string `json:"phone"`
	PhoneURI string `json:"phone_uri"`
	Email    string `json:"email"`
	EmailURI string `json:"email_uri"`
}

// NewContactInfo builds the contact block; the mailto: URI is derived from email.
func NewContactInfo(phone, phoneURI, email string) ContactInfo {
	return ContactInfo{
		Phone:    phone,
		PhoneURI: phoneURI,
		Email:    email,
		EmailURI: "mailto:" + email,
	}
}

// SiteContactHandler serves GET /api/v1/site/contact.
func SiteContactHandler(info ContactInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteData(w, http.StatusOK, info)
	}
}
