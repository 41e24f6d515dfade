package domain

// HandoffRequest is a visitor's request to be contacted by a person.
type HandoffRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}
