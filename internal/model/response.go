package model

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// KeyResponse is returned by the key issuance endpoint. The raw key value is
// shown here once and never again.
type KeyResponse struct {
	APIKey string `json:"apiKey"`
}

// RegisterResponse is returned after a successful user registration.
type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	APIKey  string `json:"apiKey"`
}

// MessageResponse is a bare confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse is returned after a successful admin login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
