// Package dto defines request payloads and response envelopes. Every envelope
// carries a success discriminator; failure envelopes never carry data.
package dto

// MessageResponse is a success envelope with only a message.
type MessageResponse struct {
	Success bool   `json:"success" validate:"eq=true"`
	Message string `json:"message" validate:"required"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Errors  []string `json:"errors,omitempty"`
}

// Failure builds the failure envelope.
func Failure(message string, violations []string) ErrorResponse {
	return ErrorResponse{Success: false, Error: message, Errors: violations}
}
