package dto

// ErrorResponse is the body of every non-2xx answer produced by the proxy
// itself. IsBackendWaking tells clients to poll /health and retry.
type ErrorResponse struct {
	Error           string `json:"error"`
	IsBackendWaking bool   `json:"isBackendWaking,omitempty"`
}

func NewErr(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

func NewWakingErr(msg string) ErrorResponse {
	return ErrorResponse{Error: msg, IsBackendWaking: true}
}
