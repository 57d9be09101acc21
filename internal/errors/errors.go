package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Raisondetr3/store-sales-proxy/internal/repository"
)

type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindUnavailable   Kind = "unavailable"
	KindUpstream      Kind = "upstream"
	KindTransport     Kind = "transport"
)

// ServiceError is what the services hand to the transports. Status is the
// HTTP status the client receives.
type ServiceError struct {
	Kind          Kind
	Status        int
	Message       string
	BackendWaking bool
	Cause         error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

const (
	MsgBackendNotConfigured = "Backend API URL not configured"
	MsgRequiredFields       = "Name, quantity, and unitPrice are required"
	MsgInvalidJSON          = "Invalid JSON body"
	MsgConnectFailed        = "Failed to connect to backend API"
)

var (
	ErrBackendNotConfigured = &ServiceError{Kind: KindConfiguration, Status: http.StatusInternalServerError, Message: MsgBackendNotConfigured}
	ErrRequiredFields       = &ServiceError{Kind: KindValidation, Status: http.StatusBadRequest, Message: MsgRequiredFields}
	ErrInvalidJSON          = &ServiceError{Kind: KindValidation, Status: http.StatusBadRequest, Message: MsgInvalidJSON}
)

// NewUnavailable reports a backend that failed its health check; clients are
// expected to poll /health and retry.
func NewUnavailable(message string) *ServiceError {
	return &ServiceError{
		Kind:          KindUnavailable,
		Status:        http.StatusServiceUnavailable,
		Message:       message,
		BackendWaking: true,
	}
}

func NewTransport(cause error) *ServiceError {
	return &ServiceError{
		Kind:    KindTransport,
		Status:  http.StatusInternalServerError,
		Message: MsgConnectFailed,
		Cause:   cause,
	}
}

// WrapRepositoryError classifies an outbound call failure. fallback is used
// when the backend rejected the call without a message of its own.
func WrapRepositoryError(err error, fallback string) *ServiceError {
	if err == nil {
		return nil
	}

	var upstream *repository.UpstreamError
	if errors.As(err, &upstream) {
		message := upstream.Message
		if message == "" {
			message = fallback
		}
		return &ServiceError{
			Kind:    KindUpstream,
			Status:  upstream.StatusCode,
			Message: message,
			Cause:   err,
		}
	}

	return NewTransport(err)
}

func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
