package helpers

import (
	"errors"
	"fmt"
	"net/http"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TradingError struct {
	Message string
	Cause   error
}

func (e *TradingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TradingError) Unwrap() error {
	return e.Cause
}

// Distinct error types, one per failure class surfaced to callers.
type ServiceUnavailableError struct{ TradingError }
type UnauthenticatedError struct{ TradingError }
type UpstreamError struct{ TradingError }
type BadRequestError struct{ TradingError }
type MisconfigurationError struct{ TradingError }

func NewServiceUnavailable(msg string) error {
	return &ServiceUnavailableError{TradingError{Message: msg}}
}

func NewUnauthenticated(msg string) error {
	return &UnauthenticatedError{TradingError{Message: msg}}
}

func NewUpstream(msg string, cause error) error {
	return &UpstreamError{TradingError{Message: msg, Cause: cause}}
}

func NewBadRequest(msg string, cause error) error {
	return &BadRequestError{TradingError{Message: msg, Cause: cause}}
}

func NewMisconfiguration(msg string, cause error) error {
	return &MisconfigurationError{TradingError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Broker Errors
// -----------------------------------------------------------------------------

// BrokerError is a failed broker call before it is classified by the caller.
// Transport is set when the broker could not be reached at all.
type BrokerError struct {
	Type      string
	Message   string
	Transport bool
	Cause     error
}

func (e *BrokerError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("broker %s: %s", e.Type, e.Message)
	}
	return "broker: " + e.Message
}

func (e *BrokerError) Unwrap() error {
	return e.Cause
}

// TokenRejected reports whether the broker refused the access token.
func (e *BrokerError) TokenRejected() bool {
	return e.Type == "TokenException"
}

// AsBrokerError unwraps err into a *BrokerError.
func AsBrokerError(err error) (*BrokerError, bool) {
	var be *BrokerError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// UpstreamFailure classifies a failed read against the broker: a rejected
// token is Unauthenticated, anything else is UpstreamError.
func UpstreamFailure(operation string, err error) error {
	if be, ok := AsBrokerError(err); ok && be.TokenRejected() {
		return &UnauthenticatedError{TradingError{Message: operation + " rejected: access token invalid", Cause: err}}
	}
	return NewUpstream(operation+" failed", err)
}

// -----------------------------------------------------------------------------
// Translation
// -----------------------------------------------------------------------------

// StatusCode maps an error to the HTTP status the API answers with.
func StatusCode(err error) int {
	var (
		unavailable *ServiceUnavailableError
		unauth      *UnauthenticatedError
		upstream    *UpstreamError
		badRequest  *BadRequestError
		misconfig   *MisconfigurationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &unauth):
		return http.StatusForbidden
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.As(err, &misconfig):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// PublicMessage is the message shown to API clients.
func PublicMessage(err error) string {
	var be *BrokerError
	var bad *BadRequestError
	if errors.As(err, &bad) {
		if errors.As(err, &be) {
			return be.Message
		}
		return bad.Message
	}
	return err.Error()
}
