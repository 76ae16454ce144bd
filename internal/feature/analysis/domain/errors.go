// Package domain defines domain-level errors for the analysis feature.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors for trade-signal analysis.
// Handlers map them to HTTP status codes with errors.Is.
var (
	// ErrInvalidTicker indicates that the market-data provider does not know the ticker.
	ErrInvalidTicker = errors.New("ticker does not exist")

	// ErrInsufficientData indicates that not enough clean bars were available for ATR or a window.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrExternalService indicates that a classifier, sentiment model or data API failed or answered garbage.
	ErrExternalService = errors.New("external service error")

	// ErrDegenerateRisk indicates that the computed stop-loss sits on the wrong side of the price.
	ErrDegenerateRisk = errors.New("degenerate risk: stop-loss on the wrong side of price")
)

// InsufficientDataError carries the reason a computation could not produce a value.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

// Is makes errors.Is(err, ErrInsufficientData) hold.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// ExternalServiceError wraps a failure of a named collaborator.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrExternalService) hold.
func (e *ExternalServiceError) Is(target error) bool {
	return target == ErrExternalService
}

// NewExternalServiceError wraps err as a failure of service. A nil err stays nil.
func NewExternalServiceError(service string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalServiceError{Service: service, Err: err}
}
