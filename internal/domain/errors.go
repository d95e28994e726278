package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies gateway failures for the orchestration boundary
type ErrorKind string

const (
	// ErrorKindToken means the provider rejected the card during tokenization (user-correctable)
	ErrorKindToken ErrorKind = "TOKEN_REJECTED"
	// ErrorKindCharge means the provider rejected a charge/capture/refund/cancel
	ErrorKindCharge ErrorKind = "CHARGE_REJECTED"
	// ErrorKindPrecondition means a required input was missing before any remote call was made
	ErrorKindPrecondition ErrorKind = "PRECONDITION_FAILED"
	// ErrorKindUnknown covers any unclassified failure
	ErrorKindUnknown ErrorKind = "UNKNOWN"
)

// GatewayError is a structured error returned by the remote invoice client
// and consumed at the orchestration boundary
type GatewayError struct {
	Kind             ErrorKind
	Message          string
	ProviderMessages []string
	Err              error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if len(e.ProviderMessages) > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, strings.Join(e.ProviderMessages, ". "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewTokenError creates an error for a rejected tokenization request
func NewTokenError(providerMessages []string) *GatewayError {
	return &GatewayError{
		Kind:             ErrorKindToken,
		Message:          "payment token rejected by provider",
		ProviderMessages: providerMessages,
	}
}

// NewChargeError creates an error for a rejected charge or invoice action
func NewChargeError(providerMessages []string) *GatewayError {
	return &GatewayError{
		Kind:             ErrorKindCharge,
		Message:          "charge rejected by provider",
		ProviderMessages: providerMessages,
	}
}

// NewPreconditionError creates an error for a missing required input
func NewPreconditionError(message string) *GatewayError {
	return &GatewayError{
		Kind:    ErrorKindPrecondition,
		Message: message,
	}
}

// WrapUnknownError wraps an unclassified failure
func WrapUnknownError(message string, err error) *GatewayError {
	return &GatewayError{
		Kind:    ErrorKindUnknown,
		Message: message,
		Err:     err,
	}
}

// KindOf extracts the error kind, defaulting to ErrorKindUnknown
func KindOf(err error) ErrorKind {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return ErrorKindUnknown
}

// ProviderMessagesOf extracts the raw provider error strings, if any
func ProviderMessagesOf(err error) []string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.ProviderMessages
	}
	return nil
}

// Common domain errors
var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid payment state transition")
)
