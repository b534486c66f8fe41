// Package errors defines the API error contract: every failure carries an
// HTTP status, a user-facing message, and optionally per-field validation
// messages. Handlers return these and the responder serializes them.
package errors

import (
	"fmt"
	"net/http"
)

// APIProblem is one API-level failure. Messages are user-facing and in
// Spanish; field errors follow the Laravel-style map of field name to
// message list the web client expects.
type APIProblem struct {
	// Status is the HTTP status code for this occurrence.
	Status int `json:"-"`
	// Message is the user-facing summary.
	Message string `json:"message"`
	// Fields holds per-field validation messages, keyed by field name.
	Fields map[string][]string `json:"errors,omitempty"`
}

// Error implements the error interface.
func (p APIProblem) Error() string {
	if len(p.Fields) > 0 {
		return fmt.Sprintf("%s (%d campos inválidos)", p.Message, len(p.Fields))
	}
	return p.Message
}

// WithMessage returns a copy with the given message.
func (p APIProblem) WithMessage(message string) APIProblem {
	p.Message = message
	return p
}

// WithField returns a copy with an additional field error.
func (p APIProblem) WithField(field, message string) APIProblem {
	fields := make(map[string][]string, len(p.Fields)+1)
	for k, v := range p.Fields {
		fields[k] = v
	}
	fields[field] = append(fields[field], message)
	p.Fields = fields
	return p
}

// Pre-defined problem templates for common scenarios.
var (
	// ErrUnauthorized indicates a missing, invalid, or expired token.
	ErrUnauthorized = APIProblem{
		Status:  http.StatusUnauthorized,
		Message: "No autenticado.",
	}

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = APIProblem{
		Status:  http.StatusNotFound,
		Message: "El recurso solicitado no existe.",
	}

	// ErrValidation indicates the request failed field validation.
	ErrValidation = APIProblem{
		Status:  http.StatusUnprocessableEntity,
		Message: "Los datos proporcionados no son válidos.",
	}

	// ErrRateLimited indicates the caller exceeded the request budget.
	ErrRateLimited = APIProblem{
		Status:  http.StatusTooManyRequests,
		Message: "Demasiados intentos. Por favor, inténtalo de nuevo más tarde.",
	}

	// ErrInternal indicates an unexpected server failure.
	ErrInternal = APIProblem{
		Status:  http.StatusInternalServerError,
		Message: "Ha ocurrido un error. Por favor, inténtalo de nuevo más tarde.",
	}
)

// NewValidationProblem creates a validation error with field-level messages.
func NewValidationProblem(fields map[string][]string) APIProblem {
	p := ErrValidation
	p.Fields = fields
	return p
}

// NewNotFoundProblem creates a not-found error for a specific resource.
func NewNotFoundProblem(resource string) APIProblem {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s no encontrado.", resource))
}
