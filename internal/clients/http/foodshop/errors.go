package foodshop

import (
	"errors"
	"fmt"
	"sort"
)

// Kind classifies API failures for the UI layers.
type Kind string

const (
	// KindValidation carries 422 field-level messages.
	KindValidation Kind = "validation"
	// KindRateLimited maps 429 to the fixed retry message.
	KindRateLimited Kind = "rate_limited"
	// KindUnauthorized maps 401; the unauthorized hook already ran.
	KindUnauthorized Kind = "unauthorized"
	// KindNotFound maps 404.
	KindNotFound Kind = "not_found"
	// KindGeneric covers 5xx and anything unrecognized.
	KindGeneric Kind = "generic"
)

// Fixed user-facing messages. The backend speaks Spanish to its users and
// the client falls back to these when it has nothing better.
const (
	MsgTooManyAttempts = "Demasiados intentos. Por favor, inténtalo de nuevo más tarde."
	MsgGeneric         = "Ha ocurrido un error. Por favor, inténtalo de nuevo más tarde."
)

// APIError is the typed failure returned by every client operation.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	// Fields holds 422 validation messages keyed by field name.
	Fields map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("foodshop API error (%s, status %d)", e.Kind, e.StatusCode)
}

// FirstFieldMessage returns the first message of the first field, the one
// the UI surfaces as a toast for validation failures. Fields are visited
// in lexical order so the choice is deterministic.
func (e *APIError) FirstFieldMessage() string {
	if len(e.Fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if msgs := e.Fields[name]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// ErrorKind extracts the taxonomy kind from any error chain, or
// KindGeneric when the error did not come from the client.
func ErrorKind(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindGeneric
}

// IsNotFound reports whether the error is a 404 from the API.
func IsNotFound(err error) bool { return ErrorKind(err) == KindNotFound }

// IsUnauthorized reports whether the error is a 401 from the API.
func IsUnauthorized(err error) bool { return ErrorKind(err) == KindUnauthorized }

// IsValidation reports whether the error carries 422 field messages.
func IsValidation(err error) bool { return ErrorKind(err) == KindValidation }

// IsRateLimited reports whether the error is a 429 from the API.
func IsRateLimited(err error) bool { return ErrorKind(err) == KindRateLimited }
