package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// envelope is the uniform response wrapper. Success responses carry data;
// error responses carry the message and optional field errors.
type envelope struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Fields  map[string][]string `json:"errors,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Responder sends envelope responses.
type Responder struct{}

// NewResponder creates an envelope responder.
func NewResponder() *Responder {
	return &Responder{}
}

// DefaultResponder serves handlers that do not carry their own.
var DefaultResponder = NewResponder()

// Success sends a 200 envelope with the given message and payload.
func (r *Responder) Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope{Status: statusSuccess, Message: message, Data: data})
}

// Respond sends an APIProblem as an error envelope with its HTTP status.
func (r *Responder) Respond(c *gin.Context, problem APIProblem) {
	c.JSON(problem.Status, envelope{Status: statusError, Message: problem.Message, Fields: problem.Fields})
}

// RespondError converts an error to an APIProblem and responds. Unknown
// errors become the generic 500 so internals never leak to the client.
func (r *Responder) RespondError(c *gin.Context, err error) {
	var problem APIProblem
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.Respond(c, ErrInternal)
}

// NotFound sends a 404 error envelope for the named resource.
func (r *Responder) NotFound(c *gin.Context, resource string) {
	r.Respond(c, NewNotFoundProblem(resource))
}

// Unauthorized sends a 401 error envelope.
func (r *Responder) Unauthorized(c *gin.Context) {
	r.Respond(c, ErrUnauthorized)
}

// ValidationFailed sends a 422 error envelope with field errors.
func (r *Responder) ValidationFailed(c *gin.Context, fields map[string][]string) {
	r.Respond(c, NewValidationProblem(fields))
}

// RateLimited sends a 429 error envelope.
func (r *Responder) RateLimited(c *gin.Context) {
	r.Respond(c, ErrRateLimited)
}

// Success is a convenience function using the default responder.
func Success(c *gin.Context, message string, data any) {
	DefaultResponder.Success(c, message, data)
}

// Respond is a convenience function using the default responder.
func Respond(c *gin.Context, problem APIProblem) {
	DefaultResponder.Respond(c, problem)
}

// RespondError is a convenience function using the default responder.
func RespondError(c *gin.Context, err error) {
	DefaultResponder.RespondError(c, err)
}

// ErrorMapper maps domain/application errors to APIProblem.
type ErrorMapper func(err error) (APIProblem, bool)

// ChainedResponder supports custom error mapping.
type ChainedResponder struct {
	*Responder
	mappers []ErrorMapper
}

// NewChainedResponder creates a responder with custom error mappers.
func NewChainedResponder(mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{
		Responder: NewResponder(),
		mappers:   mappers,
	}
}

// AddMapper adds an error mapper to the chain.
func (r *ChainedResponder) AddMapper(mapper ErrorMapper) {
	r.mappers = append(r.mappers, mapper)
}

// RespondError tries each mapper before falling back to default handling.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	r.Responder.RespondError(c, err)
}

// HTTPStatusFromError extracts the HTTP status from an error if possible.
func HTTPStatusFromError(err error) int {
	var problem APIProblem
	if errors.As(err, &problem) {
		return problem.Status
	}
	return http.StatusInternalServerError
}
