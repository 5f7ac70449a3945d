package jsonapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrorBuilder provides a fluent API for building Error objects.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new ErrorBuilder with the given status, code, and title.
// Every error gets a fresh UUID so it can be correlated with server logs.
func NewError(status int, code, title string) *ErrorBuilder {
	return &ErrorBuilder{
		err: Error{
			ID:     uuid.NewString(),
			Status: strconv.Itoa(status),
			Code:   code,
			Title:  title,
		},
	}
}

// Detail sets the error detail message.
func (b *ErrorBuilder) Detail(detail string) *ErrorBuilder {
	b.err.Detail = detail
	return b
}

// Detailf sets the error detail message with formatting.
func (b *ErrorBuilder) Detailf(format string, args ...any) *ErrorBuilder {
	b.err.Detail = fmt.Sprintf(format, args...)
	return b
}

// ID overrides the generated error ID.
func (b *ErrorBuilder) ID(id string) *ErrorBuilder {
	b.err.ID = id
	return b
}

// Pointer sets the JSON pointer to the source of the error.
func (b *ErrorBuilder) Pointer(pointer string) *ErrorBuilder {
	if b.err.Source == nil {
		b.err.Source = &ErrorSource{}
	}
	b.err.Source.Pointer = pointer
	return b
}

// Parameter sets the query parameter that caused the error.
func (b *ErrorBuilder) Parameter(param string) *ErrorBuilder {
	if b.err.Source == nil {
		b.err.Source = &ErrorSource{}
	}
	b.err.Source.Parameter = param
	return b
}

// Meta adds metadata to the error.
func (b *ErrorBuilder) Meta(key string, value any) *ErrorBuilder {
	if b.err.Meta == nil {
		b.err.Meta = make(Meta)
	}
	b.err.Meta[key] = value
	return b
}

// Build returns the constructed Error.
func (b *ErrorBuilder) Build() Error {
	return b.err
}

// StatusCode returns the HTTP status code as an int.
func (e Error) StatusCode() int {
	code, _ := strconv.Atoi(e.Status)
	return code
}

// Common error constructors

// ErrBadRequest creates a 400 Bad Request error.
func ErrBadRequest(detail string) Error {
	return NewError(http.StatusBadRequest, "bad_request", "Bad Request").Detail(detail).Build()
}

// ErrInvalidParameter creates a 400 error pointing at a query parameter.
func ErrInvalidParameter(param, detail string) Error {
	return NewError(http.StatusBadRequest, "invalid_parameter", "Invalid Query Parameter").
		Detail(detail).
		Parameter(param).
		Build()
}

// ErrNotFound creates a 404 Not Found error.
func ErrNotFound(resourceType string) Error {
	return NewError(http.StatusNotFound, "not_found", "Not Found").
		Detailf("The requested %s was not found", resourceType).
		Build()
}

// ErrMethodNotAllowed creates a 405 Method Not Allowed error.
func ErrMethodNotAllowed(method string, allowed []string) Error {
	b := NewError(http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed").
		Meta("method", method)
	if len(allowed) == 0 {
		return b.Detailf("The %s method is not allowed for this resource", method).Build()
	}
	return b.Detailf("%s is not supported. Use one of: %s", method, strings.Join(allowed, ", ")).
		Meta("allowed", allowed).
		Build()
}

// ErrInternal creates a 500 Internal Server Error.
func ErrInternal(detail string) Error {
	if detail == "" {
		detail = "An internal error occurred"
	}
	return NewError(http.StatusInternalServerError, "internal_error", "Internal Server Error").Detail(detail).Build()
}

// ErrServiceUnavailable creates a 503 Service Unavailable error.
func ErrServiceUnavailable(detail string) Error {
	if detail == "" {
		detail = "Service temporarily unavailable"
	}
	return NewError(http.StatusServiceUnavailable, "service_unavailable", "Service Unavailable").Detail(detail).Build()
}
