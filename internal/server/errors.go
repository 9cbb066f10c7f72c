package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/markup"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/pipe"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(status int, code, message string, cause error) *APIError {
	err := &APIError{Status: status, Code: code, Message: message}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewBadRequestError creates a 400 error.
func NewBadRequestError(message string, cause error) *APIError {
	return newError(http.StatusBadRequest, "BAD_REQUEST", message, cause)
}

// NewNotFoundError creates a 404 error for resource id.
func NewNotFoundError(resource, id string) *APIError {
	return newError(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found: %s", resource, id), nil)
}

// NewConflictError creates a 409 error.
func NewConflictError(message string) *APIError {
	return newError(http.StatusConflict, "CONFLICT", message, nil)
}

// NewInternalError creates a 500 error.
func NewInternalError(message string, cause error) *APIError {
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", message, cause)
}

// NewServiceUnavailableError creates a 503 error.
func NewServiceUnavailableError(message string, cause error) *APIError {
	return newError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message, cause)
}

// simulatorError classifies an error returned by a draw pass or a query.
func simulatorError(err error) *APIError {
	var (
		cmdErr    *pipe.CommandError
		malformed *protocol.MalformedParameterError
		empty     *protocol.EmptyResponseError
		miss      *protocol.LookupMissError
		mk        *markup.UnsupportedMarkupError
	)
	switch {
	case errors.As(err, &cmdErr):
		return newError(http.StatusUnprocessableEntity, "COMMAND_REJECTED", "simulator rejected the command", err)
	case errors.As(err, &empty):
		return newError(http.StatusNotFound, "EMPTY_RESPONSE", "simulator returned nothing", err)
	case errors.As(err, &miss):
		return newError(http.StatusNotFound, "LOOKUP_MISS", "required parameter missing", err)
	case errors.As(err, &malformed):
		return newError(http.StatusBadGateway, "MALFORMED_RESPONSE", "simulator response could not be decoded", err)
	case errors.As(err, &mk):
		return newError(http.StatusBadGateway, "UNSUPPORTED_MARKUP", "label markup could not be translated", err)
	case errors.Is(err, pipe.ErrClosed):
		return NewServiceUnavailableError("simulator session is closed", err)
	case errors.Is(err, pipe.ErrUnknownCommand):
		return NewBadRequestError("unknown command", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(http.StatusGatewayTimeout, "TIMEOUT", "simulator did not answer in time", err)
	}
	return NewInternalError("draw pass failed", err)
}

// ErrorHandler writes err as an APIError. Install with
// e.HTTPErrorHandler = ErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = NewInternalError("an unexpected error occurred", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apiErr.Status)
		return
	}
	_ = c.JSON(apiErr.Status, apiErr)
}
