package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/internal/dashboard"
	"github.com/username/attendance-dashboard/internal/sheetapi"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }

// toAPIError classifies service errors into API codes
func toAPIError(err error) *APIError {
	var api *APIError
	switch {
	case errors.As(err, &api):
		return api
	case errors.Is(err, attendance.ErrUnknownEmployee):
		return &APIError{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, dashboard.ErrRosterUnavailable),
		errors.Is(err, sheetapi.ErrRetrievalFailure),
		errors.Is(err, context.DeadlineExceeded):
		return &APIError{Code: CodeUnavailable, Message: err.Error()}
	default:
		return &APIError{Code: CodeInternal, Message: err.Error()}
	}
}

func toHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorDTO struct {
	Error *APIError `json:"error"`
}
