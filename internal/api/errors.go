/*-------------------------------------------------------------------------
 *
 * errors.go
 *    API error types and HTTP response helpers
 *
 * Maps workflow errors onto HTTP status codes and produces the JSON
 * error envelope returned by every endpoint.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/api/errors.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vivekray898/loanzaar-server/internal/workflow"
)

/* APIError carries an HTTP status code alongside the underlying error */
type APIError struct {
	Code      int
	Message   string
	Err       error
	RequestID string
	Endpoint  string
	Method    string
	Resource  string
	Details   map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

/* ErrorResponse is the JSON envelope for error responses */
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

/* Sentinel errors for common responses */
var (
	ErrBadRequest   = &APIError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrUnauthorized = &APIError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &APIError{Code: http.StatusForbidden, Message: "forbidden"}
	ErrNotFound     = &APIError{Code: http.StatusNotFound, Message: "not found"}
)

/* NewError creates an API error with a status code */
func NewError(code int, message string, err error) *APIError {
	return &APIError{Code: code, Message: message, Err: err}
}

/* NewErrorWithContext creates an API error enriched with request context */
func NewErrorWithContext(code int, message string, err error, requestID, endpoint, method, resource string, details map[string]interface{}) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Err:       err,
		RequestID: requestID,
		Endpoint:  endpoint,
		Method:    method,
		Resource:  resource,
		Details:   details,
	}
}

/* WrapError attaches a request ID to a sentinel or constructed error */
func WrapError(err *APIError, requestID string) *APIError {
	wrapped := *err
	wrapped.RequestID = requestID
	return &wrapped
}

/* mapWorkflowError translates the workflow error taxonomy to HTTP codes.
 * Authorization failures are 403 (the caller is authenticated but not
 * allowed), business-rule conflicts over pending proposals are 409, and
 * malformed requests are 400. */
func mapWorkflowError(err error, requestID string) *APIError {
	switch {
	case errors.Is(err, workflow.ErrApplicationNotFound):
		return WrapError(ErrNotFound, requestID)
	case errors.Is(err, workflow.ErrUnauthorized):
		return WrapError(ErrForbidden, requestID)
	case errors.Is(err, workflow.ErrProposalAlreadyPending),
		errors.Is(err, workflow.ErrNoPendingProposal):
		return WrapError(NewError(http.StatusConflict, err.Error(), nil), requestID)
	case errors.Is(err, workflow.ErrIllegalTransition),
		errors.Is(err, workflow.ErrMissingReason),
		errors.Is(err, workflow.ErrEmptyRemark):
		return WrapError(NewError(http.StatusBadRequest, err.Error(), nil), requestID)
	case errors.Is(err, workflow.ErrStorageUnavailable):
		return WrapError(NewError(http.StatusServiceUnavailable, "storage unavailable", err), requestID)
	default:
		return WrapError(NewError(http.StatusInternalServerError, "internal error", err), requestID)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err *APIError) {
	response := ErrorResponse{
		Error: err.Message,
		Code:  err.Code,
	}
	if err.Err != nil {
		response.Message = err.Err.Error()
	}
	if err.RequestID != "" {
		w.Header().Set("X-Request-ID", err.RequestID)
	}
	respondJSON(w, err.Code, response)
}
