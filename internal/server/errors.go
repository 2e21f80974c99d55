package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ErykVaughn/vector-database/internal/errortypes"
)

// ErrorResponse represents the structure of error responses sent by the API
type ErrorResponse struct {
	Status     string                 `json:"status"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
}

// Common error codes
const (
	// ErrorCodeInvalidRequest indicates the client sent an invalid request
	ErrorCodeInvalidRequest = "INVALID_REQUEST"

	// ErrorCodeInternalError indicates an internal server error
	ErrorCodeInternalError = "INTERNAL_ERROR"

	// ErrorCodeResourceNotFound indicates a requested resource was not found
	ErrorCodeResourceNotFound = "RESOURCE_NOT_FOUND"

	// ErrorCodeBadGateway indicates a failure in an upstream service
	ErrorCodeBadGateway = "BAD_GATEWAY"
)

// Error response codes
const (
	StatusCodeValidationError = "VALIDATION_ERROR"
	StatusCodeDatabaseError   = "DATABASE_ERROR"
	StatusCodeNetworkError    = "NETWORK_ERROR"
	StatusCodeInternalError   = "INTERNAL_ERROR"
	StatusCodeConfigError     = "CONFIG_ERROR"
	StatusCodeExternalError   = "EXTERNAL_ERROR"
	StatusCodeUnknownError    = "UNKNOWN_ERROR"
)

// writeErrorResponse writes a structured error response to the client
func writeErrorResponse(c *gin.Context, status int, code, message string, err error) {
	errResp := ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	}

	// Add details from the error if available; AppErrors contribute their
	// context fields and captured stack.
	if err != nil {
		base := errorToResponse(err)
		errResp.Details = make(map[string]interface{}, len(base.Details)+1)
		for k, v := range base.Details {
			errResp.Details[k] = v
		}
		errResp.Details["error"] = err.Error()
		errResp.StackTrace = base.StackTrace

		// Log the error with structured context
		logErr := errortypes.APIError(err, fmt.Sprintf("API Error (%s)", code)).
			WithField("status_code", status).
			WithField("error_code", code).
			WithField("client_message", message)

		errortypes.LogError(nil, logErr)
	}

	c.AbortWithStatusJSON(status, errResp)
}

// Error handler functions for common HTTP error scenarios

// HandleBadRequest handles 400 Bad Request errors
func HandleBadRequest(c *gin.Context, message string, err error) {
	writeErrorResponse(c, http.StatusBadRequest, ErrorCodeInvalidRequest, message, err)
}

// HandleNotFound handles 404 Not Found errors
func HandleNotFound(c *gin.Context, message string, err error) {
	writeErrorResponse(c, http.StatusNotFound, ErrorCodeResourceNotFound, message, err)
}

// HandleInternalError handles 500 Internal Server Error errors
func HandleInternalError(c *gin.Context, message string, err error) {
	writeErrorResponse(c, http.StatusInternalServerError, ErrorCodeInternalError, message, err)
}

// HandleBadGateway handles 502 Bad Gateway errors
func HandleBadGateway(c *gin.Context, message string, err error) {
	writeErrorResponse(c, http.StatusBadGateway, ErrorCodeBadGateway, message, err)
}

// HandleError handles any error, inspecting its type to determine the
// appropriate HTTP response
func HandleError(c *gin.Context, err error) {
	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case errortypes.ErrorTypeValidation:
			HandleBadRequest(c, "Invalid request parameters", err)
			return
		case errortypes.ErrorTypeNetwork, errortypes.ErrorTypeAPI, errortypes.ErrorTypeExternal:
			HandleBadGateway(c, "Downstream service error", err)
			return
		case errortypes.ErrorTypeDatabase, errortypes.ErrorTypeInternal, errortypes.ErrorTypeConfig:
			HandleInternalError(c, "An unexpected error occurred", err)
			return
		}
	}

	// Default to internal server error for unknown error types
	HandleInternalError(c, "An unexpected error occurred", err)
}

// errorToResponse converts an error to a standardized ErrorResponse
func errorToResponse(err error) ErrorResponse {
	var code string
	var details map[string]interface{}
	var stackTrace string
	message := err.Error()

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		details = appErr.Fields
		stackTrace = appErr.StackInfo

		switch appErr.Type {
		case errortypes.ErrorTypeValidation:
			code = StatusCodeValidationError
		case errortypes.ErrorTypeNetwork:
			code = StatusCodeNetworkError
		case errortypes.ErrorTypeDatabase:
			code = StatusCodeDatabaseError
		case errortypes.ErrorTypeInternal:
			code = StatusCodeInternalError
		case errortypes.ErrorTypeAPI, errortypes.ErrorTypeExternal:
			code = StatusCodeExternalError
		case errortypes.ErrorTypeConfig:
			code = StatusCodeConfigError
		default:
			code = StatusCodeUnknownError
		}
	} else {
		code = StatusCodeUnknownError
	}

	return ErrorResponse{
		Status:     "error",
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: stackTrace,
	}
}
