package models

import (
	"net/http"
	"time"
)

// ErrorCode represents standard error codes
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrInvalidSide        ErrorCode = "INVALID_SIDE"
	ErrUnknownSymbol      ErrorCode = "UNKNOWN_SYMBOL"
	ErrOrderNotFound      ErrorCode = "ORDER_NOT_FOUND"
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrInternalError      ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured error response
type APIError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPError wraps an APIError with an HTTP status code
type HTTPError struct {
	StatusCode int
	Error      APIError
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, code ErrorCode, message string, details map[string]interface{}) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Error: APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// Response renders the error as a failed BaseResponse
func (e *HTTPError) Response() BaseResponse {
	return BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   e.Error.Message,
		Error:     &e.Error,
	}
}

// Common error constructors

func ErrBadRequest(message string, details map[string]interface{}) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidRequest, message, details)
}

func ErrInvalidSideError(providedSide string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidSide,
		"Invalid side, must be 'buy' or 'sell'",
		map[string]interface{}{"provided_value": providedSide})
}

func ErrUnknownSymbolError(symbol string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, ErrUnknownSymbol,
		"Unknown symbol",
		map[string]interface{}{"symbol": symbol})
}

func ErrOrderNotFoundError(orderID uint64) *HTTPError {
	return NewHTTPError(http.StatusNotFound, ErrOrderNotFound,
		"Order not found",
		map[string]interface{}{"order_id": orderID})
}

func ErrUnavailable(message string) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, ErrServiceUnavailable, message, nil)
}

func ErrInternal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, ErrInternalError, message, nil)
}
