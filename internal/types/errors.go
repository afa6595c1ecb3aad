package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants.
// All packages MUST use these constants instead of hardcoded strings.
const (
	// Validation (400) - snapshot field out of domain.
	ErrCodeValidationHumidityRange ErrorCode = "validation_humidity_out_of_range"
	ErrCodeValidationNonFinite     ErrorCode = "validation_non_finite_value"
	ErrCodeValidationNegativeSolar ErrorCode = "validation_negative_solar_power"
	ErrCodeValidationNegativeWind  ErrorCode = "validation_negative_wind_speed"
	ErrCodeValidationZeroTimestamp ErrorCode = "validation_zero_timestamp"
	ErrCodeValidationEntityState   ErrorCode = "validation_entity_state_unparseable"

	// Arithmetic (per-cycle, recoverable) - a model formula was handed inputs
	// outside its mathematical domain.
	ErrCodeArithmeticDewPoint ErrorCode = "arithmetic_dew_point_domain"

	// Configuration (fatal at construction).
	ErrCodeConfigTempOrdering ErrorCode = "config_drying_temp_ordering"
	ErrCodeConfigRange        ErrorCode = "config_value_out_of_range"
	ErrCodeConfigLoad         ErrorCode = "config_load_failed"

	// Upstream (502) - the sensor hub.
	ErrCodeUpstreamHubUnavailable ErrorCode = "upstream_hub_unavailable"
	ErrCodeUpstreamEntityMissing  ErrorCode = "upstream_entity_missing"
	ErrCodeUpstreamEntityState    ErrorCode = "upstream_entity_state_unavailable"

	// Not Found (404)
	ErrCodeNotFoundState ErrorCode = "not_found_state"

	// Internal (500)
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Used by the API layer to translate AppErrors into HTTP responses.
// Returns 500 for unrecognized error codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest // 400
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound // 404
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway // 502
	case strings.HasPrefix(s, "arithmetic_"):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}

// AppError is the standard application error type used throughout the service.
// All domain and host errors should be expressed as AppError to enable
// consistent error formatting, HTTP status mapping, and error chain support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with the provided details merged in.
// This is useful for adding context without mutating the original error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error. This is the standard constructor for domain errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError with the given code, message,
// underlying error, and structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}
