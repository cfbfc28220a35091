package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkuiper/taalcoach/internal/service/learning"
	"github.com/mkuiper/taalcoach/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authorization errors
	case errors.Is(err, learning.ErrItemNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, learning.ErrItemNotFound),
		errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, store.ErrLearnerNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, learning.ErrWordExists),
		errors.Is(err, learning.ErrItemInactive),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, learning.ErrInvalidFormat),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Special cases
	case errors.Is(err, learning.ErrNoActiveItems):
		return http.StatusNoContent

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authorization errors
	case errors.Is(err, learning.ErrItemNotOwned):
		return "You do not own this word"

	// Not found errors
	case errors.Is(err, learning.ErrItemNotFound),
		errors.Is(err, store.ErrItemNotFound):
		return "Word not found"

	case errors.Is(err, store.ErrLearnerNotFound):
		return "Learner not found"

	// Conflict errors
	case errors.Is(err, learning.ErrWordExists):
		return "Word already in vocabulary"

	case errors.Is(err, learning.ErrItemInactive):
		return "Word has been removed from study"

	// Bad request errors
	case errors.Is(err, learning.ErrInvalidFormat):
		return "Invalid exercise format"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// No active items is handled separately with StatusNoContent

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'AddWordRequest.SourceText' Error:Field validation for 'SourceText' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte":
		return "value too small"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
