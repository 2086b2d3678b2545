package httpserver

import (
	"regexp"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult aggregates field errors for a request.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var validCacheName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateCacheName checks one cache name from an invalidate request.
func ValidateCacheName(name string) ValidationResult {
	if name == "" {
		return ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "caches",
				Code:    "REQUIRED",
				Message: "Cache name is required",
			}},
		}
	}
	if len(name) > 64 {
		return ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "caches",
				Code:    "TOO_LONG",
				Message: "Cache name is too long (max 64 characters)",
			}},
		}
	}
	if !validCacheName.MatchString(name) {
		return ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "caches",
				Code:    "INVALID_FORMAT",
				Message: "Cache name contains invalid characters",
			}},
		}
	}
	return ValidationResult{Valid: true}
}
