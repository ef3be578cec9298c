// Package handlers defines HTTP-layer error codes used across the ops API.
//
// These codes give clients a stable, machine-readable error taxonomy that
// supplements human-readable messages. Codes are lowercase snake_case and
// mirror common HTTP status semantics; every error response includes both
// an HTTP status and one of these codes (see the fail() helper).
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeListFailed    = "list_failed"
	ErrCodeSuggestFailed = "suggest_failed"
)
