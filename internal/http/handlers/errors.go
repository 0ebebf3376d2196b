// Package handlers defines HTTP-layer error codes used across all API
// endpoints.
//
// These symbolic constants are mapped to HTTP responses via the fail() helper
// and give clients a stable, machine-readable error taxonomy alongside the
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless noted.
//   - Generic codes (bad_request, unauthorized, conflict, …) mirror common
//     HTTP status semantics.
//   - Domain-specific codes (render_failed, send_failed, …) carry business
//     failures that a status code alone cannot convey.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeListFailed       = "list_failed"
	ErrCodeRenderFailed     = "render_failed"
	ErrCodeNotGenerated     = "not_generated"
	ErrCodeRegisterFailed   = "register_failed"
	ErrCodeSendFailed       = "send_failed"
	ErrCodeCodeInvalid      = "code_invalid"
	ErrCodeCodeExpired      = "code_expired"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
