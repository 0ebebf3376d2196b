// Package services defines the business logic for the template catalog,
// documents, form sessions, authentication, and verification codes. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler/transport layer.
package services

import "errors"

// Catalog-related errors.
var (
	// ErrTemplateNotFound indicates that the requested template does not exist
	// or is inactive.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrCategoryNotFound indicates that the requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
)

// Document-related errors.
var (
	// ErrDocumentNotFound indicates that the requested document does not exist
	// or is not accessible to the current user.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentFinalized is returned when finalize is called on a document
	// that has already been generated. Finalize is deliberately not
	// idempotent: frozen answers are never overwritten.
	ErrDocumentFinalized = errors.New("document already finalized")

	// ErrDocumentNotGenerated is returned when rendering is requested for a
	// document still in draft status.
	ErrDocumentNotGenerated = errors.New("document is not generated yet")
)

// Form-session errors.
var (
	// ErrNoSession indicates that the user has no form session in progress.
	ErrNoSession = errors.New("no form session in progress")

	// ErrNoCurrentField indicates a session whose cursor is exhausted; it
	// should not be observable through the normal submit path.
	ErrNoCurrentField = errors.New("no field awaiting an answer")

	// ErrNotSelectField is returned when an option index is submitted for a
	// field that is not of the select type.
	ErrNotSelectField = errors.New("current field is not a select field")

	// ErrOptionOutOfRange is returned when a select option index falls
	// outside [0, optionCount).
	ErrOptionOutOfRange = errors.New("option index out of range")
)

// Auth and verification errors.
var (
	// ErrUserNotFound indicates no account matches the given identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates a registration attempt for an identifier that
	// is already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials covers both a missing account and a wrong
	// password so login responses do not leak which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a malformed, forged, or expired JWT.
	ErrInvalidToken = errors.New("invalid token")

	// ErrCodeInvalid indicates a verification code that does not match.
	ErrCodeInvalid = errors.New("verification code is invalid")

	// ErrCodeExpired indicates a matching verification code past its expiry.
	ErrCodeExpired = errors.New("verification code has expired")

	// ErrSendFailed indicates the outbound sender failed after its retry.
	ErrSendFailed = errors.New("failed to send notification")
)

// ErrRenderFailed indicates the external HTML-to-PDF renderer failed after
// its retry. Callers surface a generic "try again later" to the user.
var ErrRenderFailed = errors.New("artifact rendering failed")
