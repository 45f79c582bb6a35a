// Package common defines shared constants and sentinel errors used across
// the client and server layers. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrVersionConflict signals that an update carried a stale base version
	// and was rejected by the server instead of overwriting newer state.
	ErrVersionConflict = errors.New("version conflict")

	// Validation errors. These are rejected before anything is queued.
	ErrorEmptyText    = errors.New("entry text is empty")
	ErrorTitleTooLong = errors.New("title exceeds 240 characters")
	ErrorTooManyTags  = errors.New("more than 12 tags")
	ErrorTagTooLong   = errors.New("tag exceeds 32 characters")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
