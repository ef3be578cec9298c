// Package services defines the business logic for tracking movies, likes,
// and suggestions. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked
// by callers.
//
// These errors cover the failure half of the taxonomy only. Expected
// outcomes — already liked, nothing to remove, already watched — are
// reported as booleans by the respective methods, never as errors.
package services

import "errors"

var (
	// ErrMovieNotFound indicates a like or link targeted a movie the store
	// does not know. Given correct handler sequencing (resolve before
	// persist) this is an invariant violation: log loudly, do not retry.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrDuplicateLink indicates a message id was linked twice. Links are
	// never overwritten; like ErrMovieNotFound this signals a sequencing
	// bug, not a user condition.
	ErrDuplicateLink = errors.New("message already linked to a movie")

	// ErrEmptyCohort is returned when a suggestion is requested for zero
	// users.
	ErrEmptyCohort = errors.New("suggestion cohort is empty")
)
