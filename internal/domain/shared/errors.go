// Package shared contains common domain types, errors and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Concurrency errors
	ErrOptimisticLock = errors.New("optimistic lock failure")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "mission", "judgement"
	Op      string // Operation that failed, e.g., "Create", "Transition"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// WithReason returns a copy of the error with a more specific message attached.
// Used by the judgement flow to carry the policy's human-readable reason.
func (e *DomainError) WithReason(reason string) *DomainError {
	clone := *e
	clone.Message = fmt.Sprintf("%s: %s", e.Message, reason)
	return &clone
}

// Mission domain errors
var (
	ErrMissionNotFound          = NewDomainError("mission", "Find", ErrNotFound, "mission not found")
	ErrMissionAlreadyExists     = NewDomainError("mission", "Create", ErrAlreadyExists, "an active mission already exists for this family relation and category")
	ErrMissionFieldRequired     = NewDomainError("mission", "Create", ErrEmptyValue, "mission required value is missing")
	ErrMissionPeriodRequired    = NewDomainError("mission", "Create", ErrEmptyValue, "mission period cannot be empty")
	ErrInvalidMissionPeriod     = NewDomainError("mission", "Create", ErrInvalidInput, "period start date must not be after end date")
	ErrInvalidMissionTransition = NewDomainError("mission", "Transition", ErrStateTransition, "mission status transition is not allowed")
	ErrInvalidScheduleInput     = NewDomainError("mission", "Schedule", ErrInvalidInput, "mission study-day count must be positive")
	ErrInvalidMissionPhase      = NewDomainError("mission", "List", ErrInvalidInput, "unknown mission phase filter")
)

// Judgement domain errors
var (
	ErrInvalidJudgementInput    = NewDomainError("judgement", "Evaluate", ErrInvalidInput, "judgement input counts are not valid")
	ErrMissionJudgementRejected = NewDomainError("judgement", "Judge", ErrInvalidState, "judgement verdict does not allow the requested transition")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsConflict checks if the error is an optimistic concurrency conflict.
// Conflicts are retryable: the caller may re-read the row and try again.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOptimisticLock)
}
