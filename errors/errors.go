/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrTypeConflict is returned when an identifier is already persisted as another type
	ErrTypeConflict = errors.New("identifier already persisted as another type")

	// ErrAmbiguousType is returned when an identifier is a member of more than one type set
	ErrAmbiguousType = errors.New("identifier resolves to more than one type")

	// ErrUnknownType is returned when a type tag or Go type has no registered schema
	ErrUnknownType = errors.New("unknown entity type")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional update fails
	ErrConditionFailed = errors.New("condition check failed")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TypeConflictError reports a save of an identifier that another type already owns.
type TypeConflictError struct {
	ID       string
	Existing string
	Incoming string
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("identifier %q is persisted as %s, refusing to save it as %s", e.ID, e.Existing, e.Incoming)
}

func (e *TypeConflictError) Is(target error) bool {
	return target == ErrTypeConflict
}

// AmbiguousTypeError lists every type set that contains the identifier.
type AmbiguousTypeError struct {
	ID   string
	Tags []string
}

func (e *AmbiguousTypeError) Error() string {
	return fmt.Sprintf("identifier %q is a member of %d type sets: %s", e.ID, len(e.Tags), strings.Join(e.Tags, ", "))
}

func (e *AmbiguousTypeError) Is(target error) bool {
	return target == ErrAmbiguousType
}

// UnknownTypeError names the tag that has no schema.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no schema registered for type %q", e.Type)
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewTypeConflictError creates a new TypeConflictError
func NewTypeConflictError(id, existing, incoming string) error {
	return &TypeConflictError{ID: id, Existing: existing, Incoming: incoming}
}

// NewAmbiguousTypeError creates a new AmbiguousTypeError
func NewAmbiguousTypeError(id string, tags []string) error {
	return &AmbiguousTypeError{ID: id, Tags: append([]string(nil), tags...)}
}

// NewUnknownTypeError creates a new UnknownTypeError
func NewUnknownTypeError(entityType string) error {
	return &UnknownTypeError{Type: entityType}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTypeConflict checks if an error is a type conflict error
func IsTypeConflict(err error) bool {
	return errors.Is(err, ErrTypeConflict)
}

// IsAmbiguousType checks if an error is an ambiguous type error
func IsAmbiguousType(err error) bool {
	return errors.Is(err, ErrAmbiguousType)
}

// IsUnknownType checks if an error is an unknown type error
func IsUnknownType(err error) bool {
	return errors.Is(err, ErrUnknownType)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}
