// Package foundation holds small building blocks shared across packages.
package foundation

import (
	"fmt"
	"strings"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
)

// Validator checks a value.
type Validator[T any] func(T) ValidationResult

// ValidationResult collects field errors.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// FieldError is a single validation failure.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid is a passing result.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid is a failing result.
func Invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}

// NewValidationError creates a field error.
func NewValidationError(field, code, message string) FieldError {
	return FieldError{Field: field, Code: code, Message: message}
}

// Combine merges two results.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.Valid && other.Valid {
		return Valid()
	}
	all := make([]FieldError, 0, len(vr.Errors)+len(other.Errors))
	all = append(all, vr.Errors...)
	all = append(all, other.Errors...)
	return Invalid(all...)
}

// ToError returns nil for a valid result and a fatal validation error
// listing every field error otherwise.
func (vr ValidationResult) ToError() error {
	if vr.Valid {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	fields := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
		fields = append(fields, e.Field)
	}
	return errors.ValidationError(strings.Join(messages, "; ")).
		Fatal().
		WithContext("fields", fields).
		Build()
}

// ValidatorChain runs validators in order and combines their results.
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a chain.
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add appends a validator.
func (vc *ValidatorChain[T]) Add(v Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, v)
	return vc
}

// Validate runs every validator.
func (vc *ValidatorChain[T]) Validate(value T) ValidationResult {
	result := Valid()
	for _, v := range vc.validators {
		result = result.Combine(v(value))
	}
	return result
}
