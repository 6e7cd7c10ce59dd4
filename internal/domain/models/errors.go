package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation              = errors.New("validation failed")
	ErrInsufficientHistory     = errors.New("insufficient history")
	ErrInvalidMarketData       = errors.New("invalid market data")
	ErrExecutionFailure        = errors.New("execution failure")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// FieldViolation describes one rejected field.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a rejected candidate.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a single-violation error.
func NewValidationError(field, rule, message string) *ValidationError {
	return &ValidationError{Violations: []FieldViolation{{Field: field, Rule: rule, Message: message}}}
}
