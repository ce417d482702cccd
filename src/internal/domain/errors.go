package domain

import (
	"errors"
	"fmt"
)

var ErrRecordNotFound = errors.New("record not found")

// ErrAlreadyProcessed is returned when a transition races against a
// transaction that has already left pending.
var ErrAlreadyProcessed = errors.New("transaction already processed")

// ErrAccountBusy is returned when a bounded wait for an account row lock
// expires.
var ErrAccountBusy = errors.New("account busy")

var ErrPermissionDenied = errors.New("permission denied")

// ErrDuplicateAccountNumber signals an account-number collision on create;
// account creation retries with a freshly generated number.
var ErrDuplicateAccountNumber = errors.New("account number already exists")

// ValidationError names the business rule a request violated.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func NewValidationError(rule, message string) *ValidationError {
	return &ValidationError{Rule: rule, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrInsufficientBalance is the validation failure for a debit exceeding
// the source balance. Declared as a shared value so callers can match it
// with errors.Is.
var ErrInsufficientBalance = NewValidationError("insufficient_balance", "insufficient balance")
