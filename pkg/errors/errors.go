package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrSourceBalanceUnavailable = errors.New("source account balance unavailable")
	ErrInsufficientSourceAmount = errors.New("insufficient source amount")
	ErrLoanNotFound             = errors.New("loan not found")
	ErrLoanNotPending           = errors.New("loan is not pending")
	ErrInvalidSignature         = errors.New("invalid signature")
	ErrTransferFailed           = errors.New("transfer failed")
)

// BusinessError represents a business logic error. Domain rejections carry a
// stable code and a human-readable message; infrastructure faults wrap the
// underlying database or network error.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeSourceBalanceUnavailable = "SOURCE_BALANCE_UNAVAILABLE"
	ErrCodeInsufficientSourceAmount = "INSUFFICIENT_SOURCE_AMOUNT"
	ErrCodeLoanNotFound             = "LOAN_NOT_FOUND"
	ErrCodeLoanNotPending           = "LOAN_NOT_PENDING"
	ErrCodeInvalidSignature         = "INVALID_SIGNATURE"
	ErrCodeTransferFailed           = "TRANSFER_FAILED"
	ErrCodeDatabaseError            = "DATABASE_ERROR"
	ErrCodeNetworkError             = "NETWORK_ERROR"
)

// IsRejection reports whether err is a domain rejection rather than an
// infrastructure fault. Rejections are expected outcomes and map to a 4xx at
// the HTTP boundary.
func IsRejection(err error) bool {
	var be *BusinessError
	if !errors.As(err, &be) {
		return false
	}
	switch be.Code {
	case ErrCodeDatabaseError, ErrCodeNetworkError:
		return false
	}
	return true
}

// Wrap common errors with business context

func WrapSourceBalanceUnavailable() *BusinessError {
	return NewBusinessError(
		ErrCodeSourceBalanceUnavailable,
		"failed to get token amount on source account",
		ErrSourceBalanceUnavailable,
	)
}

func WrapInsufficientSourceAmount() *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientSourceAmount,
		"insufficient token amount on source account",
		ErrInsufficientSourceAmount,
	)
}

func WrapLoanNotFound() *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		"loan was not found",
		ErrLoanNotFound,
	)
}

func WrapLoanNotPending(status string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotPending,
		fmt.Sprintf("loan was already submitted (status %s)", status),
		ErrLoanNotPending,
	)
}

func WrapInvalidSignature() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidSignature,
		"provided signature is invalid",
		ErrInvalidSignature,
	)
}

func WrapTransferFailed() *BusinessError {
	return NewBusinessError(
		ErrCodeTransferFailed,
		"transfer process failed unexpectedly",
		ErrTransferFailed,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapNetworkError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeNetworkError,
		"asset network operation failed",
		err,
	)
}
