// Package errors provides custom error types for the Divvy API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// Validation errors. Surfaced to the caller, never retried.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrSplitSumMismatch = &AppError{Code: "SPLIT_SUM_MISMATCH", Message: "Split amounts must sum exactly to the expense amount", StatusCode: http.StatusBadRequest}
	ErrEmptySplits      = &AppError{Code: "EMPTY_SPLITS", Message: "An expense needs at least one split participant", StatusCode: http.StatusBadRequest}
	ErrUnknownCategory  = &AppError{Code: "UNKNOWN_CATEGORY", Message: "Unknown expense category", StatusCode: http.StatusBadRequest}
)

// Referential errors. Surfaced, not retried.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrGroupNotFound     = &AppError{Code: "GROUP_NOT_FOUND", Message: "Group not found", StatusCode: http.StatusNotFound}
	ErrExpenseNotFound   = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrRecurringNotFound = &AppError{Code: "RECURRING_NOT_FOUND", Message: "Recurring expense not found", StatusCode: http.StatusNotFound}
	ErrNotAMember        = &AppError{Code: "NOT_A_MEMBER", Message: "User is not a member of this group", StatusCode: http.StatusBadRequest}
	ErrAlreadyAMember    = &AppError{Code: "ALREADY_A_MEMBER", Message: "User is already a member of this group", StatusCode: http.StatusConflict}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "A user with this username already exists", StatusCode: http.StatusConflict}
	ErrDuplicateEmail    = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrSelfSettlement    = &AppError{Code: "SELF_SETTLEMENT", Message: "Payer and payee must be different members", StatusCode: http.StatusBadRequest}
)

// Lifecycle and concurrency errors.
var (
	// ErrMemberHasOutstandingBalance blocks member removal while the ledger
	// still attributes a non-zero balance to that member.
	ErrMemberHasOutstandingBalance = &AppError{Code: "MEMBER_HAS_OUTSTANDING_BALANCE", Message: "Member still has an outstanding balance in this group", StatusCode: http.StatusConflict}

	// ErrRecurringCancelled rejects transitions out of the terminal state.
	ErrRecurringCancelled = &AppError{Code: "RECURRING_CANCELLED", Message: "A cancelled recurring expense cannot change state", StatusCode: http.StatusConflict}

	// ErrConcurrencyConflict signals an optimistic-check failure. Callers
	// may retry a bounded number of times.
	ErrConcurrencyConflict = &AppError{Code: "CONCURRENCY_CONFLICT", Message: "Concurrent modification detected, retry the operation", StatusCode: http.StatusConflict}
)

// Internal errors.
var (
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}

	// ErrUnbalancedLedger means a group's balances no longer sum to zero.
	// It indicates a defect or data corruption and must never be swallowed.
	ErrUnbalancedLedger = &AppError{Code: "UNBALANCED_LEDGER", Message: "Group balances do not sum to zero", StatusCode: http.StatusInternalServerError}
)
