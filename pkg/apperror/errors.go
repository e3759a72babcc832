package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Business Logic (PTS) ----

// ErrInvalidAmount rejects a non-positive amount or one below the configured
// transfer minimum.
func ErrInvalidAmount(min int64) *AppError {
	return New("PTS_001", fmt.Sprintf("Amount must be at least %d points", min), http.StatusBadRequest)
}

func ErrSelfTransfer() *AppError {
	return New("PTS_002", "Cannot transfer points to yourself", http.StatusBadRequest)
}

func ErrUnknownAccount(id string) *AppError {
	return New("PTS_003", fmt.Sprintf("Account %q does not exist or is inactive", id), http.StatusNotFound)
}

func ErrInsufficientFunds() *AppError {
	return New("PTS_004", "Insufficient point balance", http.StatusPaymentRequired)
}

func ErrAmountOverflow() *AppError {
	return New("PTS_005", "Transfer would overflow the receiver's balance", http.StatusUnprocessableEntity)
}

// ErrPersistenceFailure marks a failed record append. The transfer is rolled
// back in full; callers may retry the whole attempt.
func ErrPersistenceFailure(err error) *AppError {
	return Wrap("PTS_006", "Transfer log append failed, transfer rolled back", http.StatusServiceUnavailable, err)
}

func ErrAccountExists(id string) *AppError {
	return New("PTS_007", fmt.Sprintf("Account %q already exists", id), http.StatusConflict)
}

func ErrInvalidKind(kind string) *AppError {
	return New("PTS_008", fmt.Sprintf("Unknown transfer kind %q", kind), http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("PTS_000", message, http.StatusBadRequest)
}
