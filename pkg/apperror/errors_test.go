package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New("PTS_002", "Cannot transfer points to yourself", http.StatusBadRequest)
	assert.Equal(t, "[PTS_002] Cannot transfer points to yourself", err.Error())

	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, errors.New("db down"))
	assert.Contains(t, wrapped.Error(), "SYS_001")
	assert.Contains(t, wrapped.Error(), "db down")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := ErrPersistenceFailure(inner)

	assert.True(t, errors.Is(err, inner))

	var appErr *AppError
	require.ErrorAs(t, error(err), &appErr)
	assert.Equal(t, "PTS_006", appErr.Code)
}

func TestErrorTaxonomy_HTTPStatuses(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{ErrInvalidAmount(50), "PTS_001", http.StatusBadRequest},
		{ErrSelfTransfer(), "PTS_002", http.StatusBadRequest},
		{ErrUnknownAccount("x"), "PTS_003", http.StatusNotFound},
		{ErrInsufficientFunds(), "PTS_004", http.StatusPaymentRequired},
		{ErrAmountOverflow(), "PTS_005", http.StatusUnprocessableEntity},
		{ErrPersistenceFailure(errors.New("x")), "PTS_006", http.StatusServiceUnavailable},
		{ErrAccountExists("x"), "PTS_007", http.StatusConflict},
		{ErrInvalidKind("x"), "PTS_008", http.StatusBadRequest},
		{ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{InternalError(errors.New("x")), "SYS_001", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.status, tt.err.HTTPStatus, "status for %s", tt.code)
	}
}

func TestErrInvalidAmount_MentionsMinimum(t *testing.T) {
	err := ErrInvalidAmount(50)
	assert.Contains(t, err.Message, "50")
}
