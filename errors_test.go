package credentials_test

import (
	"errors"
	"net/http"
	"testing"

	credentials "github.com/goliatone/go-credentials"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestStructuredErrorProperties(t *testing.T) {
	t.Run("ErrDuplicateAccount", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryConflict, credentials.ErrDuplicateAccount.Category)
		assert.Equal(t, "DUPLICATE_ACCOUNT", credentials.ErrDuplicateAccount.TextCode)
		assert.Equal(t, goerrors.CodeConflict, credentials.ErrDuplicateAccount.Code)
	})

	t.Run("ErrAccountNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, credentials.ErrAccountNotFound.Category)
		assert.Equal(t, "ACCOUNT_NOT_FOUND", credentials.ErrAccountNotFound.TextCode)
	})

	t.Run("ErrAccountNotVerified", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, credentials.ErrAccountNotVerified.Category)
		assert.Equal(t, "ACCOUNT_NOT_VERIFIED", credentials.ErrAccountNotVerified.TextCode)
		assert.Equal(t, goerrors.CodeForbidden, credentials.ErrAccountNotVerified.Code)
	})

	t.Run("ErrAccountAlreadyVerified", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryConflict, credentials.ErrAccountAlreadyVerified.Category)
		assert.Equal(t, "ACCOUNT_ALREADY_VERIFIED", credentials.ErrAccountAlreadyVerified.TextCode)
	})

	t.Run("ErrInvalidCredentials", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, credentials.ErrInvalidCredentials.Category)
		assert.Equal(t, "INVALID_CREDENTIALS", credentials.ErrInvalidCredentials.TextCode)
		assert.Equal(t, goerrors.CodeUnauthorized, credentials.ErrInvalidCredentials.Code)
	})

	t.Run("ErrCodeExpired", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, credentials.ErrCodeExpired.Category)
		assert.Equal(t, "VERIFICATION_CODE_EXPIRED", credentials.ErrCodeExpired.TextCode)
		assert.Equal(t, http.StatusGone, credentials.ErrCodeExpired.Code)
	})

	t.Run("ErrCodeMismatch", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, credentials.ErrCodeMismatch.Category)
		assert.Equal(t, "VERIFICATION_CODE_MISMATCH", credentials.ErrCodeMismatch.TextCode)
	})

	t.Run("ErrResendThrottled", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryRateLimit, credentials.ErrResendThrottled.Category)
		assert.Equal(t, "VERIFICATION_RESEND_THROTTLED", credentials.ErrResendThrottled.TextCode)
		assert.Equal(t, http.StatusTooManyRequests, credentials.ErrResendThrottled.Code)
	})

	t.Run("ErrTokenExpired", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, credentials.ErrTokenExpired.Category)
		assert.Equal(t, "TOKEN_EXPIRED", credentials.ErrTokenExpired.TextCode)
	})

	t.Run("ErrTokenMalformed", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, credentials.ErrTokenMalformed.Category)
		assert.Equal(t, "TOKEN_MALFORMED", credentials.ErrTokenMalformed.TextCode)
	})
}

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "Expired token error",
			err:      errors.New("token is expired"),
			expected: true,
		},
		{
			name:     "Other error",
			err:      errors.New("something else"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := credentials.IsTokenExpiredError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "Malformed token error",
			err:      errors.New("token is malformed"),
			expected: true,
		},
		{
			name:     "Missing JWT error",
			err:      errors.New("missing or malformed JWT"),
			expected: true,
		},
		{
			name:     "Other error",
			err:      errors.New("something else"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := credentials.IsMalformedError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsInvalidTokenError(t *testing.T) {
	assert.True(t, credentials.IsInvalidTokenError(credentials.ErrTokenExpired))
	assert.True(t, credentials.IsInvalidTokenError(credentials.ErrTokenMalformed))
	assert.True(t, credentials.IsInvalidTokenError(errors.New("token is expired")))
	assert.False(t, credentials.IsInvalidTokenError(nil))
	assert.False(t, credentials.IsInvalidTokenError(errors.New("some other error")))
}
