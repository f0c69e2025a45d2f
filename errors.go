package credentials

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeDuplicateAccount       = "DUPLICATE_ACCOUNT"
	textCodeAccountNotFound        = "ACCOUNT_NOT_FOUND"
	textCodeAccountNotVerified     = "ACCOUNT_NOT_VERIFIED"
	textCodeAccountAlreadyVerified = "ACCOUNT_ALREADY_VERIFIED"
	textCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	textCodeCodeExpired            = "VERIFICATION_CODE_EXPIRED"
	textCodeCodeMismatch           = "VERIFICATION_CODE_MISMATCH"
	textCodeTokenExpired           = "TOKEN_EXPIRED"
	textCodeTokenMalformed         = "TOKEN_MALFORMED"
	textCodeResendThrottled        = "VERIFICATION_RESEND_THROTTLED"
)

// ErrDuplicateAccount is returned when the email or username is already taken.
var ErrDuplicateAccount = goerrors.New("an account with that email or username already exists", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateAccount).
	WithCode(goerrors.CodeConflict)

// ErrAccountNotFound is returned when no account matches the identifier.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrAccountNotVerified is returned when a pending account attempts to authenticate.
var ErrAccountNotVerified = goerrors.New("account is not verified", goerrors.CategoryAuth).
	WithTextCode(textCodeAccountNotVerified).
	WithCode(goerrors.CodeForbidden)

// ErrAccountAlreadyVerified is returned when verify or resend is called on a
// verified account.
var ErrAccountAlreadyVerified = goerrors.New("account is already verified", goerrors.CategoryConflict).
	WithTextCode(textCodeAccountAlreadyVerified).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is returned when the password does not match.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrCodeExpired is returned when the verification code is past its expiry.
var ErrCodeExpired = goerrors.New("verification code has expired", goerrors.CategoryAuth).
	WithTextCode(textCodeCodeExpired).
	WithCode(http.StatusGone)

// ErrCodeMismatch is returned when the submitted code does not match the stored one.
var ErrCodeMismatch = goerrors.New("verification code does not match", goerrors.CategoryAuth).
	WithTextCode(textCodeCodeMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned when an identity token is past its expiry.
var ErrTokenExpired = goerrors.New("authentication token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when an identity token fails signature or
// structural checks.
var ErrTokenMalformed = goerrors.New("authentication token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrResendThrottled is returned when a resend is requested before the
// minimum interval has elapsed.
var ErrResendThrottled = goerrors.New("verification code was sent recently, try again later", goerrors.CategoryRateLimit).
	WithTextCode(textCodeResendThrottled).
	WithCode(http.StatusTooManyRequests)

// hasTextCode reports whether err carries the given machine readable code.
func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsInvalidTokenError reports whether err is any of the token validation
// failures: bad signature, expired, or structurally malformed.
func IsInvalidTokenError(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, textCodeTokenExpired) ||
		hasTextCode(err, textCodeTokenMalformed) ||
		IsTokenExpiredError(err) ||
		IsMalformedError(err)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
