package credentials

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
}

// AccountStore is the durable storage collaborator for account records.
// Lookups return a not-found error (see goerrors.IsNotFound) when no
// record matches; Create enforces email/username uniqueness and fails
// with ErrDuplicateAccount on conflict.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByVerificationCode(ctx context.Context, code string) (*Account, error)
	Create(ctx context.Context, account *Account) (*Account, error)
	Update(ctx context.Context, account *Account) (*Account, error)
}

// MessageSender delivers verification codes to account holders
type MessageSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// CredentialLifecycle drives an account from registration through
// verification to authenticated sessions
type CredentialLifecycle interface {
	Register(ctx context.Context, input RegisterInput) (*Account, error)
	Authenticate(ctx context.Context, identifier, password string) (*Account, error)
	VerifyAccount(ctx context.Context, email, code string) (*Account, error)
	ResendVerificationCode(ctx context.Context, email string) (*Account, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CREDENTIALS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] CREDENTIALS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CREDENTIALS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CREDENTIALS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
