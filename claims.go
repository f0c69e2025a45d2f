package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents the validated claims of an identity token
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Email() string
	Expires() time.Time
	IssuedAt() time.Time
}

// TokenClaims is the concrete implementation of AuthClaims
type TokenClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	UserName string `json:"username,omitempty"`
	Mail     string `json:"email,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*TokenClaims)(nil)

// Subject returns the subject claim
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the account ID
func (c *TokenClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Username returns the account username
func (c *TokenClaims) Username() string {
	return c.UserName
}

// Email returns the account email
func (c *TokenClaims) Email() string {
	return c.Mail
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issuance time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
