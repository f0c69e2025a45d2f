package credentials

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the verification state of an account
type AccountStatus string

const (
	// AccountStatusPending is a registered account awaiting email verification
	AccountStatusPending AccountStatus = "pending"
	// AccountStatusVerified is an account that proved control of its email
	AccountStatusVerified AccountStatus = "verified"
)

// Account is the credential record for a registered identity
type Account struct {
	bun.BaseModel         `bun:"table:accounts,alias:acc"`
	ID                    uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username              string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email                 string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone                 string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash          string     `bun:"password_hash,notnull" json:"-"`
	Enabled               bool       `bun:"enabled" json:"enabled"`
	VerificationCode      *string    `bun:"verification_code,nullzero" json:"-"`
	VerificationExpiresAt *time.Time `bun:"verification_expires_at,nullzero" json:"-"`
	CodeSentAt            *time.Time `bun:"code_sent_at,nullzero" json:"-"`
	CreatedAt             *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt             *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt             *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Status derives the lifecycle state from the enabled flag
func (a *Account) Status() AccountStatus {
	if a.Enabled {
		return AccountStatusVerified
	}
	return AccountStatusPending
}

// SetVerification stores a fresh single use code, superseding any previous one
func (a *Account) SetVerification(code string, expiresAt, sentAt time.Time) *Account {
	a.VerificationCode = &code
	a.VerificationExpiresAt = &expiresAt
	a.CodeSentAt = &sentAt
	return a
}

// ClearVerification removes the code and expiry once the account is verified.
// No residual single use code survives verification.
func (a *Account) ClearVerification() *Account {
	a.VerificationCode = nil
	a.VerificationExpiresAt = nil
	a.CodeSentAt = nil
	return a
}

// Identity adapts the account to the Identity interface without exposing
// the password hash or verification state
func (a *Account) Identity() Identity {
	return accountIdentity{
		id:       a.ID.String(),
		username: a.Username,
		email:    a.Email,
	}
}

type accountIdentity struct {
	id       string
	username string
	email    string
}

func (i accountIdentity) ID() string       { return i.id }
func (i accountIdentity) Username() string { return i.username }
func (i accountIdentity) Email() string    { return i.email }

var _ Identity = accountIdentity{}
