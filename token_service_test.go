package credentials_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	credentials "github.com/goliatone/go-credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentity implements credentials.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func newTestIdentity() *MockIdentity {
	identity := &MockIdentity{}
	identity.On("ID").Return("5f5fbd35-5c72-4494-9f92-9b43a1ed37c7")
	identity.On("Username").Return("alice")
	identity.On("Email").Return("alice@example.com")
	return identity
}

func newTestTokenService(expiration time.Duration) credentials.TokenService {
	return credentials.NewTokenService(
		[]byte("test-signing-key"),
		expiration,
		"test-issuer",
		jwt.ClaimStrings{"test-audience"},
		nil,
	)
}

func TestTokenServiceGenerate(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	token, err := svc.Generate(newTestIdentity())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.Subject())
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, "5f5fbd35-5c72-4494-9f92-9b43a1ed37c7", claims.UserID())
	assert.Equal(t, "alice@example.com", claims.Email())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires(), time.Minute)
}

func TestTokenServiceGenerateNilIdentity(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	_, err := svc.Generate(nil)
	assert.Error(t, err)
}

func TestTokenServiceValidateExpired(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	past := time.Now().Add(-2 * time.Hour)
	claims := &credentials.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   "alice",
			Audience:  jwt.ClaimStrings{"test-audience"},
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
		UID:      "5f5fbd35-5c72-4494-9f92-9b43a1ed37c7",
		UserName: "alice",
		Mail:     "alice@example.com",
	}

	token, err := svc.SignClaims(claims)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.Equal(t, credentials.ErrTokenExpired, err)
	assert.True(t, credentials.IsInvalidTokenError(err))
}

func TestTokenServiceValidateMalformed(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty token", token: ""},
		{name: "Garbage token", token: "not-a-jwt"},
		{name: "Truncated token", token: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJhbGljZSJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.Error(t, err)
			assert.True(t, credentials.IsInvalidTokenError(err))
		})
	}
}

func TestTokenServiceValidateWrongKey(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	other := credentials.NewTokenService(
		[]byte("a-different-signing-key"),
		time.Hour,
		"test-issuer",
		jwt.ClaimStrings{"test-audience"},
		nil,
	)

	token, err := other.Generate(newTestIdentity())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestTokenServiceValidateWrongIssuer(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	other := credentials.NewTokenService(
		[]byte("test-signing-key"),
		time.Hour,
		"another-issuer",
		jwt.ClaimStrings{"test-audience"},
		nil,
	)

	token, err := other.Generate(newTestIdentity())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestTokenServiceExpiration(t *testing.T) {
	svc := newTestTokenService(30 * time.Minute)

	assert.Equal(t, 30*time.Minute, svc.Expiration())
	assert.Equal(t, int64(1800), svc.ExpirationSeconds())
}

func TestTokenServiceDefaultExpiration(t *testing.T) {
	svc := newTestTokenService(0)

	assert.Equal(t, credentials.DefaultTokenExpiration, svc.Expiration())
}
