package credentials_test

import (
	"context"
	"sync"
	"testing"

	credentials "github.com/goliatone/go-credentials"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// richTextCode extracts the machine readable code from a rich error.
func richTextCode(t *testing.T, err error) string {
	t.Helper()

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr), "expected a rich error, got %T", err)
	return richErr.TextCode
}

// MockAccountStore implements credentials.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) FindByEmail(ctx context.Context, email string) (*credentials.Account, error) {
	args := m.Called(ctx, email)
	account, _ := args.Get(0).(*credentials.Account)
	return account, args.Error(1)
}

func (m *MockAccountStore) FindByUsername(ctx context.Context, username string) (*credentials.Account, error) {
	args := m.Called(ctx, username)
	account, _ := args.Get(0).(*credentials.Account)
	return account, args.Error(1)
}

func (m *MockAccountStore) FindByVerificationCode(ctx context.Context, code string) (*credentials.Account, error) {
	args := m.Called(ctx, code)
	account, _ := args.Get(0).(*credentials.Account)
	return account, args.Error(1)
}

func (m *MockAccountStore) Create(ctx context.Context, record *credentials.Account) (*credentials.Account, error) {
	args := m.Called(ctx, record)
	if fn, ok := args.Get(0).(func(context.Context, *credentials.Account) *credentials.Account); ok {
		return fn(ctx, record), args.Error(1)
	}
	account, _ := args.Get(0).(*credentials.Account)
	return account, args.Error(1)
}

func (m *MockAccountStore) Update(ctx context.Context, record *credentials.Account) (*credentials.Account, error) {
	args := m.Called(ctx, record)
	if fn, ok := args.Get(0).(func(context.Context, *credentials.Account) *credentials.Account); ok {
		return fn(ctx, record), args.Error(1)
	}
	account, _ := args.Get(0).(*credentials.Account)
	return account, args.Error(1)
}

// MockMessageSender implements credentials.MessageSender
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) SendVerificationCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

// MockCodeGenerator implements credentials.CodeGenerator
type MockCodeGenerator struct {
	mock.Mock
}

func (m *MockCodeGenerator) Generate() (credentials.VerificationCode, error) {
	args := m.Called()
	code, _ := args.Get(0).(credentials.VerificationCode)
	return code, args.Error(1)
}

// capturingSink records activity events for assertions
type capturingSink struct {
	mu     sync.Mutex
	events []credentials.ActivityEvent
}

func (s *capturingSink) Record(ctx context.Context, event credentials.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *capturingSink) Events() []credentials.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]credentials.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *capturingSink) HasEvent(eventType credentials.ActivityEventType) bool {
	for _, e := range s.Events() {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

// testConfig implements credentials.Config
type testConfig struct {
	signingKey      string
	signingMethod   string
	contextKey      string
	tokenExpiration int
	tokenLookup     string
	authScheme      string
	issuer          string
	audience        []string
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey:      "test-signing-secret",
		signingMethod:   "HS256",
		contextKey:      "user",
		tokenExpiration: 1,
		tokenLookup:     "header:Authorization",
		authScheme:      "Bearer",
		issuer:          "test-issuer",
		audience:        []string{"test-audience"},
	}
}

func (c testConfig) GetSigningKey() string    { return c.signingKey }
func (c testConfig) GetSigningMethod() string { return c.signingMethod }
func (c testConfig) GetContextKey() string    { return c.contextKey }
func (c testConfig) GetTokenExpiration() int  { return c.tokenExpiration }
func (c testConfig) GetTokenLookup() string   { return c.tokenLookup }
func (c testConfig) GetAuthScheme() string    { return c.authScheme }
func (c testConfig) GetIssuer() string        { return c.issuer }
func (c testConfig) GetAudience() []string    { return c.audience }
