package credentials

import (
	"context"
	"net/mail"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// DefaultResendInterval is the minimum time between verification resends
// per account
const DefaultResendInterval = time.Minute

// RegisterInput is the validated input for a new registration
type RegisterInput struct {
	Username  string
	Email     string
	Phone     string
	Password  string
	UseHashid bool
}

// Lifecycle is the credential state machine: it drives accounts from
// registration through verification to authenticated sessions. Each
// operation is a single read-modify-write against the AccountStore;
// concurrent duplicate registration is resolved by the store's uniqueness
// constraint, not by locking here.
type Lifecycle struct {
	store          AccountStore
	sender         MessageSender
	codes          CodeGenerator
	transitions    map[AccountStatus]map[AccountStatus]struct{}
	now            func() time.Time
	resendInterval time.Duration
	logger         Logger
	activitySink   ActivitySink
}

var _ CredentialLifecycle = (*Lifecycle)(nil)

// LifecycleOption customizes lifecycle behavior.
type LifecycleOption func(*Lifecycle)

// WithLifecycleClock injects a custom clock (useful for tests).
func WithLifecycleClock(clock func() time.Time) LifecycleOption {
	return func(l *Lifecycle) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithLifecycleLogger overrides the default logger.
func WithLifecycleLogger(logger Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithLifecycleActivitySink sets the ActivitySink used to publish lifecycle events.
func WithLifecycleActivitySink(sink ActivitySink) LifecycleOption {
	return func(l *Lifecycle) {
		l.activitySink = normalizeActivitySink(sink)
	}
}

// WithCodeGenerator overrides the default verification code generator.
func WithCodeGenerator(codes CodeGenerator) LifecycleOption {
	return func(l *Lifecycle) {
		if codes != nil {
			l.codes = codes
		}
	}
}

// WithResendInterval sets the minimum interval between resends per account.
func WithResendInterval(interval time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		if interval > 0 {
			l.resendInterval = interval
		}
	}
}

// NewLifecycle returns the default lifecycle backed by the provided store
// and message sender.
func NewLifecycle(store AccountStore, sender MessageSender, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store:  store,
		sender: sender,
		transitions: map[AccountStatus]map[AccountStatus]struct{}{
			AccountStatusPending: {
				AccountStatusVerified: {},
			},
		},
		now:            time.Now,
		resendInterval: DefaultResendInterval,
		logger:         defLogger{},
		activitySink:   noopActivitySink{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	// the default generator has to mint expiries on the same clock the
	// verify and resend paths compare against
	if l.codes == nil {
		l.codes = NewCodeGenerator(WithCodeClock(l.now))
	}

	return l
}

// CanTransition reports whether the lifecycle allows moving between two states.
func (l *Lifecycle) CanTransition(from, to AccountStatus) bool {
	if allowed, ok := l.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

// EnsureStatus fails with the matching lifecycle error when the account is
// not in the expected state.
func (l *Lifecycle) EnsureStatus(account *Account, status AccountStatus) error {
	if account.Status() == status {
		return nil
	}

	switch status {
	case AccountStatusPending:
		return ErrAccountAlreadyVerified
	case AccountStatusVerified:
		return ErrAccountNotVerified
	}

	return goerrors.New("unknown account status: "+string(status), goerrors.CategoryInternal)
}

// Register creates a pending account, persists it, and triggers the
// verification message. Fails with ErrDuplicateAccount when the email or
// username is taken.
func (l *Lifecycle) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	username := getUsername(input.Username, email)

	if _, err := l.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount.WithMetadata(map[string]any{"email": email})
	} else if !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
	}

	if _, err := l.store.FindByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateAccount.WithMetadata(map[string]any{"username": username})
	} else if !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username availability")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	code, err := l.codes.Generate()
	if err != nil {
		return nil, err
	}

	account := &Account{
		Username:     username,
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Enabled:      false,
	}
	account.SetVerification(code.Value, code.ExpiresAt, l.now())

	if input.UseHashid {
		if id, err := hashid.NewUUID(email); err == nil {
			account.ID = id
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	created, err := l.store.Create(ctx, account)
	if err != nil {
		// a concurrent register for the same identity surfaces here via the
		// store's uniqueness constraint
		if hasTextCode(err, textCodeDuplicateAccount) {
			return nil, err
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist account")
	}

	l.deliverCode(ctx, created, code.Value)

	l.emit(ctx, ActivityEvent{
		EventType: ActivityEventAccountRegistered,
		Actor:     ActorRef{ID: created.ID.String(), Type: "user"},
		AccountID: created.ID.String(),
		Email:     created.Email,
	})

	return created, nil
}

// Authenticate verifies the identifier/password pair and returns the
// account. Unverified accounts never authenticate. Token minting is the
// caller's concern via TokenService.
func (l *Lifecycle) Authenticate(ctx context.Context, identifier, password string) (*Account, error) {
	account, err := l.findByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if !account.Enabled {
		l.emit(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Actor:     ActorRef{ID: account.ID.String(), Type: "user"},
			AccountID: account.ID.String(),
			Email:     account.Email,
			Metadata:  map[string]any{"reason": "account not verified"},
		})
		return nil, ErrAccountNotVerified
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		l.emit(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Actor:     ActorRef{ID: account.ID.String(), Type: "user"},
			AccountID: account.ID.String(),
			Email:     account.Email,
			Metadata:  map[string]any{"reason": "password mismatch"},
		})
		if hasTextCode(err, textCodeInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to compare password")
	}

	l.emit(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Actor:     ActorRef{ID: account.ID.String(), Type: "user"},
		AccountID: account.ID.String(),
		Email:     account.Email,
	})

	return account, nil
}

// VerifyAccount transitions a pending account to verified when the
// submitted code matches before its expiry. Calling verify on an already
// verified account fails with ErrAccountAlreadyVerified.
func (l *Lifecycle) VerifyAccount(ctx context.Context, email, code string) (*Account, error) {
	account, err := l.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !l.CanTransition(account.Status(), AccountStatusVerified) {
		return nil, ErrAccountAlreadyVerified
	}

	if account.VerificationExpiresAt == nil || !l.now().Before(*account.VerificationExpiresAt) {
		return nil, ErrCodeExpired
	}

	if account.VerificationCode == nil || *account.VerificationCode != code {
		return nil, ErrCodeMismatch
	}

	account.Enabled = true
	account.ClearVerification()

	updated, err := l.store.Update(ctx, account)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist verified account")
	}

	l.emit(ctx, ActivityEvent{
		EventType: ActivityEventAccountVerified,
		Actor:     ActorRef{ID: updated.ID.String(), Type: "user"},
		AccountID: updated.ID.String(),
		Email:     updated.Email,
	})

	return updated, nil
}

// ResendVerificationCode replaces the stored code with a fresh one and
// re-triggers delivery. The previous code is no longer valid once this
// returns. Resends inside the minimum interval fail with ErrResendThrottled.
func (l *Lifecycle) ResendVerificationCode(ctx context.Context, email string) (*Account, error) {
	account, err := l.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := l.EnsureStatus(account, AccountStatusPending); err != nil {
		return nil, err
	}

	if account.CodeSentAt != nil {
		elapsed := l.now().Sub(*account.CodeSentAt)
		if elapsed < l.resendInterval {
			l.emit(ctx, ActivityEvent{
				EventType: ActivityEventResendThrottled,
				Actor:     ActorRef{ID: account.ID.String(), Type: "user"},
				AccountID: account.ID.String(),
				Email:     account.Email,
			})
			return nil, ErrResendThrottled.WithMetadata(map[string]any{
				"retry_in": (l.resendInterval - elapsed).String(),
			})
		}
	}

	code, err := l.codes.Generate()
	if err != nil {
		return nil, err
	}

	account.SetVerification(code.Value, code.ExpiresAt, l.now())

	updated, err := l.store.Update(ctx, account)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist rotated verification code")
	}

	l.deliverCode(ctx, updated, code.Value)

	l.emit(ctx, ActivityEvent{
		EventType: ActivityEventCodeResent,
		Actor:     ActorRef{ID: updated.ID.String(), Type: "user"},
		AccountID: updated.ID.String(),
		Email:     updated.Email,
	})

	return updated, nil
}

func (l *Lifecycle) findByIdentifier(ctx context.Context, identifier string) (*Account, error) {
	identifier = strings.TrimSpace(identifier)
	if isEmail(identifier) {
		return l.findByEmail(ctx, identifier)
	}

	account, err := l.store.FindByUsername(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrAccountNotFound.WithMetadata(map[string]any{"identifier": identifier})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account")
	}
	return account, nil
}

func (l *Lifecycle) findByEmail(ctx context.Context, email string) (*Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	account, err := l.store.FindByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrAccountNotFound.WithMetadata(map[string]any{"email": email})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account")
	}
	return account, nil
}

// deliverCode hands the code to the message sender. Delivery failures are
// logged, never swallowed silently, but they do not roll back the
// persisted account.
func (l *Lifecycle) deliverCode(ctx context.Context, account *Account, code string) {
	if l.sender == nil {
		return
	}
	if err := l.sender.SendVerificationCode(ctx, account.Email, code); err != nil {
		l.logger.Error("failed to deliver verification code to %s: %v", account.Email, err)
	}
}

func (l *Lifecycle) emit(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = l.now()
	}

	sink := normalizeActivitySink(l.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		l.logger.Warn("lifecycle activity sink error: %v", err)
	}
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
