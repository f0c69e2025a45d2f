package credentials_test

import (
	"context"
	"testing"
	"time"

	credentials "github.com/goliatone/go-credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterAccountHandler(t *testing.T) {
	store := &MockAccountStore{}
	sender := &MockMessageSender{}

	store.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, notFoundErr())
	store.On("FindByUsername", mock.Anything, "alice").Return(nil, notFoundErr())
	store.On("Create", mock.Anything, mock.AnythingOfType("*credentials.Account")).
		Return(func(ctx context.Context, record *credentials.Account) *credentials.Account {
			return record
		}, nil)
	sender.On("SendVerificationCode", mock.Anything, "alice@example.com", mock.Anything).Return(nil)

	handler := credentials.NewRegisterAccountHandler(newLifecycleForTest(store, sender, nil))

	var resp *credentials.RegisterAccountResponse
	err := handler.Execute(context.Background(), credentials.RegisterAccountMessage{
		Email:    "alice@example.com",
		Password: "correct horse battery",
		OnResponse: func(a *credentials.RegisterAccountResponse) {
			resp = a
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.AccountID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.Equal(t, credentials.AccountStatusPending, resp.Status)
}

func TestRegisterAccountHandlerDuplicate(t *testing.T) {
	store := &MockAccountStore{}
	sender := &MockMessageSender{}

	store.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(pendingAccount("old-code", testClock), nil)

	handler := credentials.NewRegisterAccountHandler(newLifecycleForTest(store, sender, nil))

	err := handler.Execute(context.Background(), credentials.RegisterAccountMessage{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.Error(t, err)
	assert.Equal(t, credentials.ErrDuplicateAccount.TextCode, richTextCode(t, err))
}

func TestRegisterAccountHandlerCancelledContext(t *testing.T) {
	handler := credentials.NewRegisterAccountHandler(newLifecycleForTest(&MockAccountStore{}, &MockMessageSender{}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := handler.Execute(ctx, credentials.RegisterAccountMessage{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResendVerificationHandler(t *testing.T) {
	store := &MockAccountStore{}
	sender := &MockMessageSender{}

	account := pendingAccount("old-code", testClock.Add(-2*time.Minute))
	store.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)
	store.On("Update", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, record *credentials.Account) *credentials.Account {
			return record
		}, nil)
	sender.On("SendVerificationCode", mock.Anything, "alice@example.com", mock.Anything).Return(nil)

	handler := credentials.NewResendVerificationHandler(newLifecycleForTest(store, sender, nil))

	var resp *credentials.ResendVerificationResponse
	err := handler.Execute(context.Background(), credentials.ResendVerificationMessage{
		Email: "alice@example.com",
		OnResponse: func(a *credentials.ResendVerificationResponse) {
			resp = a
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp)
	assert.True(t, resp.Sent)
	assert.False(t, resp.Throttled)
}

func TestResendVerificationHandlerThrottled(t *testing.T) {
	store := &MockAccountStore{}
	sender := &MockMessageSender{}

	// last code went out seconds ago, well inside the cooldown
	account := pendingAccount("old-code", testClock.Add(-10*time.Second))
	store.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)

	handler := credentials.NewResendVerificationHandler(newLifecycleForTest(store, sender, nil))

	var resp *credentials.ResendVerificationResponse
	err := handler.Execute(context.Background(), credentials.ResendVerificationMessage{
		Email: "alice@example.com",
		OnResponse: func(a *credentials.ResendVerificationResponse) {
			resp = a
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp)
	assert.False(t, resp.Sent)
	assert.True(t, resp.Throttled)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
