package credentials

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type RegisterAccountMessage struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(a *RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

type RegisterAccountResponse struct {
	AccountID string        `json:"account_id" example:"350399bc-c095-4bdc-a59c-3352d44848e4" doc:"Identifier of the new account."`
	Username  string        `json:"username" example:"alice" doc:"Username of the new account."`
	Email     string        `json:"email" example:"alice@example.com" doc:"Email the verification code was sent to."`
	Status    AccountStatus `json:"status" example:"pending" doc:"Lifecycle status of the account."`
}

type RegisterAccountHandler struct {
	lifecycle CredentialLifecycle
}

func NewRegisterAccountHandler(lifecycle CredentialLifecycle) *RegisterAccountHandler {
	return &RegisterAccountHandler{lifecycle: lifecycle}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.lifecycle.Register(ctx, RegisterInput{
		Username:  event.Username,
		Email:     event.Email,
		Phone:     event.Phone,
		Password:  event.Password,
		UseHashid: event.UseHashid,
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterAccountResponse{
			AccountID: account.ID.String(),
			Username:  account.Username,
			Email:     account.Email,
			Status:    account.Status(),
		})
	}

	return nil
}
