package credentials

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ResendVerificationMessage struct {
	Email      string `json:"email" example:"alice@example.com" doc:"Email of the pending account."`
	OnResponse func(a *ResendVerificationResponse)
}

func (e ResendVerificationMessage) Type() string { return "account.verification.resend" }

type ResendVerificationResponse struct {
	Sent      bool     `json:"sent" example:"true" doc:"Was a fresh code delivered?"`
	Throttled bool     `json:"throttled" example:"false" doc:"Was the request throttled?"`
	Errors    []string `json:"errors" example:"['account not found']" doc:"Error messages."`
}

type ResendVerificationHandler struct {
	lifecycle CredentialLifecycle
}

func NewResendVerificationHandler(lifecycle CredentialLifecycle) *ResendVerificationHandler {
	return &ResendVerificationHandler{lifecycle: lifecycle}
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification resend")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	resp := &ResendVerificationResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	_, err := h.lifecycle.ResendVerificationCode(ctx, event.Email)
	if err != nil {
		// throttling is part of the expected flow, not an application error
		if hasTextCode(err, textCodeResendThrottled) {
			resp.Throttled = true
			if event.OnResponse != nil {
				event.OnResponse(resp)
			}
			return nil
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resend verification code")
	}

	resp.Sent = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
