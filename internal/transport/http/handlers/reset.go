package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fumble-dev/hire-me/internal/domain"
	"github.com/fumble-dev/hire-me/internal/logger"
	"github.com/fumble-dev/hire-me/internal/transport/http/dto"
	"github.com/fumble-dev/hire-me/internal/transport/http/response"
)

// Responses on these two endpoints are deliberately uniform flat
// {"message"} bodies: the forgot endpoint never reveals whether the account
// exists, and the reset endpoint never reveals which check rejected the
// token. Validation failures get their own fixed wording so a client can
// still correct its input.
const (
	msgForgotAccepted = "If the account exists, a reset link has been sent to the email."
	msgBadEmail       = "A valid email is required."
	msgResetDone      = "Password has been reset."
	msgBadPassword    = "Password must be at least 8 characters."
	msgResetRejected  = "Invalid or expired reset token."
)

// ResetCoordinator is the slice of the reset application service the HTTP
// layer needs.
type ResetCoordinator interface {
	Request(ctx context.Context, email string)
	Redeem(ctx context.Context, token, newPassword string) error
}

type ResetHandler struct {
	svc ResetCoordinator
}

func NewResetHandler(svc ResetCoordinator) *ResetHandler {
	return &ResetHandler{svc: svc}
}

// ForgotPassword handles POST /forgot-password. Any syntactically valid
// request gets the same 200 regardless of account existence.
func (h *ResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Message(w, http.StatusBadRequest, msgBadEmail)
		return
	}
	if err := dto.Validate(req); err != nil {
		response.Message(w, http.StatusBadRequest, msgBadEmail)
		return
	}

	h.svc.Request(r.Context(), req.Email)
	response.Message(w, http.StatusOK, msgForgotAccepted)
}

// ResetPassword handles PATCH /reset-password/{token}. Every token
// rejection collapses into one 400; the precise cause goes to the log only.
func (h *ResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Message(w, http.StatusBadRequest, msgBadPassword)
		return
	}
	if err := dto.Validate(req); err != nil {
		response.Message(w, http.StatusBadRequest, msgBadPassword)
		return
	}

	if err := h.svc.Redeem(r.Context(), token, req.Password); err != nil {
		var de *domain.Error
		if errors.As(err, &de) && de.Kind == domain.KindValidation {
			response.Message(w, http.StatusBadRequest, msgBadPassword)
			return
		}
		logger.WithCtx(r.Context()).Warn().Err(err).Msg("reset redemption rejected")
		response.Message(w, http.StatusBadRequest, msgResetRejected)
		return
	}

	response.Message(w, http.StatusOK, msgResetDone)
}
