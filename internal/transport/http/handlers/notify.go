package handlers

import (
	"context"
	"net/http"

	"github.com/fumble-dev/hire-me/internal/logger"
	"github.com/fumble-dev/hire-me/internal/transport/http/dto"
	"github.com/fumble-dev/hire-me/internal/transport/http/response"
)

type StatusNotifier interface {
	ApplicationStatusChanged(ctx context.Context, to, jobTitle string) error
}

// NotifyHandler fronts the internal notification endpoints. Callers are
// other services behind the InternalAuth middleware, never end users.
type NotifyHandler struct {
	svc StatusNotifier
}

func NewNotifyHandler(svc StatusNotifier) *NotifyHandler {
	return &NotifyHandler{svc: svc}
}

// ApplicationStatus handles POST /internal/notify/application-status.
// The status change is already committed on the caller's side, so a
// degraded broker still answers 202: the notification is lost, not the
// state change, and the loss is visible in the metrics.
func (h *NotifyHandler) ApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusNotifyRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ApplicationStatusChanged(r.Context(), req.Email, req.JobTitle); err != nil {
		logger.WithCtx(r.Context()).Warn().Err(err).Msg("status notification not published")
	}
	response.Message(w, http.StatusAccepted, "Notification accepted.")
}
