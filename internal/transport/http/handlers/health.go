package handlers

import (
	"net/http"

	"github.com/fumble-dev/hire-me/internal/transport/http/response"
)

// BrokerStatus reports whether the event publisher currently holds a live
// broker connection.
type BrokerStatus interface {
	Degraded() bool
}

type HealthHandler struct {
	broker BrokerStatus
}

func NewHealthHandler(broker BrokerStatus) *HealthHandler {
	return &HealthHandler{broker: broker}
}

type healthBody struct {
	Status string `json:"status"`
	Broker string `json:"broker"`
}

// Healthz always answers 200 while the process serves traffic; a degraded
// broker shows up in the body, not the status code, so orchestrators do not
// restart an otherwise functional service.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	body := healthBody{Status: "ok", Broker: "ok"}
	if h.broker != nil && h.broker.Degraded() {
		body.Broker = "degraded"
	}
	response.WriteJSON(w, http.StatusOK, body)
}
