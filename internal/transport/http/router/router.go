package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fumble-dev/hire-me/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
}

type ResetHandler interface {
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
}

type NotifyHandler interface {
	ApplicationStatus(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Reset  ResetHandler
	Notify NotifyHandler

	// InternalSecret guards the /internal routes.
	InternalSecret string
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Reset == nil {
		return nil, fmt.Errorf("nil Reset handler")
	}
	if deps.Notify == nil {
		return nil, fmt.Errorf("nil Notify handler")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", deps.Health.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/forgot-password", deps.Reset.ForgotPassword)
	r.Patch("/reset-password/{token}", deps.Reset.ResetPassword)

	r.Route("/internal", func(r chi.Router) {
		r.Use(middleware.InternalAuth(deps.InternalSecret))
		r.Post("/notify/application-status", deps.Notify.ApplicationStatus)
	})

	return r, nil
}
