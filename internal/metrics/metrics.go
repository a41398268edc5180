package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_published_total",
			Help: "Notification events handed to the broker, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	eventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_consumed_total",
			Help: "Notification events pulled off the send-mail queue",
		},
		[]string{"kind", "outcome"},
	)

	mailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_mails_sent_total",
			Help: "Outbound emails dispatched successfully",
		},
		[]string{"kind"},
	)

	mailsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_mails_failed_total",
			Help: "Outbound email dispatch failures",
		},
		[]string{"kind", "reason"},
	)

	mailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_mail_send_duration_seconds",
			Help:    "Email dispatch duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"kind"},
	)

	resetRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_password_reset_requests_total",
			Help: "Password reset issuance and redemption attempts",
		},
		[]string{"op", "outcome"},
	)
)

func EventPublished(kind string)       { eventsPublishedTotal.WithLabelValues(kind, "ok").Inc() }
func EventPublishFailed(kind string)   { eventsPublishedTotal.WithLabelValues(kind, "degraded").Inc() }
func EventConsumed(kind string)        { eventsConsumedTotal.WithLabelValues(kind, "ok").Inc() }
func EventSkipped(kind, reason string) { eventsConsumedTotal.WithLabelValues(kind, reason).Inc() }

func MailSent(kind string, took time.Duration) {
	mailsSentTotal.WithLabelValues(kind).Inc()
	mailSendDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func MailFailed(kind, reason string) { mailsFailedTotal.WithLabelValues(kind, reason).Inc() }

func ResetOp(op, outcome string) { resetRequestsTotal.WithLabelValues(op, outcome).Inc() }
