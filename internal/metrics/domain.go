package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobportal",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		},
		[]string{"result"},
	)

	applicationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jobportal",
			Subsystem: "jobs",
			Name:      "applications_submitted_total",
			Help:      "Applications created.",
		},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobportal",
			Subsystem: "storage",
			Name:      "uploads_total",
			Help:      "Multipart uploads by kind and outcome.",
		},
		[]string{"kind", "result"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobportal",
			Subsystem: "mail",
			Name:      "emails_sent_total",
			Help:      "Outbound emails by outcome.",
		},
		[]string{"result"},
	)
)

// Outcome labels shared by the domain counters.
const (
	ResultOK        = "ok"
	ResultFailed    = "failed"
	ResultRejected  = "rejected"
	ResultThrottled = "throttled"
)

func ObserveLogin(result string)        { loginAttempts.WithLabelValues(result).Inc() }
func ObserveApplicationSubmitted()      { applicationsSubmitted.Inc() }
func ObserveUpload(kind, result string) { uploadsTotal.WithLabelValues(kind, result).Inc() }
func ObserveEmail(result string)        { emailsSent.WithLabelValues(result).Inc() }

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
