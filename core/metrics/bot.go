package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(updatesTotal, updateDuration, messagesSent, senderRetries, buildInfo)
}

var (
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobot_updates_total",
			Help: "Telegram updates handled, by kind and status.",
		},
		[]string{"kind", "status"}, // kind: message|callback|other
	)

	updateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todobot_update_duration_seconds",
			Help:    "Time spent handling one update.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	messagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobot_messages_sent_total",
			Help: "Outgoing Telegram API calls, by operation and status.",
		},
		[]string{"op", "status"},
	)

	senderRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobot_sender_retries_total",
			Help: "Retries of outgoing Telegram calls, by error class.",
		},
		[]string{"class"},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "todobot_build_info",
			Help: "A constant metric labelled with the build version.",
		},
		[]string{"version"},
	)
)

// ObserveUpdate records one handled update.
func ObserveUpdate(kind, status string, took time.Duration) {
	updatesTotal.WithLabelValues(norm(kind), norm(status)).Inc()
	updateDuration.WithLabelValues(norm(kind)).Observe(took.Seconds())
}

// IncMessage counts one outgoing API call.
func IncMessage(op string, err error) {
	messagesSent.WithLabelValues(norm(op), status(err)).Inc()
}

// IncSenderRetry counts one retried outgoing call.
func IncSenderRetry(class string) {
	senderRetries.WithLabelValues(norm(class)).Inc()
}

// SetBuildInfo publishes the running version.
func SetBuildInfo(version string) {
	buildInfo.WithLabelValues(norm(version)).Set(1)
}

func status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}
