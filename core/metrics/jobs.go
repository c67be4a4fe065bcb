package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(jobRuns, jobDuration, notificationsScheduled, notificationsDelivered)
}

var (
	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobot_job_runs_total",
			Help: "Background task runs, by task and status.",
		},
		[]string{"task", "status"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todobot_job_duration_seconds",
			Help:    "Background task run duration.",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60},
		},
		[]string{"task"},
	)

	notificationsScheduled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobot_notifications_scheduled_total",
			Help: "Notification schedule attempts, by kind and outcome.",
		},
		[]string{"kind", "outcome"}, // outcome: added|duplicate
	)

	notificationsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobot_notifications_delivered_total",
			Help: "Notification deliveries, by status.",
		},
		[]string{"status"},
	)
)

// ObserveJobRun records one background task run. It matches scheduler.RunHook.
func ObserveJobRun(task string, took time.Duration, err error) {
	jobRuns.WithLabelValues(norm(task), status(err)).Inc()
	jobDuration.WithLabelValues(norm(task)).Observe(took.Seconds())
}

// IncNotificationScheduled counts one schedule attempt.
func IncNotificationScheduled(kind string, added bool) {
	outcome := "duplicate"
	if added {
		outcome = "added"
	}
	notificationsScheduled.WithLabelValues(norm(kind), outcome).Inc()
}

// IncNotificationDelivered counts one delivery attempt.
func IncNotificationDelivered(err error) {
	notificationsDelivered.WithLabelValues(status(err)).Inc()
}
