package middleware

import (
	"time"

	"github.com/m3rciful/todobot/core/metrics"

	tele "gopkg.in/telebot.v4"
)

// UpdateKind names the update type for logs, metrics and rate limit exclusions.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// MetricsMiddleware records the outcome and latency of every update.
func MetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		err := next(c)
		status := "ok"
		if err != nil {
			status = "fail"
		}
		metrics.ObserveUpdate(UpdateKind(c.Update()), status, time.Since(start))
		return err
	}
}
