package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/m3rciful/todobot/core/logger"
)

// Notifier receives process lifecycle transitions.
type Notifier interface {
	// Ready is called once the bot accepts updates; ctx ends with the process.
	Ready(ctx context.Context)
	Stopping()
}

// Systemd speaks the sd_notify protocol. Outside a systemd unit every call is a no-op.
type Systemd struct{}

// Ready sends READY=1 and, when the unit sets WatchdogSec, keeps pinging the
// watchdog at half the configured interval until ctx is done.
func (Systemd) Ready(ctx context.Context) {
	if !sdNotify(daemon.SdNotifyReady) {
		return
	}
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval / 2)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sdNotify(daemon.SdNotifyWatchdog)
			}
		}
	}()
}

// Stopping sends STOPPING=1.
func (Systemd) Stopping() {
	sdNotify(daemon.SdNotifyStopping)
}

func sdNotify(state string) bool {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logger.Warn(logger.Background(), "app", "systemd.notify",
			append([]slog.Attr{slog.String("status", "fail"), slog.String("state", state)}, logger.ErrAttrs(err)...)...,
		)
		return false
	}
	return sent
}
