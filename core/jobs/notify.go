package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/metrics"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// Deadlines schedules a reminder for every active task whose deadline fell on
// the previous UTC day.
func (j *Jobs) Deadlines(ctx context.Context) error {
	now := j.now()
	today := domain.DayStart(now)
	yesterday := today.AddDate(0, 0, -1)

	users, err := j.deps.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("deadline sweep: %w", err)
	}
	var errs []error
	scheduled := 0
	for _, u := range users {
		tasks, err := j.deps.Tasks.ActiveWithDeadline(ctx, u.ID, yesterday, today)
		if err != nil {
			errs = append(errs, j.userFailure(ctx, NameDeadline, u.TelegramUserID, err))
			continue
		}
		for _, t := range tasks {
			added, err := j.deps.Notifications.Schedule(ctx, u.ID, TypeDeadline+t.ID.String(),
				fmt.Sprintf(ui.MsgDeadlineMissed, t.Name), now)
			if err != nil {
				errs = append(errs, j.userFailure(ctx, NameDeadline, u.TelegramUserID, err))
				continue
			}
			metrics.IncNotificationScheduled(NameDeadline, added)
			if added {
				scheduled++
			}
		}
	}
	logger.Info(ctx, "jobs", "deadline.sweep",
		slog.String("status", logger.Status(errors.Join(errs...))),
		slog.Int("users", len(users)),
		slog.Int("scheduled", scheduled),
	)
	return errors.Join(errs...)
}

// Today schedules one digest per user listing the tasks due today.
func (j *Jobs) Today(ctx context.Context) error {
	now := j.now()
	start := domain.DayStart(now)
	end := start.AddDate(0, 0, 1)
	typ := TypeToday + start.Format("2006-01-02")

	users, err := j.deps.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("today sweep: %w", err)
	}
	var errs []error
	scheduled := 0
	for _, u := range users {
		tasks, err := j.deps.Tasks.ActiveWithDeadline(ctx, u.ID, start, end)
		if err != nil {
			errs = append(errs, j.userFailure(ctx, NameToday, u.TelegramUserID, err))
			continue
		}
		if len(tasks) == 0 {
			continue
		}
		added, err := j.deps.Notifications.Schedule(ctx, u.ID, typ, TodayDigest(tasks), now)
		if err != nil {
			errs = append(errs, j.userFailure(ctx, NameToday, u.TelegramUserID, err))
			continue
		}
		metrics.IncNotificationScheduled(NameToday, added)
		if added {
			scheduled++
		}
	}
	logger.Info(ctx, "jobs", "today.sweep",
		slog.String("status", logger.Status(errors.Join(errs...))),
		slog.Int("users", len(users)),
		slog.Int("scheduled", scheduled),
	)
	return errors.Join(errs...)
}

// TodayDigest renders the daily task list. Times are shown only for deadlines
// that are not at midnight.
func TodayDigest(tasks []domain.Task) string {
	var b strings.Builder
	b.WriteString(ui.MsgTodayHeader)
	for _, t := range tasks {
		b.WriteString("\n• ")
		b.WriteString(t.Name)
		if t.Deadline != nil && !t.Deadline.Equal(domain.DayStart(*t.Deadline)) {
			b.WriteString("\n  🕘 ")
			b.WriteString(t.Deadline.UTC().Format("15:04"))
		}
	}
	return b.String()
}

// Deliver sends due notifications and marks each one after a successful send.
// A failed send leaves the notification pending for the next sweep.
func (j *Jobs) Deliver(ctx context.Context) error {
	due, err := j.deps.Notifications.Due(ctx, j.now())
	if err != nil {
		return fmt.Errorf("delivery sweep: %w", err)
	}
	var errs []error
	sent := 0
	for _, n := range due {
		if err := j.limiter.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("delivery throttle: %w", err))
			break
		}
		if n.TelegramUserID == 0 {
			logger.Warn(ctx, "jobs", "notification.deliver",
				slog.String("status", "skip"),
				slog.String("notification_id", n.ID.String()),
				slog.String("reason", "no_chat"),
			)
			continue
		}
		_, err := j.deps.Bot.SendMessage(ctx, n.TelegramUserID, n.Text, botport.Options{})
		metrics.IncNotificationDelivered(err)
		if err != nil {
			errs = append(errs, j.userFailure(ctx, NameNotification, n.TelegramUserID,
				fmt.Errorf("send %s: %w", n.Type, err)))
			continue
		}
		if err := j.deps.Notifications.MarkNotified(ctx, n.ID, j.now()); err != nil {
			errs = append(errs, j.userFailure(ctx, NameNotification, n.TelegramUserID, err))
			continue
		}
		sent++
	}
	if len(due) > 0 {
		logger.Info(ctx, "jobs", "notification.sweep",
			slog.String("status", logger.Status(errors.Join(errs...))),
			slog.Int("due", len(due)),
			slog.Int("sent", sent),
		)
	}
	return errors.Join(errs...)
}

func (j *Jobs) userFailure(ctx context.Context, task string, telegramID int64, err error) error {
	logger.Warn(ctx, "jobs", task+".user",
		append([]slog.Attr{
			slog.String("status", "fail"),
			slog.Int64("user_id", telegramID),
		}, logger.ErrAttrs(err)...)...,
	)
	return fmt.Errorf("%s for user %d: %w", task, telegramID, err)
}
