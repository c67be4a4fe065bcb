package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/metrics"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// ResetScenarios drops every scenario context older than the configured timeout
// and tells its user. A failure for one user does not stop the sweep.
func (j *Jobs) ResetScenarios(ctx context.Context) error {
	timeout := j.cfg.ScenarioTimeout
	if timeout <= 0 {
		return nil
	}
	contexts, err := j.deps.Scenarios.List(ctx)
	if err != nil {
		return fmt.Errorf("scenario sweep: %w", err)
	}
	metrics.SetActiveScenarios(len(contexts))

	now := j.now()
	var errs []error
	reset := 0
	for _, sc := range contexts {
		if !sc.Expired(now, timeout) {
			continue
		}
		// The snapshot may be stale: the user could have started over since.
		cur, err := j.deps.Scenarios.Get(ctx, sc.UserID)
		if err != nil {
			errs = append(errs, j.userFailure(ctx, NameResetScenario, sc.UserID, err))
			continue
		}
		if cur == nil || !cur.CreatedAt.Equal(sc.CreatedAt) || !cur.Expired(now, timeout) {
			continue
		}
		if err := j.deps.Scenarios.Reset(ctx, sc.UserID); err != nil {
			errs = append(errs, j.userFailure(ctx, NameResetScenario, sc.UserID, err))
			continue
		}
		reset++
		metrics.IncScenarioTimeout()
		metrics.IncScenarioStep(string(sc.Kind), "timeout")
		chatID := sc.ChatID
		if chatID == 0 {
			chatID = sc.UserID
		}
		if _, err := j.deps.Bot.SendMessage(ctx, chatID, fmt.Sprintf(ui.MsgScenarioTimeout, timeout), ui.Authorized()); err != nil {
			errs = append(errs, j.userFailure(ctx, NameResetScenario, sc.UserID, err))
		}
	}
	if reset > 0 || len(errs) > 0 {
		logger.Info(ctx, "jobs", "scenario.sweep",
			slog.String("status", logger.Status(errors.Join(errs...))),
			slog.Int("contexts", len(contexts)),
			slog.Int("reset", reset),
		)
	}
	return errors.Join(errs...)
}
