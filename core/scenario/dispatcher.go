package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// CancelCommand aborts the current conversation at any step.
const CancelCommand = "/cancel"

// ErrScenarioNotFound is returned when no registered scenario handles a context kind.
var ErrScenarioNotFound = errors.New("scenario not found")

// Hook observes update handling; text is the message text or callback data.
type Hook func(ctx context.Context, text string)

// Dispatcher routes updates of users with an active context to their scenario.
type Dispatcher struct {
	store     Store
	bot       botport.Port
	scenarios []Scenario
	now       func() time.Time

	// OnUpdateStarted runs before an update is processed.
	OnUpdateStarted Hook
	// OnUpdateCompleted runs after an update is processed, even on failure.
	OnUpdateCompleted Hook
	// OnResult observes every scenario step outcome.
	OnResult func(kind Kind, res Result)
}

// NewDispatcher builds a Dispatcher over store and scenarios.
func NewDispatcher(store Store, bot botport.Port, scenarios ...Scenario) *Dispatcher {
	return &Dispatcher{
		store:     store,
		bot:       bot,
		scenarios: scenarios,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes upd if it belongs to a conversation. handled is false when
// the user has no active context and the update is not a cancel request.
func (d *Dispatcher) Handle(ctx context.Context, upd botport.Update) (handled bool, err error) {
	text := eventText(upd)
	if d.OnUpdateStarted != nil {
		d.OnUpdateStarted(ctx, text)
	}
	defer func() {
		if d.OnUpdateCompleted != nil {
			d.OnUpdateCompleted(ctx, text)
		}
	}()

	sc, err := d.store.Get(ctx, upd.UserID)
	if err != nil {
		return false, fmt.Errorf("load scenario context: %w", err)
	}

	if isCancel(upd) {
		return true, d.cancel(ctx, sc, upd)
	}
	if sc == nil {
		return false, nil
	}

	if cb, ok := upd.Callback(); ok && !acceptsSkip(sc) {
		if action, _ := callbacks.Parse(cb.Data); action == callbacks.ActionSkip {
			d.answer(ctx, cb.ID)
			return true, nil
		}
	}
	return true, d.run(ctx, sc, upd)
}

// Start begins a new conversation of kind for the update's user, replacing any
// previous one, and runs its first step.
func (d *Dispatcher) Start(ctx context.Context, kind Kind, upd botport.Update) error {
	sc := NewContext(kind, upd.UserID, upd.ChatID, d.now())
	if err := d.store.Set(ctx, sc); err != nil {
		return fmt.Errorf("store scenario context: %w", err)
	}
	logger.Info(ctx, "scenario", "scenario.start",
		slog.String("status", "ok"),
		slog.String("kind", string(kind)),
	)
	return d.run(ctx, sc, upd)
}

func (d *Dispatcher) run(ctx context.Context, sc *Context, upd botport.Update) error {
	scn := d.find(sc.Kind)
	if scn == nil {
		err := fmt.Errorf("%w: %s", ErrScenarioNotFound, sc.Kind)
		logger.Error(ctx, "scenario", "scenario.lookup",
			append([]slog.Attr{slog.String("status", "fail"), slog.String("kind", string(sc.Kind))},
				logger.ErrAttrs(err)...)...,
		)
		_ = d.store.Reset(ctx, sc.UserID)
		d.send(ctx, upd.ChatID, ui.MsgScenarioNotFound, ui.Authorized())
		return err
	}

	res := scn.HandleStep(ctx, sc, upd)
	if d.OnResult != nil {
		d.OnResult(sc.Kind, res)
	}

	switch res {
	case Completed:
		if err := d.store.Reset(ctx, sc.UserID); err != nil {
			return fmt.Errorf("reset scenario context: %w", err)
		}
		d.send(ctx, upd.ChatID, ui.MsgActionCompleted, ui.Authorized())
		logger.Info(ctx, "scenario", "scenario.completed",
			slog.String("status", "ok"),
			slog.String("kind", string(sc.Kind)),
		)
	default:
		if err := d.store.Set(ctx, sc); err != nil {
			return fmt.Errorf("store scenario context: %w", err)
		}
		if sc.Started() {
			d.send(ctx, upd.ChatID, ui.MsgCancelHint, ui.Cancel())
		}
	}
	return nil
}

func (d *Dispatcher) cancel(ctx context.Context, sc *Context, upd botport.Update) error {
	if sc == nil {
		d.send(ctx, upd.ChatID, ui.MsgNothingToCancel, ui.Authorized())
		return nil
	}
	if err := d.store.Reset(ctx, upd.UserID); err != nil {
		return fmt.Errorf("reset scenario context: %w", err)
	}
	logger.Info(ctx, "scenario", "scenario.cancelled",
		slog.String("status", "cancelled"),
		slog.String("kind", string(sc.Kind)),
		slog.String("step", sc.Step()),
	)
	d.send(ctx, upd.ChatID, ui.MsgActionCancelled, ui.Authorized())
	return nil
}

func (d *Dispatcher) find(kind Kind) Scenario {
	for _, s := range d.scenarios {
		if s.CanHandle(kind) {
			return s
		}
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, opts botport.Options) {
	send(ctx, d.bot, chatID, text, opts)
}

func (d *Dispatcher) answer(ctx context.Context, callbackID string) {
	if err := d.bot.AnswerCallback(ctx, callbackID, ""); err != nil {
		logger.Debug(ctx, "scenario", "scenario.answer",
			append([]slog.Attr{slog.String("status", "fail")}, logger.ErrAttrs(err)...)...,
		)
	}
}

func isCancel(upd botport.Update) bool {
	text, ok := upd.Text()
	return ok && strings.EqualFold(text, CancelCommand)
}

// acceptsSkip reports whether a skip button press is meaningful for sc.
func acceptsSkip(sc *Context) bool {
	return sc.AddTask != nil && sc.AddTask.Step == AddTaskDeadline
}

func eventText(upd botport.Update) string {
	if text, ok := upd.Text(); ok {
		return text
	}
	if cb, ok := upd.Callback(); ok {
		return cb.Data
	}
	return ""
}
