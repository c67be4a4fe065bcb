package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/service"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// Result tells the dispatcher what to do with the context after a step.
type Result int

const (
	// Transition keeps the (mutated) context for the next update.
	Transition Result = iota
	// Completed ends the conversation and drops the context.
	Completed
)

func (r Result) String() string {
	if r == Completed {
		return "completed"
	}
	return "transition"
}

// Scenario handles one step of a conversation per update.
type Scenario interface {
	Kind() Kind
	CanHandle(kind Kind) bool
	HandleStep(ctx context.Context, sc *Context, upd botport.Update) Result
}

// Deps are the collaborators shared by all scenarios.
type Deps struct {
	Users *service.UserService
	Tasks *service.TaskService
	Lists *service.ListService
	Bot   botport.Port
}

// All returns the four built-in scenarios.
func All(deps Deps) []Scenario {
	return []Scenario{
		NewAddTask(deps),
		NewDeleteTask(deps),
		NewAddList(deps),
		NewDeleteList(deps),
	}
}

type stepFunc func(ctx context.Context, sc *Context, upd botport.Update) (Result, error)

// guard runs a step and turns errors and panics into a single user message and Completed.
func guard(ctx context.Context, bot botport.Port, sc *Context, upd botport.Update, step stepFunc) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "scenario", "scenario.panic",
				slog.String("status", "fail"),
				slog.String("kind", string(sc.Kind)),
				slog.String("step", sc.Step()),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
			send(ctx, bot, upd.ChatID, ui.MsgGenericError, ui.Authorized())
			res = Completed
		}
	}()

	res, err := step(ctx, sc, upd)
	if err == nil {
		logger.Debug(ctx, "scenario", "scenario.step",
			slog.String("status", "ok"),
			slog.String("kind", string(sc.Kind)),
			slog.String("step", sc.Step()),
			slog.String("result", res.String()),
			slog.Duration("duration", logger.Took(start)),
		)
		return res
	}

	level := logger.Warn
	if !domain.IsBusiness(err) {
		level = logger.Error
	}
	attrs := append([]slog.Attr{
		slog.String("status", "fail"),
		slog.String("kind", string(sc.Kind)),
		slog.String("step", sc.Step()),
	}, logger.ErrAttrs(err)...)
	level(ctx, "scenario", "scenario.step", attrs...)
	opts := ui.Authorized()
	if errors.Is(err, domain.ErrUserNotFound) {
		opts = ui.Unauthorized()
	}
	send(ctx, bot, upd.ChatID, ui.ErrorText(err), opts)
	return Completed
}

// send delivers one message; delivery failures are logged and not returned
// so a flaky transport does not abort the conversation.
func send(ctx context.Context, bot botport.Port, chatID int64, text string, opts botport.Options) {
	if bot == nil {
		return
	}
	if _, err := bot.SendMessage(ctx, chatID, text, opts); err != nil {
		logger.Warn(ctx, "scenario", "scenario.send",
			append([]slog.Attr{slog.String("status", "fail")}, logger.ErrAttrs(err)...)...,
		)
	}
}

// edit rewrites the message behind a callback, falling back to a new message.
func edit(ctx context.Context, bot botport.Port, upd botport.Update, text string, opts botport.Options) {
	cb, ok := upd.Callback()
	if !ok || cb.MessageID == 0 {
		send(ctx, bot, upd.ChatID, text, opts)
		return
	}
	if _, err := bot.EditMessage(ctx, upd.ChatID, cb.MessageID, text, opts); err != nil {
		logger.Warn(ctx, "scenario", "scenario.edit",
			append([]slog.Attr{slog.String("status", "fail")}, logger.ErrAttrs(err)...)...,
		)
		send(ctx, bot, upd.ChatID, text, opts)
	}
}

// answer acknowledges a callback press if the update carries one.
func answer(ctx context.Context, bot botport.Port, upd botport.Update, text string) {
	cb, ok := upd.Callback()
	if !ok || cb.ID == "" {
		return
	}
	if err := bot.AnswerCallback(ctx, cb.ID, text); err != nil {
		logger.Debug(ctx, "scenario", "scenario.answer",
			append([]slog.Attr{slog.String("status", "fail")}, logger.ErrAttrs(err)...)...,
		)
	}
}

// resolveUser loads the registered user or reports domain.ErrUserNotFound.
func resolveUser(ctx context.Context, users *service.UserService, telegramID int64) (*domain.User, error) {
	u, err := users.Get(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}
