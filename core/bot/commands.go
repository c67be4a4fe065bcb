package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/scenario"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
	"github.com/m3rciful/todobot/core/telegram/format"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

func (h *Handlers) start(ctx context.Context, upd botport.Update, _ string) error {
	user, err := h.deps.Users.Get(ctx, upd.UserID)
	if err != nil {
		return err
	}
	if user != nil {
		return h.send(ctx, upd, fmt.Sprintf(ui.MsgAlreadyKnown, user.TelegramUserName), ui.Authorized())
	}
	user, err = h.deps.Users.Register(ctx, upd.UserID, upd.Username)
	if errors.Is(err, domain.ErrUserExists) {
		return h.send(ctx, upd, fmt.Sprintf(ui.MsgAlreadyKnown, upd.Username), ui.Authorized())
	}
	if err != nil {
		return err
	}
	return h.send(ctx, upd, fmt.Sprintf(ui.MsgWelcome, user.TelegramUserName), ui.Authorized())
}

func (h *Handlers) help(ctx context.Context, upd botport.Update, _ string) error {
	user, err := h.deps.Users.Get(ctx, upd.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return h.send(ctx, upd, ui.HelpText(false), ui.Unauthorized())
	}
	return h.send(ctx, upd, ui.HelpText(true), ui.Authorized())
}

func (h *Handlers) info(ctx context.Context, upd botport.Update, _ string) error {
	user, err := h.deps.Users.Get(ctx, upd.UserID)
	if err != nil {
		return err
	}
	version := h.deps.Version
	if version == "" {
		version = "dev"
	}
	text := fmt.Sprintf(ui.MsgInfo, version)
	if user == nil {
		return h.send(ctx, upd, text+"\n"+ui.MsgRegisterHint, ui.Unauthorized())
	}
	return h.send(ctx, upd, text, ui.Authorized())
}

func (h *Handlers) addTask(ctx context.Context, upd botport.Update, _ string) error {
	return h.deps.Scenarios.Start(ctx, scenario.KindAddTask, upd)
}

// removeTask deletes the n-th active task, counting from 1 by creation time.
func (h *Handlers) removeTask(ctx context.Context, upd botport.Update, args string) error {
	user, err := h.user(ctx, upd)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 1 {
		return h.send(ctx, upd, ui.MsgRemoveTaskUsage, ui.Authorized())
	}
	active, err := h.deps.Tasks.Active(ctx, user.ID)
	if err != nil {
		return err
	}
	if n > len(active) {
		if len(active) == 0 {
			return h.send(ctx, upd, ui.MsgNoTasksToRemove, ui.Authorized())
		}
		return h.send(ctx, upd, fmt.Sprintf(ui.MsgTaskNumberRange, len(active)), ui.Authorized())
	}
	task := active[n-1]
	if err := h.deps.Tasks.Delete(ctx, user.ID, task.ID); err != nil {
		return err
	}
	return h.send(ctx, upd, fmt.Sprintf(ui.MsgTaskDeleted, format.MD(task.Name)), ui.Markdown(ui.Authorized()))
}

func (h *Handlers) show(ctx context.Context, upd botport.Update, _ string) error {
	user, err := h.user(ctx, upd)
	if err != nil {
		return err
	}
	lists, err := h.deps.Lists.ByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	return h.send(ctx, upd, ui.MsgChooseList, ui.Inline(ui.ListSelectionKeyboard(lists, true)))
}

func (h *Handlers) completeTask(ctx context.Context, upd botport.Update, args string) error {
	user, err := h.user(ctx, upd)
	if err != nil {
		return err
	}
	id, err := callbacks.PayloadUUID(args)
	if err != nil {
		return h.send(ctx, upd, ui.MsgCompleteUsage, ui.Authorized())
	}
	task, err := h.deps.Tasks.MarkCompleted(ctx, user.ID, id)
	if err != nil {
		return err
	}
	return h.send(ctx, upd, fmt.Sprintf(ui.MsgTaskCompleted, format.MD(task.Name)), ui.Markdown(ui.Authorized()))
}

func (h *Handlers) report(ctx context.Context, upd botport.Update, _ string) error {
	user, err := h.user(ctx, upd)
	if err != nil {
		return err
	}
	st, err := h.deps.Reports.Stats(ctx, user.ID)
	if err != nil {
		return err
	}
	return h.send(ctx, upd, ui.Report(st), ui.Authorized())
}

func (h *Handlers) find(ctx context.Context, upd botport.Update, args string) error {
	user, err := h.user(ctx, upd)
	if err != nil {
		return err
	}
	prefix := strings.TrimSpace(args)
	if prefix == "" {
		return h.send(ctx, upd, ui.MsgFindUsage, ui.Authorized())
	}
	tasks, err := h.deps.Tasks.Find(ctx, user.ID, prefix)
	if err != nil {
		return err
	}
	logger.Debug(ctx, "bot", "tasks.find",
		slog.String("status", "ok"),
		slog.Int("found", len(tasks)),
	)
	if len(tasks) == 0 {
		return h.send(ctx, upd, fmt.Sprintf(ui.MsgNothingFound, format.MD(prefix)), ui.Markdown(ui.Authorized()))
	}
	return h.send(ctx, upd, ui.FoundTasks(tasks), ui.Markdown(ui.Authorized()))
}

// cancel only runs when no conversation is active; the scenario dispatcher
// consumes /cancel otherwise.
func (h *Handlers) cancel(ctx context.Context, upd botport.Update, _ string) error {
	return h.send(ctx, upd, ui.MsgNothingToCancel, ui.Authorized())
}

func (h *Handlers) fallback(ctx context.Context, upd botport.Update, _ string) error {
	user, err := h.deps.Users.Get(ctx, upd.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return h.send(ctx, upd, ui.MsgNotRegistered, ui.Unauthorized())
	}
	return h.send(ctx, upd, ui.MsgUnknownCommand, ui.Authorized())
}

// user resolves the sender or reports domain.ErrUserNotFound.
func (h *Handlers) user(ctx context.Context, upd botport.Update) (*domain.User, error) {
	user, err := h.deps.Users.Get(ctx, upd.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// send replies in the update's chat. A failed reply is logged; the handler
// itself succeeded.
func (h *Handlers) send(ctx context.Context, upd botport.Update, text string, opts botport.Options) error {
	if _, err := h.deps.Bot.SendMessage(ctx, upd.ChatID, text, opts); err != nil {
		logger.Warn(ctx, "bot", "bot.reply",
			append([]slog.Attr{slog.String("status", "fail")}, logger.ErrAttrs(err)...)...,
		)
	}
	return nil
}
