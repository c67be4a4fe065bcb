package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/scenario"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
	"github.com/m3rciful/todobot/core/telegram/format"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// onShow renders the active tasks of one list (or of no list), each with
// complete and delete buttons.
func (h *Handlers) onShow(ctx context.Context, upd botport.Update, payload string) error {
	user, err := h.user(ctx, upd)
	if err != nil {
		return err
	}
	listID, err := callbacks.PayloadOptionalUUID(payload)
	if err != nil {
		return domain.ErrListNotFound
	}
	name := ui.MsgNoListName
	if listID != nil {
		list, err := h.deps.Lists.Get(ctx, user.ID, *listID)
		if err != nil {
			return err
		}
		name = list.Name
	}
	tasks, err := h.deps.Tasks.ActiveInList(ctx, user.ID, listID)
	if err != nil {
		return err
	}
	h.answer(ctx, upd, "")

	var b strings.Builder
	fmt.Fprintf(&b, ui.MsgListHeader, format.MD(name))
	if len(tasks) == 0 {
		b.WriteString("\n" + ui.MsgNoActiveTasks)
		return h.send(ctx, upd, b.String(), ui.Markdown(ui.Authorized()))
	}
	b.WriteString("\n" + ui.MsgActiveTasks)
	if err := h.send(ctx, upd, b.String(), ui.Markdown(ui.Authorized())); err != nil {
		return err
	}
	for i, t := range tasks {
		opts := ui.Markdown(ui.Inline(ui.TaskActionsKeyboard(t)))
		if err := h.send(ctx, upd, ui.TaskCard(t, i+1), opts); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) onCompleteTask(ctx context.Context, upd botport.Update, payload string) error {
	user, err := h.user(ctx, upd)
	if err != nil {
		return err
	}
	id, err := callbacks.PayloadUUID(payload)
	if err != nil {
		return domain.ErrTaskNotFound
	}
	task, err := h.deps.Tasks.MarkCompleted(ctx, user.ID, id)
	if err != nil {
		return err
	}
	h.answer(ctx, upd, ui.MsgCallbackComplete)
	h.edit(ctx, upd, fmt.Sprintf(ui.MsgTaskCompleted, format.MD(task.Name)), ui.Markdown(botport.Options{}))
	return nil
}

// onStart begins a scenario from a button; the scenario reads the payload itself.
func (h *Handlers) onStart(kind scenario.Kind) func(context.Context, botport.Update, string) error {
	return func(ctx context.Context, upd botport.Update, _ string) error {
		return h.deps.Scenarios.Start(ctx, kind, upd)
	}
}

// onSkip acknowledges a stale skip button; outside the deadline step it means nothing.
func (h *Handlers) onSkip(ctx context.Context, upd botport.Update, _ string) error {
	h.answer(ctx, upd, "")
	return nil
}

func (h *Handlers) answer(ctx context.Context, upd botport.Update, text string) {
	cb, ok := upd.Callback()
	if !ok || cb.ID == "" {
		return
	}
	if err := h.deps.Bot.AnswerCallback(ctx, cb.ID, text); err != nil {
		logger.Debug(ctx, "bot", "bot.answer",
			append([]slog.Attr{slog.String("status", "fail")}, logger.ErrAttrs(err)...)...,
		)
	}
}

// edit rewrites the message behind the pressed button, or sends a new one.
func (h *Handlers) edit(ctx context.Context, upd botport.Update, text string, opts botport.Options) {
	cb, ok := upd.Callback()
	if ok && cb.MessageID != 0 {
		_, err := h.deps.Bot.EditMessage(ctx, upd.ChatID, cb.MessageID, text, opts)
		if err == nil {
			return
		}
		logger.Warn(ctx, "bot", "bot.edit",
			append([]slog.Attr{slog.String("status", "fail")}, logger.ErrAttrs(err)...)...,
		)
	}
	_ = h.send(ctx, upd, text, opts)
}
