package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

func (r *Router) routeCallback(ctx context.Context, upd botport.Update, cb botport.CallbackAction, start time.Time) error {
	action, payload := callbacks.Parse(cb.Data)
	name := "callback." + normalizeHandlerName(action)
	extras := []slog.Attr{slog.String("cb_key", logger.SanitizeLimit(action, 64))}

	handler, ok := r.reg.GetCallback(action)
	if !ok || handler == nil {
		r.answer(ctx, cb.ID, ui.MsgUnknownAction)
		logHandlerSummary(ctx, name, start, "not_found", nil, extras...)
		return nil
	}

	registered, err := r.registered(ctx, upd)
	if err != nil {
		logHandlerSummary(ctx, name, start, "", err, extras...)
		return r.fail(ctx, upd, err)
	}
	if !registered {
		r.answer(ctx, cb.ID, "")
		r.send(ctx, upd.ChatID, ui.MsgRegisterFirst, ui.Unauthorized())
		logHandlerSummary(ctx, name, start, "unregistered", nil, extras...)
		return nil
	}

	return r.handle(ctx, upd, name, start, func(ctx context.Context) error {
		return handler(ctx, upd, payload)
	}, extras...)
}
