package router

import (
	"context"
	"strings"
	"time"

	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/commands"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

func (r *Router) routeText(ctx context.Context, upd botport.Update, start time.Time) error {
	text, _ := upd.Text()

	if name, args, ok := commands.Split(text); ok {
		if key, cmd, found := r.reg.LookupCommand(name); found {
			handler := normalizeHandlerName(key)
			if !cmd.Public {
				ok, err := r.registered(ctx, upd)
				if err != nil {
					logHandlerSummary(ctx, handler, start, "", err)
					return r.fail(ctx, upd, err)
				}
				if !ok {
					r.send(ctx, upd.ChatID, ui.MsgNotRegistered, ui.Unauthorized())
					logHandlerSummary(ctx, handler, start, "unregistered", nil)
					return nil
				}
			}
			return r.handle(ctx, upd, handler, start, func(ctx context.Context) error {
				return cmd.Handler(ctx, upd, args)
			})
		}
	}

	if fb := r.reg.TextFallback(); fb != nil {
		return r.handle(ctx, upd, "fallback", start, func(ctx context.Context) error {
			return fb(ctx, upd, text)
		})
	}

	r.send(ctx, upd.ChatID, ui.MsgUnknownCommand, ui.Authorized())
	logHandlerSummary(ctx, "unknown_text", start, "skip", nil)
	return nil
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}
