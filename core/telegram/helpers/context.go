package helpers

import (
	"context"

	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/telegram/botport"

	tele "gopkg.in/telebot.v4"
)

const contextKey = "logger_ctx"

// StoreContext attaches reusable context to tele.Context for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// ContextFrom telegram context if previously stored by middleware.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	if v := c.Get(contextKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx, true
		}
	}
	return nil, false
}

// BuildContext constructs a context.Context from tele.Context,
// enriching it with RID and update/user/chat metadata for consistent service logging.
func BuildContext(c tele.Context) context.Context {
	if cached, ok := ContextFrom(c); ok {
		return cached
	}

	upd := c.Update()
	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}

	rid, _ := c.Get("rid").(string)
	ctx := WithUpdate(context.Background(), rid, upd.ID, userID, chatID)
	StoreContext(c, ctx)
	return ctx
}

// ForUpdate returns ctx enriched with the metadata of upd unless it already carries a RID.
func ForUpdate(ctx context.Context, upd botport.Update) context.Context {
	if logger.RIDFrom(ctx) != "" {
		return ctx
	}
	return WithUpdate(ctx, "", upd.UpdateID, upd.UserID, upd.ChatID)
}

// WithUpdate attaches RID and update metadata; an empty rid is derived from the ids.
func WithUpdate(ctx context.Context, rid string, updateID int, userID, chatID int64) context.Context {
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}
	ctx = logger.WithRID(ctx, rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	return logger.WithLogger(ctx, logger.Component("tg"))
}

// WithHandler enriches stored context with handler metadata for downstream logs.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}
