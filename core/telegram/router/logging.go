package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/telegram/botport"
)

func (r *Router) handle(ctx context.Context, upd botport.Update, handlerName string, start time.Time, fn func(context.Context) error, extras ...slog.Attr) error {
	ctx = logger.WithHandler(ctx, handlerName)
	err := fn(ctx)
	logHandlerSummary(ctx, handlerName, start, "", err, extras...)
	if err != nil {
		return r.fail(ctx, upd, err)
	}
	return nil
}

func logHandlerSummary(ctx context.Context, handlerName string, start time.Time, outcome string, err error, extras ...slog.Attr) {
	status := logger.Status(err)
	if outcome == "" {
		outcome = status
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.String("outcome", outcome),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs, logger.ErrAttrs(err)...)
		attrs = append(attrs, slog.String("cause", handlerName))
	}
	attrs = append(attrs, extras...)
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
}

func logSendFailure(ctx context.Context, err error) {
	logger.Warn(ctx, "tg", "handler.reply",
		append([]slog.Attr{slog.String("status", "fail")}, logger.ErrAttrs(err)...)...,
	)
}
