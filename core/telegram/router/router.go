// Package router turns normalised updates into scenario steps, commands and callback handlers.
package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/scenario"
	tg "github.com/m3rciful/todobot/core/telegram"
	"github.com/m3rciful/todobot/core/telegram/botport"
	tghelpers "github.com/m3rciful/todobot/core/telegram/helpers"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// Conversations consumes updates that belong to an active scenario.
type Conversations interface {
	Handle(ctx context.Context, upd botport.Update) (handled bool, err error)
}

// Users resolves registered users; a nil user means not registered.
type Users interface {
	Get(ctx context.Context, telegramID int64) (*domain.User, error)
}

// Router dispatches one update: active conversation first, then commands and
// callbacks from the registry, then fallbacks.
type Router struct {
	reg   *tg.Registry
	conv  Conversations
	users Users
	bot   botport.Port
}

// New builds a Router.
func New(reg *tg.Registry, conv Conversations, users Users, bot botport.Port) *Router {
	return &Router{reg: reg, conv: conv, users: users, bot: bot}
}

// Route handles upd. Errors the user already saw are logged and not returned.
func (r *Router) Route(ctx context.Context, upd botport.Update) error {
	ctx = tghelpers.ForUpdate(ctx, upd)
	start := time.Now()

	if upd.Event == nil {
		r.send(ctx, upd.ChatID, ui.MsgTextOnly, botport.Options{})
		logHandlerSummary(ctx, "unsupported", start, "skip", nil)
		return nil
	}

	if r.conv != nil {
		handled, err := r.conv.Handle(ctx, upd)
		if err != nil {
			logHandlerSummary(ctx, "scenario", start, "", err)
			// The dispatcher already told the user and dropped the context.
			if errors.Is(err, scenario.ErrScenarioNotFound) {
				return nil
			}
			r.send(ctx, upd.ChatID, ui.MsgGenericError, ui.Authorized())
			return err
		}
		if handled {
			logHandlerSummary(ctx, "scenario", start, "", nil)
			return nil
		}
	}

	switch ev := upd.Event.(type) {
	case botport.TextMessage:
		return r.routeText(ctx, upd, start)
	case botport.CallbackAction:
		return r.routeCallback(ctx, upd, ev, start)
	}
	return fmt.Errorf("router: unsupported event %T", upd.Event)
}

// registered reports whether the sender may use non-public handlers.
func (r *Router) registered(ctx context.Context, upd botport.Update) (bool, error) {
	if r.users == nil {
		return true, nil
	}
	u, err := r.users.Get(ctx, upd.UserID)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

func (r *Router) send(ctx context.Context, chatID int64, text string, opts botport.Options) {
	if _, err := r.bot.SendMessage(ctx, chatID, text, opts); err != nil {
		logSendFailure(ctx, err)
	}
}

func (r *Router) answer(ctx context.Context, callbackID, text string) {
	if err := r.bot.AnswerCallback(ctx, callbackID, text); err != nil {
		logSendFailure(ctx, err)
	}
}

// fail reports err to the user once. Business errors are swallowed after that.
func (r *Router) fail(ctx context.Context, upd botport.Update, err error) error {
	opts := ui.Authorized()
	if errors.Is(err, domain.ErrUserNotFound) {
		opts = ui.Unauthorized()
	}
	r.send(ctx, upd.ChatID, ui.ErrorText(err), opts)
	if domain.IsBusiness(err) {
		return nil
	}
	return err
}
