package router

import (
	tg "github.com/m3rciful/todobot/core/telegram"
	"github.com/m3rciful/todobot/core/telegram/botport"
	tghelpers "github.com/m3rciful/todobot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Routes binds the router to telebot endpoints. Commands arrive through OnText
// because no per-command endpoints are registered.
func Routes(r *Router) []tg.Route {
	handler := func(c tele.Context) error {
		return r.Route(tghelpers.BuildContext(c), FromTele(c))
	}
	endpoints := []string{
		tele.OnText,
		tele.OnCallback,
		tele.OnMedia,
		tele.OnSticker,
		tele.OnLocation,
		tele.OnContact,
	}
	routes := make([]tg.Route, 0, len(endpoints))
	for _, ep := range endpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: handler})
	}
	return routes
}

// FromTele normalises a telebot update. Messages without text carry a nil Event.
func FromTele(c tele.Context) botport.Update {
	upd := c.Update()
	out := botport.Update{UpdateID: upd.ID}
	if sender := c.Sender(); sender != nil {
		out.UserID = sender.ID
		out.Username = sender.Username
	}
	out.ChatID = out.UserID
	if chat := c.Chat(); chat != nil {
		out.ChatID = chat.ID
	}

	switch {
	case upd.Callback != nil:
		cb := upd.Callback
		data := cb.Data
		if cb.Unique != "" {
			data = cb.Unique + "|" + cb.Data
		}
		ev := botport.CallbackAction{ID: cb.ID, Data: data}
		if cb.Message != nil {
			ev.MessageID = cb.Message.ID
		}
		out.Event = ev
	case upd.Message != nil && upd.Message.Text != "":
		out.Event = botport.TextMessage{Text: upd.Message.Text}
	}
	return out
}
