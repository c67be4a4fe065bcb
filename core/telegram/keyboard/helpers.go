package keyboard

import (
	"github.com/m3rciful/todobot/core/telegram/botport"

	tele "gopkg.in/telebot.v4"
)

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// InlineButtonsRows builds an inline keyboard. Button data is sent verbatim so
// callbacks arrive as plain action|payload strings.
func InlineButtonsRows(kb botport.Keyboard) *tele.ReplyMarkup {
	inline := make([][]tele.InlineButton, 0, len(kb))
	for _, row := range kb {
		r := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			r = append(r, tele.InlineButton{Text: btn.Text, Data: btn.Data})
		}
		inline = append(inline, r)
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}

// Markup converts port options to a telebot reply markup; nil when there is none.
func Markup(opts botport.Options) *tele.ReplyMarkup {
	switch {
	case len(opts.Keyboard) > 0:
		return InlineButtonsRows(opts.Keyboard)
	case len(opts.ReplyKeyboard) > 0:
		return ReplyButtons(opts.ReplyKeyboard...)
	case opts.RemoveReplyKeyboard:
		return RemoveKeyboard()
	}
	return nil
}

// SendOptions converts port options to telebot send options.
func SendOptions(opts botport.Options) *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:   tele.ParseMode(opts.ParseMode),
		ReplyMarkup: Markup(opts),
	}
}
