package telegram

import (
	"context"
	"errors"
	"strconv"

	"github.com/m3rciful/todobot/core/metrics"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/keyboard"
	tgsender "github.com/m3rciful/todobot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Adapter implements botport.Port on top of a telebot client. Sends and edits
// go through the retrying dispatcher inline; callback answers are queued.
type Adapter struct {
	bot    *tele.Bot
	sender *tgsender.Dispatcher
}

var _ botport.Port = (*Adapter)(nil)

// NewAdapter wraps bot. A nil sender calls the API directly without retries.
func NewAdapter(bot *tele.Bot, sender *tgsender.Dispatcher) *Adapter {
	return &Adapter{bot: bot, sender: sender}
}

func (a *Adapter) SendMessage(ctx context.Context, chatID int64, text string, opts botport.Options) (botport.Message, error) {
	var sent *tele.Message
	err := a.do(ctx, "send.text", "sendMessage", func() error {
		msg, err := a.bot.Send(tele.ChatID(chatID), text, keyboard.SendOptions(opts))
		if err != nil {
			return err
		}
		sent = msg
		return nil
	})
	metrics.IncMessage("send", err)
	if err != nil {
		return botport.Message{}, err
	}
	return toMessage(sent, chatID), nil
}

func (a *Adapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, opts botport.Options) (botport.Message, error) {
	if messageID == 0 {
		return botport.Message{}, errors.New("telegram: edit without message id")
	}
	target := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	// Reply keyboards cannot be attached to edits; only inline markup is kept.
	sendOpts := keyboard.SendOptions(botport.Options{ParseMode: opts.ParseMode, Keyboard: opts.Keyboard})
	var edited *tele.Message
	err := a.do(ctx, "edit.text", "editMessageText", func() error {
		msg, err := a.bot.Edit(target, text, sendOpts)
		if err != nil {
			return err
		}
		edited = msg
		return nil
	})
	metrics.IncMessage("edit", err)
	if err != nil {
		return botport.Message{}, err
	}
	if edited == nil {
		return botport.Message{ID: messageID, ChatID: chatID}, nil
	}
	return toMessage(edited, chatID), nil
}

func (a *Adapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if callbackID == "" {
		return nil
	}
	run := func() error {
		err := a.bot.Respond(&tele.Callback{ID: callbackID}, &tele.CallbackResponse{Text: text})
		metrics.IncMessage("answer", err)
		return err
	}
	if a.sender == nil {
		return run()
	}
	err := a.sender.Enqueue(ctx, "answer.callback", "answerCallbackQuery", run)
	if errors.Is(err, tgsender.ErrQueueFull) || errors.Is(err, tgsender.ErrQueueClosed) {
		return run()
	}
	return err
}

func (a *Adapter) do(ctx context.Context, action, endpoint string, run func() error) error {
	if a.sender == nil {
		return run()
	}
	return a.sender.Do(ctx, action, endpoint, run)
}

func toMessage(msg *tele.Message, chatID int64) botport.Message {
	if msg == nil {
		return botport.Message{ChatID: chatID}
	}
	out := botport.Message{ID: msg.ID, ChatID: chatID}
	if msg.Chat != nil {
		out.ChatID = msg.Chat.ID
	}
	return out
}
