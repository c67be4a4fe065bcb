// Package fakebot provides an in-memory botport.Port that records every call.
package fakebot

import (
	"context"
	"sync"

	"github.com/m3rciful/todobot/core/telegram/botport"
)

// Operation names recorded by Bot.
const (
	OpSend   = "send"
	OpEdit   = "edit"
	OpAnswer = "answer"
)

// Call is one recorded Port invocation.
type Call struct {
	Op         string
	ChatID     int64
	MessageID  int
	CallbackID string
	Text       string
	Options    botport.Options
}

// Bot records calls and can be told to fail specific operations.
type Bot struct {
	mu     sync.Mutex
	calls  []Call
	fail   map[string]error
	nextID int
}

var _ botport.Port = (*Bot)(nil)

// New returns an empty recorder.
func New() *Bot {
	return &Bot{fail: make(map[string]error), nextID: 100}
}

// Fail makes every subsequent call of op return err; a nil err clears it.
func (b *Bot) Fail(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.fail, op)
		return
	}
	b.fail[op] = err
}

func (b *Bot) SendMessage(_ context.Context, chatID int64, text string, opts botport.Options) (botport.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail[OpSend]; err != nil {
		return botport.Message{}, err
	}
	b.nextID++
	b.calls = append(b.calls, Call{Op: OpSend, ChatID: chatID, MessageID: b.nextID, Text: text, Options: opts})
	return botport.Message{ID: b.nextID, ChatID: chatID}, nil
}

func (b *Bot) EditMessage(_ context.Context, chatID int64, messageID int, text string, opts botport.Options) (botport.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail[OpEdit]; err != nil {
		return botport.Message{}, err
	}
	b.calls = append(b.calls, Call{Op: OpEdit, ChatID: chatID, MessageID: messageID, Text: text, Options: opts})
	return botport.Message{ID: messageID, ChatID: chatID}, nil
}

func (b *Bot) AnswerCallback(_ context.Context, callbackID, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail[OpAnswer]; err != nil {
		return err
	}
	b.calls = append(b.calls, Call{Op: OpAnswer, CallbackID: callbackID, Text: text})
	return nil
}

// Calls returns a copy of all recorded calls.
func (b *Bot) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Sent returns recorded send and edit calls, skipping callback answers.
func (b *Bot) Sent() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.Op == OpSend || c.Op == OpEdit {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns the text of every send and edit in order.
func (b *Bot) Texts() []string {
	sent := b.Sent()
	out := make([]string, 0, len(sent))
	for _, c := range sent {
		out = append(out, c.Text)
	}
	return out
}

// LastCall returns the most recent call, if any.
func (b *Bot) LastCall() (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return Call{}, false
	}
	return b.calls[len(b.calls)-1], true
}

// LastSent returns the most recent send or edit.
func (b *Bot) LastSent() (Call, bool) {
	sent := b.Sent()
	if len(sent) == 0 {
		return Call{}, false
	}
	return sent[len(sent)-1], true
}

// Reset forgets recorded calls.
func (b *Bot) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}
