package botport

import "strings"

// Event is the payload of an inbound update: either a TextMessage or a CallbackAction.
type Event interface {
	isEvent()
}

// TextMessage is a plain text message typed by the user.
type TextMessage struct {
	Text string
}

// CallbackAction is an inline button press.
type CallbackAction struct {
	ID        string
	MessageID int
	Data      string
}

func (TextMessage) isEvent()    {}
func (CallbackAction) isEvent() {}

// Update is a normalised inbound update addressed to one user in one chat.
type Update struct {
	UpdateID int
	UserID   int64
	ChatID   int64
	Username string
	Event    Event
}

// Text returns the trimmed message text and whether the update carries text.
func (u Update) Text() (string, bool) {
	msg, ok := u.Event.(TextMessage)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(msg.Text), true
}

// Callback returns the callback action and whether the update carries one.
func (u Update) Callback() (CallbackAction, bool) {
	cb, ok := u.Event.(CallbackAction)
	return cb, ok
}

// Kind names the event type for logs and metrics.
func (u Update) Kind() string {
	switch u.Event.(type) {
	case TextMessage:
		return "message"
	case CallbackAction:
		return "callback"
	default:
		return "other"
	}
}
