// Package botport describes the outbound chat operations and inbound updates
// the bot core needs, independent of the Telegram client library.
package botport

import "context"

// ParseMode selects how message text is rendered.
type ParseMode string

const (
	ParsePlain    ParseMode = ""
	ParseMarkdown ParseMode = "Markdown"
)

// Button is an inline keyboard button carrying callback data.
type Button struct {
	Text string
	Data string
}

// Keyboard is an inline keyboard laid out in rows.
type Keyboard [][]Button

// Options customise an outgoing message.
// Keyboard and ReplyKeyboard are mutually exclusive; Keyboard wins when both are set.
type Options struct {
	ParseMode     ParseMode
	Keyboard      Keyboard
	ReplyKeyboard [][]string
	// RemoveReplyKeyboard hides a previously sent reply keyboard.
	RemoveReplyKeyboard bool
}

// Message identifies a message that was sent or edited.
type Message struct {
	ID     int
	ChatID int64
}

// Port is the set of chat operations used by scenarios, handlers and jobs.
type Port interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts Options) (Message, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, opts Options) (Message, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Row places each button on its own row.
func Row(buttons ...Button) Keyboard {
	return Chunk(buttons, 1)
}

// Chunk splits buttons into rows of at most n buttons.
func Chunk(buttons []Button, n int) Keyboard {
	if n <= 0 {
		n = 1
	}
	kb := make(Keyboard, 0, (len(buttons)+n-1)/n)
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		kb = append(kb, append([]Button(nil), buttons[i:end]...))
	}
	return kb
}
