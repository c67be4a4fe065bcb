package commands

import (
	"context"
	"strings"

	"github.com/m3rciful/todobot/core/telegram/botport"
)

// Handler serves one command; args is the text after the command name.
type Handler func(ctx context.Context, upd botport.Update, args string) error

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     Handler
	Description string
	// Public commands are available before registration.
	Public  bool
	Hidden  bool
	Aliases []string
}

// Split separates "/name@bot args" into the lower-cased "/name" and trimmed args.
// ok is false when text is not a command.
func Split(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	name, args, _ = strings.Cut(text, " ")
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}
