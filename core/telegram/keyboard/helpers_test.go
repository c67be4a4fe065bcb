package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/todobot/core/telegram/botport"

	tele "gopkg.in/telebot.v4"
)

func TestMarkupInlineKeepsRawData(t *testing.T) {
	kb := botport.Keyboard{
		{{Text: "No list", Data: "show|null"}},
		{{Text: "Yes", Data: "yes"}, {Text: "No", Data: "no"}},
	}
	m := Markup(botport.Options{Keyboard: kb, ReplyKeyboard: [][]string{{"/cancel"}}})
	require.NotNil(t, m)
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, "show|null", m.InlineKeyboard[0][0].Data)
	assert.Empty(t, m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "No", m.InlineKeyboard[1][1].Text)
	assert.Empty(t, m.ReplyKeyboard)
}

func TestMarkupReplyKeyboard(t *testing.T) {
	m := Markup(botport.Options{ReplyKeyboard: [][]string{{"/addtask", "/show"}, {"/report"}}})
	require.NotNil(t, m)
	assert.True(t, m.ResizeKeyboard)
	require.Len(t, m.ReplyKeyboard, 2)
	assert.Equal(t, "/show", m.ReplyKeyboard[0][1].Text)
	assert.Equal(t, "/report", m.ReplyKeyboard[1][0].Text)
}

func TestMarkupRemoveAndEmpty(t *testing.T) {
	assert.True(t, Markup(botport.Options{RemoveReplyKeyboard: true}).RemoveKeyboard)
	assert.Nil(t, Markup(botport.Options{}))
}

func TestSendOptionsParseMode(t *testing.T) {
	opts := SendOptions(botport.Options{ParseMode: botport.ParseMarkdown})
	assert.Equal(t, tele.ModeMarkdown, opts.ParseMode)
	assert.Nil(t, opts.ReplyMarkup)
}
