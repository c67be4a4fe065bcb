package ui

import (
	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
)

const (
	BtnAddList      = "🆕 Add list"
	BtnDeleteList   = "❌ Delete list"
	BtnNoList       = "📌 No list"
	BtnSkip         = "⏩ Skip"
	BtnCompleteTask = "✅ Done"
	BtnDeleteTask   = "❌ Delete"
	BtnYes          = "Yes"
	BtnNo           = "No"
)

// Authorized is the reply keyboard of registered users.
func Authorized() botport.Options {
	return botport.Options{ReplyKeyboard: [][]string{{"/addtask", "/show"}, {"/report"}}}
}

// Unauthorized is the reply keyboard offered before registration.
func Unauthorized() botport.Options {
	return botport.Options{ReplyKeyboard: [][]string{{"/start"}}}
}

// Cancel is the reply keyboard shown while a scenario waits for input.
func Cancel() botport.Options {
	return botport.Options{ReplyKeyboard: [][]string{{"/cancel"}}}
}

// Markdown returns opts with Markdown parse mode.
func Markdown(opts botport.Options) botport.Options {
	opts.ParseMode = botport.ParseMarkdown
	return opts
}

// Inline wraps an inline keyboard into options.
func Inline(kb botport.Keyboard) botport.Options {
	return botport.Options{Keyboard: kb}
}

// SkipKeyboard offers skipping the deadline.
func SkipKeyboard() botport.Keyboard {
	return botport.Row(botport.Button{Text: BtnSkip, Data: callbacks.Data(callbacks.ActionSkip)})
}

// YesNoKeyboard asks for confirmation.
func YesNoKeyboard() botport.Keyboard {
	return botport.Keyboard{{
		{Text: BtnYes, Data: callbacks.ActionYes},
		{Text: BtnNo, Data: callbacks.ActionNo},
	}}
}

// ListSelectionKeyboard shows "No list" plus one button per list, and optionally add/delete list buttons.
func ListSelectionKeyboard(lists []domain.List, withManagement bool) botport.Keyboard {
	buttons := make([]botport.Button, 0, len(lists)+1)
	buttons = append(buttons, botport.Button{Text: BtnNoList, Data: callbacks.Data(callbacks.ActionShow, callbacks.NullPayload)})
	for _, l := range lists {
		id := l.ID
		buttons = append(buttons, botport.Button{Text: l.Name, Data: callbacks.Data(callbacks.ActionShow, callbacks.ListID(&id))})
	}
	kb := botport.Row(buttons...)
	if withManagement {
		kb = append(kb, []botport.Button{
			{Text: BtnAddList, Data: callbacks.Data(callbacks.ActionAddList)},
			{Text: BtnDeleteList, Data: callbacks.Data(callbacks.ActionDeleteList)},
		})
	}
	return kb
}

// ListsKeyboard shows one button per list bound to action.
func ListsKeyboard(lists []domain.List, action string) botport.Keyboard {
	buttons := make([]botport.Button, 0, len(lists))
	for _, l := range lists {
		buttons = append(buttons, botport.Button{Text: l.Name, Data: callbacks.Data(action, l.ID.String())})
	}
	return botport.Row(buttons...)
}

// TaskActionsKeyboard offers completing or deleting one task.
func TaskActionsKeyboard(task domain.Task) botport.Keyboard {
	return botport.Keyboard{{
		{Text: BtnCompleteTask, Data: callbacks.Data(callbacks.ActionCompleteTask, task.ID.String())},
		{Text: BtnDeleteTask, Data: callbacks.Data(callbacks.ActionDeleteTask, task.ID.String())},
	}}
}
