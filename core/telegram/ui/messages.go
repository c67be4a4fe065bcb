// Package ui holds the user-facing texts and keyboards of the to-do bot.
package ui

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/m3rciful/todobot/core/domain"
)

const (
	MsgRegisterFirst     = "User not found. Please register with /start"
	MsgNotRegistered     = "You are not registered.\nUnregistered users can only use /start, /help and /info.\nPlease register with /start"
	MsgTextOnly          = "Please use text messages"
	MsgUnknownCommand    = "Unknown command. Please try again"
	MsgUnknownAction     = "Unknown action"
	MsgActionCancelled   = "Current action cancelled"
	MsgNothingToCancel   = "There is nothing to cancel"
	MsgActionCompleted   = "Action completed"
	MsgCancelHint        = "You can cancel the action with /cancel"
	MsgScenarioNotFound  = "Scenario not found. The current action was reset"
	MsgGenericError      = "Something went wrong. Please try again later"
	MsgEnterTaskName     = "Enter the task name:"
	MsgEmptyName         = "The name must not be empty. Try again:"
	MsgChooseTaskList    = "Choose a list for the task or pick \"No list\":"
	MsgUseListButtons    = "Choose a list using the buttons above"
	MsgDeadlinePrompt    = "You chose list: *%s*\nNow enter the deadline as dd.mm.yyyy or skip"
	MsgInvalidDate       = "Invalid date format. Enter the deadline as dd.mm.yyyy or skip"
	MsgEnterListName     = "Enter the list name:"
	MsgListCreated       = "List *%s* created"
	MsgNoLists           = "You have no lists to delete"
	MsgChooseListDelete  = "Choose a list to delete:"
	MsgConfirmListDelete = "Delete list *%s* and all its tasks?"
	MsgListDeleted       = "List *%s* and its %d task(s) were deleted"
	MsgConfirmTaskDelete = "Delete task *%s*?"
	MsgTaskDeleted       = "Task *%s* deleted"
	MsgDeletionCancelled = "Deletion cancelled"
	MsgAnswerYesNo       = "Please answer with the Yes or No buttons"
	MsgTaskNotFound      = "Task not found"
	MsgListNotFound      = "List not found"
	MsgScenarioTimeout   = "The scenario was cancelled: no reply within %s"
	MsgDeadlineMissed    = "Oops! You missed the deadline for task %s"
	MsgTodayHeader       = "📅 Your tasks for today:"
	MsgSlowDown          = "Too many requests, please slow down"
)

// TaskAdded renders the AddTask confirmation.
func TaskAdded(name, list, deadline, id string) string {
	return fmt.Sprintf("✅ Task added\n📌 Name: *%s*\n🗂 List: *%s*\n⏰ Deadline: *%s*\n🆔 ID: `%s`",
		name, list, deadline, id)
}

// ErrorText maps a domain error to the message shown to the user.
func ErrorText(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrUserNotFound):
		return MsgRegisterFirst
	case errors.Is(err, domain.ErrTaskNotFound):
		return MsgTaskNotFound
	case errors.Is(err, domain.ErrListNotFound):
		return MsgListNotFound
	case errors.Is(err, domain.ErrDuplicateTask):
		return "A task with this name already exists"
	case errors.Is(err, domain.ErrDuplicateList):
		return "A list with this name already exists"
	case errors.Is(err, domain.ErrTaskLimit):
		return "You have reached the limit of active tasks"
	case errors.Is(err, domain.ErrEmptyName):
		return MsgEmptyName
	case errors.Is(err, domain.ErrTaskNameTooLong):
		return capitalize(unwrapDetail(err))
	case errors.Is(err, domain.ErrListNameTooLong):
		return fmt.Sprintf("The list name must be at most %d characters. Try again:", domain.MaxListNameLength)
	case errors.As(err, &ve):
		return ve.Err.Error()
	}
	return MsgGenericError
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func unwrapDetail(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Err.Error()
	}
	return err.Error()
}
