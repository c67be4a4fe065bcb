package ui

import (
	"fmt"
	"strings"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/telegram/format"
)

const (
	MsgWelcome          = "Welcome! You are registered as %s"
	MsgAlreadyKnown     = "We already know each other, %s!"
	MsgInfo             = "To-do bot %s\nKeeps tasks, lists and deadlines and reminds you about them"
	MsgRegisterHint     = "Please register with /start"
	MsgRemoveTaskUsage  = "Specify the task number after the command, starting from 1"
	MsgNoTasksToRemove  = "You have no tasks to delete"
	MsgTaskNumberRange  = "The task number must be between 1 and %d"
	MsgChooseList       = "Choose a list:"
	MsgCompleteUsage    = "Specify a valid task ID after the command"
	MsgTaskCompleted    = "Task *%s* marked as completed"
	MsgFindUsage        = "Enter a keyword after /find to search tasks"
	MsgNothingFound     = "No tasks starting with *%s*"
	MsgFoundHeader      = "Found the following tasks:"
	MsgListHeader       = "📋 List: *%s*"
	MsgNoActiveTasks    = "No active tasks in this list"
	MsgActiveTasks      = "📌 Active tasks:"
	MsgNoListName       = "No list"
	MsgDeadlineNotSet   = "not set"
	MsgCallbackComplete = "Task completed"
)

// HelpText lists the commands; unregistered users get a registration hint.
func HelpText(registered bool) string {
	var b strings.Builder
	b.WriteString("Available commands:\n/start, /help, /info\n\nFor registered users:")
	b.WriteString("\n/start - register")
	b.WriteString("\n/addtask - add a task")
	b.WriteString("\n/removetask <number> - delete a task by its number")
	b.WriteString("\n/completetask <ID> - mark a task as completed")
	b.WriteString("\n/show - show lists and their tasks")
	b.WriteString("\n/report - task statistics")
	b.WriteString("\n/find <prefix> - find tasks by the beginning of the name")
	b.WriteString("\n/cancel - cancel the current action")
	if !registered {
		b.WriteString("\n" + MsgRegisterHint)
	}
	return b.String()
}

// Report renders task statistics.
func Report(st domain.Stats) string {
	return fmt.Sprintf("Task statistics as of %s\nTotal: %d; Completed: %d; Active: %d",
		st.GeneratedAt.UTC().Format("02.01.2006 15:04:05"), st.Total, st.Completed, st.Active)
}

// TaskCard renders one task for search results and list views.
func TaskCard(t domain.Task, index int) string {
	var b strings.Builder
	if index > 0 {
		fmt.Fprintf(&b, "%d. *%s*", index, format.MD(t.Name))
	} else {
		fmt.Fprintf(&b, "🗂 Task: *%s*, state: *%s*", format.MD(t.Name), t.State)
		fmt.Fprintf(&b, "\n⏰ Created: *%s*", t.CreatedAt.UTC().Format("02.01.2006 15:04:05"))
	}
	fmt.Fprintf(&b, "\n⏰ Deadline: *%s*", format.DateOr(t.Deadline, MsgDeadlineNotSet))
	fmt.Fprintf(&b, "\n🆔 ID: `%s`", t.ID)
	return b.String()
}

// FoundTasks renders /find results.
func FoundTasks(tasks []domain.Task) string {
	parts := make([]string, 0, len(tasks)+1)
	parts = append(parts, MsgFoundHeader)
	for _, t := range tasks {
		parts = append(parts, TaskCard(t, 0))
	}
	return strings.Join(parts, "\n\n")
}
