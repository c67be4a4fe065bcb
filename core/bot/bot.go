// Package bot binds the to-do commands and inline callbacks to the services
// and scenarios.
package bot

import (
	"context"
	"fmt"

	"github.com/m3rciful/todobot/core/scenario"
	"github.com/m3rciful/todobot/core/service"
	tg "github.com/m3rciful/todobot/core/telegram"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
	"github.com/m3rciful/todobot/core/telegram/commands"
)

// Scenarios starts conversations on behalf of commands and callbacks.
type Scenarios interface {
	Start(ctx context.Context, kind scenario.Kind, upd botport.Update) error
}

// Deps are the collaborators of Handlers.
type Deps struct {
	Users     *service.UserService
	Tasks     *service.TaskService
	Lists     *service.ListService
	Reports   *service.ReportService
	Scenarios Scenarios
	Bot       botport.Port
	// Version is shown by /info.
	Version string
}

// Handlers implements the bot commands and callbacks.
type Handlers struct {
	deps Deps
}

// New builds Handlers.
func New(deps Deps) *Handlers {
	return &Handlers{deps: deps}
}

// Register adds every command, callback and the text fallback to reg.
func (h *Handlers) Register(reg *tg.Registry) error {
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: h.start, Description: "Register", Public: true}},
		{"/help", commands.Command{Handler: h.help, Description: "List commands", Public: true}},
		{"/info", commands.Command{Handler: h.info, Description: "About the bot", Public: true}},
		{"/addtask", commands.Command{Handler: h.addTask, Description: "Add a task"}},
		{"/removetask", commands.Command{Handler: h.removeTask, Description: "Delete a task by number"}},
		{"/show", commands.Command{Handler: h.show, Description: "Show lists"}},
		{"/completetask", commands.Command{Handler: h.completeTask, Description: "Complete a task by ID"}},
		{"/report", commands.Command{Handler: h.report, Description: "Task statistics"}},
		{"/find", commands.Command{Handler: h.find, Description: "Find tasks by prefix"}},
		{scenario.CancelCommand, commands.Command{Handler: h.cancel, Description: "Cancel the current action"}},
	}
	for _, c := range cmds {
		reg.RegisterCommand(c.name, c.cmd)
	}

	cbs := map[string]tg.CallbackHandler{
		callbacks.ActionShow:         h.onShow,
		callbacks.ActionAddList:      h.onStart(scenario.KindAddList),
		callbacks.ActionDeleteList:   h.onStart(scenario.KindDeleteList),
		callbacks.ActionDeleteTask:   h.onStart(scenario.KindDeleteTask),
		callbacks.ActionCompleteTask: h.onCompleteTask,
		callbacks.ActionSkip:         h.onSkip,
	}
	for action, fn := range cbs {
		if err := reg.RegisterCallback(action, fn); err != nil {
			return fmt.Errorf("bot: %w", err)
		}
	}

	reg.SetTextFallback(h.fallback)
	return nil
}
