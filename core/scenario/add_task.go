package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
	"github.com/m3rciful/todobot/core/telegram/format"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// SkipCommand skips the optional deadline when typed instead of pressing the button.
const SkipCommand = "/skip"

// AddTask walks the user through name, list and deadline of a new task.
type AddTask struct {
	deps Deps
}

// NewAddTask builds the AddTask scenario.
func NewAddTask(deps Deps) *AddTask { return &AddTask{deps: deps} }

func (s *AddTask) Kind() Kind               { return KindAddTask }
func (s *AddTask) CanHandle(kind Kind) bool { return kind == KindAddTask }

func (s *AddTask) HandleStep(ctx context.Context, sc *Context, upd botport.Update) Result {
	return guard(ctx, s.deps.Bot, sc, upd, s.step)
}

func (s *AddTask) step(ctx context.Context, sc *Context, upd botport.Update) (Result, error) {
	st := sc.AddTask
	if st == nil {
		return Completed, fmt.Errorf("add task: context of kind %q has no add task state", sc.Kind)
	}
	switch st.Step {
	case AddTaskStart:
		return s.start(ctx, st, upd)
	case AddTaskName:
		return s.name(ctx, st, upd)
	case AddTaskListSelection:
		return s.listSelection(ctx, st, upd)
	case AddTaskDeadline:
		return s.deadline(ctx, st, upd)
	}
	return Completed, fmt.Errorf("add task: unknown step %d", st.Step)
}

func (s *AddTask) start(ctx context.Context, st *AddTaskState, upd botport.Update) (Result, error) {
	user, err := resolveUser(ctx, s.deps.Users, upd.UserID)
	if err != nil {
		return Completed, err
	}
	st.User = user
	st.Step = AddTaskName
	answer(ctx, s.deps.Bot, upd, "")
	send(ctx, s.deps.Bot, upd.ChatID, ui.MsgEnterTaskName, ui.Cancel())
	return Transition, nil
}

func (s *AddTask) name(ctx context.Context, st *AddTaskState, upd botport.Update) (Result, error) {
	text, ok := upd.Text()
	if !ok || text == "" {
		answer(ctx, s.deps.Bot, upd, "")
		send(ctx, s.deps.Bot, upd.ChatID, ui.MsgEmptyName, ui.Cancel())
		return Transition, nil
	}
	lists, err := s.deps.Lists.ByUser(ctx, st.User.ID)
	if err != nil {
		return Completed, err
	}
	st.Name = text
	st.Step = AddTaskListSelection
	send(ctx, s.deps.Bot, upd.ChatID, ui.MsgChooseTaskList, ui.Inline(ui.ListSelectionKeyboard(lists, false)))
	return Transition, nil
}

func (s *AddTask) listSelection(ctx context.Context, st *AddTaskState, upd botport.Update) (Result, error) {
	cb, ok := upd.Callback()
	if !ok {
		send(ctx, s.deps.Bot, upd.ChatID, ui.MsgUseListButtons, botport.Options{})
		return Transition, nil
	}
	action, payload := callbacks.Parse(cb.Data)
	if action != callbacks.ActionShow {
		answer(ctx, s.deps.Bot, upd, ui.MsgUnknownAction)
		return Transition, nil
	}
	listID, err := callbacks.PayloadOptionalUUID(payload)
	if err != nil {
		answer(ctx, s.deps.Bot, upd, ui.MsgUnknownAction)
		return Transition, nil
	}
	listName := ui.MsgNoListName
	if listID != nil {
		list, err := s.deps.Lists.Get(ctx, st.User.ID, *listID)
		if err != nil {
			return Completed, err
		}
		listName = list.Name
	}
	st.ListID = listID
	st.ListName = listName
	st.Step = AddTaskDeadline
	answer(ctx, s.deps.Bot, upd, "")
	edit(ctx, s.deps.Bot, upd, fmt.Sprintf(ui.MsgDeadlinePrompt, format.MD(listName)),
		ui.Markdown(ui.Inline(ui.SkipKeyboard())))
	return Transition, nil
}

func (s *AddTask) deadline(ctx context.Context, st *AddTaskState, upd botport.Update) (Result, error) {
	var deadline *time.Time
	switch {
	case isSkip(upd):
		answer(ctx, s.deps.Bot, upd, "")
	default:
		text, ok := upd.Text()
		d, valid := ParseDate(text)
		if !ok || !valid {
			answer(ctx, s.deps.Bot, upd, "")
			send(ctx, s.deps.Bot, upd.ChatID, ui.MsgInvalidDate, ui.Inline(ui.SkipKeyboard()))
			return Transition, nil
		}
		deadline = &d
	}

	task, err := s.deps.Tasks.Add(ctx, st.User, st.Name, deadline, st.ListID)
	if err != nil {
		return Completed, err
	}
	send(ctx, s.deps.Bot, upd.ChatID,
		ui.TaskAdded(format.MD(task.Name), format.MD(st.ListName), format.DateOr(task.Deadline, ui.MsgDeadlineNotSet), task.ID.String()),
		ui.Markdown(ui.Authorized()))
	return Completed, nil
}

func isSkip(upd botport.Update) bool {
	if cb, ok := upd.Callback(); ok {
		action, _ := callbacks.Parse(cb.Data)
		return action == callbacks.ActionSkip
	}
	text, _ := upd.Text()
	return strings.EqualFold(text, SkipCommand)
}

// ParseDate parses a strict dd.mm.yyyy date as UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(format.DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return domain.DayStart(t), true
}
