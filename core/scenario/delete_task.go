package scenario

import (
	"context"
	"fmt"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
	"github.com/m3rciful/todobot/core/telegram/format"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// DeleteTask confirms and deletes one task chosen by a deletetask|<id> button.
type DeleteTask struct {
	deps Deps
}

// NewDeleteTask builds the DeleteTask scenario.
func NewDeleteTask(deps Deps) *DeleteTask { return &DeleteTask{deps: deps} }

func (s *DeleteTask) Kind() Kind               { return KindDeleteTask }
func (s *DeleteTask) CanHandle(kind Kind) bool { return kind == KindDeleteTask }

func (s *DeleteTask) HandleStep(ctx context.Context, sc *Context, upd botport.Update) Result {
	return guard(ctx, s.deps.Bot, sc, upd, s.step)
}

func (s *DeleteTask) step(ctx context.Context, sc *Context, upd botport.Update) (Result, error) {
	st := sc.DeleteTask
	if st == nil {
		return Completed, fmt.Errorf("delete task: context of kind %q has no delete task state", sc.Kind)
	}
	switch st.Step {
	case DeleteTaskStart:
		return s.start(ctx, st, upd)
	case DeleteTaskConfirm:
		return s.confirm(ctx, st, upd)
	}
	return Completed, fmt.Errorf("delete task: unknown step %d", st.Step)
}

func (s *DeleteTask) start(ctx context.Context, st *DeleteTaskState, upd botport.Update) (Result, error) {
	user, err := resolveUser(ctx, s.deps.Users, upd.UserID)
	if err != nil {
		return Completed, err
	}
	cb, ok := upd.Callback()
	if !ok {
		return Completed, domain.ErrTaskNotFound
	}
	_, payload := callbacks.Parse(cb.Data)
	id, err := callbacks.PayloadUUID(payload)
	if err != nil {
		return Completed, domain.ErrTaskNotFound
	}
	task, err := s.deps.Tasks.Get(ctx, user.ID, id)
	if err != nil {
		return Completed, err
	}
	st.User = user
	st.TaskID = task.ID
	st.TaskName = task.Name
	st.Step = DeleteTaskConfirm
	answer(ctx, s.deps.Bot, upd, "")
	send(ctx, s.deps.Bot, upd.ChatID, fmt.Sprintf(ui.MsgConfirmTaskDelete, format.MD(task.Name)),
		ui.Markdown(ui.Inline(ui.YesNoKeyboard())))
	return Transition, nil
}

func (s *DeleteTask) confirm(ctx context.Context, st *DeleteTaskState, upd botport.Update) (Result, error) {
	switch confirmation(upd) {
	case callbacks.ActionYes:
		answer(ctx, s.deps.Bot, upd, "")
		if err := s.deps.Tasks.Delete(ctx, st.User.ID, st.TaskID); err != nil {
			return Completed, err
		}
		edit(ctx, s.deps.Bot, upd, fmt.Sprintf(ui.MsgTaskDeleted, format.MD(st.TaskName)), ui.Markdown(botport.Options{}))
		return Completed, nil
	case callbacks.ActionNo:
		answer(ctx, s.deps.Bot, upd, "")
		edit(ctx, s.deps.Bot, upd, ui.MsgDeletionCancelled, botport.Options{})
		return Completed, nil
	}
	answer(ctx, s.deps.Bot, upd, "")
	send(ctx, s.deps.Bot, upd.ChatID, fmt.Sprintf(ui.MsgConfirmTaskDelete, format.MD(st.TaskName)),
		ui.Markdown(ui.Inline(ui.YesNoKeyboard())))
	return Transition, nil
}

// confirmation returns yes, no, or "" for any other input.
func confirmation(upd botport.Update) string {
	if cb, ok := upd.Callback(); ok {
		action, _ := callbacks.Parse(cb.Data)
		if action == callbacks.ActionYes || action == callbacks.ActionNo {
			return action
		}
	}
	return ""
}
