package scenario

import (
	"context"
	"fmt"

	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
	"github.com/m3rciful/todobot/core/telegram/format"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// DeleteList picks a list, confirms and removes it together with its tasks.
type DeleteList struct {
	deps Deps
}

// NewDeleteList builds the DeleteList scenario.
func NewDeleteList(deps Deps) *DeleteList { return &DeleteList{deps: deps} }

func (s *DeleteList) Kind() Kind               { return KindDeleteList }
func (s *DeleteList) CanHandle(kind Kind) bool { return kind == KindDeleteList }

func (s *DeleteList) HandleStep(ctx context.Context, sc *Context, upd botport.Update) Result {
	return guard(ctx, s.deps.Bot, sc, upd, s.step)
}

func (s *DeleteList) step(ctx context.Context, sc *Context, upd botport.Update) (Result, error) {
	st := sc.DeleteList
	if st == nil {
		return Completed, fmt.Errorf("delete list: context of kind %q has no delete list state", sc.Kind)
	}
	switch st.Step {
	case DeleteListStart:
		return s.start(ctx, st, upd)
	case DeleteListApprove:
		return s.approve(ctx, st, upd)
	case DeleteListDelete:
		return s.delete(ctx, st, upd)
	}
	return Completed, fmt.Errorf("delete list: unknown step %d", st.Step)
}

func (s *DeleteList) start(ctx context.Context, st *DeleteListState, upd botport.Update) (Result, error) {
	user, err := resolveUser(ctx, s.deps.Users, upd.UserID)
	if err != nil {
		return Completed, err
	}
	lists, err := s.deps.Lists.ByUser(ctx, user.ID)
	if err != nil {
		return Completed, err
	}
	answer(ctx, s.deps.Bot, upd, "")
	if len(lists) == 0 {
		send(ctx, s.deps.Bot, upd.ChatID, ui.MsgNoLists, ui.Authorized())
		return Completed, nil
	}
	st.User = user
	st.Step = DeleteListApprove
	send(ctx, s.deps.Bot, upd.ChatID, ui.MsgChooseListDelete, ui.Inline(ui.ListsKeyboard(lists, callbacks.ActionDeleteList)))
	return Transition, nil
}

func (s *DeleteList) approve(ctx context.Context, st *DeleteListState, upd botport.Update) (Result, error) {
	cb, ok := upd.Callback()
	if !ok {
		lists, err := s.deps.Lists.ByUser(ctx, st.User.ID)
		if err != nil {
			return Completed, err
		}
		send(ctx, s.deps.Bot, upd.ChatID, ui.MsgChooseListDelete, ui.Inline(ui.ListsKeyboard(lists, callbacks.ActionDeleteList)))
		return Transition, nil
	}
	action, payload := callbacks.Parse(cb.Data)
	id, err := callbacks.PayloadUUID(payload)
	if action != callbacks.ActionDeleteList || err != nil {
		answer(ctx, s.deps.Bot, upd, ui.MsgUnknownAction)
		return Transition, nil
	}
	list, err := s.deps.Lists.Get(ctx, st.User.ID, id)
	if err != nil {
		return Completed, err
	}
	st.ListID = list.ID
	st.ListName = list.Name
	st.Step = DeleteListDelete
	answer(ctx, s.deps.Bot, upd, "")
	edit(ctx, s.deps.Bot, upd, fmt.Sprintf(ui.MsgConfirmListDelete, format.MD(list.Name)),
		ui.Markdown(ui.Inline(ui.YesNoKeyboard())))
	return Transition, nil
}

func (s *DeleteList) delete(ctx context.Context, st *DeleteListState, upd botport.Update) (Result, error) {
	switch confirmation(upd) {
	case callbacks.ActionYes:
		answer(ctx, s.deps.Bot, upd, "")
		if _, err := s.deps.Lists.Get(ctx, st.User.ID, st.ListID); err != nil {
			return Completed, err
		}
		removed, err := s.deps.Tasks.DeleteByList(ctx, st.User.ID, st.ListID)
		if err != nil {
			return Completed, err
		}
		if err := s.deps.Lists.Delete(ctx, st.User.ID, st.ListID); err != nil {
			return Completed, err
		}
		edit(ctx, s.deps.Bot, upd, fmt.Sprintf(ui.MsgListDeleted, format.MD(st.ListName), removed), ui.Markdown(botport.Options{}))
		return Completed, nil
	case callbacks.ActionNo:
		answer(ctx, s.deps.Bot, upd, "")
		edit(ctx, s.deps.Bot, upd, ui.MsgDeletionCancelled, botport.Options{})
		return Completed, nil
	}
	answer(ctx, s.deps.Bot, upd, "")
	send(ctx, s.deps.Bot, upd.ChatID, ui.MsgAnswerYesNo, ui.Inline(ui.YesNoKeyboard()))
	return Transition, nil
}
