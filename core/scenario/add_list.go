package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/format"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

// AddList asks for a name and creates a list.
type AddList struct {
	deps Deps
}

// NewAddList builds the AddList scenario.
func NewAddList(deps Deps) *AddList { return &AddList{deps: deps} }

func (s *AddList) Kind() Kind               { return KindAddList }
func (s *AddList) CanHandle(kind Kind) bool { return kind == KindAddList }

func (s *AddList) HandleStep(ctx context.Context, sc *Context, upd botport.Update) Result {
	return guard(ctx, s.deps.Bot, sc, upd, s.step)
}

func (s *AddList) step(ctx context.Context, sc *Context, upd botport.Update) (Result, error) {
	st := sc.AddList
	if st == nil {
		return Completed, fmt.Errorf("add list: context of kind %q has no add list state", sc.Kind)
	}
	switch st.Step {
	case AddListStart:
		user, err := resolveUser(ctx, s.deps.Users, upd.UserID)
		if err != nil {
			return Completed, err
		}
		st.User = user
		st.Step = AddListName
		answer(ctx, s.deps.Bot, upd, "")
		send(ctx, s.deps.Bot, upd.ChatID, ui.MsgEnterListName, ui.Cancel())
		return Transition, nil
	case AddListName:
		text, _ := upd.Text()
		answer(ctx, s.deps.Bot, upd, "")
		list, err := s.deps.Lists.Add(ctx, st.User, text)
		if domain.IsValidation(err) {
			logger.Debug(ctx, "scenario", "scenario.reprompt",
				append([]slog.Attr{slog.String("status", "skip"), slog.String("kind", string(KindAddList))},
					logger.ErrAttrs(err)...)...,
			)
			send(ctx, s.deps.Bot, upd.ChatID, ui.ErrorText(err), ui.Cancel())
			return Transition, nil
		}
		if err != nil {
			return Completed, err
		}
		send(ctx, s.deps.Bot, upd.ChatID, fmt.Sprintf(ui.MsgListCreated, format.MD(list.Name)), ui.Markdown(ui.Authorized()))
		return Completed, nil
	}
	return Completed, fmt.Errorf("add list: unknown step %d", st.Step)
}
