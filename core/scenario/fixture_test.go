package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/service"
	"github.com/m3rciful/todobot/core/storage/memory"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/botport/fakebot"
)

const (
	testUserID int64 = 42
	testChatID int64 = 4242
	testMsgID        = 7
)

type fixture struct {
	ctx   context.Context
	store *MemoryStore
	bot   *fakebot.Bot
	users *service.UserService
	tasks *service.TaskService
	lists *service.ListService
	disp  *Dispatcher
	user  *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:   context.Background(),
		store: NewMemoryStore(),
		bot:   fakebot.New(),
		users: service.NewUserService(memory.NewUsers(), service.Limits{}),
		tasks: service.NewTaskService(memory.NewTasks()),
		lists: service.NewListService(memory.NewLists()),
	}
	deps := Deps{Users: f.users, Tasks: f.tasks, Lists: f.lists, Bot: f.bot}
	f.disp = NewDispatcher(f.store, f.bot, All(deps)...)

	user, err := f.users.Register(f.ctx, testUserID, "tester")
	require.NoError(t, err)
	f.user = user
	return f
}

func text(s string) botport.Update {
	return botport.Update{UserID: testUserID, ChatID: testChatID, Event: botport.TextMessage{Text: s}}
}

func press(data string) botport.Update {
	return botport.Update{
		UserID: testUserID,
		ChatID: testChatID,
		Event:  botport.CallbackAction{ID: "cb-1", MessageID: testMsgID, Data: data},
	}
}

func (f *fixture) handle(t *testing.T, upd botport.Update) {
	t.Helper()
	handled, err := f.disp.Handle(f.ctx, upd)
	require.NoError(t, err)
	require.True(t, handled)
}

func (f *fixture) current(t *testing.T) *Context {
	t.Helper()
	sc, err := f.store.Get(f.ctx, testUserID)
	require.NoError(t, err)
	return sc
}
