package scenario

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/botport/fakebot"
	"github.com/m3rciful/todobot/core/telegram/callbacks"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

func TestAddTaskFullFlow(t *testing.T) {
	f := newFixture(t)
	list, err := f.lists.Add(f.ctx, f.user, "Home")
	require.NoError(t, err)

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	assert.Equal(t, []string{ui.MsgEnterTaskName, ui.MsgCancelHint}, f.bot.Texts())
	assert.Equal(t, AddTaskName, f.current(t).AddTask.Step)

	f.bot.Reset()
	f.handle(t, text("Buy milk"))
	assert.Equal(t, []string{ui.MsgChooseTaskList, ui.MsgCancelHint}, f.bot.Texts())
	first := f.bot.Sent()[0]
	require.NotEmpty(t, first.Options.Keyboard)
	assert.Equal(t, callbacks.Data(callbacks.ActionShow, callbacks.NullPayload), first.Options.Keyboard[0][0].Data)
	assert.Equal(t, AddTaskListSelection, f.current(t).AddTask.Step)

	f.bot.Reset()
	f.handle(t, press(callbacks.Data(callbacks.ActionShow, list.ID.String())))
	calls := f.bot.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, fakebot.OpAnswer, calls[0].Op)
	assert.Equal(t, fakebot.OpEdit, calls[1].Op)
	assert.Equal(t, testMsgID, calls[1].MessageID)
	assert.Contains(t, calls[1].Text, "Home")
	assert.Equal(t, ui.MsgCancelHint, calls[2].Text)
	st := f.current(t).AddTask
	assert.Equal(t, AddTaskDeadline, st.Step)
	require.NotNil(t, st.ListID)
	assert.Equal(t, list.ID, *st.ListID)

	f.bot.Reset()
	f.handle(t, text("31.12.2025"))
	texts := f.bot.Texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Buy milk")
	assert.Contains(t, texts[0], "31.12.2025")
	assert.Equal(t, ui.MsgActionCompleted, texts[1])
	assert.Nil(t, f.current(t))

	tasks, err := f.tasks.Active(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Name)
	require.NotNil(t, tasks[0].ListID)
	assert.Equal(t, list.ID, *tasks[0].ListID)
	require.NotNil(t, tasks[0].Deadline)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), *tasks[0].Deadline)
}

func TestAddTaskSkipDeadlineWithoutList(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	f.handle(t, text("Call mom"))
	f.handle(t, press(callbacks.Data(callbacks.ActionShow, callbacks.NullPayload)))
	f.bot.Reset()
	f.handle(t, press(callbacks.Data(callbacks.ActionSkip)))

	assert.Nil(t, f.current(t))
	tasks, err := f.tasks.Active(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].ListID)
	assert.Nil(t, tasks[0].Deadline)
	assert.Contains(t, f.bot.Texts()[0], "No list")
	assert.Contains(t, f.bot.Texts()[0], "not set")
}

func TestAddTaskInvalidDateKeepsWaiting(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	f.handle(t, text("Pay rent"))
	f.handle(t, press(callbacks.Data(callbacks.ActionShow, callbacks.NullPayload)))

	for _, bad := range []string{"2025-12-31", "31.13.2025", "tomorrow"} {
		f.bot.Reset()
		f.handle(t, text(bad))
		assert.Equal(t, []string{ui.MsgInvalidDate, ui.MsgCancelHint}, f.bot.Texts(), bad)
		assert.Equal(t, AddTaskDeadline, f.current(t).AddTask.Step)
	}

	f.handle(t, text(SkipCommand))
	assert.Nil(t, f.current(t))
}

func TestAddTaskDuplicateNameCompletes(t *testing.T) {
	f := newFixture(t)
	_, err := f.tasks.Add(f.ctx, f.user, "Gym", nil, nil)
	require.NoError(t, err)

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	f.handle(t, text("Gym"))
	f.handle(t, press(callbacks.Data(callbacks.ActionShow, callbacks.NullPayload)))
	f.bot.Reset()
	f.handle(t, press(callbacks.Data(callbacks.ActionSkip)))

	assert.Equal(t, []string{"A task with this name already exists", ui.MsgActionCompleted}, f.bot.Texts())
	assert.Nil(t, f.current(t))
}

func TestAddTaskEmptyNameReprompts(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	f.bot.Reset()
	f.handle(t, text("   "))

	assert.Equal(t, []string{ui.MsgEmptyName, ui.MsgCancelHint}, f.bot.Texts())
	assert.Equal(t, AddTaskName, f.current(t).AddTask.Step)
}

func TestListSelectionRejectsText(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	f.handle(t, text("Read book"))
	f.bot.Reset()
	f.handle(t, text("Home"))

	assert.Equal(t, []string{ui.MsgUseListButtons, ui.MsgCancelHint}, f.bot.Texts())
	assert.Equal(t, AddTaskListSelection, f.current(t).AddTask.Step)
}

func TestListSelectionUnknownCallback(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	f.handle(t, text("Read book"))
	f.bot.Reset()
	f.handle(t, press(callbacks.Data(callbacks.ActionCompleteTask, "x")))

	call, ok := f.bot.LastCall()
	require.True(t, ok)
	assert.Equal(t, fakebot.OpSend, call.Op)
	assert.Equal(t, ui.MsgCancelHint, call.Text)
	assert.Equal(t, fakebot.OpAnswer, f.bot.Calls()[0].Op)
	assert.Equal(t, ui.MsgUnknownAction, f.bot.Calls()[0].Text)
	assert.Equal(t, AddTaskListSelection, f.current(t).AddTask.Step)
}

func TestSkipOutsideDeadlineIsIgnored(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	f.bot.Reset()
	f.handle(t, press(callbacks.Data(callbacks.ActionSkip)))

	calls := f.bot.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, fakebot.OpAnswer, calls[0].Op)
	assert.Equal(t, AddTaskName, f.current(t).AddTask.Step)
}

func TestCancelAtEveryStep(t *testing.T) {
	steps := []func(f *fixture, t *testing.T){
		func(f *fixture, t *testing.T) {},
		func(f *fixture, t *testing.T) { f.handle(t, text("Task")) },
		func(f *fixture, t *testing.T) {
			f.handle(t, text("Task"))
			f.handle(t, press(callbacks.Data(callbacks.ActionShow, callbacks.NullPayload)))
		},
	}
	for i, advance := range steps {
		t.Run(fmt.Sprintf("step_%d", i), func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
			advance(f, t)
			f.bot.Reset()

			f.handle(t, text("/CANCEL"))

			assert.Equal(t, []string{ui.MsgActionCancelled}, f.bot.Texts())
			assert.Nil(t, f.current(t))
			tasks, err := f.tasks.All(f.ctx, f.user.ID)
			require.NoError(t, err)
			assert.Empty(t, tasks)
		})
	}
}

func TestCancelWithoutContext(t *testing.T) {
	f := newFixture(t)

	f.handle(t, text("/cancel"))

	assert.Equal(t, []string{ui.MsgNothingToCancel}, f.bot.Texts())
}

func TestHandleWithoutContextIsNotHandled(t *testing.T) {
	f := newFixture(t)

	handled, err := f.disp.Handle(f.ctx, text("hello"))
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, f.bot.Calls())
}

func TestScenarioNotFoundResetsContext(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(f.ctx, &Context{UserID: testUserID, ChatID: testChatID, Kind: Kind("unknown")}))

	handled, err := f.disp.Handle(f.ctx, text("anything"))
	assert.True(t, handled)
	require.ErrorIs(t, err, ErrScenarioNotFound)
	assert.Equal(t, []string{ui.MsgScenarioNotFound}, f.bot.Texts())
	assert.Nil(t, f.current(t))
}

func TestStartReplacesPreviousContext(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	require.NoError(t, f.disp.Start(f.ctx, KindAddList, text("/addlist")))

	all, err := f.store.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, KindAddList, all[0].Kind)
}

func TestUnregisteredUserCannotStart(t *testing.T) {
	f := newFixture(t)
	upd := text("/addtask")
	upd.UserID = 777

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, upd))

	texts := f.bot.Texts()
	require.Len(t, texts, 2)
	assert.Equal(t, ui.MsgRegisterFirst, texts[0])
	assert.Equal(t, ui.Unauthorized().ReplyKeyboard, f.bot.Sent()[0].Options.ReplyKeyboard)
	assert.Equal(t, 0, f.store.Len())
}

func TestSendFailureDoesNotAbortConversation(t *testing.T) {
	f := newFixture(t)
	f.bot.Fail(fakebot.OpSend, errors.New("network down"))

	require.NoError(t, f.disp.Start(f.ctx, KindAddTask, text("/addtask")))
	f.handle(t, text("Walk dog"))

	assert.Equal(t, AddTaskListSelection, f.current(t).AddTask.Step)
}

func TestDispatcherHooksAndResults(t *testing.T) {
	f := newFixture(t)
	var started, completed []string
	var results []Result
	f.disp.OnUpdateStarted = func(_ context.Context, s string) { started = append(started, s) }
	f.disp.OnUpdateCompleted = func(_ context.Context, s string) { completed = append(completed, s) }
	f.disp.OnResult = func(_ Kind, r Result) { results = append(results, r) }

	require.NoError(t, f.disp.Start(f.ctx, KindAddList, text("/addlist")))
	f.handle(t, text("Work"))

	assert.Equal(t, []string{"Work"}, started)
	assert.Equal(t, []string{"Work"}, completed)
	assert.Equal(t, []Result{Transition, Completed}, results)
}

func TestAddListAbortsOnDuplicate(t *testing.T) {
	f := newFixture(t)
	_, err := f.lists.Add(f.ctx, f.user, "Work")
	require.NoError(t, err)

	require.NoError(t, f.disp.Start(f.ctx, KindAddList, text("/addlist")))
	f.bot.Reset()
	f.handle(t, text("Work"))

	assert.Equal(t, []string{ui.ErrorText(domain.ErrDuplicateList), ui.MsgActionCompleted}, f.bot.Texts())
	assert.Nil(t, f.current(t))
	lists, err := f.lists.ByUser(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}

func TestAddListRepromptsOnTooLongName(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.disp.Start(f.ctx, KindAddList, text("/addlist")))
	f.bot.Reset()
	f.handle(t, text("Groceries and more"))

	texts := f.bot.Texts()
	require.Len(t, texts, 2)
	assert.Equal(t, ui.MsgCancelHint, texts[1])
	assert.Equal(t, AddListName, f.current(t).AddList.Step)

	f.bot.Reset()
	f.handle(t, text("Personal"))
	texts = f.bot.Texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Personal")
	assert.Equal(t, ui.MsgActionCompleted, texts[1])
}

func TestDeleteListConfirmed(t *testing.T) {
	f := newFixture(t)
	list, err := f.lists.Add(f.ctx, f.user, "Trip")
	require.NoError(t, err)
	for _, name := range []string{"Tickets", "Hotel"} {
		_, err := f.tasks.Add(f.ctx, f.user, name, nil, &list.ID)
		require.NoError(t, err)
	}
	_, err = f.tasks.Add(f.ctx, f.user, "Unrelated", nil, nil)
	require.NoError(t, err)

	require.NoError(t, f.disp.Start(f.ctx, KindDeleteList, press(callbacks.Data(callbacks.ActionDeleteList))))
	assert.Equal(t, DeleteListApprove, f.current(t).DeleteList.Step)

	f.handle(t, press(callbacks.Data(callbacks.ActionDeleteList, list.ID.String())))
	assert.Equal(t, DeleteListDelete, f.current(t).DeleteList.Step)

	f.bot.Reset()
	f.handle(t, press(callbacks.Data(callbacks.ActionYes)))

	texts := f.bot.Texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Trip")
	assert.Contains(t, texts[0], "2 task(s)")
	assert.Nil(t, f.current(t))

	lists, err := f.lists.ByUser(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, lists)
	tasks, err := f.tasks.All(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Unrelated", tasks[0].Name)
}

func TestDeleteListWithoutLists(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Start(f.ctx, KindDeleteList, press(callbacks.Data(callbacks.ActionDeleteList))))

	assert.Equal(t, []string{ui.MsgNoLists, ui.MsgActionCompleted}, f.bot.Texts())
	assert.Nil(t, f.current(t))
}

func TestDeleteListAsksAgainOnText(t *testing.T) {
	f := newFixture(t)
	list, err := f.lists.Add(f.ctx, f.user, "Trip")
	require.NoError(t, err)

	require.NoError(t, f.disp.Start(f.ctx, KindDeleteList, press(callbacks.Data(callbacks.ActionDeleteList))))
	f.handle(t, press(callbacks.Data(callbacks.ActionDeleteList, list.ID.String())))
	f.bot.Reset()
	f.handle(t, text("maybe"))

	assert.Equal(t, []string{ui.MsgAnswerYesNo, ui.MsgCancelHint}, f.bot.Texts())
	assert.Equal(t, DeleteListDelete, f.current(t).DeleteList.Step)
}

func TestDeleteTaskDeclined(t *testing.T) {
	f := newFixture(t)
	task, err := f.tasks.Add(f.ctx, f.user, "Keep me", nil, nil)
	require.NoError(t, err)

	require.NoError(t, f.disp.Start(f.ctx, KindDeleteTask, press(callbacks.Data(callbacks.ActionDeleteTask, task.ID.String()))))
	assert.Equal(t, DeleteTaskConfirm, f.current(t).DeleteTask.Step)

	f.bot.Reset()
	f.handle(t, press(callbacks.Data(callbacks.ActionNo)))

	assert.Equal(t, []string{ui.MsgDeletionCancelled, ui.MsgActionCompleted}, f.bot.Texts())
	_, err = f.tasks.Get(f.ctx, f.user.ID, task.ID)
	require.NoError(t, err)
}

func TestDeleteTaskConfirmed(t *testing.T) {
	f := newFixture(t)
	task, err := f.tasks.Add(f.ctx, f.user, "Drop me", nil, nil)
	require.NoError(t, err)

	require.NoError(t, f.disp.Start(f.ctx, KindDeleteTask, press(callbacks.Data(callbacks.ActionDeleteTask, task.ID.String()))))
	f.handle(t, press(callbacks.Data(callbacks.ActionYes)))

	_, err = f.tasks.Get(f.ctx, f.user.ID, task.ID)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Nil(t, f.current(t))
}

func TestDeleteTaskUnknownTask(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.disp.Start(f.ctx, KindDeleteTask, press(callbacks.Data(callbacks.ActionDeleteTask, "not-a-uuid"))))

	assert.Equal(t, []string{ui.MsgTaskNotFound, ui.MsgActionCompleted}, f.bot.Texts())
	assert.Nil(t, f.current(t))
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate(" 01.02.2026 ")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "1.2.2026", "2026.02.01", "30.02.2026"} {
		_, ok := ParseDate(bad)
		assert.False(t, ok, bad)
	}
}

var _ botport.Port = (*fakebot.Bot)(nil)

func TestDeleteTaskVanishedBeforeConfirm(t *testing.T) {
	f := newFixture(t)
	task, err := f.tasks.Add(f.ctx, f.user, "Gone soon", nil, nil)
	require.NoError(t, err)

	require.NoError(t, f.disp.Start(f.ctx, KindDeleteTask, press(callbacks.Data(callbacks.ActionDeleteTask, task.ID.String()))))
	require.NoError(t, f.tasks.Delete(f.ctx, f.user.ID, task.ID))

	f.bot.Reset()
	f.handle(t, press(callbacks.Data(callbacks.ActionYes)))

	assert.Equal(t, []string{ui.MsgTaskNotFound, ui.MsgActionCompleted}, f.bot.Texts())
	assert.Nil(t, f.current(t))
}

func TestDeleteListVanishedBeforeConfirm(t *testing.T) {
	f := newFixture(t)
	list, err := f.lists.Add(f.ctx, f.user, "Trip")
	require.NoError(t, err)

	require.NoError(t, f.disp.Start(f.ctx, KindDeleteList, press(callbacks.Data(callbacks.ActionDeleteList))))
	f.handle(t, press(callbacks.Data(callbacks.ActionDeleteList, list.ID.String())))
	require.NoError(t, f.lists.Delete(f.ctx, f.user.ID, list.ID))

	f.bot.Reset()
	f.handle(t, press(callbacks.Data(callbacks.ActionYes)))

	assert.Equal(t, []string{ui.MsgListNotFound, ui.MsgActionCompleted}, f.bot.Texts())
	assert.Nil(t, f.current(t))
}
