// Package scenario runs multi-step conversations (add/delete task, add/delete list)
// on top of a per-user context store.
package scenario

import (
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/todobot/core/domain"
)

// Kind identifies a scenario.
type Kind string

const (
	KindAddTask    Kind = "add_task"
	KindDeleteTask Kind = "delete_task"
	KindAddList    Kind = "add_list"
	KindDeleteList Kind = "delete_list"
)

// AddTaskStep enumerates AddTask steps; the zero value is the initial step.
type AddTaskStep int

const (
	AddTaskStart AddTaskStep = iota
	AddTaskName
	AddTaskListSelection
	AddTaskDeadline
)

func (s AddTaskStep) String() string {
	switch s {
	case AddTaskStart:
		return "start"
	case AddTaskName:
		return "name"
	case AddTaskListSelection:
		return "list_selection"
	case AddTaskDeadline:
		return "deadline"
	}
	return "unknown"
}

// DeleteTaskStep enumerates DeleteTask steps.
type DeleteTaskStep int

const (
	DeleteTaskStart DeleteTaskStep = iota
	DeleteTaskConfirm
)

func (s DeleteTaskStep) String() string {
	switch s {
	case DeleteTaskStart:
		return "start"
	case DeleteTaskConfirm:
		return "confirm"
	}
	return "unknown"
}

// AddListStep enumerates AddList steps.
type AddListStep int

const (
	AddListStart AddListStep = iota
	AddListName
)

func (s AddListStep) String() string {
	switch s {
	case AddListStart:
		return "start"
	case AddListName:
		return "name"
	}
	return "unknown"
}

// DeleteListStep enumerates DeleteList steps.
type DeleteListStep int

const (
	DeleteListStart DeleteListStep = iota
	DeleteListApprove
	DeleteListDelete
)

func (s DeleteListStep) String() string {
	switch s {
	case DeleteListStart:
		return "start"
	case DeleteListApprove:
		return "approve"
	case DeleteListDelete:
		return "delete"
	}
	return "unknown"
}

// AddTaskState is the data collected by the AddTask scenario.
type AddTaskState struct {
	Step   AddTaskStep  `json:"step"`
	User   *domain.User `json:"user,omitempty"`
	Name   string       `json:"name,omitempty"`
	ListID *uuid.UUID   `json:"list_id,omitempty"`
	// ListName is kept for the confirmation message.
	ListName string `json:"list_name,omitempty"`
}

// DeleteTaskState is the data collected by the DeleteTask scenario.
type DeleteTaskState struct {
	Step     DeleteTaskStep `json:"step"`
	User     *domain.User   `json:"user,omitempty"`
	TaskID   uuid.UUID      `json:"task_id"`
	TaskName string         `json:"task_name,omitempty"`
}

// AddListState is the data collected by the AddList scenario.
type AddListState struct {
	Step AddListStep  `json:"step"`
	User *domain.User `json:"user,omitempty"`
}

// DeleteListState is the data collected by the DeleteList scenario.
type DeleteListState struct {
	Step     DeleteListStep `json:"step"`
	User     *domain.User   `json:"user,omitempty"`
	ListID   uuid.UUID      `json:"list_id"`
	ListName string         `json:"list_name,omitempty"`
}

// Context is the conversational state of one user. Exactly one state pointer
// is set and it matches Kind.
type Context struct {
	UserID    int64     `json:"user_id"`
	ChatID    int64     `json:"chat_id"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`

	AddTask    *AddTaskState    `json:"add_task,omitempty"`
	DeleteTask *DeleteTaskState `json:"delete_task,omitempty"`
	AddList    *AddListState    `json:"add_list,omitempty"`
	DeleteList *DeleteListState `json:"delete_list,omitempty"`
}

// NewContext builds a fresh context of kind at its initial step.
func NewContext(kind Kind, userID, chatID int64, now time.Time) *Context {
	sc := &Context{UserID: userID, ChatID: chatID, Kind: kind, CreatedAt: now}
	switch kind {
	case KindAddTask:
		sc.AddTask = &AddTaskState{}
	case KindDeleteTask:
		sc.DeleteTask = &DeleteTaskState{}
	case KindAddList:
		sc.AddList = &AddListState{}
	case KindDeleteList:
		sc.DeleteList = &DeleteListState{}
	}
	return sc
}

// Step renders the current step name for logs.
func (c *Context) Step() string {
	switch {
	case c == nil:
		return ""
	case c.AddTask != nil:
		return c.AddTask.Step.String()
	case c.DeleteTask != nil:
		return c.DeleteTask.Step.String()
	case c.AddList != nil:
		return c.AddList.Step.String()
	case c.DeleteList != nil:
		return c.DeleteList.Step.String()
	}
	return "unknown"
}

// Started reports whether the conversation moved past its initial step.
func (c *Context) Started() bool {
	switch {
	case c == nil:
		return false
	case c.AddTask != nil:
		return c.AddTask.Step != AddTaskStart
	case c.DeleteTask != nil:
		return c.DeleteTask.Step != DeleteTaskStart
	case c.AddList != nil:
		return c.AddList.Step != AddListStart
	case c.DeleteList != nil:
		return c.DeleteList.Step != DeleteListStart
	}
	return false
}

// Expired reports whether the context is older than timeout at now.
func (c *Context) Expired(now time.Time, timeout time.Duration) bool {
	return c != nil && timeout > 0 && now.Sub(c.CreatedAt) > timeout
}

// Clone returns a deep copy so callers never share mutable state with a store.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	out := *c
	if c.AddTask != nil {
		st := *c.AddTask
		st.User = cloneUser(st.User)
		if st.ListID != nil {
			id := *st.ListID
			st.ListID = &id
		}
		out.AddTask = &st
	}
	if c.DeleteTask != nil {
		st := *c.DeleteTask
		st.User = cloneUser(st.User)
		out.DeleteTask = &st
	}
	if c.AddList != nil {
		st := *c.AddList
		st.User = cloneUser(st.User)
		out.AddList = &st
	}
	if c.DeleteList != nil {
		st := *c.DeleteList
		st.User = cloneUser(st.User)
		out.DeleteList = &st
	}
	return &out
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
