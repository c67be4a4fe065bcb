// Package domain holds the to-do entities shared by services, storage and the bot.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxTaskCount bounds active tasks per user when config does not override it.
	DefaultMaxTaskCount = 100
	// DefaultMaxTaskNameLength bounds task names in runes.
	DefaultMaxTaskNameLength = 100
	// MaxListNameLength bounds list names in runes.
	MaxListNameLength = 10
)

// User is a registered Telegram user together with their personal limits.
type User struct {
	ID                uuid.UUID `db:"id"`
	TelegramUserID    int64     `db:"telegram_user_id"`
	TelegramUserName  string    `db:"telegram_user_name"`
	RegisteredAt      time.Time `db:"registered_at"`
	MaxTaskCount      int       `db:"max_task_count"`
	MaxTaskNameLength int       `db:"max_task_name_length"`
}

// TaskState is the lifecycle state of a task.
type TaskState string

const (
	TaskActive    TaskState = "active"
	TaskCompleted TaskState = "completed"
)

// Task is a single to-do item.
type Task struct {
	ID             uuid.UUID  `db:"id"`
	UserID         uuid.UUID  `db:"user_id"`
	ListID         *uuid.UUID `db:"list_id"`
	Name           string     `db:"name"`
	CreatedAt      time.Time  `db:"created_at"`
	State          TaskState  `db:"state"`
	StateChangedAt *time.Time `db:"state_changed_at"`
	Deadline       *time.Time `db:"deadline"`
}

// Active reports whether the task is still open.
func (t Task) Active() bool { return t.State == TaskActive }

// List groups tasks of one user.
type List struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Notification is a deduplicated message scheduled for a user.
// At most one notification exists per (UserID, Type).
type Notification struct {
	ID             uuid.UUID  `db:"id"`
	UserID         uuid.UUID  `db:"user_id"`
	TelegramUserID int64      `db:"telegram_user_id"`
	Type           string     `db:"type"`
	Text           string     `db:"text"`
	ScheduledAt    time.Time  `db:"scheduled_at"`
	IsNotified     bool       `db:"is_notified"`
	NotifiedAt     *time.Time `db:"notified_at"`
}

// Stats summarises a user's tasks.
type Stats struct {
	Total       int
	Completed   int
	Active      int
	GeneratedAt time.Time
}

// DayStart truncates t to 00:00 UTC of the same day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
