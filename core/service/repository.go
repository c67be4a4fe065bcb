// Package service implements the to-do business rules on top of repository ports.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/todobot/core/domain"
)

// UserRepository persists users. Lookups of unknown users return domain.ErrUserNotFound.
type UserRepository interface {
	Add(ctx context.Context, u *domain.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// TaskRepository persists tasks. Lookups of unknown tasks return domain.ErrTaskNotFound.
type TaskRepository interface {
	Add(ctx context.Context, t *domain.Task) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByList(ctx context.Context, userID, listID uuid.UUID) (int, error)
	ByUser(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	ByList(ctx context.Context, userID uuid.UUID, listID *uuid.UUID) ([]domain.Task, error)
	CountActive(ctx context.Context, userID uuid.UUID) (int, error)
	ExistsActiveByName(ctx context.Context, userID uuid.UUID, name string) (bool, error)
	FindByPrefix(ctx context.Context, userID uuid.UUID, prefix string) ([]domain.Task, error)
	ActiveWithDeadline(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Task, error)
}

// ListRepository persists lists. Lookups of unknown lists return domain.ErrListNotFound.
type ListRepository interface {
	Add(ctx context.Context, l *domain.List) error
	Get(ctx context.Context, id uuid.UUID) (*domain.List, error)
	ByUser(ctx context.Context, userID uuid.UUID) ([]domain.List, error)
	ExistsByName(ctx context.Context, userID uuid.UUID, name string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotificationRepository persists notifications.
// Add reports false without error when (UserID, Type) is already taken.
type NotificationRepository interface {
	Add(ctx context.Context, n *domain.Notification) (bool, error)
	Due(ctx context.Context, before time.Time) ([]domain.Notification, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

func utcNow() time.Time { return time.Now().UTC() }
