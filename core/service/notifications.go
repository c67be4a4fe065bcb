package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/logger"
)

// NotificationService schedules deduplicated notifications and tracks delivery.
type NotificationService struct {
	repo NotificationRepository
}

// NewNotificationService builds a NotificationService backed by repo.
func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Schedule stores a notification unless one with the same (userID, type) exists.
// It reports false when the notification was already scheduled.
func (s *NotificationService) Schedule(ctx context.Context, userID uuid.UUID, typ, text string, at time.Time) (bool, error) {
	n := &domain.Notification{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        typ,
		Text:        text,
		ScheduledAt: at.UTC(),
	}
	added, err := s.repo.Add(ctx, n)
	if err != nil {
		return false, fmt.Errorf("schedule notification %s: %w", typ, err)
	}
	status := "ok"
	if !added {
		status = "skip"
	}
	logger.Debug(ctx, "service.notify", "notification.schedule",
		slog.String("status", status),
		slog.String("type", typ),
	)
	return added, nil
}

// Due returns notifications not yet delivered whose time has come.
func (s *NotificationService) Due(ctx context.Context, now time.Time) ([]domain.Notification, error) {
	items, err := s.repo.Due(ctx, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("due notifications: %w", err)
	}
	return items, nil
}

// MarkNotified flags a notification as delivered at the given time.
func (s *NotificationService) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := s.repo.MarkNotified(ctx, id, at.UTC()); err != nil {
		return fmt.Errorf("mark notified %s: %w", id, err)
	}
	return nil
}
