package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/service"
)

var _ service.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo stores notifications; uq_notifications_user_type enforces dedup.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo builds a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Add(ctx context.Context, n *domain.Notification) (bool, error) {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, text, scheduled_at, is_notified, notified_at)
		VALUES (:id, :user_id, :type, :text, :scheduled_at, :is_notified, :notified_at)
		ON CONFLICT ON CONSTRAINT uq_notifications_user_type DO NOTHING`, n)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *NotificationRepo) Due(ctx context.Context, before time.Time) ([]domain.Notification, error) {
	var items []domain.Notification
	err := r.db.SelectContext(ctx, &items, `
		SELECT n.id, n.user_id, u.telegram_user_id, n.type, n.text, n.scheduled_at, n.is_notified, n.notified_at
		FROM notifications n
		JOIN users u ON u.id = n.user_id
		WHERE NOT n.is_notified AND n.scheduled_at <= $1
		ORDER BY n.scheduled_at`, before)
	if err != nil {
		return nil, fmt.Errorf("select due notifications: %w", err)
	}
	return items, nil
}

func (r *NotificationRepo) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_notified = TRUE, notified_at = $2 WHERE id = $1 AND NOT is_notified`, id, at)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}
