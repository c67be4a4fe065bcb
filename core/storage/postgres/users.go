// Package postgres implements the service repositories on PostgreSQL via sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/service"
)

var _ service.UserRepository = (*UserRepo)(nil)

const uniqueViolation = "23505"

// UserRepo stores users in the users table.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo builds a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Add(ctx context.Context, u *domain.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, telegram_user_id, telegram_user_name, registered_at, max_task_count, max_task_name_length)
		VALUES (:id, :telegram_user_id, :telegram_user_name, :registered_at, :max_task_count, :max_task_name_length)`, u)
	if isUniqueViolation(err) {
		return domain.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, telegram_user_id, telegram_user_name, registered_at, max_task_count, max_task_name_length
		FROM users WHERE telegram_user_id = $1`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT id, telegram_user_id, telegram_user_name, registered_at, max_task_count, max_task_name_length
		FROM users ORDER BY registered_at`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
