package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/service"
)

var _ service.TaskRepository = (*TaskRepo)(nil)

const taskColumns = `id, user_id, list_id, name, created_at, state, state_changed_at, deadline`

// TaskRepo stores tasks in the tasks table.
type TaskRepo struct {
	db *sqlx.DB
}

// NewTaskRepo builds a TaskRepo.
func NewTaskRepo(db *sqlx.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) Add(ctx context.Context, t *domain.Task) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (:id, :user_id, :list_id, :name, :created_at, :state, :state_changed_at, :deadline)`, t)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var t domain.Task
	err := r.db.GetContext(ctx, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE tasks SET list_id = :list_id, name = :name, state = :state,
			state_changed_at = :state_changed_at, deadline = :deadline
		WHERE id = :id`, t)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return expectRow(res, domain.ErrTaskNotFound)
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return expectRow(res, domain.ErrTaskNotFound)
}

func (r *TaskRepo) DeleteByList(ctx context.Context, userID, listID uuid.UUID) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND list_id = $2`, userID, listID)
	if err != nil {
		return 0, fmt.Errorf("delete tasks by list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (r *TaskRepo) ByUser(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	return r.selectTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (r *TaskRepo) ByList(ctx context.Context, userID uuid.UUID, listID *uuid.UUID) ([]domain.Task, error) {
	if listID == nil {
		return r.selectTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND list_id IS NULL ORDER BY created_at`, userID)
	}
	return r.selectTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND list_id = $2 ORDER BY created_at`, userID, *listID)
}

func (r *TaskRepo) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND state = $2`, userID, domain.TaskActive)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepo) ExistsActiveByName(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE user_id = $1 AND state = $2 AND name = $3)`,
		userID, domain.TaskActive, name)
	if err != nil {
		return false, fmt.Errorf("task exists: %w", err)
	}
	return exists, nil
}

func (r *TaskRepo) FindByPrefix(ctx context.Context, userID uuid.UUID, prefix string) ([]domain.Task, error) {
	return r.selectTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND lower(name) LIKE $2 ESCAPE '\' ORDER BY created_at`,
		userID, escapeLike(strings.ToLower(prefix))+"%")
}

func (r *TaskRepo) ActiveWithDeadline(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Task, error) {
	return r.selectTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks
		WHERE user_id = $1 AND state = $2 AND deadline >= $3 AND deadline < $4
		ORDER BY deadline, created_at`,
		userID, domain.TaskActive, from, to)
}

func (r *TaskRepo) selectTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	return tasks, nil
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
