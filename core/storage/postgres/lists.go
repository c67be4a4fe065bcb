package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/service"
)

var _ service.ListRepository = (*ListRepo)(nil)

// ListRepo stores lists in the lists table.
type ListRepo struct {
	db *sqlx.DB
}

// NewListRepo builds a ListRepo.
func NewListRepo(db *sqlx.DB) *ListRepo {
	return &ListRepo{db: db}
}

func (r *ListRepo) Add(ctx context.Context, l *domain.List) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO lists (id, user_id, name, created_at)
		VALUES (:id, :user_id, :name, :created_at)`, l)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateList
	}
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

func (r *ListRepo) Get(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	var l domain.List
	err := r.db.GetContext(ctx, &l, `SELECT id, user_id, name, created_at FROM lists WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select list: %w", err)
	}
	return &l, nil
}

func (r *ListRepo) ByUser(ctx context.Context, userID uuid.UUID) ([]domain.List, error) {
	var lists []domain.List
	err := r.db.SelectContext(ctx, &lists,
		`SELECT id, user_id, name, created_at FROM lists WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("select lists: %w", err)
	}
	return lists, nil
}

func (r *ListRepo) ExistsByName(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM lists WHERE user_id = $1 AND name = $2)`, userID, name)
	if err != nil {
		return false, fmt.Errorf("list exists: %w", err)
	}
	return exists, nil
}

func (r *ListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return expectRow(res, domain.ErrListNotFound)
}
