package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/logger"
)

// TaskService applies naming rules and per-user limits to tasks.
type TaskService struct {
	repo TaskRepository
	now  func() time.Time
}

// NewTaskService builds a TaskService backed by repo.
func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo, now: utcNow}
}

// Add creates an active task for user.
// Validation failures are wrapped in domain.ValidationError; duplicates and limits are not.
func (s *TaskService) Add(ctx context.Context, user *domain.User, name string, deadline *time.Time, listID *uuid.UUID) (*domain.Task, error) {
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name", domain.ErrEmptyName)
	}
	if limit := user.MaxTaskNameLength; limit > 0 && utf8.RuneCountInString(name) > limit {
		return nil, domain.Invalid("name", fmt.Errorf("%w: max %d characters", domain.ErrTaskNameTooLong, limit))
	}
	active, err := s.repo.CountActive(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count active tasks: %w", err)
	}
	if limit := user.MaxTaskCount; limit > 0 && active >= limit {
		return nil, fmt.Errorf("%w: max %d", domain.ErrTaskLimit, limit)
	}
	exists, err := s.repo.ExistsActiveByName(ctx, user.ID, name)
	if err != nil {
		return nil, fmt.Errorf("check task name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateTask, name)
	}

	task := &domain.Task{
		ID:        uuid.New(),
		UserID:    user.ID,
		ListID:    listID,
		Name:      name,
		CreatedAt: s.now(),
		State:     domain.TaskActive,
		Deadline:  deadline,
	}
	if err := s.repo.Add(ctx, task); err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	logger.Info(ctx, "service.tasks", "task.added",
		slog.String("status", "ok"),
		slog.String("task_id", task.ID.String()),
		slog.Bool("deadline", deadline != nil),
		slog.Bool("list", listID != nil),
	)
	return task, nil
}

// Get returns a task owned by userID.
func (s *TaskService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// Active returns the user's active tasks ordered by creation time.
func (s *TaskService) Active(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	all, err := s.repo.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return activeSorted(all), nil
}

// ActiveInList returns active tasks of one list, or of no list when listID is nil.
func (s *TaskService) ActiveInList(ctx context.Context, userID uuid.UUID, listID *uuid.UUID) ([]domain.Task, error) {
	tasks, err := s.repo.ByList(ctx, userID, listID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by list: %w", err)
	}
	return activeSorted(tasks), nil
}

// All returns every task of the user regardless of state.
func (s *TaskService) All(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	return s.repo.ByUser(ctx, userID)
}

// MarkCompleted completes a task owned by userID.
func (s *TaskService) MarkCompleted(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !task.Active() {
		return task, nil
	}
	now := s.now()
	task.State = domain.TaskCompleted
	task.StateChangedAt = &now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}
	logger.Info(ctx, "service.tasks", "task.completed",
		slog.String("status", "ok"),
		slog.String("task_id", id.String()),
	)
	return task, nil
}

// Delete removes a task owned by userID.
func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	logger.Info(ctx, "service.tasks", "task.deleted",
		slog.String("status", "ok"),
		slog.String("task_id", id.String()),
	)
	return nil
}

// DeleteByList removes every task of a list and reports how many were removed.
func (s *TaskService) DeleteByList(ctx context.Context, userID, listID uuid.UUID) (int, error) {
	n, err := s.repo.DeleteByList(ctx, userID, listID)
	if err != nil {
		return 0, fmt.Errorf("delete tasks of list: %w", err)
	}
	return n, nil
}

// Find returns the user's tasks whose name starts with prefix, ignoring case.
func (s *TaskService) Find(ctx context.Context, userID uuid.UUID, prefix string) ([]domain.Task, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	tasks, err := s.repo.FindByPrefix(ctx, userID, prefix)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	return tasks, nil
}

// ActiveWithDeadline returns active tasks whose deadline is in [from, to).
func (s *TaskService) ActiveWithDeadline(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Task, error) {
	tasks, err := s.repo.ActiveWithDeadline(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("tasks with deadline: %w", err)
	}
	return tasks, nil
}

func activeSorted(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Active() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
