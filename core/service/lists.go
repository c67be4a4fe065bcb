package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/logger"
)

// ListService manages task lists.
type ListService struct {
	repo ListRepository
	now  func() time.Time
}

// NewListService builds a ListService backed by repo.
func NewListService(repo ListRepository) *ListService {
	return &ListService{repo: repo, now: utcNow}
}

// Add creates a list. Empty, too long and duplicate names are validation errors.
func (s *ListService) Add(ctx context.Context, user *domain.User, name string) (*domain.List, error) {
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name", domain.ErrEmptyName)
	}
	if utf8.RuneCountInString(name) > domain.MaxListNameLength {
		return nil, domain.Invalid("name", fmt.Errorf("%w: max %d characters", domain.ErrListNameTooLong, domain.MaxListNameLength))
	}
	exists, err := s.repo.ExistsByName(ctx, user.ID, name)
	if err != nil {
		return nil, fmt.Errorf("check list name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateList, name)
	}
	list := &domain.List{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.repo.Add(ctx, list); err != nil {
		return nil, fmt.Errorf("add list: %w", err)
	}
	logger.Info(ctx, "service.lists", "list.added",
		slog.String("status", "ok"),
		slog.String("list_id", list.ID.String()),
	)
	return list, nil
}

// Get returns a list owned by userID.
func (s *ListService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.List, error) {
	list, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if list.UserID != userID {
		return nil, domain.ErrListNotFound
	}
	return list, nil
}

// ByUser returns the user's lists.
func (s *ListService) ByUser(ctx context.Context, userID uuid.UUID) ([]domain.List, error) {
	lists, err := s.repo.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

// Delete removes a list owned by userID. Tasks must be removed first.
func (s *ListService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	logger.Info(ctx, "service.lists", "list.deleted",
		slog.String("status", "ok"),
		slog.String("list_id", id.String()),
	)
	return nil
}
