package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/logger"
)

// Limits are the defaults copied onto newly registered users.
type Limits struct {
	MaxTaskCount      int
	MaxTaskNameLength int
}

// UserService registers and resolves Telegram users.
type UserService struct {
	repo   UserRepository
	limits Limits
}

// NewUserService builds a UserService. Zero limits fall back to domain defaults.
func NewUserService(repo UserRepository, limits Limits) *UserService {
	if limits.MaxTaskCount <= 0 {
		limits.MaxTaskCount = domain.DefaultMaxTaskCount
	}
	if limits.MaxTaskNameLength <= 0 {
		limits.MaxTaskNameLength = domain.DefaultMaxTaskNameLength
	}
	return &UserService{repo: repo, limits: limits}
}

// Get returns the user or nil when the Telegram id is not registered.
func (s *UserService) Get(ctx context.Context, telegramID int64) (*domain.User, error) {
	u, err := s.repo.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", telegramID, err)
	}
	return u, nil
}

// Register creates a user with the configured limits.
func (s *UserService) Register(ctx context.Context, telegramID int64, userName string) (*domain.User, error) {
	u := &domain.User{
		ID:                uuid.New(),
		TelegramUserID:    telegramID,
		TelegramUserName:  strings.TrimSpace(userName),
		RegisteredAt:      utcNow(),
		MaxTaskCount:      s.limits.MaxTaskCount,
		MaxTaskNameLength: s.limits.MaxTaskNameLength,
	}
	if err := s.repo.Add(ctx, u); err != nil {
		return nil, fmt.Errorf("register user %d: %w", telegramID, err)
	}
	logger.Info(ctx, "service.users", "user.registered",
		slog.String("status", "ok"),
		slog.Int64("user_id", telegramID),
	)
	return u, nil
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
