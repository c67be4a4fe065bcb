// Package memory provides in-process repositories for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/service"
)

var (
	_ service.UserRepository         = (*Users)(nil)
	_ service.TaskRepository         = (*Tasks)(nil)
	_ service.ListRepository         = (*Lists)(nil)
	_ service.NotificationRepository = (*Notifications)(nil)
)

// Users keeps users keyed by Telegram id.
type Users struct {
	mu    sync.RWMutex
	items map[int64]domain.User
}

// NewUsers returns an empty user repository.
func NewUsers() *Users {
	return &Users{items: make(map[int64]domain.User)}
}

func (r *Users) Add(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[u.TelegramUserID]; ok {
		return domain.ErrUserExists
	}
	r.items[u.TelegramUserID] = *u
	return nil
}

func (r *Users) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[telegramID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *Users) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

// Tasks keeps tasks keyed by id. Ties on CreatedAt are broken by insertion order.
type Tasks struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Task
	seq   map[uuid.UUID]uint64
	next  uint64
}

// NewTasks returns an empty task repository.
func NewTasks() *Tasks {
	return &Tasks{items: make(map[uuid.UUID]domain.Task), seq: make(map[uuid.UUID]uint64)}
}

func (r *Tasks) Add(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.items[t.ID] = *t
	r.seq[t.ID] = r.next
	return nil
}

func (r *Tasks) Get(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *Tasks) Update(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.items[t.ID] = *t
	return nil
}

func (r *Tasks) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.items, id)
	delete(r.seq, id)
	return nil
}

func (r *Tasks) DeleteByList(_ context.Context, userID, listID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, t := range r.items {
		if t.UserID == userID && t.ListID != nil && *t.ListID == listID {
			delete(r.items, id)
			delete(r.seq, id)
			n++
		}
	}
	return n, nil
}

func (r *Tasks) ByUser(_ context.Context, userID uuid.UUID) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool { return t.UserID == userID }), nil
}

func (r *Tasks) ByList(_ context.Context, userID uuid.UUID, listID *uuid.UUID) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool {
		if t.UserID != userID {
			return false
		}
		if listID == nil {
			return t.ListID == nil
		}
		return t.ListID != nil && *t.ListID == *listID
	}), nil
}

func (r *Tasks) CountActive(_ context.Context, userID uuid.UUID) (int, error) {
	return len(r.filter(func(t domain.Task) bool { return t.UserID == userID && t.Active() })), nil
}

func (r *Tasks) ExistsActiveByName(_ context.Context, userID uuid.UUID, name string) (bool, error) {
	found := r.filter(func(t domain.Task) bool {
		return t.UserID == userID && t.Active() && t.Name == name
	})
	return len(found) > 0, nil
}

func (r *Tasks) FindByPrefix(_ context.Context, userID uuid.UUID, prefix string) ([]domain.Task, error) {
	prefix = strings.ToLower(prefix)
	return r.filter(func(t domain.Task) bool {
		return t.UserID == userID && strings.HasPrefix(strings.ToLower(t.Name), prefix)
	}), nil
}

func (r *Tasks) ActiveWithDeadline(_ context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Task, error) {
	return r.filter(func(t domain.Task) bool {
		if t.UserID != userID || !t.Active() || t.Deadline == nil {
			return false
		}
		return !t.Deadline.Before(from) && t.Deadline.Before(to)
	}), nil
}

func (r *Tasks) filter(keep func(domain.Task) bool) []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Task
	for _, t := range r.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] < r.seq[out[j].ID]
	})
	return out
}

// Lists keeps lists keyed by id.
type Lists struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.List
}

// NewLists returns an empty list repository.
func NewLists() *Lists {
	return &Lists{items: make(map[uuid.UUID]domain.List)}
}

func (r *Lists) Add(_ context.Context, l *domain.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[l.ID] = *l
	return nil
}

func (r *Lists) Get(_ context.Context, id uuid.UUID) (*domain.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domain.ErrListNotFound
	}
	return &l, nil
}

func (r *Lists) ByUser(_ context.Context, userID uuid.UUID) ([]domain.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.List
	for _, l := range r.items {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Lists) ExistsByName(_ context.Context, userID uuid.UUID, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.items {
		if l.UserID == userID && l.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *Lists) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrListNotFound
	}
	delete(r.items, id)
	return nil
}

type notificationKey struct {
	userID uuid.UUID
	typ    string
}

// Notifications keeps notifications with a unique (user, type) index.
// Users resolves Telegram ids for Due; it may be nil.
type Notifications struct {
	mu     sync.RWMutex
	items  map[uuid.UUID]domain.Notification
	byType map[notificationKey]uuid.UUID
	users  *Users
}

// NewNotifications returns an empty notification repository.
func NewNotifications(users *Users) *Notifications {
	return &Notifications{
		items:  make(map[uuid.UUID]domain.Notification),
		byType: make(map[notificationKey]uuid.UUID),
		users:  users,
	}
}

func (r *Notifications) Add(_ context.Context, n *domain.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := notificationKey{userID: n.UserID, typ: n.Type}
	if _, ok := r.byType[key]; ok {
		return false, nil
	}
	r.items[n.ID] = *n
	r.byType[key] = n.ID
	return true, nil
}

func (r *Notifications) Due(_ context.Context, before time.Time) ([]domain.Notification, error) {
	telegramIDs := r.telegramIDs()
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Notification
	for _, n := range r.items {
		if n.IsNotified || n.ScheduledAt.After(before) {
			continue
		}
		if id, ok := telegramIDs[n.UserID]; ok {
			n.TelegramUserID = id
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *Notifications) MarkNotified(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil
	}
	n.IsNotified = true
	n.NotifiedAt = &at
	r.items[id] = n
	return nil
}

// Count reports the number of stored notifications.
func (r *Notifications) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Notifications) telegramIDs() map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64)
	if r.users == nil {
		return out
	}
	r.users.mu.RLock()
	defer r.users.mu.RUnlock()
	for _, u := range r.users.items {
		out[u.ID] = u.TelegramUserID
	}
	return out
}
