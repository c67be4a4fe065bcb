package redis

import (
	"context"
	"errors"
	"path"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/todobot/core/domain"
	"github.com/m3rciful/todobot/core/scenario"
)

// fakeClient is an in-memory Client that pages SCAN results two keys at a time.
type fakeClient struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeClient) Ping(context.Context) error { return f.err }

func (f *fakeClient) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", ErrNil
	}
	return string(v), nil
}

func (f *fakeClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[key] = append([]byte(nil), value...)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeClient) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return f.err
}

func (f *fakeClient) Scan(_ context.Context, cursor uint64, match string, _ int64) ([]string, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	var all []string
	for k := range f.data {
		if ok, _ := path.Match(match, k); ok {
			all = append(all, k)
		}
	}
	sort.Strings(all)
	start := int(cursor)
	if start >= len(all) {
		return nil, 0, nil
	}
	end := start + 2
	if end >= len(all) {
		return all[start:], 0, nil
	}
	return all[start:end], uint64(end), nil
}

func (f *fakeClient) Close() error { return nil }

func TestScenarioStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewScenarioStore(client, time.Hour)

	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sc := scenario.NewContext(scenario.KindAddTask, 42, 4242, created)
	listID := uuid.New()
	sc.AddTask.Step = scenario.AddTaskDeadline
	sc.AddTask.User = &domain.User{ID: uuid.New(), TelegramUserID: 42, MaxTaskCount: 5}
	sc.AddTask.Name = "Buy milk"
	sc.AddTask.ListID = &listID
	sc.AddTask.ListName = "Home"
	require.NoError(t, store.Set(ctx, sc))

	assert.Equal(t, time.Hour, client.ttls["scenario:ctx:42"])

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, scenario.KindAddTask, got.Kind)
	assert.Equal(t, int64(4242), got.ChatID)
	assert.True(t, created.Equal(got.CreatedAt))
	require.NotNil(t, got.AddTask)
	assert.Equal(t, scenario.AddTaskDeadline, got.AddTask.Step)
	assert.Equal(t, "Buy milk", got.AddTask.Name)
	assert.Equal(t, listID, *got.AddTask.ListID)
	assert.Equal(t, 5, got.AddTask.User.MaxTaskCount)
	assert.Nil(t, got.DeleteList)
}

func TestScenarioStoreMissingAndReset(t *testing.T) {
	ctx := context.Background()
	store := NewScenarioStore(newFakeClient(), 0)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Set(ctx, scenario.NewContext(scenario.KindAddList, 1, 1, time.Now())))
	require.NoError(t, store.Reset(ctx, 1))
	got, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScenarioStoreListPages(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewScenarioStore(client, time.Hour)
	for _, id := range []int64{5, 3, 9, 1, 7} {
		require.NoError(t, store.Set(ctx, scenario.NewContext(scenario.KindDeleteList, id, id, time.Now())))
	}
	client.data["scenario:ctx:garbage"] = []byte("{}")

	all, err := store.List(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(all))
	for _, sc := range all {
		ids = append(ids, sc.UserID)
	}
	assert.Equal(t, []int64{1, 3, 5, 7, 9}, ids)
}

func TestScenarioStoreErrors(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewScenarioStore(client, time.Hour)
	client.data["scenario:ctx:1"] = []byte("not json")

	_, err := store.Get(ctx, 1)
	require.Error(t, err)

	client.err = errors.New("connection refused")
	_, err = store.Get(ctx, 2)
	require.ErrorContains(t, err, "connection refused")
	_, err = store.List(ctx)
	require.Error(t, err)
	require.Error(t, store.Set(ctx, scenario.NewContext(scenario.KindAddTask, 3, 3, time.Now())))
}
