package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/todobot/core/scenario"
)

// ErrNil is returned by Client.Get for a missing key.
var ErrNil = errors.New("redis: nil")

const keyPrefix = "scenario:ctx:"

var _ scenario.Store = (*ScenarioStore)(nil)

// ScenarioStore keeps one JSON-encoded context per user under scenario:ctx:<userID>.
// Keys expire after ttl so abandoned contexts vanish even without the timeout sweep.
type ScenarioStore struct {
	client Client
	ttl    time.Duration
}

// NewScenarioStore builds a store; ttl <= 0 stores keys without expiry.
func NewScenarioStore(client Client, ttl time.Duration) *ScenarioStore {
	return &ScenarioStore{client: client, ttl: ttl}
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

func (s *ScenarioStore) Get(ctx context.Context, userID int64) (*scenario.Context, error) {
	raw, err := s.client.Get(ctx, key(userID))
	if errors.Is(err, ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get scenario %d: %w", userID, err)
	}
	var sc scenario.Context
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return nil, fmt.Errorf("decode scenario %d: %w", userID, err)
	}
	return &sc, nil
}

func (s *ScenarioStore) Set(ctx context.Context, sc *scenario.Context) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode scenario %d: %w", sc.UserID, err)
	}
	if err := s.client.Set(ctx, key(sc.UserID), data, s.ttl); err != nil {
		return fmt.Errorf("redis set scenario %d: %w", sc.UserID, err)
	}
	return nil
}

func (s *ScenarioStore) Reset(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, key(userID)); err != nil {
		return fmt.Errorf("redis del scenario %d: %w", userID, err)
	}
	return nil
}

// List walks the key space with SCAN; keys that vanish mid-walk are skipped.
func (s *ScenarioStore) List(ctx context.Context) ([]*scenario.Context, error) {
	var (
		cursor uint64
		out    []*scenario.Context
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100)
		if err != nil {
			return nil, fmt.Errorf("redis scan scenarios: %w", err)
		}
		for _, k := range keys {
			id, err := strconv.ParseInt(strings.TrimPrefix(k, keyPrefix), 10, 64)
			if err != nil {
				continue
			}
			sc, err := s.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if sc != nil {
				out = append(out, sc)
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
