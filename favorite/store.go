package favorite

import (
	"context"
	"encoding/json"
	"strconv"

	"moviehub/pkg/logger"

	"go.uber.org/zap"
)

// StorageKey is where the favorite list lives in local storage.
const StorageKey = "movie-app-favorites"

// Storage is a durable string key-value store.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// LocalStore persists a favorite Set as a JSON array. None of its methods
// fail: storage errors are logged and reads degrade to an empty set.
type LocalStore struct {
	storage Storage
	key     string
	log     *zap.SugaredLogger
}

func NewLocalStore(storage Storage, log *zap.SugaredLogger) *LocalStore {
	if log == nil {
		log = logger.NOOPLogger
	}
	return &LocalStore{
		storage: storage,
		key:     StorageKey,
		log:     log,
	}
}

func (s *LocalStore) Load(ctx context.Context) Set {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.log.Warnw("cannot read favorites from storage", "error", err)
		return NewSet()
	}
	if !ok || raw == "" {
		return NewSet()
	}

	// older payloads stored numeric ids
	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warnw("corrupt favorites payload", "error", err)
		return NewSet()
	}

	set := NewSet()
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				set.Add(v)
			}
		case float64:
			set.Add(strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return set
}

func (s *LocalStore) Save(ctx context.Context, set Set) {
	payload, err := json.Marshal(set.Keys())
	if err != nil {
		s.log.Warnw("cannot encode favorites", "error", err)
		return
	}
	if err := s.storage.Set(ctx, s.key, string(payload)); err != nil {
		s.log.Warnw("cannot write favorites to storage", "error", err)
	}
}

func (s *LocalStore) Add(ctx context.Context, key string) {
	set := s.Load(ctx)
	if set.Has(key) {
		return
	}
	set.Add(key)
	s.Save(ctx, set)
}

func (s *LocalStore) Remove(ctx context.Context, key string) {
	set := s.Load(ctx)
	set.Remove(key)
	s.Save(ctx, set)
}

func (s *LocalStore) Clear(ctx context.Context) {
	if err := s.storage.Remove(ctx, s.key); err != nil {
		s.log.Warnw("cannot clear favorites", "error", err)
	}
}
