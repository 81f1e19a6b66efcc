package favorite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

type Service interface {
	Load(ctx context.Context)
	ServerBacked() bool
	Contains(key string) bool
	Count(key string, fallback int) int
	Keys() []string
	Counts() map[string]int
	Toggle(ctx context.Context, key string, displayed int) (Result, error)
}

// Store is the local persistence of the favorite set.
type Store interface {
	Load(ctx context.Context) Set
	Save(ctx context.Context, set Set)
}

// Remote is the server-side favorites endpoint.
type Remote interface {
	Toggle(ctx context.Context, key string) (RemoteResult, error)
	Check(ctx context.Context, key string) (bool, error)
}

type Authenticator interface {
	IsAuthenticated() bool
}

// Usecase keeps the in-memory favorite set in sync with the store and,
// when a Remote is configured, with the server. Without a Remote the set is
// client-only and no login is needed.
type Usecase struct {
	store  Store
	remote Remote
	auth   Authenticator

	mu       sync.Mutex
	set      Set
	counts   map[string]int
	inflight map[string]struct{}
}

func NewUsecase(store Store, remote Remote, auth Authenticator) *Usecase {
	return &Usecase{
		store:    store,
		remote:   remote,
		auth:     auth,
		set:      NewSet(),
		counts:   make(map[string]int),
		inflight: make(map[string]struct{}),
	}
}

// Load replaces the in-memory set with the persisted one. Without a remote
// the keys are imdb ids, so legacy numeric entries are rewritten to that form.
func (uc *Usecase) Load(ctx context.Context) {
	set := uc.store.Load(ctx)
	if uc.remote == nil {
		if migrated, changed := legacyCatalogKeys(set); changed {
			set = migrated
			uc.store.Save(ctx, set)
		}
	}
	uc.mu.Lock()
	uc.set = set
	uc.mu.Unlock()
}

func (uc *Usecase) ServerBacked() bool {
	return uc.remote != nil
}

func (uc *Usecase) Contains(key string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.set.Has(key)
}

// Count returns the last known favorite count of key, or fallback when the
// count was never changed in this session.
func (uc *Usecase) Count(key string, fallback int) int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if n, ok := uc.counts[key]; ok {
		return n
	}
	return fallback
}

func (uc *Usecase) Keys() []string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.set.Keys()
}

func (uc *Usecase) Counts() map[string]int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make(map[string]int, len(uc.counts))
	for k, v := range uc.counts {
		out[k] = v
	}
	return out
}

// Toggle flips the membership of key. displayed is the favorite count the
// user currently sees; server-backed toggles move it by one immediately and
// then settle on the server's answer, or restore it if the call fails.
func (uc *Usecase) Toggle(ctx context.Context, key string, displayed int) (Result, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Result{}, ErrInvalidKey
	}
	if uc.remote == nil {
		return uc.toggleLocal(ctx, key, displayed), nil
	}
	if uc.auth == nil || !uc.auth.IsAuthenticated() {
		return Result{}, ErrLoginRequired
	}

	uc.mu.Lock()
	if _, busy := uc.inflight[key]; busy {
		uc.mu.Unlock()
		return Result{}, ErrToggleInFlight
	}
	uc.inflight[key] = struct{}{}
	was := uc.set.Has(key)
	prevCount, hadCount := uc.counts[key]
	next := displayed + 1
	if was {
		next = displayed - 1
	}
	uc.apply(key, !was)
	uc.counts[key] = next
	snapshot := uc.set.Clone()
	uc.mu.Unlock()

	uc.store.Save(ctx, snapshot)

	remote, err := uc.remote.Toggle(ctx, key)

	uc.mu.Lock()
	delete(uc.inflight, key)
	if err != nil {
		uc.apply(key, was)
		if hadCount {
			uc.counts[key] = prevCount
		} else {
			delete(uc.counts, key)
		}
		snapshot = uc.set.Clone()
		uc.mu.Unlock()

		uc.store.Save(ctx, snapshot)
		return Result{Key: key, Favorited: was, Count: displayed}, err
	}

	uc.apply(key, remote.Favorited)
	if remote.Count != nil {
		uc.counts[key] = *remote.Count
	}
	result := Result{Key: key, Favorited: remote.Favorited, Count: uc.counts[key]}
	snapshot = uc.set.Clone()
	uc.mu.Unlock()

	uc.store.Save(ctx, snapshot)
	return result, nil
}

// Check asks the server whether key is favorited and records the answer.
// Client-only usecases answer from the local set.
func (uc *Usecase) Check(ctx context.Context, key string) (bool, error) {
	if uc.remote == nil || uc.auth == nil || !uc.auth.IsAuthenticated() {
		return uc.Contains(key), nil
	}

	favorited, err := uc.remote.Check(ctx, key)
	if err != nil {
		return false, err
	}

	uc.mu.Lock()
	uc.apply(key, favorited)
	snapshot := uc.set.Clone()
	uc.mu.Unlock()

	uc.store.Save(ctx, snapshot)
	return favorited, nil
}

func (uc *Usecase) toggleLocal(ctx context.Context, key string, displayed int) Result {
	uc.mu.Lock()
	favorited := !uc.set.Has(key)
	uc.apply(key, favorited)
	snapshot := uc.set.Clone()
	uc.mu.Unlock()

	uc.store.Save(ctx, snapshot)
	return Result{Key: key, Favorited: favorited, Count: displayed}
}

func (uc *Usecase) apply(key string, favorited bool) {
	if favorited {
		uc.set.Add(key)
	} else {
		uc.set.Remove(key)
	}
}

// legacyCatalogKeys maps purely numeric keys to the tt-prefixed imdb id they
// were saved from.
func legacyCatalogKeys(set Set) (Set, bool) {
	out := NewSet()
	changed := false
	for _, k := range set.Keys() {
		if n, err := strconv.ParseUint(k, 10, 64); err == nil {
			out.Add(fmt.Sprintf("tt%07d", n))
			changed = true
			continue
		}
		out.Add(k)
	}
	return out, changed
}
