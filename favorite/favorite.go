package favorite

import (
	"sort"

	"moviehub/errs"
)

var (
	ErrInvalidKey     = errs.Errorf(errs.EINVALID, "movie cannot be favorited without an id")
	ErrLoginRequired  = errs.Errorf(errs.EUNAUTHORIZED, "Please log in to manage favorites")
	ErrToggleInFlight = errs.Errorf(errs.ECONFLICT, "favorite update already in progress")
)

// Set holds favorited movie keys.
type Set map[string]struct{}

func NewSet(keys ...string) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s Set) Add(key string) {
	s[key] = struct{}{}
}

func (s Set) Remove(key string) {
	delete(s, key)
}

// Keys returns the members in ascending order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Result is the state of one key after a toggle.
type Result struct {
	Key       string `json:"key"`
	Favorited bool   `json:"is_favorited"`
	Count     int    `json:"favorite_count"`
}

// RemoteResult is the authoritative answer of a server-side toggle. Count is
// nil when the server did not report the movie's favorite count.
type RemoteResult struct {
	Favorited bool
	Count     *int
}
