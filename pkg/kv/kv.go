// Package kv defines the durable string key-value contract shared by the
// storage drivers.
package kv

import (
	"context"
	"strings"
)

// Store is implemented by filestore, postgres and dynamodb.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type prefixed struct {
	next   Store
	prefix string
}

// WithPrefix scopes every key of next under prefix, separated by a colon.
func WithPrefix(next Store, prefix string) Store {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		return next
	}
	return prefixed{next: next, prefix: prefix + ":"}
}

func (p prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p prefixed) Set(ctx context.Context, key, value string) error {
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p prefixed) Remove(ctx context.Context, key string) error {
	return p.next.Remove(ctx, p.prefix+key)
}
