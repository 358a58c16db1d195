/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
)

// HashStore is the key/value backend under the object store: string hashes,
// string sets and an atomic per-field counter.
//
// Individual operations are atomic at the granularity the backend offers.
// A multi-field HSet is not guaranteed to be atomic across fields.
type HashStore interface {
	// HSet writes fields into the hash at key, creating it if needed.
	HSet(ctx context.Context, key string, fields map[string]string) error

	// HGet returns one field of the hash at key. ok is false when the hash or field is missing.
	HGet(ctx context.Context, key, field string) (value string, ok bool, err error)

	// HGetAll returns every field of the hash at key; a missing hash yields an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HDel removes fields from the hash at key. Missing fields are ignored.
	HDel(ctx context.Context, key string, fields ...string) error

	// HIncrBy adds delta to the integer field and returns the new value.
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)

	// SAdd adds members to the set at key.
	SAdd(ctx context.Context, key string, members ...string) error

	// SRem removes members from the set at key. Missing members are ignored.
	SRem(ctx context.Context, key string, members ...string) error

	// SIsMember reports whether member is in the set at key.
	SIsMember(ctx context.Context, key, member string) (bool, error)

	// SMembers lists the set at key in no particular order.
	SMembers(ctx context.Context, key string) ([]string, error)

	// Keys lists every key starting with prefix in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Del removes keys. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error
}
