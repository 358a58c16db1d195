/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the HashStore interface for testing
package mock

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Operation names accepted by WithError.
const (
	OpHSet      = "HSet"
	OpHGet      = "HGet"
	OpHGetAll   = "HGetAll"
	OpHDel      = "HDel"
	OpHIncrBy   = "HIncrBy"
	OpSAdd      = "SAdd"
	OpSRem      = "SRem"
	OpSIsMember = "SIsMember"
	OpSMembers  = "SMembers"
	OpKeys      = "Keys"
	OpDel       = "Del"
)

// DataStore is an in-memory datastore.HashStore. Hashes and sets share one
// keyspace like they do in Redis.
type DataStore struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
	sets   map[string]map[string]struct{}
	errs   map[string]error
	calls  map[string]int
}

// New creates a new mock DataStore
func New() *DataStore {
	return &DataStore{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string]map[string]struct{}),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// WithError makes every call of op return err. A nil err clears the injection.
func (m *DataStore) WithError(op string, err error) *DataStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
	} else {
		m.errs[op] = err
	}
	return m
}

// enter records the call and returns the injected error, if any. Callers hold mu.
func (m *DataStore) enter(op string) error {
	m.calls[op]++
	return m.errs[op]
}

// HSet writes fields into a hash
func (m *DataStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpHSet); err != nil {
		return err
	}
	if _, isSet := m.sets[key]; isSet {
		return wrongType(key)
	}

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

// HGet returns one hash field
func (m *DataStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpHGet); err != nil {
		return "", false, err
	}

	v, ok := m.hashes[key][field]
	return v, ok, nil
}

// HGetAll returns a copy of a hash
func (m *DataStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpHGetAll); err != nil {
		return nil, err
	}

	h := m.hashes[key]
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

// HDel removes hash fields
func (m *DataStore) HDel(ctx context.Context, key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpHDel); err != nil {
		return err
	}

	h, ok := m.hashes[key]
	if !ok {
		return nil
	}
	for _, f := range fields {
		delete(h, f)
	}
	if len(h) == 0 {
		delete(m.hashes, key)
	}
	return nil
}

// HIncrBy increments an integer hash field under the store lock
func (m *DataStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpHIncrBy); err != nil {
		return 0, err
	}
	if _, isSet := m.sets[key]; isSet {
		return 0, wrongType(key)
	}

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string, 1)
		m.hashes[key] = h
	}
	var current int64
	if raw, ok := h[field]; ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("hash value is not an integer: %q", raw)
		}
		current = n
	}
	current += delta
	h[field] = strconv.FormatInt(current, 10)
	return current, nil
}

// SAdd adds set members
func (m *DataStore) SAdd(ctx context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpSAdd); err != nil {
		return err
	}
	if _, isHash := m.hashes[key]; isHash {
		return wrongType(key)
	}

	s, ok := m.sets[key]
	if !ok {
		s = make(map[string]struct{}, len(members))
		m.sets[key] = s
	}
	for _, member := range members {
		s[member] = struct{}{}
	}
	return nil
}

// SRem removes set members
func (m *DataStore) SRem(ctx context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpSRem); err != nil {
		return err
	}

	s, ok := m.sets[key]
	if !ok {
		return nil
	}
	for _, member := range members {
		delete(s, member)
	}
	if len(s) == 0 {
		delete(m.sets, key)
	}
	return nil
}

// SIsMember checks set membership
func (m *DataStore) SIsMember(ctx context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpSIsMember); err != nil {
		return false, err
	}

	_, ok := m.sets[key][member]
	return ok, nil
}

// SMembers lists set members
func (m *DataStore) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpSMembers); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		out = append(out, member)
	}
	return out, nil
}

// Keys lists hash and set keys with the given prefix
func (m *DataStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpKeys); err != nil {
		return nil, err
	}

	var out []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	for k := range m.sets {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Del removes keys of either kind
func (m *DataStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpDel); err != nil {
		return err
	}

	for _, k := range keys {
		delete(m.hashes, k)
		delete(m.sets, k)
	}
	return nil
}

// Helper methods for testing

// Hash returns a copy of the hash at key, or nil when absent
func (m *DataStore) Hash(key string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hashes[key]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// SetHash replaces the hash at key
func (m *DataStore) SetHash(key string, fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := make(map[string]string, len(fields))
	for k, v := range fields {
		h[k] = v
	}
	m.hashes[key] = h
}

// Calls returns how many times op was invoked
func (m *DataStore) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// Count returns the number of keys of either kind
func (m *DataStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hashes) + len(m.sets)
}

// Clear removes all data and call counts
func (m *DataStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes = make(map[string]map[string]string)
	m.sets = make(map[string]map[string]struct{})
	m.calls = make(map[string]int)
}

func wrongType(key string) error {
	return fmt.Errorf("WRONGTYPE operation against key %q holding the wrong kind of value", key)
}
