/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dbanda/MediaCrush/storagemodels"
)

// RedisDataStore implements datastore.HashStore on top of a Redis server.
type RedisDataStore struct {
	client redis.UniversalClient
	opts   storagemodels.ScanOptions
}

// NewRedisClient initializes a Redis client and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return client, nil
}

// New wraps an existing client.
func New(client redis.UniversalClient, opts ...storagemodels.ScanOption) *RedisDataStore {
	return &RedisDataStore{
		client: client,
		opts:   storagemodels.Apply(opts...),
	}
}

// Client exposes the underlying client for collaborators sharing the connection.
func (r *RedisDataStore) Client() redis.UniversalClient {
	return r.client
}

// HSet writes fields with a single HSET.
func (r *RedisDataStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("HSET %s failed: %w", key, err)
	}
	return nil
}

// HGet reads one field.
func (r *RedisDataStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	v, err := r.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("HGET %s %s failed: %w", key, field, err)
	}
	return v, true, nil
}

// HGetAll reads the whole hash.
func (r *RedisDataStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	out, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("HGETALL %s failed: %w", key, err)
	}
	return out, nil
}

// HDel removes fields.
func (r *RedisDataStore) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, key, fields...).Err(); err != nil {
		return fmt.Errorf("HDEL %s failed: %w", key, err)
	}
	return nil
}

// HIncrBy is Redis-native and atomic.
func (r *RedisDataStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := r.client.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("HINCRBY %s %s failed: %w", key, field, err)
	}
	return n, nil
}

// SAdd adds members.
func (r *RedisDataStore) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.client.SAdd(ctx, key, toArgs(members)...).Err(); err != nil {
		return fmt.Errorf("SADD %s failed: %w", key, err)
	}
	return nil
}

// SRem removes members.
func (r *RedisDataStore) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.client.SRem(ctx, key, toArgs(members)...).Err(); err != nil {
		return fmt.Errorf("SREM %s failed: %w", key, err)
	}
	return nil
}

// SIsMember checks membership.
func (r *RedisDataStore) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, fmt.Errorf("SISMEMBER %s failed: %w", key, err)
	}
	return ok, nil
}

// SMembers lists members.
func (r *RedisDataStore) SMembers(ctx context.Context, key string) ([]string, error) {
	out, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("SMEMBERS %s failed: %w", key, err)
	}
	return out, nil
}

// Keys walks the keyspace with SCAN rather than KEYS so large namespaces do
// not block the server.
func (r *RedisDataStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := r.client.Scan(ctx, 0, escapeGlob(prefix)+"*", int64(r.opts.PageSize)).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("SCAN %s* failed: %w", prefix, err)
	}
	return out, nil
}

// Del removes keys.
func (r *RedisDataStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("DEL failed: %w", err)
	}
	return nil
}

func toArgs(members []string) []interface{} {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return args
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
