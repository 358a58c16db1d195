/*
Package datastore defines the backend interface of the MediaCrush object store.

The main interface is HashStore, a small subset of Redis semantics that every
backend can honour:

	type HashStore interface {
	    HSet(ctx context.Context, key string, fields map[string]string) error
	    HGet(ctx context.Context, key, field string) (string, bool, error)
	    HGetAll(ctx context.Context, key string) (map[string]string, error)
	    HDel(ctx context.Context, key string, fields ...string) error
	    HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	    SAdd(ctx context.Context, key string, members ...string) error
	    SRem(ctx context.Context, key string, members ...string) error
	    SIsMember(ctx context.Context, key, member string) (bool, error)
	    SMembers(ctx context.Context, key string) ([]string, error)
	    Keys(ctx context.Context, prefix string) ([]string, error)
	    Del(ctx context.Context, keys ...string) error
	}

Implementations:
  - redisstore: Redis implementation (go-redis), the production backend
  - ddb: DynamoDB implementation, one item per key
  - mock: In-memory implementation for testing
*/
package datastore
