/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package jobs reads the state of asynchronous processing jobs.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Job states reported by a tracker.
const (
	StatePending = "PENDING"
	StateStarted = "STARTED"
	StateReady   = "READY"
	StateSuccess = "SUCCESS"
	StateFailure = "FAILURE"
)

// Result is the tracker's view of a job. Traceback is set on failure.
type Result struct {
	State     string `json:"status"`
	Traceback string `json:"traceback"`
}

// Tracker looks up job results by identifier.
type Tracker interface {
	Result(ctx context.Context, jobID string) (Result, error)
}

// DefaultKeyPrefix is where Celery's redis backend stores task results.
const DefaultKeyPrefix = "celery-task-meta-"

// RedisTracker reads results written by a Celery redis result backend.
// Unknown jobs are pending, as Celery reports them.
type RedisTracker struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisTracker creates a tracker over client.
func NewRedisTracker(client redis.UniversalClient) *RedisTracker {
	return &RedisTracker{client: client, prefix: DefaultKeyPrefix}
}

// Result implements Tracker.
func (t *RedisTracker) Result(ctx context.Context, jobID string) (Result, error) {
	raw, err := t.client.Get(ctx, t.prefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{State: StatePending}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("read job %s: %w", jobID, err)
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	if res.State == "" {
		res.State = StatePending
	}
	return res, nil
}

// StaticTracker serves fixed results. It is used when no job backend is
// configured and in tests.
type StaticTracker struct {
	mu      sync.Mutex
	results map[string]Result
	calls   int
}

// NewStaticTracker creates an empty static tracker.
func NewStaticTracker() *StaticTracker {
	return &StaticTracker{results: make(map[string]Result)}
}

// Set stores the result of jobID.
func (t *StaticTracker) Set(jobID string, res Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results[jobID] = res
}

// Calls returns the number of Result lookups.
func (t *StaticTracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Result implements Tracker.
func (t *StaticTracker) Result(ctx context.Context, jobID string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	res, ok := t.results[jobID]
	if !ok {
		return Result{State: StatePending}, nil
	}
	return res, nil
}
