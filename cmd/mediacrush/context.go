/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dbanda/MediaCrush"
	"github.com/dbanda/MediaCrush/config"
	"github.com/dbanda/MediaCrush/datastore"
	"github.com/dbanda/MediaCrush/datastore/ddb"
	"github.com/dbanda/MediaCrush/datastore/mock"
	"github.com/dbanda/MediaCrush/datastore/redisstore"
	"github.com/dbanda/MediaCrush/jobs"
	"github.com/dbanda/MediaCrush/logging"
	"github.com/dbanda/MediaCrush/objects"
	"github.com/dbanda/MediaCrush/registry"
	"github.com/dbanda/MediaCrush/storagemodels"
)

// commandContext lazily opens everything a subcommand needs. Tests preset
// backend and tracker.
type commandContext struct {
	configPath string

	backend datastore.HashStore
	tracker jobs.Tracker

	once    sync.Once
	initErr error
	closers []func() error

	cfg    *config.Config
	logger *slog.Logger
	store  *mediacrush.Store
	repo   *objects.Repository
}

func (c *commandContext) ensure(ctx context.Context) error {
	c.once.Do(func() {
		c.initErr = c.init(ctx)
	})
	return c.initErr
}

func (c *commandContext) init(ctx context.Context) error {
	cfg, err := config.Load(strings.TrimSpace(c.configPath))
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logging.New(cfg.LoggingOptions())

	if c.backend == nil {
		backend, err := c.openBackend(ctx)
		if err != nil {
			return err
		}
		c.backend = backend
	}
	if c.tracker == nil && cfg.Jobs.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Jobs.RedisAddr, DB: cfg.Jobs.RedisDB})
		c.closers = append(c.closers, client.Close)
		c.tracker = jobs.NewRedisTracker(client)
	}

	reg := registry.New(c.backend, storagemodels.Namespace(cfg.Namespace), registry.WithLogger(c.logger))
	objects.Register(reg, cfg.Processors)
	c.store = mediacrush.NewStore(reg, mediacrush.WithStoreLogger(c.logger))
	c.repo = objects.NewRepository(c.store, c.tracker, objects.WithLogger(c.logger))
	return nil
}

func (c *commandContext) openBackend(ctx context.Context) (datastore.HashStore, error) {
	b := c.cfg.Backend
	switch b.Kind {
	case config.BackendRedis:
		client, err := redisstore.NewRedisClient(ctx, b.Redis.Addr, b.Redis.Password, b.Redis.DB)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, client.Close)
		return redisstore.New(client), nil
	case config.BackendDynamoDB:
		client, err := ddb.NewDynamoDBClient(ctx, b.DynamoDB.AccessKey, b.DynamoDB.SecretKey, b.DynamoDB.Region, b.DynamoDB.Endpoint)
		if err != nil {
			return nil, err
		}
		return ddb.New(client, ddb.DefaultTableConfig(b.DynamoDB.Table))
	case config.BackendMemory:
		c.logger.Warn("using the in-memory backend, nothing will be persisted")
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", b.Kind)
	}
}

func (c *commandContext) close() {
	for _, fn := range c.closers {
		_ = fn()
	}
	c.closers = nil
}
