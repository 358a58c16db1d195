/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads MediaCrush settings from a YAML file, an optional
// .env file and MEDIACRUSH_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dbanda/MediaCrush/flags"
	"github.com/dbanda/MediaCrush/logging"
	"github.com/dbanda/MediaCrush/storagemodels"
)

// Backend kinds.
const (
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// SettingMaxProcessingTime is the invocation deadline in seconds.
const SettingMaxProcessingTime = "max_processing_time"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MEDIACRUSH_"

const settingEnvPrefix = EnvPrefix + "SETTING_"

// Config is the complete configuration.
type Config struct {
	Namespace  string         `yaml:"namespace"`
	Backend    Backend        `yaml:"backend"`
	Jobs       Jobs           `yaml:"jobs"`
	Settings   map[string]int `yaml:"settings"`
	Processors flags.Catalog  `yaml:"processors"`
	Log        Log            `yaml:"log"`
}

// Backend selects and configures the key/value store.
type Backend struct {
	Kind     string   `yaml:"kind"`
	Redis    Redis    `yaml:"redis"`
	DynamoDB DynamoDB `yaml:"dynamodb"`
}

// Redis configures the redis backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DynamoDB configures the DynamoDB backend. Empty keys fall back to the
// default AWS credential chain.
type DynamoDB struct {
	Table     string `yaml:"table"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// Jobs locates the job result backend. An empty address disables status
// lookups, and every job reads as pending.
type Jobs struct {
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Namespace: string(storagemodels.DefaultNamespace),
		Backend: Backend{
			Kind:  BackendRedis,
			Redis: Redis{Addr: "localhost:6379"},
		},
		Settings:   map[string]int{SettingMaxProcessingTime: 60},
		Processors: flags.Catalog{},
		Log:        Log{Level: "info", Format: logging.FormatText},
	}
}

// Load reads path (optional) and the environment. envFiles are loaded into
// the environment first without overriding variables that are already set;
// with none given, ./.env is used when present.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Environ()); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(environ []string) error {
	strs := map[string]*string{
		"NAMESPACE":           &c.Namespace,
		"BACKEND":             &c.Backend.Kind,
		"REDIS_ADDR":          &c.Backend.Redis.Addr,
		"REDIS_PASSWORD":      &c.Backend.Redis.Password,
		"DYNAMODB_TABLE":      &c.Backend.DynamoDB.Table,
		"DYNAMODB_REGION":     &c.Backend.DynamoDB.Region,
		"DYNAMODB_ACCESS_KEY": &c.Backend.DynamoDB.AccessKey,
		"DYNAMODB_SECRET_KEY": &c.Backend.DynamoDB.SecretKey,
		"DYNAMODB_ENDPOINT":   &c.Backend.DynamoDB.Endpoint,
		"JOBS_REDIS_ADDR":     &c.Jobs.RedisAddr,
		"LOG_LEVEL":           &c.Log.Level,
		"LOG_FORMAT":          &c.Log.Format,
	}
	ints := map[string]*int{
		"REDIS_DB":      &c.Backend.Redis.DB,
		"JOBS_REDIS_DB": &c.Jobs.RedisDB,
	}

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}

		if name, ok := strings.CutPrefix(key, settingEnvPrefix); ok {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s: %q is not an integer", key, value)
			}
			if c.Settings == nil {
				c.Settings = make(map[string]int)
			}
			c.Settings[strings.ToLower(name)] = n
			continue
		}

		name := strings.TrimPrefix(key, EnvPrefix)
		if p, ok := strs[name]; ok {
			*p = value
			continue
		}
		if p, ok := ints[name]; ok {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s: %q is not an integer", key, value)
			}
			*p = n
		}
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Namespace == "" {
		c.Namespace = def.Namespace
	}
	if c.Backend.Kind == "" {
		c.Backend.Kind = def.Backend.Kind
	}
	c.Backend.Kind = strings.ToLower(c.Backend.Kind)
	if c.Backend.Kind == BackendRedis && c.Backend.Redis.Addr == "" {
		c.Backend.Redis.Addr = def.Backend.Redis.Addr
	}
	if c.Settings == nil {
		c.Settings = make(map[string]int)
	}
	for k, v := range def.Settings {
		if _, ok := c.Settings[k]; !ok {
			c.Settings[k] = v
		}
	}
	if c.Processors == nil {
		c.Processors = flags.Catalog{}
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if strings.Contains(c.Namespace, ".") {
		return fmt.Errorf("namespace %q must not contain '.'", c.Namespace)
	}
	switch c.Backend.Kind {
	case BackendRedis:
		if c.Backend.Redis.Addr == "" {
			return errors.New("backend.redis.addr is required")
		}
	case BackendDynamoDB:
		if c.Backend.DynamoDB.Table == "" {
			return errors.New("backend.dynamodb.table is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("backend.kind %q is not one of redis, dynamodb, memory", c.Backend.Kind)
	}
	if n := c.Settings[SettingMaxProcessingTime]; n <= 0 {
		return fmt.Errorf("settings.%s must be positive, got %d", SettingMaxProcessingTime, n)
	}
	if err := c.Processors.Validate(); err != nil {
		return fmt.Errorf("processors: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != logging.FormatText && c.Log.Format != logging.FormatJSON {
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}

// Int returns a named integer setting.
func (c *Config) Int(name string) (int, bool) {
	v, ok := c.Settings[name]
	return v, ok
}

// MaxProcessingTime is the default invocation deadline.
func (c *Config) MaxProcessingTime() time.Duration {
	return time.Duration(c.Settings[SettingMaxProcessingTime]) * time.Second
}

// LoggingOptions converts the log section.
func (c *Config) LoggingOptions() logging.Options {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.Options{Level: level, Format: c.Log.Format}
}
