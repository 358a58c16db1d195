/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mediacrush

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dbanda/MediaCrush/datastore"
	"github.com/dbanda/MediaCrush/errors"
	"github.com/dbanda/MediaCrush/logging"
	"github.com/dbanda/MediaCrush/metrics"
	"github.com/dbanda/MediaCrush/registry"
	"github.com/dbanda/MediaCrush/storagemodels"
)

// Store persists registered entities. It is safe for concurrent use; a
// multi-field Save is not atomic across its fields.
type Store struct {
	reg     *registry.Registry
	backend datastore.HashStore
	ns      storagemodels.Namespace
	logger  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger for data-integrity anomalies.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store over the registry's backend and namespace.
func NewStore(reg *registry.Registry, opts ...StoreOption) *Store {
	s := &Store{
		reg:     reg,
		backend: reg.Backend(),
		ns:      reg.Namespace(),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the type registry backing the store.
func (s *Store) Registry() *registry.Registry {
	return s.reg
}

// Validator is implemented by entities that check their own fields. Save
// calls it before anything is written.
type Validator interface {
	Validate() error
}

// Save writes every schema field of e and records its membership. An empty
// identifier is replaced with a new one. Saving an identifier that another
// type already owns fails with a TypeConflictError, and an entity whose
// Validate fails is not written at all.
func (s *Store) Save(ctx context.Context, e registry.Entity) (err error) {
	defer func() { metrics.ObserveStore("save", err) }()

	tag, err := s.reg.TagOf(e)
	if err != nil {
		return err
	}
	schema, err := s.reg.Schema(tag)
	if err != nil {
		return err
	}
	if v, ok := e.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("save %s: %w", tag, err)
		}
	}

	if e.Identifier() == "" {
		e.SetIdentifier(NewIdentifier())
	}
	id := e.Identifier()
	if strings.Contains(id, ".") {
		return errors.NewValidationError(registry.IdentifierField, "identifier must not contain '.'")
	}

	owner, err := s.reg.Resolve(ctx, id)
	if err != nil {
		return fmt.Errorf("save %s %s: %w", tag, id, err)
	}
	if owner != "" && owner != tag {
		return errors.NewTypeConflictError(id, owner, tag)
	}

	fields := make(map[string]string, len(schema.Fields)+1)
	for _, f := range schema.Fields {
		fields[f.Name] = Encode(f.Get(e))
	}
	fields[registry.IdentifierField] = id

	if err := s.backend.HSet(ctx, s.ns.RecordKey(tag, id), fields); err != nil {
		return fmt.Errorf("save %s %s: %w", tag, id, err)
	}
	return s.reg.MarkMember(ctx, tag, id)
}

// Load reads the record id of type tag. With registry.AnyType the type is
// resolved first. A missing record returns (nil, nil). So does an identifier
// whose type cannot be resolved unambiguously; that case is logged.
func (s *Store) Load(ctx context.Context, id, tag string) (registry.Entity, error) {
	tag, err := s.resolve(ctx, id, tag)
	if err != nil || tag == "" {
		return nil, err
	}
	schema, err := s.reg.Schema(tag)
	if err != nil {
		metrics.ObserveStore("load", err)
		return nil, err
	}

	raw, err := s.backend.HGetAll(ctx, s.ns.RecordKey(tag, id))
	if err != nil {
		metrics.ObserveStore("load", err)
		return nil, fmt.Errorf("load %s %s: %w", tag, id, err)
	}
	if len(raw) == 0 {
		metrics.ObserveStoreMiss("load")
		return nil, nil
	}

	e := schema.New()
	for _, f := range schema.Fields {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		if err := f.Set(e, Decode(v)); err != nil {
			metrics.ObserveStore("load", err)
			return nil, fmt.Errorf("load %s %s: %w", tag, id, err)
		}
	}
	e.SetIdentifier(id)
	metrics.ObserveStore("load", nil)
	return e, nil
}

// Load reads the record id as type T. A miss returns the zero T and a nil error.
func Load[T registry.Entity](ctx context.Context, s *Store, id string) (T, error) {
	var zero T
	tag, err := registry.TagFor[T](s.reg)
	if err != nil {
		return zero, err
	}
	e, err := s.Load(ctx, id, tag)
	if err != nil || e == nil {
		return zero, err
	}
	return e.(T), nil
}

// Fields returns the decoded stored field set of id without building an
// entity. The map is nil when the record is missing.
func (s *Store) Fields(ctx context.Context, id, tag string) (map[string]any, error) {
	tag, err := s.resolve(ctx, id, tag)
	if err != nil || tag == "" {
		return nil, err
	}
	raw, err := s.backend.HGetAll(ctx, s.ns.RecordKey(tag, id))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", tag, id, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = Decode(v)
	}
	return out, nil
}

// ExistsAs reports whether id is persisted as tag, or as any type for
// registry.AnyType.
func (s *Store) ExistsAs(ctx context.Context, id, tag string) (bool, error) {
	return s.reg.IsMember(ctx, tag, id)
}

// ListAll loads every record of type tag. Order is unspecified; records that
// vanish between listing and loading are skipped.
func (s *Store) ListAll(ctx context.Context, tag string) ([]registry.Entity, error) {
	if _, err := s.reg.Schema(tag); err != nil {
		return nil, err
	}
	keys, err := s.backend.Keys(ctx, s.ns.RecordPrefix(tag))
	if err != nil {
		metrics.ObserveStore("list", err)
		return nil, fmt.Errorf("list %s: %w", tag, err)
	}

	out := make([]registry.Entity, 0, len(keys))
	for _, key := range keys {
		id, ok := s.ns.IDFromRecordKey(tag, key)
		if !ok {
			continue
		}
		e, err := s.Load(ctx, id, tag)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	metrics.ObserveStore("list", nil)
	return out, nil
}

// ListAll loads every record of type T.
func ListAll[T registry.Entity](ctx context.Context, s *Store) ([]T, error) {
	tag, err := registry.TagFor[T](s.reg)
	if err != nil {
		return nil, err
	}
	entities, err := s.ListAll(ctx, tag)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.(T))
	}
	return out, nil
}

// Delete removes the membership and the record of id. Deleting a missing
// record is a no-op.
func (s *Store) Delete(ctx context.Context, id, tag string) (err error) {
	defer func() { metrics.ObserveStore("delete", err) }()

	tag, err = s.resolve(ctx, id, tag)
	if err != nil || tag == "" {
		return err
	}
	if err := s.reg.Unmark(ctx, tag, id); err != nil {
		return err
	}
	if err := s.backend.Del(ctx, s.ns.RecordKey(tag, id)); err != nil {
		return fmt.Errorf("delete %s %s: %w", tag, id, err)
	}
	return nil
}

// AtomicIncrement adds delta to an integer field at the backend and returns
// the new value. Concurrent callers never lose updates. The record must exist.
func (s *Store) AtomicIncrement(ctx context.Context, id, tag, field string, delta int64) (n int64, err error) {
	defer func() { metrics.ObserveStore("increment", err) }()

	tag, err = s.resolve(ctx, id, tag)
	if err != nil {
		return 0, err
	}
	if tag == "" {
		return 0, errors.NewNotFoundError("entity", id)
	}
	ok, err := s.reg.IsMember(ctx, tag, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.NewNotFoundError(tag, id)
	}

	n, err = s.backend.HIncrBy(ctx, s.ns.RecordKey(tag, id), field, delta)
	if err != nil {
		return 0, fmt.Errorf("increment %s.%s of %s: %w", tag, field, id, err)
	}
	return n, nil
}

// Flag adds id to the reports-triggered set.
func (s *Store) Flag(ctx context.Context, id string) error {
	if err := s.backend.SAdd(ctx, s.ns.ReportsKey(), id); err != nil {
		return fmt.Errorf("flag %s: %w", id, err)
	}
	return nil
}

// Flagged lists the reports-triggered set.
func (s *Store) Flagged(ctx context.Context) ([]string, error) {
	ids, err := s.backend.SMembers(ctx, s.ns.ReportsKey())
	if err != nil {
		return nil, fmt.Errorf("list flagged: %w", err)
	}
	return ids, nil
}

// resolve turns AnyType into a concrete tag. It returns "" with a nil error
// when nothing owns id or when ownership is ambiguous.
func (s *Store) resolve(ctx context.Context, id, tag string) (string, error) {
	if tag != registry.AnyType {
		return tag, nil
	}
	resolved, err := s.reg.Resolve(ctx, id)
	switch {
	case errors.IsAmbiguousType(err):
		s.logger.Warn("refusing to load identifier with ambiguous type", "id", id, "error", err)
		metrics.ObserveStoreMiss("resolve")
		return "", nil
	case err != nil:
		return "", err
	case resolved == "":
		metrics.ObserveStoreMiss("resolve")
	}
	return resolved, nil
}
