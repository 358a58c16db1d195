/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/dbanda/MediaCrush/datastore"
	"github.com/dbanda/MediaCrush/errors"
	"github.com/dbanda/MediaCrush/logging"
	"github.com/dbanda/MediaCrush/storagemodels"
)

// IdentifierField is persisted in every record in addition to being part of its key.
const IdentifierField = "hash"

// AnyType asks for polymorphic resolution instead of a concrete tag.
const AnyType = ""

// Entity is anything the object store can persist.
type Entity interface {
	Identifier() string
	SetIdentifier(id string)
}

// Field is one persisted attribute: Get returns the native value to encode,
// Set receives the decoded value (string, bool or nil).
type Field struct {
	Name string
	Get  func(Entity) any
	Set  func(Entity, any) error
}

// Schema declares a concrete type. Tag defaults to the lower-cased Go type name.
type Schema struct {
	Tag    string
	New    func() Entity
	Fields []Field
}

// Registry tracks schemas and the per-type membership sets stored in the backend.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]Schema
	byType  map[reflect.Type]string

	backend datastore.HashStore
	ns      storagemodels.Namespace
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for data-integrity anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a registry over backend.
func New(backend datastore.HashStore, ns storagemodels.Namespace, opts ...Option) *Registry {
	if ns == "" {
		ns = storagemodels.DefaultNamespace
	}
	r := &Registry{
		schemas: make(map[string]Schema),
		byType:  make(map[reflect.Type]string),
		backend: backend,
		ns:      ns,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register declares a concrete type.
// Registering the same tag or Go type twice panics to prevent accidental overrides.
func (r *Registry) Register(s Schema) {
	if s.New == nil {
		panic("type registry: schema without constructor")
	}
	typ := reflect.TypeOf(s.New())
	if s.Tag == "" {
		s.Tag = TypeTag(typ)
	}
	s.Tag = strings.ToLower(s.Tag)
	if strings.Contains(s.Tag, ".") {
		panic(fmt.Sprintf("type registry: tag %q must not contain '.'", s.Tag))
	}

	seen := map[string]bool{IdentifierField: true}
	for _, f := range s.Fields {
		if f.Name == "" || f.Get == nil || f.Set == nil {
			panic(fmt.Sprintf("type registry: incomplete field %q on %q", f.Name, s.Tag))
		}
		if seen[f.Name] {
			panic(fmt.Sprintf("type registry: field %q declared twice on %q", f.Name, s.Tag))
		}
		seen[f.Name] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[s.Tag]; exists {
		panic(fmt.Sprintf("type registry: type %q already registered", s.Tag))
	}
	if tag, exists := r.byType[typ]; exists {
		panic(fmt.Sprintf("type registry: %v already registered as %q", typ, tag))
	}
	r.schemas[s.Tag] = s
	r.byType[typ] = s.Tag
}

// Schema returns the schema registered for tag.
func (r *Registry) Schema(tag string) (Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[tag]
	if !ok {
		return Schema{}, errors.NewUnknownTypeError(tag)
	}
	return s, nil
}

// TagOf returns the tag of a registered entity's concrete type.
func (r *Registry) TagOf(e Entity) (string, error) {
	typ := reflect.TypeOf(e)
	r.mu.RLock()
	defer r.mu.RUnlock()
	tag, ok := r.byType[typ]
	if !ok {
		return "", errors.NewUnknownTypeError(fmt.Sprintf("%v", typ))
	}
	return tag, nil
}

// TagFor returns the tag registered for type T.
func TagFor[T Entity](r *Registry) (string, error) {
	var zero T
	return r.TagOf(zero)
}

// Tags lists registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.schemas))
	for t := range r.schemas {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Namespace returns the key namespace.
func (r *Registry) Namespace() storagemodels.Namespace {
	return r.ns
}

// Backend returns the backend holding membership sets.
func (r *Registry) Backend() datastore.HashStore {
	return r.backend
}

// TypeTag derives the case-normalized tag of a Go type.
func TypeTag(typ reflect.Type) string {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil {
		return ""
	}
	return strings.ToLower(typ.Name())
}
