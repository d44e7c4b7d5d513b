// Package reflect is the runtime side of emitted metadata: a registry that
// stores what the registration statements define, keyed by object and
// metadata key, together with the named validators they reference.
package reflect

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/flamekit/flamekit/internal/compiler/guard"
	"github.com/flamekit/flamekit/internal/compiler/metadata"
	"github.com/flamekit/flamekit/internal/compiler/transform"
)

var (
	// ErrDuplicateKey is returned when a key is defined twice for the same
	// object. The first value is kept.
	ErrDuplicateKey = errors.New("duplicate metadata key")
	// ErrUnknownGuard is returned when validating against an undefined guard
	ErrUnknownGuard = errors.New("guard not defined")
)

// Registry holds runtime metadata. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]*entry
	order   []string
	guards  map[string]guard.Expr
}

type entry struct {
	keys   []string
	values map[string]metadata.Value
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		objects: make(map[string]*entry),
		guards:  make(map[string]guard.Expr),
	}
}

// DefineMetadata stores value under key for objectID
func (r *Registry) DefineMetadata(objectID, key string, value metadata.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, ok := r.objects[objectID]
	if !ok {
		obj = &entry{values: make(map[string]metadata.Value)}
		r.objects[objectID] = obj
		r.order = append(r.order, objectID)
	}
	if _, exists := obj.values[key]; exists {
		return fmt.Errorf("%w: %s on %s", ErrDuplicateKey, key, objectID)
	}
	obj.keys = append(obj.keys, key)
	obj.values[key] = value
	return nil
}

// GetMetadata returns the value stored under key for objectID
func (r *Registry) GetMetadata(objectID, key string) (metadata.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.objects[objectID]
	if !ok {
		return nil, false
	}
	v, ok := obj.values[key]
	return v, ok
}

// Keys returns the keys defined for objectID in registration order
func (r *Registry) Keys(objectID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.objects[objectID]
	if !ok {
		return nil
	}
	keys := make([]string, len(obj.keys))
	copy(keys, obj.keys)
	return keys
}

// Objects returns every object with metadata in registration order
func (r *Registry) Objects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// DefineGuard stores a named validator. Guards are first-definition-wins.
func (r *Registry) DefineGuard(uid string, e guard.Expr) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.guards[uid]; exists {
		return fmt.Errorf("%w: guard %s", ErrDuplicateKey, uid)
	}
	r.guards[uid] = e
	return nil
}

// Guard returns the validator named uid
func (r *Registry) Guard(uid string) (guard.Expr, bool) {
	return r.Lookup(uid)
}

// Lookup implements guard.Resolver
func (r *Registry) Lookup(key string) (guard.Expr, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.guards[key]
	return e, ok
}

// Validate checks value against the guard named uid
func (r *Registry) Validate(uid string, value interface{}) (bool, error) {
	e, ok := r.Lookup(uid)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownGuard, uid)
	}
	return guard.NewEvaluator(r).Check(e, value), nil
}

// Check evaluates an arbitrary validator, resolving references through the
// registry
func (r *Registry) Check(e guard.Expr, value interface{}) bool {
	return guard.NewEvaluator(r).Check(e, value)
}

// Load runs the registration statements of a transform output: the guards
// of each class, then its metadata. Objects are keyed by their identifier
// record. Duplicate definitions are collected and returned together.
func (r *Registry) Load(out *transform.Output) error {
	var errs []error
	for _, c := range out.Classes {
		for _, g := range c.Guards {
			if err := r.DefineGuard(g.Key, g.Expr); err != nil {
				errs = append(errs, err)
			}
		}
		id := ObjectID(c)
		for _, rec := range c.Records {
			if err := r.DefineMetadata(id, rec.Key, rec.Value); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// ObjectID returns the identifier a class output is registered under: its
// identifier record, or the class name when it has none
func ObjectID(c *transform.ClassOutput) string {
	for _, rec := range c.Records {
		if !strings.HasSuffix(rec.Key, ":"+metadata.RecordIdentifier) {
			continue
		}
		if s, ok := rec.Value.(metadata.String); ok {
			return s.Value
		}
	}
	return c.Class.Name()
}
