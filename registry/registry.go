// Package registry is the process-wide cache of resolved entity descriptors.
//
// Lifecycle:
//
//	reg := registry.New(registry.WithOptions(opts))
//	defer reg.Close()
//
//	if err := reg.Register(classes...); err != nil { ... } // pending
//	if err := reg.Resolve(); err != nil { ... }            // validated and published
//	desc, err := reg.Descriptor("Customer")                // lock-free read
//
// Resolve validates pending classes in dependency order (see validate.Order).
// Classes of one dependency level are resolved in parallel. Published
// descriptors are immutable and shared by all readers; callers must not
// modify them.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/stokaro/ormeta/config"
	"github.com/stokaro/ormeta/core/collector"
	"github.com/stokaro/ormeta/core/decl"
	"github.com/stokaro/ormeta/core/mapping"
	"github.com/stokaro/ormeta/core/validate"
)

var (
	// ErrClosed is returned by every operation on a closed registry.
	ErrClosed = errors.New("registry is closed")
	// ErrNotFound is returned for a class that is not registered or not yet resolved.
	ErrNotFound = errors.New("class not found")
)

// snapshot is the published, read-only registry state.
type snapshot struct {
	closed      bool
	descriptors map[string]*mapping.EntityDescriptor
}

// Registry holds registered class declarations and their resolved
// descriptors. It is safe for concurrent use.
type Registry struct {
	opts   *config.ResolveOptions
	logger *slog.Logger

	mu      sync.Mutex             // serializes writers
	classes map[string]*decl.Class // every registered class
	pending map[string]bool        // registered but not yet resolved

	state atomic.Pointer[snapshot]
}

// Option configures a Registry.
type Option func(*Registry)

// WithOptions sets the resolution options. nil keeps the defaults.
func WithOptions(opts *config.ResolveOptions) Option {
	return func(r *Registry) {
		if opts != nil {
			r.opts = opts
		}
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		opts:    config.DefaultResolveOptions(),
		logger:  slog.Default(),
		classes: map[string]*decl.Class{},
		pending: map[string]bool{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.state.Store(&snapshot{descriptors: map[string]*mapping.EntityDescriptor{}})
	return r
}

// Register adds class declarations. They stay pending until the next
// Resolve. Registering a name twice fails and registers nothing.
func (r *Registry) Register(classes ...*decl.Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Load().closed {
		return ErrClosed
	}

	batch := make(map[string]bool, len(classes))
	for _, class := range classes {
		if class == nil || class.Name == "" {
			return errors.New("class name is required")
		}
		if _, ok := r.classes[class.Name]; ok || batch[class.Name] {
			return fmt.Errorf("class %s is already registered", class.Name)
		}
		batch[class.Name] = true
	}

	for _, class := range classes {
		r.classes[class.Name] = class
		r.pending[class.Name] = true
	}
	return nil
}

// Unregister removes classes and their descriptors. It is refused while a
// class that stays registered depends on one of them.
func (r *Registry) Unregister(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.state.Load()
	if cur.closed {
		return ErrClosed
	}

	removed := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := r.classes[name]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		removed[name] = true
	}

	for _, name := range sortedKeys(r.classes) {
		if removed[name] {
			continue
		}
		for _, dep := range validate.Dependencies(r.classes[name]) {
			if removed[dep] {
				return fmt.Errorf("cannot unregister %s: required by %s", dep, name)
			}
		}
	}

	next := maps.Clone(cur.descriptors)
	for name := range removed {
		delete(r.classes, name)
		delete(r.pending, name)
		delete(next, name)
		r.logger.Debug("unregistered class", "name", name)
	}
	r.state.Store(&snapshot{descriptors: next})
	return nil
}

// Resolve validates every pending class and publishes the descriptors.
//
// Resolution is all or nothing: on failure nothing is published and the
// classes stay pending, so the offending declarations can be unregistered
// and Resolve retried. Errors of all classes of the failing dependency level
// are combined; later levels are not attempted.
func (r *Registry) Resolve() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.state.Load()
	if cur.closed {
		return ErrClosed
	}
	if len(r.pending) == 0 {
		return nil
	}

	pending := make([]*decl.Class, 0, len(r.pending))
	for _, name := range sortedKeys(r.pending) {
		pending = append(pending, r.classes[name])
	}
	levels, err := validate.Order(pending)
	if err != nil {
		return err
	}

	resolved := maps.Clone(cur.descriptors)
	for i, level := range levels {
		r.logger.Debug("resolving dependency level", "level", i, "classes", level)
		descs, err := r.resolveLevel(level, resolved)
		if err != nil {
			return err
		}
		for _, d := range descs {
			resolved[d.Name] = d
		}
	}

	clear(r.pending)
	r.state.Store(&snapshot{descriptors: resolved})
	return nil
}

// resolveLevel validates the classes of one level in parallel. resolved is
// only read while the goroutines run.
func (r *Registry) resolveLevel(level []string, resolved map[string]*mapping.EntityDescriptor) ([]*mapping.EntityDescriptor, error) {
	descs := make([]*mapping.EntityDescriptor, len(level))
	errs := make([]error, len(level))

	var g errgroup.Group
	if r.opts.Parallelism > 0 {
		g.SetLimit(r.opts.Parallelism)
	}
	for i, name := range level {
		g.Go(func() error {
			descs[i], errs[i] = r.resolveClass(r.classes[name], resolved)
			return nil
		})
	}
	_ = g.Wait()

	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}
	return descs, nil
}

func (r *Registry) resolveClass(class *decl.Class, resolved map[string]*mapping.EntityDescriptor) (*mapping.EntityDescriptor, error) {
	records, err := collector.Collect(class)
	if err != nil {
		return nil, err
	}

	chain, err := collector.Hierarchy(r.lookup, class)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", class.Name, err)
	}
	ancestors := make([]*mapping.EntityDescriptor, 0, len(chain))
	for _, super := range chain {
		if d, ok := resolved[super.Name]; ok {
			ancestors = append(ancestors, d)
		}
	}

	desc, err := validate.Validate(validate.Input{
		Class:      class,
		Records:    records,
		Ancestors:  ancestors,
		Referenced: resolved,
	}, r.opts)
	if err != nil {
		return nil, err
	}

	attrs := []any{"name", desc.Name, "kind", desc.Kind, "attributes", len(desc.Attributes)}
	if desc.Table != nil {
		attrs = append(attrs, "table", desc.Table.QualifiedName(r.opts.Dialect))
	}
	r.logger.Debug("resolved entity", attrs...)
	return desc, nil
}

func (r *Registry) lookup(name string) (*decl.Class, bool) {
	class, ok := r.classes[name]
	return class, ok
}

// Descriptor returns the resolved descriptor of a class.
func (r *Registry) Descriptor(name string) (*mapping.EntityDescriptor, error) {
	cur := r.state.Load()
	if cur.closed {
		return nil, ErrClosed
	}
	d, ok := cur.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return d, nil
}

// Descriptors returns every resolved descriptor sorted by class name.
func (r *Registry) Descriptors() ([]*mapping.EntityDescriptor, error) {
	cur := r.state.Load()
	if cur.closed {
		return nil, ErrClosed
	}
	out := make([]*mapping.EntityDescriptor, 0, len(cur.descriptors))
	for _, name := range sortedKeys(cur.descriptors) {
		out = append(out, cur.descriptors[name])
	}
	return out, nil
}

// Pending returns the names of registered classes awaiting Resolve, sorted.
func (r *Registry) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.pending)
}

// Close discards every declaration and descriptor. Further calls fail with
// ErrClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Load().closed {
		return ErrClosed
	}
	r.classes = nil
	r.pending = nil
	r.state.Store(&snapshot{closed: true})
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	sort.Strings(keys)
	return keys
}
