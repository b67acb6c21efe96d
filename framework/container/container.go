package container

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
)

// DefaultFactoryPrefix marks a name as referring to the factory object
// rather than the object it produces.
const DefaultFactoryPrefix = "&"

// ── Entry types ───────────────────────────────────────────────────────────────

// State is the lifecycle state of an entry.
type State int

const (
	// Deferred entries have a descriptor whose factory has not run yet.
	Deferred State = iota
	// Realized entries hold a produced (or pre-built) instance.
	Realized
)

func (s State) String() string {
	if s == Realized {
		return "realized"
	}
	return "deferred"
}

// Entry is a read-only snapshot of a registered name.
type Entry struct {
	Name       string
	State      State
	Scope      Scope
	Descriptor *Descriptor // nil for pre-built instances
	Type       reflect.Type
}

// Extender decorates a product when it is created.
type Extender func(instance any, c *Container) any

// entry is the mutable record behind a name.
type entry struct {
	name string
	desc *Descriptor

	mu    sync.Mutex // serialises production and Extend
	value atomic.Pointer[realization]
}

// realization is replaced as a whole, never mutated in place.
type realization struct {
	factory any // factory object; nil for pre-built instances
	product any
}

func (e *entry) realized() *realization { return e.value.Load() }

func (e *entry) snapshot() Entry {
	out := Entry{Name: e.name, Descriptor: e.desc}
	if e.desc != nil {
		out.Scope = e.desc.Scope()
	}
	if r := e.realized(); r != nil {
		out.State = Realized
		out.Type = reflect.TypeOf(r.product)
	}
	return out
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is a named-object registry. Each entry is either a pre-built
// instance or a Descriptor that is produced on first Resolve.
//
// It supports:
//   - Register / Resolve / NamesForType
//   - Interceptors that make deferred entries discoverable by type
//   - Alias, Tag / Tagged, Extend
//   - AfterResolving callbacks
//   - Parent / child containers
type Container struct {
	mu sync.RWMutex

	// name → entry
	entries map[string]*entry

	// entries in registration order
	order []*entry

	// alias → name (canonical key)
	aliases map[string]string

	// name → extender funcs
	extenders map[string][]Extender

	// tag → []name
	tags map[string][]string

	interceptors []Interceptor

	// resolved callbacks: []func(name, product)
	afterResolving []func(string, any)

	parent   *Container
	logger   *slog.Logger
	prefix   string
	strict   bool
	validate *validator.Validate
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration, production and type
// mismatch warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFactoryPrefix changes the marker that selects the factory object of
// an entry. Empty prefixes are ignored.
func WithFactoryPrefix(p string) Option {
	return func(c *Container) {
		if p != "" {
			c.prefix = p
		}
	}
}

// WithStrictTypes makes Resolve fail with ErrTypeMismatch when a produced
// instance does not satisfy its declared type. By default the mismatch is
// only logged.
func WithStrictTypes(strict bool) Option {
	return func(c *Container) { c.strict = strict }
}

// New creates a container. The container registers itself as "container".
func New(opts ...Option) *Container {
	c := &Container{
		entries:   make(map[string]*entry),
		aliases:   make(map[string]string),
		extenders: make(map[string][]Extender),
		tags:      make(map[string][]string),
		logger:    slog.Default(),
		prefix:    DefaultFactoryPrefix,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	_ = c.Register("container", c)
	return c
}

// NewChild creates a container whose lookups fall back to c. The child
// inherits c's logger, prefix and strictness but not its interceptors.
func (c *Container) NewChild(opts ...Option) *Container {
	base := []Option{WithLogger(c.logger), WithFactoryPrefix(c.prefix), WithStrictTypes(c.strict)}
	child := New(append(base, opts...)...)
	child.parent = c
	return child
}

// Parent returns the parent container, or nil.
func (c *Container) Parent() *Container { return c.parent }

// FactoryPrefix returns the marker used for factory object names.
func (c *Container) FactoryPrefix() string { return c.prefix }

// ── Registration ──────────────────────────────────────────────────────────────

// Register adds a named entry. A *Descriptor registers a deferred entry;
// any other value registers a pre-built, already realized instance.
//
//	c.Register("config", cfg)
//	c.Register("repository", container.MustDescriptor(
//	    container.TypeOf[*RepositoryFactory](), buildFactory,
//	    container.Produces(container.TypeOf[UserRepository]()),
//	))
func (c *Container) Register(name string, v any) error {
	if err := c.checkName(name); err != nil {
		return err
	}

	e := &entry{name: name}
	switch x := v.(type) {
	case nil:
		return fmt.Errorf("%w: [%s] registered with nil value", ErrInvalidDescriptor, name)
	case *Descriptor:
		if x == nil {
			return fmt.Errorf("%w: [%s] registered with nil descriptor", ErrInvalidDescriptor, name)
		}
		e.desc = x
	default:
		e.value.Store(&realization{product: x})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, taken := c.entries[name]; taken {
		return fmt.Errorf("%w: [%s]", ErrDuplicateEntry, name)
	}
	if _, taken := c.aliases[name]; taken {
		return fmt.Errorf("%w: [%s] is already an alias", ErrDuplicateEntry, name)
	}
	c.entries[name] = e
	c.order = append(c.order, e)

	snap := e.snapshot()
	for _, ic := range c.interceptors {
		ic.OnRegister(snap)
	}

	if e.desc != nil {
		c.logger.Debug("container: registered descriptor",
			"name", name,
			"declared", e.desc.DeclaredType().String(),
			"scope", e.desc.Scope().String())
	} else {
		c.logger.Debug("container: registered instance", "name", name, "type", fmt.Sprintf("%T", v))
	}
	return nil
}

func (c *Container) checkName(name string) error {
	if err := c.validate.Var(name, "required,printascii"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.HasPrefix(name, c.prefix) {
		return fmt.Errorf("%w: %q starts with factory prefix %q", ErrInvalidName, name, c.prefix)
	}
	return nil
}

// AddInterceptor attaches an interceptor. Entries registered before the
// call are replayed through OnRegister in registration order.
func (c *Container) AddInterceptor(ic Interceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interceptors = append(c.interceptors, ic)
	for _, e := range c.order {
		ic.OnRegister(e.snapshot())
	}
}

// Alias registers an alternative name for a locally registered entry.
// An alias cannot be re-pointed.
//
//	c.Alias("repository", "users")
func (c *Container) Alias(name, alias string) error {
	if name == alias {
		return fmt.Errorf("%w: [%s] is aliased to itself", ErrInvalidName, name)
	}
	if err := c.checkName(alias); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, taken := c.entries[alias]; taken {
		return fmt.Errorf("%w: [%s]", ErrDuplicateEntry, alias)
	}
	if target, taken := c.aliases[alias]; taken {
		return fmt.Errorf("%w: [%s] already aliases [%s]", ErrDuplicateEntry, alias, target)
	}
	target := c.canonical(name)
	if _, ok := c.entries[target]; !ok {
		return fmt.Errorf("%w: cannot alias [%s]", ErrNoSuchEntry, name)
	}
	c.aliases[alias] = target
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the product of an entry. If the entry is already
// realized, the decorator is applied to the cached product immediately.
//
//	c.Extend("repository", func(instance any, c *container.Container) any {
//	    return &countingRepository{inner: instance.(UserRepository)}
//	})
func (c *Container) Extend(name string, fn Extender) {
	c.mu.RLock()
	key := c.canonical(name)
	e, ok := c.entries[key]
	c.mu.RUnlock()

	// Holding e.mu keeps a concurrent produce from applying fn a second time.
	if ok {
		e.mu.Lock()
		defer e.mu.Unlock()
	}
	c.mu.Lock()
	c.extenders[key] = append(c.extenders[key], fn)
	c.mu.Unlock()

	if ok {
		if r := e.realized(); r != nil {
			e.value.Store(&realization{factory: r.factory, product: fn(r.product, c)})
		}
	}
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple names under a named group.
//
//	c.Tag([]string{"users", "orders"}, "repositories")
func (c *Container) Tag(names []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], names...)
}

// Tagged resolves all names registered under a tag, in tag order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	names := slices.Clone(c.tags[tag])
	c.mu.RUnlock()

	result := make([]any, 0, len(names))
	for _, name := range names {
		v, err := c.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("tag [%s]: %w", tag, err)
		}
		result = append(result, v)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns the object registered under name, producing it on first
// use. A name carrying the factory prefix ("&repository") returns the
// factory object instead of its product. Singleton entries are produced
// exactly once; later calls return the same instance.
//
// A factory must not resolve its own entry.
func (c *Container) Resolve(name string) (any, error) {
	base, factoryRef := strings.CutPrefix(name, c.prefix)

	c.mu.RLock()
	e, ok := c.entries[c.canonical(base)]
	c.mu.RUnlock()

	if !ok {
		if c.parent != nil {
			return c.parent.Resolve(name)
		}
		return nil, fmt.Errorf("%w: [%s]", ErrNoSuchEntry, name)
	}
	if factoryRef && e.desc == nil {
		return nil, fmt.Errorf("%w: [%s] is not a factory entry", ErrNoSuchEntry, name)
	}

	if e.desc != nil && e.desc.Scope() == Prototype {
		factory, product, err := c.produce(e)
		if err != nil {
			return nil, err
		}
		if factoryRef {
			return factory, nil
		}
		return product, nil
	}

	r := e.realized()
	if r == nil {
		e.mu.Lock()
		if r = e.realized(); r == nil {
			factory, product, err := c.produce(e)
			if err != nil {
				e.mu.Unlock()
				return nil, err
			}
			r = &realization{factory: factory, product: product}
			e.value.Store(r)
		}
		e.mu.Unlock()
	}

	if factoryRef {
		return r.factory, nil
	}
	return r.product, nil
}

// produce runs e's factory and, for Producer factory objects, the product
// step. Extenders, interceptors and callbacks are applied to the product.
func (c *Container) produce(e *entry) (factory, product any, err error) {
	d := e.desc
	factory, err = d.factory(c, d)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: [%s]: %w", ErrFactoryFailed, e.name, err)
	}
	if factory == nil {
		return nil, nil, fmt.Errorf("%w: [%s] factory returned nil", ErrFactoryFailed, e.name)
	}
	if have := reflect.TypeOf(factory); !assignable(have, d.DeclaredType()) {
		mismatch := fmt.Errorf("%w: [%s] declared %s, factory built %s", ErrTypeMismatch, e.name, d.DeclaredType(), have)
		if err := c.reportMismatch(e.name, mismatch); err != nil {
			return nil, nil, err
		}
	}

	product = factory
	if p, ok := factory.(Producer); ok {
		product, err = p.Object()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: [%s] object: %w", ErrFactoryFailed, e.name, err)
		}
	}

	c.mu.RLock()
	exts := slices.Clone(c.extenders[e.name])
	interceptors := slices.Clone(c.interceptors)
	c.mu.RUnlock()

	for _, ext := range exts {
		product = ext(product, c)
	}
	for _, ic := range interceptors {
		if err := c.reportMismatch(e.name, ic.OnResolve(e.name, product)); err != nil {
			return nil, nil, err
		}
	}

	c.logger.Debug("container: produced entry", "name", e.name, "type", fmt.Sprintf("%T", product))
	c.fireAfterResolving(e.name, product)
	return factory, product, nil
}

// reportMismatch logs err, or returns it when the container is strict.
func (c *Container) reportMismatch(name string, err error) error {
	if err == nil {
		return nil
	}
	if c.strict {
		return err
	}
	c.logger.Warn("container: produced type disagrees with descriptor", "name", name, "error", err)
	return nil
}

// ── Type queries ──────────────────────────────────────────────────────────────

// Query selects entries by type.
type Query struct {
	// Type is the type every match must satisfy.
	Type reflect.Type
	// IncludeAncestors also searches parent containers.
	IncludeAncestors bool
	// IncludeNonSingletons also reports prototype entries.
	IncludeNonSingletons bool
}

// NamesForType returns the names of entries whose factory object or product
// satisfies q.Type, in registration order. Factory object matches carry the
// factory prefix. Deferred entries are only visible through interceptors;
// the query never produces an entry. Interceptors are consulted for realized
// descriptor entries too, so an entry whose product disagreed with its
// descriptor stays visible under the declared types.
func (c *Container) NamesForType(q Query) []string {
	if q.Type == nil {
		return nil
	}

	c.mu.RLock()
	order := slices.Clone(c.order)
	interceptors := slices.Clone(c.interceptors)
	c.mu.RUnlock()

	var names []string
	for _, e := range order {
		if e.desc != nil && e.desc.Scope() == Prototype && !q.IncludeNonSingletons {
			continue
		}
		names = append(names, c.matchNames(e, q.Type, interceptors)...)
	}

	if q.IncludeAncestors && c.parent != nil {
		for _, name := range c.parent.NamesForType(q) {
			if !c.Bound(strings.TrimPrefix(name, c.prefix)) {
				names = append(names, name)
			}
		}
	}
	return names
}

func (c *Container) matchNames(e *entry, t reflect.Type, interceptors []Interceptor) []string {
	m := MatchNone
	r := e.realized()
	if r != nil {
		if e.desc != nil && assignable(reflect.TypeOf(r.factory), t) {
			m |= MatchFactory
		}
		if assignable(reflect.TypeOf(r.product), t) {
			m |= MatchProduct
		}
	}
	if e.desc != nil {
		for _, ic := range interceptors {
			m |= ic.Matches(e.name, t)
		}
	}

	var out []string
	if m.Has(MatchFactory) {
		if e.isFactory() {
			out = append(out, c.prefix+e.name)
		} else {
			m |= MatchProduct
		}
	}
	if m.Has(MatchProduct) {
		out = append(out, e.name)
	}
	return out
}

// isFactory reports whether the entry's factory object is distinct from
// its product, so that it is addressed with the factory prefix.
func (e *entry) isFactory() bool {
	if e.desc == nil {
		return false
	}
	if _, ok := e.desc.ProducedType(); ok {
		return true
	}
	if e.desc.DeclaredType().Implements(producerType) {
		return true
	}
	if r := e.realized(); r != nil {
		_, ok := r.factory.(Producer)
		return ok
	}
	return false
}

var producerType = reflect.TypeFor[Producer]()

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if a name (or alias) has been registered locally.
func (c *Container) Bound(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[c.canonical(name)]
	return ok
}

// Resolved returns true if the entry has been realized.
func (c *Container) Resolved(name string) bool {
	c.mu.RLock()
	e, ok := c.entries[c.canonical(name)]
	c.mu.RUnlock()
	return ok && e.realized() != nil
}

// Names returns all registered names in registration order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.order))
	for _, e := range c.order {
		out = append(out, e.name)
	}
	return out
}

// Entry returns a snapshot of a single entry.
func (c *Container) Entry(name string) (Entry, error) {
	c.mu.RLock()
	e, ok := c.entries[c.canonical(strings.TrimPrefix(name, c.prefix))]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, fmt.Errorf("%w: [%s]", ErrNoSuchEntry, name)
	}
	return e.snapshot(), nil
}

// Entries returns snapshots of all entries in registration order.
func (c *Container) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.order))
	for _, e := range c.order {
		out = append(out, e.snapshot())
	}
	return out
}

// KnownTypes returns the declared, produced and realized types of every
// entry, keyed by TypeKey. Parent types are included unless shadowed.
func (c *Container) KnownTypes() map[string]reflect.Type {
	out := make(map[string]reflect.Type)
	if c.parent != nil {
		for k, t := range c.parent.KnownTypes() {
			out[k] = t
		}
	}
	for _, e := range c.Entries() {
		for _, t := range []reflect.Type{e.Type, declaredOf(e), producedOf(e)} {
			if t != nil {
				out[TypeKey(t)] = t
			}
		}
	}
	return out
}

func declaredOf(e Entry) reflect.Type {
	if e.Descriptor == nil {
		return nil
	}
	return e.Descriptor.DeclaredType()
}

func producedOf(e Entry) reflect.Type {
	if e.Descriptor == nil {
		return nil
	}
	t, _ := e.Descriptor.ProducedType()
	return t
}

// canonical resolves an alias to its canonical key.
func (c *Container) canonical(name string) string {
	if target, ok := c.aliases[name]; ok {
		return target
	}
	return name
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after any entry is produced.
func (c *Container) AfterResolving(cb func(name string, product any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(name string, product any) {
	c.mu.RLock()
	cbs := slices.Clone(c.afterResolving)
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(name, product)
	}
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve calls c.Resolve and type-asserts the result.
//
//	repo, err := container.Resolve[UserRepository](c, "repository")
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	instance, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: [%s] resolved to %T, want %s", ErrTypeMismatch, name, instance, TypeOf[T]())
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, name string) T {
	v, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}

// ResolveType resolves the single entry whose product satisfies T,
// searching parent containers too.
//
//	repo, err := container.ResolveType[UserRepository](c)
func ResolveType[T any](c *Container) (T, error) {
	var zero T
	t := TypeOf[T]()
	var candidates []string
	for _, name := range c.NamesForType(Query{Type: t, IncludeAncestors: true, IncludeNonSingletons: true}) {
		if !strings.HasPrefix(name, c.prefix) {
			candidates = append(candidates, name)
		}
	}
	switch len(candidates) {
	case 0:
		return zero, fmt.Errorf("%w: no entry produces %s", ErrNoSuchEntry, t)
	case 1:
		return Resolve[T](c, candidates[0])
	default:
		return zero, fmt.Errorf("%w: %s produced by %v", ErrAmbiguousType, t, candidates)
	}
}
