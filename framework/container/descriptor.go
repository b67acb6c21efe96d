package container

import (
	"fmt"
	"maps"
	"reflect"
)

// Factory builds the factory object for a deferred entry. It receives the
// entry's own descriptor so it can read the properties set with
// WithProperty.
type Factory func(c *Container, d *Descriptor) (any, error)

// Producer is implemented by factory objects that produce a separate object.
// When the factory object of entry "repo" is a Producer, Resolve("repo")
// returns the product and Resolve("&repo") returns the factory object itself.
type Producer interface {
	Object() (any, error)
}

// ProducesTypeInfo is the capability marker an Interceptor looks for. It
// reports the type of object a deferred factory will produce, without
// running the factory.
type ProducesTypeInfo interface {
	ProducedType() (reflect.Type, bool)
}

// Scope controls how often a descriptor's factory runs.
type Scope int

const (
	// Singleton entries are produced once and cached.
	Singleton Scope = iota
	// Prototype entries are produced again on every Resolve.
	Prototype
)

func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Prototype:
		return "prototype"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Descriptor describes a deferred entry: the type of its factory object,
// optionally the type that factory object produces, and how to build it.
// A Descriptor is immutable once constructed.
type Descriptor struct {
	declared   reflect.Type
	produced   reflect.Type
	factory    Factory
	scope      Scope
	properties map[string]any
}

// DescriptorOption configures a Descriptor at construction time.
type DescriptorOption func(*Descriptor) error

// Produces marks the descriptor as producing objects of type t. This is the
// capability that makes an entry discoverable by its product type before it
// is instantiated.
//
//	container.NewDescriptor(
//	    container.TypeOf[*RepositoryFactory](),
//	    buildRepositoryFactory,
//	    container.Produces(container.TypeOf[UserRepository]()),
//	)
func Produces(t reflect.Type) DescriptorOption {
	return func(d *Descriptor) error {
		if t == nil {
			return fmt.Errorf("%w: produced type is nil", ErrInvalidDescriptor)
		}
		d.produced = t
		return nil
	}
}

// WithScope sets the descriptor's scope. The default is Singleton.
func WithScope(s Scope) DescriptorOption {
	return func(d *Descriptor) error {
		if s != Singleton && s != Prototype {
			return fmt.Errorf("%w: unknown scope %v", ErrInvalidDescriptor, s)
		}
		d.scope = s
		return nil
	}
}

// WithProperty attaches configuration the factory needs later, e.g. the
// repository interface a repository factory implements.
func WithProperty(key string, value any) DescriptorOption {
	return func(d *Descriptor) error {
		d.properties[key] = value
		return nil
	}
}

// NewDescriptor creates a descriptor whose factory object has type declared.
// It fails with ErrInvalidDescriptor when declared or factory is nil.
func NewDescriptor(declared reflect.Type, factory Factory, opts ...DescriptorOption) (*Descriptor, error) {
	if declared == nil {
		return nil, fmt.Errorf("%w: declared type is nil", ErrInvalidDescriptor)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: factory for %s is nil", ErrInvalidDescriptor, declared)
	}
	d := &Descriptor{
		declared:   declared,
		factory:    factory,
		scope:      Singleton,
		properties: make(map[string]any),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustDescriptor is like NewDescriptor but panics on error.
func MustDescriptor(declared reflect.Type, factory Factory, opts ...DescriptorOption) *Descriptor {
	d, err := NewDescriptor(declared, factory, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// DeclaredType returns the type of the factory object.
func (d *Descriptor) DeclaredType() reflect.Type { return d.declared }

// ProducedType implements ProducesTypeInfo. It reports false when the
// descriptor carries no Produces option.
func (d *Descriptor) ProducedType() (reflect.Type, bool) {
	return d.produced, d.produced != nil
}

// Scope returns the descriptor's scope.
func (d *Descriptor) Scope() Scope { return d.scope }

// Property returns a single configuration value.
func (d *Descriptor) Property(key string) (any, bool) {
	v, ok := d.properties[key]
	return v, ok
}

// Properties returns a copy of all configuration values.
func (d *Descriptor) Properties() map[string]any {
	return maps.Clone(d.properties)
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeOf returns the reflect.Type of T. It works for interface types, which
// reflect.TypeOf cannot see through a nil value.
//
//	container.TypeOf[UserRepository]()   // interface type
//	container.TypeOf[*RepositoryFactory]()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// TypeKey returns the package-qualified name of t, useful as a stable
// string identifier for a type. Each pointer level adds a leading "*", so
// T and *T have different keys.
//
//	container.TypeKey(container.TypeOf[*RepositoryFactory]())  // "*.../repository.RepositoryFactory"
func TypeKey(t reflect.Type) string {
	if t == nil {
		return ""
	}
	stars := ""
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		stars += "*"
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return stars + t.String()
	}
	return stars + t.PkgPath() + "." + t.Name()
}

// assignable reports whether a value of type have can be used where want is
// expected: identical types, assignable types, or have implementing the
// interface want.
func assignable(have, want reflect.Type) bool {
	if have == nil || want == nil {
		return false
	}
	if have == want || have.AssignableTo(want) {
		return true
	}
	return want.Kind() == reflect.Interface && have.Implements(want)
}
