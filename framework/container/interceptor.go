package container

import (
	"fmt"
	"reflect"
	"sync"
)

// Match reports which side of an entry a type query hit.
type Match uint8

const (
	// MatchNone means the entry does not satisfy the query.
	MatchNone Match = 0
	// MatchFactory means the factory object satisfies the query; the entry
	// is reported under its prefixed name ("&repository").
	MatchFactory Match = 1 << iota
	// MatchProduct means the produced object satisfies the query; the entry
	// is reported under its plain name ("repository").
	MatchProduct
)

// Has reports whether m contains every bit of other.
func (m Match) Has(other Match) bool { return other != MatchNone && m&other == other }

// Interceptor is attached to a Container with AddInterceptor. It lets type
// queries see deferred entries without producing them.
//
// OnRegister runs while the container holds its write lock, so an
// Interceptor must not call back into the container from it.
type Interceptor interface {
	// OnRegister inspects a newly registered entry.
	OnRegister(e Entry)

	// Matches reports whether the descriptor entry name satisfies a query
	// for t. It is consulted before and after the entry is realized.
	Matches(name string, t reflect.Type) Match

	// OnResolve is called once a singleton entry is realized, or on every
	// production of a prototype entry. A returned error reports that the
	// product disagrees with what was indexed for it.
	OnResolve(name string, product any) error
}

var _ ProducesTypeInfo = (*Descriptor)(nil)

type indexed struct {
	declared reflect.Type
	produced reflect.Type
}

// TypeIndex is the default Interceptor. It records the declared and
// produced type of every descriptor that carries the ProducesTypeInfo
// capability. Entries without the capability are skipped.
type TypeIndex struct {
	mu     sync.RWMutex
	byName map[string]indexed
}

// NewTypeIndex creates an empty index.
func NewTypeIndex() *TypeIndex {
	return &TypeIndex{byName: make(map[string]indexed)}
}

// OnRegister indexes e when its descriptor declares a produced type.
func (x *TypeIndex) OnRegister(e Entry) {
	if e.Descriptor == nil {
		return
	}
	var info ProducesTypeInfo = e.Descriptor
	produced, ok := info.ProducedType()
	if !ok {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, seen := x.byName[e.Name]; seen {
		return
	}
	x.byName[e.Name] = indexed{declared: e.Descriptor.DeclaredType(), produced: produced}
}

// Matches reports whether the indexed declared or produced type of name is
// equal to, assignable to, or implements t.
func (x *TypeIndex) Matches(name string, t reflect.Type) Match {
	x.mu.RLock()
	ix, ok := x.byName[name]
	x.mu.RUnlock()
	if !ok {
		return MatchNone
	}

	m := MatchNone
	if assignable(ix.declared, t) {
		m |= MatchFactory
	}
	if assignable(ix.produced, t) {
		m |= MatchProduct
	}
	return m
}

// OnResolve leaves the index untouched. It returns an ErrTypeMismatch error
// when product does not satisfy the indexed produced type.
func (x *TypeIndex) OnResolve(name string, product any) error {
	x.mu.RLock()
	ix, ok := x.byName[name]
	x.mu.RUnlock()
	if !ok {
		return nil
	}
	if have := reflect.TypeOf(product); !assignable(have, ix.produced) {
		return fmt.Errorf("%w: [%s] declared %s, produced %v", ErrTypeMismatch, name, ix.produced, have)
	}
	return nil
}
