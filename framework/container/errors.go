package container

import "errors"

var (
	// ErrInvalidDescriptor is returned when a descriptor has no resolvable
	// declared type, no build function, or a nil value is registered.
	ErrInvalidDescriptor = errors.New("container: invalid descriptor")

	// ErrNoSuchEntry is returned when a name is not registered.
	ErrNoSuchEntry = errors.New("container: no such entry")

	// ErrDuplicateEntry is returned when a name is registered twice.
	ErrDuplicateEntry = errors.New("container: duplicate entry")

	// ErrInvalidName is returned for empty names and names that carry the
	// factory prefix.
	ErrInvalidName = errors.New("container: invalid entry name")

	// ErrFactoryFailed wraps an error returned by a descriptor's build function
	// or by a Producer.
	ErrFactoryFailed = errors.New("container: factory failed")

	// ErrTypeMismatch is returned by Resolve in strict mode when a produced
	// instance does not satisfy the type its descriptor declared.
	ErrTypeMismatch = errors.New("container: produced type mismatch")

	// ErrAmbiguousType is returned by ResolveType when more than one entry
	// produces the requested type.
	ErrAmbiguousType = errors.New("container: ambiguous type")

	// ErrProviderIncomplete is returned when a provider does not register a
	// name it claims in Provides.
	ErrProviderIncomplete = errors.New("container: provider did not register a provided name")
)
