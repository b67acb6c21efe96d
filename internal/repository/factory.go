package repository

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-registry/framework/container"
)

// PropertyRepositoryInterface is the descriptor property naming the
// repository interface a RepositoryFactory builds.
const PropertyRepositoryInterface = "repositoryInterface"

// Builder creates the implementation of one repository interface.
type Builder func() (Repository, error)

// RepositoryFactory is the factory object behind a repository entry. It
// implements container.Producer, so resolving the entry yields the
// repository while "&name" yields the factory itself.
type RepositoryFactory struct {
	iface   reflect.Type
	builder Builder
}

var (
	_ container.Producer           = (*RepositoryFactory)(nil)
	_ RepositoryFactoryInformation = (*RepositoryFactory)(nil)
)

// NewRepositoryFactory creates a factory for iface.
func NewRepositoryFactory(iface reflect.Type, builder Builder) (*RepositoryFactory, error) {
	if iface == nil || iface.Kind() != reflect.Interface {
		return nil, fmt.Errorf("repository: %v is not an interface", iface)
	}
	if !iface.Implements(reflect.TypeFor[Repository]()) {
		return nil, fmt.Errorf("repository: %s does not embed Repository", iface)
	}
	if builder == nil {
		return nil, fmt.Errorf("repository: nil builder for %s", iface)
	}
	return &RepositoryFactory{iface: iface, builder: builder}, nil
}

// RepositoryInterface implements RepositoryFactoryInformation.
func (f *RepositoryFactory) RepositoryInterface() reflect.Type { return f.iface }

// Object implements container.Producer.
func (f *RepositoryFactory) Object() (any, error) {
	return f.builder()
}

// Descriptor returns a deferred descriptor for a repository of type iface.
// The descriptor declares RepositoryFactoryInformation as its factory type
// and iface as its product, so both are discoverable before the factory
// runs. The factory reads iface back from PropertyRepositoryInterface.
func Descriptor(iface reflect.Type, builder Builder) (*container.Descriptor, error) {
	return container.NewDescriptor(
		container.TypeOf[RepositoryFactoryInformation](),
		func(_ *container.Container, d *container.Descriptor) (any, error) {
			return NewRepositoryFactory(RepositoryInterfaceOf(d), builder)
		},
		container.Produces(iface),
		container.WithProperty(PropertyRepositoryInterface, iface),
	)
}

// RepositoryInterfaceOf returns the repository interface recorded on d, or
// nil when d was not built by Descriptor.
func RepositoryInterfaceOf(d *container.Descriptor) reflect.Type {
	v, _ := d.Property(PropertyRepositoryInterface)
	t, _ := v.(reflect.Type)
	return t
}
