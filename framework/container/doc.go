// Package container provides a named-object registry whose deferred
// factory entries can be found by type before they are instantiated.
//
// # Overview
//
// Every entry has a unique name and is either a pre-built instance or a
// Descriptor. A Descriptor names the type of its factory object and,
// optionally, the type that factory object produces. The factory runs on
// the first Resolve and, for singletons, never again.
//
// Type queries (NamesForType) must never instantiate an entry. Realized
// entries are matched by their runtime types; deferred entries are only
// visible through an Interceptor attached with AddInterceptor. The default
// Interceptor, TypeIndex, indexes every descriptor that carries the
// ProducesTypeInfo capability (set with Produces).
//
// # Registering
//
//	c := container.New()
//	c.AddInterceptor(container.NewTypeIndex())
//
//	// Pre-built value
//	c.Register("config", cfg)
//
//	// Deferred factory producing a UserRepository
//	d, err := container.NewDescriptor(
//	    container.TypeOf[RepositoryFactoryInformation](),
//	    func(c *container.Container, _ *container.Descriptor) (any, error) { return newRepositoryFactory(), nil },
//	    container.Produces(container.TypeOf[UserRepository]()),
//	)
//	c.Register("repository", d)
//
// # Querying and Resolving
//
// A factory object that implements Producer is addressed with the factory
// prefix ("&" by default); its product uses the plain name.
//
//	names := c.NamesForType(container.Query{Type: container.TypeOf[RepositoryFactoryInformation]()})
//	// ["&repository"], and the factory has not run
//
//	repo, err := container.Resolve[UserRepository](c, "repository")
//	factory, err := c.Resolve("&repository")
//
// # Scopes
//
//	// Produced on every Resolve, reported only with IncludeNonSingletons
//	container.NewDescriptor(t, build, container.WithScope(container.Prototype))
//
// # Parents
//
//	child := c.NewChild()
//	child.NamesForType(container.Query{Type: t, IncludeAncestors: true})
//
// # Type mismatches
//
// A product that does not satisfy its declared type is logged as a warning
// and kept. WithStrictTypes(true) turns the warning into ErrTypeMismatch.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    return app.Register("mailer", mailerDescriptor)
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
