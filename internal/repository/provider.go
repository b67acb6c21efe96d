package repository

import (
	"github.com/km-arc/go-registry/framework/container"
)

// ServiceProvider registers the "repository" entry: a deferred
// RepositoryFactory producing an in-memory UserRepository.
//
// Bound names:
//   - "repository"  → UserRepository
//   - "&repository" → *RepositoryFactory
type ServiceProvider struct {
	container.BaseProvider
}

func (p *ServiceProvider) Register(app *container.Container) error {
	d, err := Descriptor(container.TypeOf[UserRepository](), func() (Repository, error) {
		return NewMemoryUserRepository(), nil
	})
	if err != nil {
		return err
	}
	return app.Register("repository", d)
}

func (p *ServiceProvider) Provides() []string { return []string{"repository"} }
