// Package repository is a small repository domain whose factories are
// registered as deferred entries and found by type before they run.
package repository

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// ErrNotFound is returned when no user has the requested ID.
var ErrNotFound = errors.New("repository: not found")

// User is the aggregate stored by UserRepository.
type User struct {
	ID   int64
	Name string
}

// Repository is the marker every repository interface embeds.
type Repository interface {
	EntityType() reflect.Type
}

// UserRepository stores users by ID.
type UserRepository interface {
	Repository
	Save(u User) User
	FindByID(id int64) (User, error)
	FindAll() []User
}

// RepositoryFactoryInformation is implemented by factory objects that build
// repositories. It describes the repository without building it.
type RepositoryFactoryInformation interface {
	RepositoryInterface() reflect.Type
}

// memoryUserRepository is an in-memory UserRepository.
type memoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]User
}

// NewMemoryUserRepository creates an empty in-memory UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[int64]User)}
}

func (r *memoryUserRepository) EntityType() reflect.Type { return reflect.TypeFor[User]() }

func (r *memoryUserRepository) Save(u User) User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	} else if u.ID > r.nextID {
		r.nextID = u.ID
	}
	r.users[u.ID] = u
	return u
}

func (r *memoryUserRepository) FindByID(id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u, nil
}

func (r *memoryUserRepository) FindAll() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b User) int { return int(a.ID - b.ID) })
	return out
}
