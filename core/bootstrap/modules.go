package bootstrap

import "context"

// Storage is whatever state the seeders fill and the provider consumes,
// e.g. the in-memory settings store.
type Storage interface{}

// Seeder prepares storage before the services are built.
type Seeder interface {
	Seed(ctx context.Context, storage Storage) error
}

// SeederFunc lets a plain function act as a Seeder.
type SeederFunc func(ctx context.Context, storage Storage) error

func (f SeederFunc) Seed(ctx context.Context, storage Storage) error { return f(ctx, storage) }

// ServiceProvider builds the application value T once seeding is done.
type ServiceProvider[T any] interface {
	Provide(ctx context.Context, cfg interface{}, storage Storage) (T, error)
}

// ServiceProviderFunc lets a plain function act as a ServiceProvider.
type ServiceProviderFunc[T any] func(ctx context.Context, cfg interface{}, storage Storage) (T, error)

func (f ServiceProviderFunc[T]) Provide(ctx context.Context, cfg interface{}, storage Storage) (T, error) {
	return f(ctx, cfg, storage)
}

// Modules lists the seeders, run in order, and the provider.
type Modules[T any] struct {
	Seeders  []Seeder
	Services ServiceProvider[T]
}
