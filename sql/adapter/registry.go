package adapter

import (
	"fmt"
	"sync"
)

var globalRegistry = NewRegistry()

// Registry manages available SQL adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[Name]func() Adapter
}

// NewRegistry creates a registry with the built-in adapters registered.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[Name]func() Adapter)}

	r.Register("postgres", func() Adapter { return NewPostgresAdapter() })
	r.Register("postgresql", func() Adapter { return NewPostgresAdapter() })
	r.Register("mysql", func() Adapter { return NewMySQLAdapter() })
	r.Register("sqlite", func() Adapter { return NewSQLiteAdapter() })
	r.Register("sqlite3", func() Adapter { return NewSQLiteAdapter() })

	return r
}

// Register registers a new adapter factory.
func (r *Registry) Register(name Name, factory func() Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = factory
}

// Get retrieves an adapter by name.
func (r *Registry) Get(name Name) (Adapter, error) {
	r.mu.RLock()
	factory, exists := r.adapters[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("adapter %q not found", name)
	}
	return factory(), nil
}

// List returns all registered adapter names.
func (r *Registry) List() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]Name, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}

// Exists checks if an adapter is registered.
func (r *Registry) Exists(name Name) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.adapters[name]
	return exists
}

// Register registers an adapter in the global registry.
func Register(name Name, factory func() Adapter) {
	globalRegistry.Register(name, factory)
}

// Get retrieves an adapter from the global registry.
func Get(name Name) (Adapter, error) {
	return globalRegistry.Get(name)
}

// List returns all adapter names in the global registry.
func List() []Name {
	return globalRegistry.List()
}

// Exists checks if an adapter exists in the global registry.
func Exists(name Name) bool {
	return globalRegistry.Exists(name)
}
