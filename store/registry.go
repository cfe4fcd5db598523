package store

import (
	"fmt"
	"sort"
	"sync"
)

// BackendType names a storage backend implementation
type BackendType string

const (
	// MemoryBackendType is the in-memory backend
	MemoryBackendType BackendType = "memory"
	// DBBackendType is the SQLite backend
	DBBackendType BackendType = "db"
)

// Constructor creates a Backend from backend specific parameters
type Constructor func(params map[string]any) (Backend, error)

// Registry manages the available Backend implementations
type Registry interface {
	// Register adds a new Backend implementation to the registry
	Register(bt BackendType, constructor Constructor) error
	// Get returns a new instance of the specified backend type
	Get(bt BackendType, params map[string]any) (Backend, error)
	// ListRegistered returns the registered backend types in sorted order
	ListRegistered() []BackendType
}

type registry struct {
	mu       sync.RWMutex
	backends map[BackendType]Constructor
}

var defaultRegistry Registry = NewRegistry()

// NewRegistry returns an empty Registry.
func NewRegistry() Registry {
	return &registry{
		backends: make(map[BackendType]Constructor),
	}
}

// GetRegistry returns the global Registry instance
func GetRegistry() Registry {
	return defaultRegistry
}

func (r *registry) Register(bt BackendType, constructor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[bt]; exists {
		return fmt.Errorf("backend type %s already registered", bt)
	}

	r.backends[bt] = constructor
	return nil
}

func (r *registry) Get(bt BackendType, params map[string]any) (Backend, error) {
	r.mu.RLock()
	constructor, exists := r.backends[bt]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend type %s not found", bt)
	}

	return constructor(params)
}

func (r *registry) ListRegistered() []BackendType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]BackendType, 0, len(r.backends))
	for bt := range r.backends {
		types = append(types, bt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Register adds a Backend implementation to the global registry
func Register(bt BackendType, constructor Constructor) error {
	return GetRegistry().Register(bt, constructor)
}

// Get returns a new Backend of the given type from the global registry.
// An empty type selects the db backend.
func Get(bt BackendType, params map[string]any) (Backend, error) {
	if bt == "" {
		bt = DBBackendType
	}
	return GetRegistry().Get(bt, params)
}

// ListRegistered lists the backend types in the global registry
func ListRegistered() []BackendType {
	return GetRegistry().ListRegistered()
}
