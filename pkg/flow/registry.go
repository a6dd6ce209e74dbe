package flow

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores flow definitions by id.
type Registry struct {
	mu    sync.RWMutex
	flows map[string]Definition
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		flows: make(map[string]Definition),
	}
}

// Register validates and adds a definition. Duplicate ids return an error.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.flows[def.ID]; exists {
		return fmt.Errorf("flow: definition %q already registered", def.ID)
	}
	r.flows[def.ID] = def
	return nil
}

// Replace registers def, overwriting any definition with the same id.
func (r *Registry) Replace(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.flows[def.ID] = def
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Get retrieves a definition by id.
func (r *Registry) Get(id string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.flows[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownFlow, id)
	}
	return def, nil
}

// List returns a sorted list of flow ids.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.flows))
	for id := range r.flows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether a definition is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.flows[id]
	return ok
}
