package game

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// Registry is the in-memory catalog of available rules plugins. Registration
// happens at load time; listing is lock-free via a published immutable
// snapshot so the gateway can serve availableGames without contending with
// registration.
type Registry struct {
	mu       sync.Mutex
	defs     map[types.GameID]PluginDefinition
	snapshot atomic.Value // []Descriptor, sorted by id
	watchers []chan struct{}
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	r := &Registry{
		defs: make(map[types.GameID]PluginDefinition),
	}
	r.snapshot.Store([]Descriptor{})
	return r
}

// Register adds a plugin definition. Re-registration with the same id is an
// error.
func (r *Registry) Register(def PluginDefinition) error {
	if err := def.validate(); err != nil {
		return types.Wrap(types.KindValidation, "invalid_plugin", "plugin definition rejected", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.ID]; exists {
		return types.E(types.KindConflict, "duplicate_plugin", "a plugin with this id is already registered")
	}
	r.defs[def.ID] = def
	r.publishLocked()
	r.notifyLocked()
	return nil
}

// Lookup returns the definition for a game id.
func (r *Registry) Lookup(id types.GameID) (PluginDefinition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[id]
	return def, ok
}

// List returns the current plugin descriptors, sorted by id. The returned
// slice is the published snapshot and must not be mutated.
func (r *Registry) List() []Descriptor {
	return r.snapshot.Load().([]Descriptor)
}

// Watch returns a channel that receives a signal after every registry change.
// The channel has capacity one; coalesced notifications are fine because
// consumers re-read List.
func (r *Registry) Watch() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{}, 1)
	r.watchers = append(r.watchers, ch)
	return ch
}

func (r *Registry) publishLocked() {
	list := make([]Descriptor, 0, len(r.defs))
	for _, def := range r.defs {
		list = append(list, def.descriptor())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	r.snapshot.Store(list)
}

func (r *Registry) notifyLocked() {
	for _, ch := range r.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
