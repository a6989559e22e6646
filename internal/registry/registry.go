// Package registry provides a global registry for stimulus factories.
// Stimuli register themselves in init() functions, so the experiment runner
// can build trials by name without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

// Stimulus is a trial stimulus together with the game state it writes.
// A fresh instance is created for every trial, so state never leaks from one
// trial into the next.
type Stimulus interface {
	trial.Stimulus
	trial.StateReader

	// ID returns the name used in experiment files (e.g. "slingshot").
	ID() string

	// Title returns a human-readable name.
	Title() string
}

// Info contains metadata about a registered stimulus.
type Info struct {
	ID    string
	Title string
}

// Factory creates a new stimulus instance.
type Factory func() Stimulus

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a stimulus factory to the registry.
// Panics if the ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: stimulus %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered stimuli, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(factories))
	for id := range factories {
		result = append(result, Info{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a stimulus by its ID.
func Create(id string) (Stimulus, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown stimulus %q", id)
	}

	return f(), nil
}

// Exists checks if a stimulus with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
