package world

import (
	"errors"
	"sync"
)

var registry = struct {
	sync.Mutex
	worlds []*World
}{}

func register(w *World) {
	registry.Lock()
	defer registry.Unlock()
	for _, existing := range registry.worlds {
		if existing == w {
			return
		}
	}
	registry.worlds = append(registry.worlds, w)
}

func deregister(w *World) {
	registry.Lock()
	defer registry.Unlock()
	for i, existing := range registry.worlds {
		if existing == w {
			registry.worlds = append(registry.worlds[:i], registry.worlds[i+1:]...)
			return
		}
	}
}

// Instances returns the registered Worlds, oldest first.
func Instances() []*World {
	registry.Lock()
	defer registry.Unlock()
	return append([]*World(nil), registry.worlds...)
}

// CloseAll closes every registered World, newest first, and empties the registry.
func CloseAll() error {
	registry.Lock()
	worlds := registry.worlds
	registry.worlds = nil
	registry.Unlock()

	var errs []error
	for i := len(worlds) - 1; i >= 0; i-- {
		errs = append(errs, worlds[i].Close())
	}
	return errors.Join(errs...)
}
