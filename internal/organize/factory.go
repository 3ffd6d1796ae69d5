package organize

import (
	"sync"

	"filecat/internal/config"
)

// Factory builds the pipeline a front end runs for one configuration
type Factory func(cfg *config.Config) Organizer

// DefaultFactory builds a real Engine
var DefaultFactory Factory = func(cfg *config.Config) Organizer {
	return NewWithConfig(cfg)
}

var (
	factoryMu sync.RWMutex
	factory   = DefaultFactory
)

// NewOrganizer returns a pipeline configured with cfg from the active
// factory. The CLI, the watch daemon and the GUI all build engines here.
func NewOrganizer(cfg *config.Config) Organizer {
	factoryMu.RLock()
	f := factory
	factoryMu.RUnlock()
	return f(cfg)
}

// SetFactory swaps the active factory and returns a func restoring the
// previous one. A nil f restores DefaultFactory.
func SetFactory(f Factory) (restore func()) {
	if f == nil {
		f = DefaultFactory
	}
	factoryMu.Lock()
	prev := factory
	factory = f
	factoryMu.Unlock()

	return func() {
		factoryMu.Lock()
		factory = prev
		factoryMu.Unlock()
	}
}
