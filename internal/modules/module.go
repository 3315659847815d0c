// Package modules provides the lifecycle registry for SteamConv server modules.
// Modules are long-lived components like the community client and the HTTP API.
package modules

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/corrreia/steamconv/internal/shared"
)

// ModuleState represents the state of a module
type ModuleState int

const (
	ModuleStateUnloaded ModuleState = iota
	ModuleStateLoading
	ModuleStateLoaded
	ModuleStateUnloading
	ModuleStateFailed
)

var stateNames = [...]string{
	ModuleStateUnloaded:  "Unloaded",
	ModuleStateLoading:   "Loading",
	ModuleStateLoaded:    "Loaded",
	ModuleStateUnloading: "Unloading",
	ModuleStateFailed:    "Failed",
}

func (s ModuleState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Module is the interface that server modules must implement
type Module interface {
	Name() string
	Version() string
	// Priority orders Init; lower loads first and shuts down last.
	Priority() int
	Init() error
	Shutdown() error
}

// ModuleInfo contains module metadata for external use
type ModuleInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Priority int    `json:"priority"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`
}

type entry struct {
	module Module
	state  ModuleState
	err    error
}

// Registry runs module lifecycles in priority order. Module Init and Shutdown
// are called without holding the state lock, so a module may query the
// registry while it starts or stops.
type Registry struct {
	lifecycle   sync.Mutex // serializes Init and Shutdown
	mu          sync.RWMutex
	entries     []*entry
	initialized bool
	log         shared.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{log: shared.GetLogger("Modules")}
}

var std = NewRegistry()

// Register adds a module to the process registry.
func Register(m Module) { std.Register(m) }

// Init initializes the process registry.
func Init() error { return std.Init() }

// Shutdown shuts down the process registry.
func Shutdown() { std.Shutdown() }

// GetAll describes the modules of the process registry.
func GetAll() []ModuleInfo { return std.Info() }

// GetLoadedCount counts the loaded modules of the process registry.
func GetLoadedCount() int { return std.Loaded() }

// Register adds m. Modules of equal priority keep registration order.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, &entry{module: m})
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].module.Priority() < r.entries[j].module.Priority()
	})
}

// Init loads every module that is not loaded yet. A failing or panicking
// module is marked Failed and the rest still load; the returned error names
// every failure.
func (r *Registry) Init() error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if r.isInitialized() {
		return nil
	}

	var failed []string
	for _, e := range r.snapshot() {
		if r.stateOf(e) == ModuleStateLoaded {
			continue
		}
		name := e.module.Name()
		r.setState(e, ModuleStateLoading, nil)
		r.log.Info("Loading module: %s v%s", name, e.module.Version())

		if err := guard(e.module.Init); err != nil {
			r.setState(e, ModuleStateFailed, err)
			r.log.Error("Module %s failed to load: %v", name, err)
			failed = append(failed, name)
			continue
		}
		r.setState(e, ModuleStateLoaded, nil)
	}

	r.mu.Lock()
	r.initialized = true
	r.mu.Unlock()
	r.log.Info("Modules initialized: %d loaded", r.Loaded())

	if len(failed) > 0 {
		return fmt.Errorf("modules failed to load: %s", strings.Join(failed, ", "))
	}
	return nil
}

// Shutdown stops loaded modules in reverse priority order.
func (r *Registry) Shutdown() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if !r.isInitialized() {
		return
	}

	entries := r.snapshot()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if r.stateOf(e) != ModuleStateLoaded {
			continue
		}
		r.setState(e, ModuleStateUnloading, nil)
		r.log.Info("Shutting down module: %s", e.module.Name())

		if err := guard(e.module.Shutdown); err != nil {
			r.log.Error("Module %s failed to shut down cleanly: %v", e.module.Name(), err)
		}
		r.setState(e, ModuleStateUnloaded, nil)
	}

	r.mu.Lock()
	r.initialized = false
	r.mu.Unlock()
}

// Info describes every registered module in load order.
func (r *Registry) Info() []ModuleInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ModuleInfo, 0, len(r.entries))
	for _, e := range r.entries {
		info := ModuleInfo{
			Name:     e.module.Name(),
			Version:  e.module.Version(),
			Priority: e.module.Priority(),
			State:    e.state.String(),
		}
		if e.err != nil {
			info.Error = e.err.Error()
		}
		out = append(out, info)
	}
	return out
}

// Loaded counts modules in the Loaded state.
func (r *Registry) Loaded() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if e.state == ModuleStateLoaded {
			n++
		}
	}
	return n
}

func (r *Registry) snapshot() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*entry(nil), r.entries...)
}

func (r *Registry) isInitialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

func (r *Registry) stateOf(e *entry) ModuleState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return e.state
}

func (r *Registry) setState(e *entry, s ModuleState, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.state = s
	e.err = err
}

// guard runs fn, turning a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}
