// Package registry maps calendar names to engine instances. It is the outer
// multi-calendar layer: name bookkeeping only, no event semantics of its own.
package registry

import (
	"sort"
	"strings"
	"sync"
	"time"

	"skej/src-cal/engine"
	"skej/src-cal/model"
)

type Registry struct {
	mu        sync.Mutex
	policy    model.Policy
	calendars map[string]*engine.Engine
	active    string
}

func New(policy model.Policy) (*Registry, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		policy:    policy,
		calendars: make(map[string]*engine.Engine),
	}, nil
}

// Create registers a new named calendar in the given IANA zone.
func (r *Registry) Create(name, zone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.NewValidationError("", "Registry.Create: calendar name is blank")
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return model.NewValidationError("", "Registry.Create: unknown timezone %q", zone)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calendars[name]; ok {
		return model.NewConflictError("", "Registry.Create: calendar %q already exists", name)
	}
	eng, err := engine.New(loc, r.policy)
	if err != nil {
		return err
	}
	r.calendars[name] = eng
	return nil
}

// Rename a calendar; its engine, events and zone are untouched. The active
// selection follows the rename.
func (r *Registry) Rename(name, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return model.NewValidationError("", "Registry.Rename: new name is blank")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	eng, ok := r.calendars[name]
	if !ok {
		return model.NewNotFoundError("", "Registry.Rename: no calendar named %q", name)
	}
	if name == newName {
		return nil
	}
	if _, ok := r.calendars[newName]; ok {
		return model.NewConflictError("", "Registry.Rename: calendar %q already exists", newName)
	}
	delete(r.calendars, name)
	r.calendars[newName] = eng
	if r.active == name {
		r.active = newName
	}
	return nil
}

// Retime moves a calendar to a new zone. Stored instants do not shift.
func (r *Registry) Retime(name, zone string) error {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return model.NewValidationError("", "Registry.Retime: unknown timezone %q", zone)
	}
	eng, err := r.Get(name)
	if err != nil {
		return err
	}
	return eng.SetLocation(loc)
}

// Use selects the calendar subsequent commands operate on.
func (r *Registry) Use(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calendars[name]; !ok {
		return model.NewNotFoundError("", "Registry.Use: no calendar named %q", name)
	}
	r.active = name
	return nil
}

// Active returns the selected calendar and its name.
func (r *Registry) Active() (*engine.Engine, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == "" {
		return nil, "", model.NewValidationError("", "Registry.Active: no calendar in use; run `use calendar` first")
	}
	return r.calendars[r.active], r.active, nil
}

func (r *Registry) Get(name string) (*engine.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eng, ok := r.calendars[name]
	if !ok {
		return nil, model.NewNotFoundError("", "Registry.Get: no calendar named %q", name)
	}
	return eng, nil
}

// Names lists the registered calendars, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.calendars))
	for name := range r.calendars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
