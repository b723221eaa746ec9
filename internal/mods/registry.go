package mods

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound         = errors.New("mod not found")
	ErrEmptyID          = errors.New("mod id is empty")
	ErrIDMismatch       = errors.New("mod id does not match registry key")
	ErrIDChanged        = errors.New("mod id cannot be changed")
	ErrVersionDowngrade = errors.New("metadata version cannot be downgraded")
)

type entry struct {
	info ModInfo
	seq  uint64 // Insertion order
}

// Registry is the in-memory catalog of installed mods.
// Every method takes the lock for its whole read-modify-write and hands out
// clones, never pointers into the map.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextSeq uint64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Insert adds or replaces the record stored under id.
// A replaced record keeps its original position in List.
func (r *Registry) Insert(id string, info ModInfo) error {
	if id == "" {
		return ErrEmptyID
	}
	if info.ID == "" {
		info.ID = id
	}
	if info.ID != id {
		return fmt.Errorf("%w: %s != %s", ErrIDMismatch, info.ID, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		if err := checkDowngrade(e.info, info); err != nil {
			return err
		}
		e.info = info.Clone()
		return nil
	}

	r.entries[id] = &entry{info: info.Clone(), seq: r.nextSeq}
	r.nextSeq++
	return nil
}

// Get returns a copy of the record stored under id
func (r *Registry) Get(id string) (ModInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return ModInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.info.Clone(), nil
}

// Update applies fn to a copy of the record and commits the result atomically.
// If fn returns an error, or the result changes the id or lowers the metadata
// version, the stored record is left untouched.
func (r *Registry) Update(id string, fn func(*ModInfo) error) (ModInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return ModInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := e.info.Clone()
	if err := fn(&next); err != nil {
		return ModInfo{}, err
	}
	if next.ID != id {
		return ModInfo{}, fmt.Errorf("%w: %s", ErrIDChanged, id)
	}
	if err := checkDowngrade(e.info, next); err != nil {
		return ModInfo{}, err
	}

	e.info = next
	return next.Clone(), nil
}

// Merge stores info under info.ID, keeping the process link and last played
// time of a record already registered under that id. It returns the
// committed record.
func (r *Registry) Merge(info ModInfo) (ModInfo, error) {
	if info.ID == "" {
		return ModInfo{}, ErrEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := info.Clone()
	e, ok := r.entries[info.ID]
	if !ok {
		r.entries[info.ID] = &entry{info: next, seq: r.nextSeq}
		r.nextSeq++
		return next.Clone(), nil
	}

	next.ProcessID = clonePtr(e.info.ProcessID)
	if next.LastPlayed == nil {
		next.LastPlayed = clonePtr(e.info.LastPlayed)
	}
	if err := checkDowngrade(e.info, next); err != nil {
		return ModInfo{}, err
	}
	e.info = next
	return next.Clone(), nil
}

// Remove deletes the record stored under id
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.entries, id)
	return nil
}

// RemoveIf deletes the record stored under id when remove returns true for it,
// checked in the same lock acquisition. It reports whether a record was removed.
func (r *Registry) RemoveIf(id string, remove func(ModInfo) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || !remove(e.info.Clone()) {
		return false
	}
	delete(r.entries, id)
	return true
}

// Contains reports whether id is registered
func (r *Registry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[id]
	return ok
}

// Len returns the number of registered mods
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// List returns copies of all records, ordered by display_order and then by
// insertion order. Records without a display_order come last.
func (r *Registry) List() []ModInfo {
	r.mu.Lock()
	entries := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, entry{info: e.info.Clone(), seq: e.seq})
	}
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.info.DisplayOrder != nil && b.info.DisplayOrder != nil:
			if *a.info.DisplayOrder != *b.info.DisplayOrder {
				return *a.info.DisplayOrder < *b.info.DisplayOrder
			}
		case a.info.DisplayOrder != nil:
			return true
		case b.info.DisplayOrder != nil:
			return false
		}
		return a.seq < b.seq
	})

	result := make([]ModInfo, len(entries))
	for i, e := range entries {
		result[i] = e.info
	}
	return result
}

// Running returns copies of the records that have a linked process
func (r *Registry) Running() []ModInfo {
	var running []ModInfo
	for _, m := range r.List() {
		if m.IsRunning() {
			running = append(running, m)
		}
	}
	return running
}

// FindByName returns the first record whose name matches, ignoring case
func (r *Registry) FindByName(name string) (ModInfo, error) {
	for _, m := range r.List() {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return ModInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Lookup resolves a mod by id first, then by name
func (r *Registry) Lookup(key string) (ModInfo, error) {
	if m, err := r.Get(key); err == nil {
		return m, nil
	}
	return r.FindByName(key)
}

func checkDowngrade(current, next ModInfo) error {
	if current.MetadataVersion == nil || current.Validate() != nil {
		return nil
	}
	if next.MetadataVersion == nil || *next.MetadataVersion < *current.MetadataVersion {
		return fmt.Errorf("%w: %s", ErrVersionDowngrade, current.ID)
	}
	return nil
}
