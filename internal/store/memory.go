package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/shared"
)

var (
	_ catalog.Store              = (*Memory)(nil)
	_ catalog.ConditionalDeleter = (*Memory)(nil)
)

// Memory is an in-process [catalog.Store] backed by maps. A single mutex
// serializes all operations, so the slug uniqueness check and the write it
// protects happen atomically.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]catalog.Entity
	order       map[string][]string // insertion order of ids per collection
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]catalog.Entity),
		order:       make(map[string][]string),
	}
}

// Find returns entities matching the criteria in insertion order.
func (m *Memory) Find(ctx context.Context, collection string, criteria map[string]any) ([]catalog.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []catalog.Entity
	for _, id := range m.order[collection] {
		entity := m.collections[collection][id]
		if matchesCriteria(entity, criteria) {
			matches = append(matches, entity.Clone())
		}
	}

	return matches, nil
}

// Insert persists a new entity, rejecting duplicate ids and taken slugs.
func (m *Memory) Insert(ctx context.Context, collection string, entity catalog.Entity) (catalog.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entities := m.collections[collection]
	if entities == nil {
		entities = make(map[string]catalog.Entity)
		m.collections[collection] = entities
	}

	if _, exists := entities[entity.ID]; exists {
		return catalog.Entity{}, fmt.Errorf("duplicate id %q in %s: %w", entity.ID, collection, shared.ErrConflict)
	}
	if err := m.slugFree(collection, entity.Slug, entity.ID); err != nil {
		return catalog.Entity{}, err
	}

	stored := entity.Clone()
	entities[entity.ID] = stored
	m.order[collection] = append(m.order[collection], entity.ID)

	return stored.Clone(), nil
}

// Update builds a new entity from the stored one plus the partial changes.
// The stored value is replaced wholesale; nothing is mutated in place.
func (m *Memory) Update(ctx context.Context, collection, id string, partial map[string]any) (catalog.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.collections[collection][id]
	if !exists {
		return catalog.Entity{}, fmt.Errorf("no entity %q in %s: %w", id, collection, shared.ErrNotFound)
	}

	next := current.Clone()
	for field, value := range partial {
		switch field {
		case "id":
			return catalog.Entity{}, fmt.Errorf("id is immutable: %w", shared.ErrInvalidInput)
		case "slug":
			slug, _ := value.(string)
			next.Slug = slug
		default:
			next.Fields[field] = value
		}
	}

	if err := m.slugFree(collection, next.Slug, id); err != nil {
		return catalog.Entity{}, err
	}

	m.collections[collection][id] = next
	return next.Clone(), nil
}

// Delete removes the entity, reporting whether it existed.
func (m *Memory) Delete(ctx context.Context, collection, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.delete(collection, id), nil
}

// DeleteUnlessReferenced implements [catalog.ConditionalDeleter]. The
// dependent scan and the delete run under the same lock acquisition.
func (m *Memory) DeleteUnlessReferenced(ctx context.Context, collection, id, childCollection, fkField string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	referencing := 0
	for _, child := range m.collections[childCollection] {
		if child.Field(fkField) == id {
			referencing++
		}
	}
	if referencing > 0 {
		return fmt.Errorf("%d %s still reference %s %q via %s: %w",
			referencing, childCollection, collection, id, fkField, shared.ErrConflict)
	}

	if !m.delete(collection, id) {
		return fmt.Errorf("no entity %q in %s: %w", id, collection, shared.ErrNotFound)
	}
	return nil
}

// delete removes id from the collection and its order slice. Caller holds the lock.
func (m *Memory) delete(collection, id string) bool {
	if _, exists := m.collections[collection][id]; !exists {
		return false
	}

	delete(m.collections[collection], id)
	ids := m.order[collection]
	for i, existing := range ids {
		if existing == id {
			m.order[collection] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return true
}

// slugFree checks that no entity other than excludeID owns the slug. Empty
// slugs are exempt; any number of entities may have no slug. Caller holds the lock.
func (m *Memory) slugFree(collection, slug, excludeID string) error {
	if slug == "" {
		return nil
	}
	for id, entity := range m.collections[collection] {
		if id != excludeID && entity.Slug == slug {
			return fmt.Errorf("slug %q in %s: %w", slug, collection, shared.ErrSlugTaken)
		}
	}
	return nil
}

// matchesCriteria reports whether the entity satisfies every equality filter.
func matchesCriteria(entity catalog.Entity, criteria map[string]any) bool {
	for field, want := range criteria {
		var got any
		switch field {
		case "id":
			got = entity.ID
		case "slug":
			got = entity.Slug
		default:
			got = entity.Fields[field]
		}
		if got != want {
			return false
		}
	}
	return true
}
