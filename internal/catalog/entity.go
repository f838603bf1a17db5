package catalog

import "context"

// Collection names. Slug uniqueness is scoped to a single collection.
const (
	Artists  = "artists"
	Releases = "releases"
)

// Entity is a generic catalog record: an immutable primary ID, an optional
// slug, and the remaining fields keyed by column name. Stores return fresh
// copies; callers never mutate a fetched entity in place, they pass partial
// field maps to [Store.Update] and receive the new value back.
type Entity struct {
	ID     string         `json:"id"`
	Slug   string         `json:"slug"`
	Fields map[string]any `json:"fields"`
}

// Field returns the named field as a string, or "" when absent or not a string.
func (e Entity) Field(name string) string {
	s, _ := e.Fields[name].(string)
	return s
}

// IntField returns the named field as an int, accepting int and int64 values.
func (e Entity) IntField(name string) int {
	switch v := e.Fields[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	fields := make(map[string]any, len(e.Fields))
	for k, v := range e.Fields {
		fields[k] = v
	}
	return Entity{ID: e.ID, Slug: e.Slug, Fields: fields}
}

// Store is the persistence collaborator. Implementations live in
// internal/store; the subsystem itself never touches a backend directly.
//
// Criteria maps are field-equality filters. The keys "id" and "slug" address
// the identifier columns; remaining keys address entity fields. An empty
// criteria map matches every entity in the collection.
type Store interface {
	// Find returns all entities in the collection matching the criteria, in
	// stable insertion order.
	Find(ctx context.Context, collection string, criteria map[string]any) ([]Entity, error)

	// Insert persists a new entity. It fails with [shared.ErrSlugTaken] when
	// the entity carries a non-empty slug already owned by another entity.
	Insert(ctx context.Context, collection string, entity Entity) (Entity, error)

	// Update constructs a new entity from the stored one plus the partial
	// field changes and persists it. The keys "slug" and entity field names
	// are accepted; "id" is immutable. Fails with [shared.ErrSlugTaken] on a
	// slug collision and [shared.ErrNotFound] when id does not exist.
	Update(ctx context.Context, collection, id string, partial map[string]any) (Entity, error)

	// Delete removes the entity. The bool reports whether it existed.
	Delete(ctx context.Context, collection, id string) (bool, error)
}

// ConditionalDeleter is an optional [Store] capability: delete an entity only
// if no entity in childCollection references it through fkField, with the
// check and the delete performed atomically. [Service.DeleteGuarded] upgrades
// to this when the store provides it, closing the window where a dependent is
// written between the guard check and the delete.
type ConditionalDeleter interface {
	// DeleteUnlessReferenced fails with [shared.ErrConflict] when dependents
	// exist and [shared.ErrNotFound] when id does not exist.
	DeleteUnlessReferenced(ctx context.Context, collection, id, childCollection, fkField string) error
}
