package catalog

import (
	"context"
	"fmt"

	"github.com/desertthunder/wax/internal/shared"
)

// fakeStore is a minimal in-test Store: slice-backed, no locking, with hooks
// for injecting failures. The real adapters are exercised by the conformance
// tests in internal/store.
type fakeStore struct {
	entities map[string][]Entity
	findErr  error
	// insertHook runs before each insert; returning an error aborts it.
	insertHook func(Entity) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entities: make(map[string][]Entity)}
}

func (f *fakeStore) add(collection string, e Entity) {
	f.entities[collection] = append(f.entities[collection], e)
}

func (f *fakeStore) Find(ctx context.Context, collection string, criteria map[string]any) ([]Entity, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}

	var matches []Entity
	for _, e := range f.entities[collection] {
		ok := true
		for field, want := range criteria {
			var got any
			switch field {
			case "id":
				got = e.ID
			case "slug":
				got = e.Slug
			default:
				got = e.Fields[field]
			}
			if got != want {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, e.Clone())
		}
	}
	return matches, nil
}

func (f *fakeStore) Insert(ctx context.Context, collection string, entity Entity) (Entity, error) {
	if f.insertHook != nil {
		if err := f.insertHook(entity); err != nil {
			return Entity{}, err
		}
	}
	for _, e := range f.entities[collection] {
		if entity.Slug != "" && e.Slug == entity.Slug {
			return Entity{}, fmt.Errorf("slug %q: %w", entity.Slug, shared.ErrSlugTaken)
		}
	}
	f.add(collection, entity.Clone())
	return entity.Clone(), nil
}

func (f *fakeStore) Update(ctx context.Context, collection, id string, partial map[string]any) (Entity, error) {
	for i, e := range f.entities[collection] {
		if e.ID != id {
			continue
		}
		next := e.Clone()
		for field, value := range partial {
			if field == "slug" {
				next.Slug, _ = value.(string)
				continue
			}
			next.Fields[field] = value
		}
		for _, other := range f.entities[collection] {
			if other.ID != id && next.Slug != "" && other.Slug == next.Slug {
				return Entity{}, fmt.Errorf("slug %q: %w", next.Slug, shared.ErrSlugTaken)
			}
		}
		f.entities[collection][i] = next
		return next.Clone(), nil
	}
	return Entity{}, fmt.Errorf("no entity %q: %w", id, shared.ErrNotFound)
}

func (f *fakeStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	for i, e := range f.entities[collection] {
		if e.ID == id {
			f.entities[collection] = append(f.entities[collection][:i], f.entities[collection][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
