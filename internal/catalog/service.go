package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wax/internal/shared"
)

// maxSlugAttempts bounds the retry loop when a concurrent writer claims a
// resolved slug between the collision check and the write.
const maxSlugAttempts = 5

// Service wires the slug operations into entity-level create, update and
// delete flows against a [Store]. The store handle is passed in by the caller
// and owns its own lifecycle; the service keeps no other state.
type Service struct {
	store  Store
	logger *log.Logger
}

// NewService creates a Service backed by the given store.
func NewService(store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Service{store: store, logger: logger}
}

// GenerateSlug normalizes free text into a slug. See [Slugify].
func (s *Service) GenerateSlug(text string) string {
	return Slugify(text)
}

// ResolveUnique disambiguates a candidate slug within a collection. See [ResolveUnique].
func (s *Service) ResolveUnique(ctx context.Context, collection, base, excludeID string) (string, error) {
	return ResolveUnique(ctx, s.store, collection, base, excludeID)
}

// ResolveByIdentifier fetches an entity by slug or primary id. See [ResolveByIdentifier].
func (s *Service) ResolveByIdentifier(ctx context.Context, collection, identifier string) (Entity, error) {
	return ResolveByIdentifier(ctx, s.store, collection, identifier)
}

// GuardDelete checks for dependents blocking a delete. See [GuardDelete].
func (s *Service) GuardDelete(ctx context.Context, parentCollection, parentID, childCollection, fkField string) error {
	return GuardDelete(ctx, s.store, parentCollection, parentID, childCollection, fkField)
}

// Create persists a new entity with a freshly assigned primary id and a slug
// derived from fields[sourceField]. When the store reports the slug taken by
// a concurrent write, resolution is retried against the new state.
func (s *Service) Create(ctx context.Context, collection, sourceField string, fields map[string]any) (Entity, error) {
	entity := Entity{ID: shared.GenerateID(), Fields: fields}.Clone()
	source := entity.Field(sourceField)
	base := Slugify(source)

	var lastErr error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := ResolveUnique(ctx, s.store, collection, base, entity.ID)
		if err != nil {
			return Entity{}, err
		}
		entity.Slug = slug

		created, err := s.store.Insert(ctx, collection, entity)
		if err == nil {
			s.logger.Debug("entity created", "collection", collection, "id", created.ID, "slug", created.Slug)
			return created, nil
		}
		if base == "" || !errors.Is(err, shared.ErrSlugTaken) {
			return Entity{}, err
		}
		lastErr = err
	}

	return Entity{}, fmt.Errorf("could not allocate a unique slug for %q in %s: %w", base, collection, lastErr)
}

// Update applies partial field changes to the entity addressed by identifier
// and returns the new value.
//
// Slug lifecycle policy: renames regenerate. When the change set touches
// sourceField with a different value, the slug is recomputed from the new
// source text and re-disambiguated. Old slug links to the entity stop
// resolving after a rename; primary id links keep working.
func (s *Service) Update(ctx context.Context, collection, sourceField, identifier string, partial map[string]any) (Entity, error) {
	current, err := ResolveByIdentifier(ctx, s.store, collection, identifier)
	if err != nil {
		return Entity{}, err
	}

	changes := make(map[string]any, len(partial)+1)
	for k, v := range partial {
		changes[k] = v
	}

	newSource, ok := partial[sourceField].(string)
	renamed := ok && newSource != current.Field(sourceField)
	if !renamed {
		return s.store.Update(ctx, collection, current.ID, changes)
	}

	base := Slugify(newSource)
	var lastErr error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := ResolveUnique(ctx, s.store, collection, base, current.ID)
		if err != nil {
			return Entity{}, err
		}
		changes["slug"] = slug

		updated, err := s.store.Update(ctx, collection, current.ID, changes)
		if err == nil {
			s.logger.Debug("entity renamed", "collection", collection, "id", updated.ID, "slug", updated.Slug)
			return updated, nil
		}
		if base == "" || !errors.Is(err, shared.ErrSlugTaken) {
			return Entity{}, err
		}
		lastErr = err
	}

	return Entity{}, fmt.Errorf("could not allocate a unique slug for %q in %s: %w", base, collection, lastErr)
}

// Get fetches the entity addressed by a slug or primary id.
func (s *Service) Get(ctx context.Context, collection, identifier string) (Entity, error) {
	return ResolveByIdentifier(ctx, s.store, collection, identifier)
}

// List returns entities matching the criteria, in stable order.
func (s *Service) List(ctx context.Context, collection string, criteria map[string]any) ([]Entity, error) {
	return s.store.Find(ctx, collection, criteria)
}

// Delete removes the entity addressed by identifier without any dependency
// check. Use [Service.DeleteGuarded] for parent collections.
func (s *Service) Delete(ctx context.Context, collection, identifier string) error {
	entity, err := ResolveByIdentifier(ctx, s.store, collection, identifier)
	if err != nil {
		return err
	}

	found, err := s.store.Delete(ctx, collection, entity.ID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no entity %q in %s: %w", entity.ID, collection, shared.ErrNotFound)
	}

	s.logger.Debug("entity deleted", "collection", collection, "id", entity.ID)
	return nil
}

// DeleteGuarded removes a parent entity only when no entity in
// childCollection references it through fkField. Stores implementing
// [ConditionalDeleter] run the check atomically with the delete; otherwise
// the guard runs first and the delete follows.
func (s *Service) DeleteGuarded(ctx context.Context, parentCollection, identifier, childCollection, fkField string) error {
	entity, err := ResolveByIdentifier(ctx, s.store, parentCollection, identifier)
	if err != nil {
		return err
	}

	if cd, ok := s.store.(ConditionalDeleter); ok {
		if err := cd.DeleteUnlessReferenced(ctx, parentCollection, entity.ID, childCollection, fkField); err != nil {
			return err
		}
		s.logger.Debug("entity deleted", "collection", parentCollection, "id", entity.ID)
		return nil
	}

	if err := GuardDelete(ctx, s.store, parentCollection, entity.ID, childCollection, fkField); err != nil {
		return err
	}

	found, err := s.store.Delete(ctx, parentCollection, entity.ID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no entity %q in %s: %w", entity.ID, parentCollection, shared.ErrNotFound)
	}

	s.logger.Debug("entity deleted", "collection", parentCollection, "id", entity.ID)
	return nil
}
