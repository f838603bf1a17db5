package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/wax/internal/catalog"
)

var (
	_ catalog.Store              = (*JSONFile)(nil)
	_ catalog.ConditionalDeleter = (*JSONFile)(nil)
)

// JSONFile is a flat-file [catalog.Store]: the whole catalog lives in one
// JSON document, loaded once at open and rewritten after every mutation.
// Writes go to a temp file first and rename into place, so readers of the
// document never observe a partial catalog.
//
// The file handle is explicit state owned by the caller; nothing here is
// process-global, and two JSONFile values over the same path do not see each
// other's writes.
type JSONFile struct {
	path string
	mem  *Memory
}

// catalogDocument is the on-disk shape: collection name to ordered entities.
type catalogDocument map[string][]catalog.Entity

// OpenJSONFile loads the catalog document at path, creating an empty catalog
// when the file does not exist yet.
func OpenJSONFile(path string) (*JSONFile, error) {
	j := &JSONFile{path: path, mem: NewMemory()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	for collection, entities := range doc {
		for _, entity := range entities {
			if _, err := j.mem.Insert(context.Background(), collection, entity); err != nil {
				return nil, fmt.Errorf("invalid catalog file %s: %w", path, err)
			}
		}
	}

	return j, nil
}

// Find returns entities matching the criteria in document order.
func (j *JSONFile) Find(ctx context.Context, collection string, criteria map[string]any) ([]catalog.Entity, error) {
	return j.mem.Find(ctx, collection, criteria)
}

// Insert persists a new entity and rewrites the document.
func (j *JSONFile) Insert(ctx context.Context, collection string, entity catalog.Entity) (catalog.Entity, error) {
	created, err := j.mem.Insert(ctx, collection, entity)
	if err != nil {
		return catalog.Entity{}, err
	}
	if err := j.flush(); err != nil {
		return catalog.Entity{}, err
	}
	return created, nil
}

// Update applies partial changes and rewrites the document.
func (j *JSONFile) Update(ctx context.Context, collection, id string, partial map[string]any) (catalog.Entity, error) {
	updated, err := j.mem.Update(ctx, collection, id, partial)
	if err != nil {
		return catalog.Entity{}, err
	}
	if err := j.flush(); err != nil {
		return catalog.Entity{}, err
	}
	return updated, nil
}

// Delete removes the entity and rewrites the document.
func (j *JSONFile) Delete(ctx context.Context, collection, id string) (bool, error) {
	found, err := j.mem.Delete(ctx, collection, id)
	if err != nil || !found {
		return found, err
	}
	return true, j.flush()
}

// DeleteUnlessReferenced implements [catalog.ConditionalDeleter].
func (j *JSONFile) DeleteUnlessReferenced(ctx context.Context, collection, id, childCollection, fkField string) error {
	if err := j.mem.DeleteUnlessReferenced(ctx, collection, id, childCollection, fkField); err != nil {
		return err
	}
	return j.flush()
}

// flush serializes the catalog and renames it into place.
func (j *JSONFile) flush() error {
	j.mem.mu.Lock()
	doc := make(catalogDocument, len(j.mem.collections))
	for collection, ids := range j.mem.order {
		entities := make([]catalog.Entity, 0, len(ids))
		for _, id := range ids {
			entities = append(entities, j.mem.collections[collection][id].Clone())
		}
		doc[collection] = entities
	}
	j.mem.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(j.path), ".wax-catalog-*")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close catalog file: %w", err)
	}

	if err := os.Rename(tmp.Name(), j.path); err != nil {
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}
