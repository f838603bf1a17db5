package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/shared"
	"github.com/mattn/go-sqlite3"
)

var (
	_ catalog.Store              = (*SQLite)(nil)
	_ catalog.ConditionalDeleter = (*SQLite)(nil)
)

// tableSpec maps a collection onto its table and writable data columns.
// id, sequence, slug and the timestamps are managed by the adapter itself.
type tableSpec struct {
	table   string
	columns []string
}

var tables = map[string]tableSpec{
	catalog.Artists:  {table: "artists", columns: []string{"name", "bio", "image"}},
	catalog.Releases: {table: "releases", columns: []string{"title", "artist_id", "year", "format", "image", "about"}},
}

// SQLite is the relational [catalog.Store]. Slug uniqueness is enforced by a
// partial unique index per table (slug <> ''), so a concurrent writer racing
// the resolver surfaces as [shared.ErrSlugTaken] instead of a silent
// duplicate. Rows carry a sequence number for stable listing order, in the
// same shape the migrations seed (one counter row per table).
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an open database handle. The caller owns the handle's
// lifecycle and must have run migrations (see [shared.RunMigrations]).
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Find returns entities matching the criteria ordered by sequence.
func (s *SQLite) Find(ctx context.Context, collection string, criteria map[string]any) ([]catalog.Entity, error) {
	spec, err := specFor(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, slug, %s FROM %s", strings.Join(spec.columns, ", "), spec.table)
	var (
		clauses []string
		args    []any
	)
	for field, value := range criteria {
		if field != "id" && field != "slug" && !spec.hasColumn(field) {
			return nil, fmt.Errorf("field %q in %s: %w", field, collection, shared.ErrUnknownField)
		}
		clauses = append(clauses, field+" = ?")
		args = append(args, value)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY sequence ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", spec.table, err)
	}
	defer rows.Close()

	var entities []catalog.Entity
	for rows.Next() {
		entity, err := scanEntity(rows, spec)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entities, nil
}

// Insert persists a new entity with the next sequence number.
func (s *SQLite) Insert(ctx context.Context, collection string, entity catalog.Entity) (catalog.Entity, error) {
	spec, err := specFor(collection)
	if err != nil {
		return catalog.Entity{}, err
	}

	sequence, err := nextSequence(ctx, s.db, spec.table)
	if err != nil {
		return catalog.Entity{}, fmt.Errorf("failed to generate sequence: %w", err)
	}

	columns := []string{"id", "sequence", "slug"}
	placeholders := []string{"?", "?", "?"}
	now := time.Now()
	args := []any{entity.ID, sequence, entity.Slug}
	for _, column := range spec.columns {
		columns = append(columns, column)
		placeholders = append(placeholders, "?")
		args = append(args, entity.Fields[column])
	}
	columns = append(columns, "created_at", "updated_at")
	placeholders = append(placeholders, "?", "?")
	args = append(args, now, now)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return catalog.Entity{}, mapConstraint(err, entity.Slug, collection)
	}

	return s.get(ctx, spec, entity.ID)
}

// Update builds the new row from the stored one plus the partial changes and
// returns the resulting entity. The id column is immutable.
func (s *SQLite) Update(ctx context.Context, collection, id string, partial map[string]any) (catalog.Entity, error) {
	spec, err := specFor(collection)
	if err != nil {
		return catalog.Entity{}, err
	}

	var (
		sets []string
		args []any
		slug string
	)
	for field, value := range partial {
		switch {
		case field == "id":
			return catalog.Entity{}, fmt.Errorf("id is immutable: %w", shared.ErrInvalidInput)
		case field == "slug":
			slug, _ = value.(string)
			sets = append(sets, "slug = ?")
			args = append(args, slug)
		case spec.hasColumn(field):
			sets = append(sets, field+" = ?")
			args = append(args, value)
		default:
			return catalog.Entity{}, fmt.Errorf("field %q in %s: %w", field, collection, shared.ErrUnknownField)
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", spec.table, strings.Join(sets, ", "))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return catalog.Entity{}, mapConstraint(err, slug, collection)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return catalog.Entity{}, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return catalog.Entity{}, fmt.Errorf("no entity %q in %s: %w", id, collection, shared.ErrNotFound)
	}

	return s.get(ctx, spec, id)
}

// Delete removes the entity, reporting whether a row existed.
func (s *SQLite) Delete(ctx context.Context, collection, id string) (bool, error) {
	spec, err := specFor(collection)
	if err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", spec.table), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", spec.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteUnlessReferenced implements [catalog.ConditionalDeleter]: the
// dependent count and the delete run in one transaction, so a dependent
// written after the guard check blocks the delete instead of being orphaned.
func (s *SQLite) DeleteUnlessReferenced(ctx context.Context, collection, id, childCollection, fkField string) error {
	spec, err := specFor(collection)
	if err != nil {
		return err
	}
	childSpec, err := specFor(childCollection)
	if err != nil {
		return err
	}
	if !childSpec.hasColumn(fkField) {
		return fmt.Errorf("field %q in %s: %w", fkField, childCollection, shared.ErrUnknownField)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var referencing int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", childSpec.table, fkField)
	if err := tx.QueryRowContext(ctx, countQuery, id).Scan(&referencing); err != nil {
		return fmt.Errorf("dependent lookup failed: %w", err)
	}
	if referencing > 0 {
		return fmt.Errorf("%d %s still reference %s %q via %s: %w",
			referencing, childCollection, collection, id, fkField, shared.ErrConflict)
	}

	result, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", spec.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", spec.table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no entity %q in %s: %w", id, collection, shared.ErrNotFound)
	}

	return tx.Commit()
}

// get fetches a single row by id.
func (s *SQLite) get(ctx context.Context, spec tableSpec, id string) (catalog.Entity, error) {
	query := fmt.Sprintf("SELECT id, slug, %s FROM %s WHERE id = ?",
		strings.Join(spec.columns, ", "), spec.table)

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return catalog.Entity{}, fmt.Errorf("failed to query %s: %w", spec.table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return catalog.Entity{}, fmt.Errorf("row iteration error: %w", err)
		}
		return catalog.Entity{}, fmt.Errorf("no entity %q in %s: %w", id, spec.table, shared.ErrNotFound)
	}
	return scanEntity(rows, spec)
}

// scanEntity reads the current row into an Entity. Data columns scan through
// `any`; TEXT arrives as []byte and INTEGER as int64, normalized below. NULL
// columns are omitted from Fields.
func scanEntity(rows *sql.Rows, spec tableSpec) (catalog.Entity, error) {
	var id, slug string
	values := make([]any, len(spec.columns))
	dest := make([]any, 0, len(spec.columns)+2)
	dest = append(dest, &id, &slug)
	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := rows.Scan(dest...); err != nil {
		return catalog.Entity{}, fmt.Errorf("failed to scan %s row: %w", spec.table, err)
	}

	fields := make(map[string]any, len(spec.columns))
	for i, column := range spec.columns {
		switch v := values[i].(type) {
		case nil:
		case []byte:
			fields[column] = string(v)
		case int64:
			fields[column] = int(v)
		default:
			fields[column] = v
		}
	}

	return catalog.Entity{ID: id, Slug: slug, Fields: fields}, nil
}

// nextSequence atomically increments and returns the per-table counter used
// for stable listing order.
func nextSequence(ctx context.Context, db *sql.DB, table string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// specFor resolves a collection name to its table spec.
func specFor(collection string) (tableSpec, error) {
	spec, ok := tables[collection]
	if !ok {
		return tableSpec{}, fmt.Errorf("collection %q: %w", collection, shared.ErrUnknownCollection)
	}
	return spec, nil
}

func (t tableSpec) hasColumn(name string) bool {
	for _, column := range t.columns {
		if column == name {
			return true
		}
	}
	return false
}

// mapConstraint converts a sqlite unique constraint violation into
// [shared.ErrSlugTaken]; the slug indexes are the only unique constraints
// besides the primary keys.
func mapConstraint(err error, slug, collection string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("slug %q in %s: %w", slug, collection, shared.ErrSlugTaken)
	}
	return fmt.Errorf("write to %s failed: %w", collection, err)
}
