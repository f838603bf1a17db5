// Package catalog implements the identifier subsystem for the label catalog.
//
// Every entity carries an opaque primary id (a UUID, assigned once) and an
// optional human-readable slug derived from its name or title. The package
// provides four operations over a pluggable [Store]:
//
//   - [Slugify] normalizes free text into a URL-safe slug
//   - [ResolveUnique] disambiguates a candidate slug within a collection
//   - [ResolveByIdentifier] fetches an entity by slug or primary id
//   - [GuardDelete] blocks deletion of a parent while dependents reference it
//
// [Service] wires the four operations into entity-level create, update and
// delete flows used by the CLI, the admin API and the TUI.
//
// # Resolution order
//
// [ResolveByIdentifier] tries the slug lookup first and falls back to the
// primary id. Pretty URLs therefore take precedence, while old id links to
// entities created before slug support keep working. Handlers and templates
// depend on this ordering; do not reverse it.
//
// # Concurrency
//
// The resolve-then-write sequence is not atomic on its own. Store adapters
// enforce slug uniqueness at the storage layer (a unique index, or a check
// under the store lock) and report violations as [shared.ErrSlugTaken];
// [Service] retries resolution when it sees one. Adapters that implement
// [ConditionalDeleter] similarly re-check the delete guard atomically with
// the delete itself.
package catalog
