// Package store provides the persistence backends for the catalog.
//
// Three adapters implement [catalog.Store]: [Memory] (mutex-guarded maps,
// the reference semantics and the default for tests), [JSONFile] (the whole
// catalog as one JSON document, rewritten atomically on every mutation) and
// [SQLite] (mattn/go-sqlite3 with embedded migrations).
//
// All three enforce slug uniqueness at the storage layer — a partial unique
// index for SQLite, an in-lock scan for the others — and report violations as
// [shared.ErrSlugTaken]. All three implement [catalog.ConditionalDeleter],
// so guarded deletes re-check their precondition atomically with the delete.
//
// [Open] constructs the adapter selected by [shared.DatabaseConfig].
package store
