// Package models defines the typed catalog entities.
//
// [Artist] and [Release] are plain immutable values. The store layer deals in
// generic [catalog.Entity] records; conversions live here so that handlers,
// templates and the formatter work with real fields instead of map lookups.
// Updates flow as partial field maps (see the Fields methods), never as
// in-place mutation of a fetched value.
package models
