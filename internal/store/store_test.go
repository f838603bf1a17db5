package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/shared"
)

// setupSQLite creates an in-memory SQLite store with migrations applied.
func setupSQLite(t *testing.T) *SQLite {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewSQLite(db)
}

// adapters returns a fresh instance of every backend, so the conformance
// suite below runs against all of them with the same expectations.
func adapters(t *testing.T) map[string]catalog.Store {
	t.Helper()

	jsonStore, err := OpenJSONFile(filepath.Join(t.TempDir(), "catalog.json"))
	if err != nil {
		t.Fatalf("failed to open jsonfile store: %v", err)
	}

	return map[string]catalog.Store{
		"memory":   NewMemory(),
		"jsonfile": jsonStore,
		"sqlite":   setupSQLite(t),
	}
}

func artistEntity(id, slug, name string) catalog.Entity {
	return catalog.Entity{ID: id, Slug: slug, Fields: map[string]any{"name": name}}
}

func TestStoreConformance(t *testing.T) {
	ctx := context.Background()

	t.Run("InsertAndFind", func(t *testing.T) {
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				if _, err := s.Insert(ctx, catalog.Artists, artistEntity("a1", "echo", "Echo")); err != nil {
					t.Fatalf("insert failed: %v", err)
				}

				found, err := s.Find(ctx, catalog.Artists, map[string]any{"slug": "echo"})
				if err != nil {
					t.Fatalf("find failed: %v", err)
				}
				if len(found) != 1 || found[0].ID != "a1" {
					t.Fatalf("expected a1, got %+v", found)
				}
				if found[0].Field("name") != "Echo" {
					t.Errorf("expected name field to round-trip, got %+v", found[0].Fields)
				}
			})
		}
	})

	t.Run("FindPreservesInsertionOrder", func(t *testing.T) {
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				for _, id := range []string{"a1", "a2", "a3"} {
					if _, err := s.Insert(ctx, catalog.Artists, artistEntity(id, "", "Artist "+id)); err != nil {
						t.Fatalf("insert failed: %v", err)
					}
				}

				all, err := s.Find(ctx, catalog.Artists, nil)
				if err != nil {
					t.Fatalf("find failed: %v", err)
				}
				if len(all) != 3 {
					t.Fatalf("expected 3 artists, got %d", len(all))
				}
				for i, id := range []string{"a1", "a2", "a3"} {
					if all[i].ID != id {
						t.Fatalf("expected stable order a1,a2,a3, got %+v", all)
					}
				}
			})
		}
	})

	t.Run("InsertRejectsTakenSlug", func(t *testing.T) {
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				if _, err := s.Insert(ctx, catalog.Artists, artistEntity("a1", "echo", "Echo")); err != nil {
					t.Fatalf("insert failed: %v", err)
				}

				_, err := s.Insert(ctx, catalog.Artists, artistEntity("a2", "echo", "Echo Two"))
				if !errors.Is(err, shared.ErrSlugTaken) {
					t.Fatalf("expected ErrSlugTaken, got %v", err)
				}
			})
		}
	})

	t.Run("EmptySlugsNeverCollide", func(t *testing.T) {
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				for _, id := range []string{"a1", "a2"} {
					if _, err := s.Insert(ctx, catalog.Artists, artistEntity(id, "", "???")); err != nil {
						t.Fatalf("insert of slugless entity failed: %v", err)
					}
				}
			})
		}
	})

	t.Run("UpdateReturnsNewValue", func(t *testing.T) {
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				if _, err := s.Insert(ctx, catalog.Artists, artistEntity("a1", "echo", "Echo")); err != nil {
					t.Fatalf("insert failed: %v", err)
				}

				updated, err := s.Update(ctx, catalog.Artists, "a1", map[string]any{"name": "Reverb", "slug": "reverb"})
				if err != nil {
					t.Fatalf("update failed: %v", err)
				}
				if updated.Slug != "reverb" || updated.Field("name") != "Reverb" {
					t.Errorf("expected updated value back, got %+v", updated)
				}

				byOldSlug, err := s.Find(ctx, catalog.Artists, map[string]any{"slug": "echo"})
				if err != nil {
					t.Fatalf("find failed: %v", err)
				}
				if len(byOldSlug) != 0 {
					t.Error("old slug should no longer match")
				}
			})
		}
	})

	t.Run("UpdateRejectsTakenSlug", func(t *testing.T) {
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				if _, err := s.Insert(ctx, catalog.Artists, artistEntity("a1", "echo", "Echo")); err != nil {
					t.Fatalf("insert failed: %v", err)
				}
				if _, err := s.Insert(ctx, catalog.Artists, artistEntity("a2", "reverb", "Reverb")); err != nil {
					t.Fatalf("insert failed: %v", err)
				}

				_, err := s.Update(ctx, catalog.Artists, "a2", map[string]any{"slug": "echo"})
				if !errors.Is(err, shared.ErrSlugTaken) {
					t.Fatalf("expected ErrSlugTaken, got %v", err)
				}
			})
		}
	})

	t.Run("UpdateMissingIsNotFound", func(t *testing.T) {
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				_, err := s.Update(ctx, catalog.Artists, "ghost", map[string]any{"name": "Ghost"})
				if !errors.Is(err, shared.ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
			})
		}
	})

	t.Run("DeleteReportsExistence", func(t *testing.T) {
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				if _, err := s.Insert(ctx, catalog.Artists, artistEntity("a1", "echo", "Echo")); err != nil {
					t.Fatalf("insert failed: %v", err)
				}

				found, err := s.Delete(ctx, catalog.Artists, "a1")
				if err != nil || !found {
					t.Fatalf("expected delete to find a1: found=%v err=%v", found, err)
				}

				found, err = s.Delete(ctx, catalog.Artists, "a1")
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if found {
					t.Error("second delete should report the entity gone")
				}
			})
		}
	})

	t.Run("DeleteUnlessReferenced", func(t *testing.T) {
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				cd, ok := s.(catalog.ConditionalDeleter)
				if !ok {
					t.Fatalf("%s store must implement ConditionalDeleter", name)
				}

				if _, err := s.Insert(ctx, catalog.Artists, artistEntity("42", "echo", "Echo")); err != nil {
					t.Fatalf("insert failed: %v", err)
				}
				release := catalog.Entity{ID: "r1", Slug: "debut", Fields: map[string]any{"title": "Debut", "artist_id": "42"}}
				if _, err := s.Insert(ctx, catalog.Releases, release); err != nil {
					t.Fatalf("insert failed: %v", err)
				}

				err := cd.DeleteUnlessReferenced(ctx, catalog.Artists, "42", catalog.Releases, "artist_id")
				if !errors.Is(err, shared.ErrConflict) {
					t.Fatalf("expected ErrConflict, got %v", err)
				}

				if _, err := s.Delete(ctx, catalog.Releases, "r1"); err != nil {
					t.Fatalf("failed to delete release: %v", err)
				}

				if err := cd.DeleteUnlessReferenced(ctx, catalog.Artists, "42", catalog.Releases, "artist_id"); err != nil {
					t.Fatalf("expected delete to be allowed: %v", err)
				}
			})
		}
	})

	t.Run("ResolverBackedWritesStayUnique", func(t *testing.T) {
		// Every write goes through ResolveUnique, so at most one entity
		// per collection owns any slug.
		for name, s := range adapters(t) {
			t.Run(name, func(t *testing.T) {
				for i, id := range []string{"a1", "a2", "a3", "a4"} {
					slug, err := catalog.ResolveUnique(ctx, s, catalog.Artists, "echo", id)
					if err != nil {
						t.Fatalf("resolve failed: %v", err)
					}
					want := "echo"
					if i > 0 {
						want = fmt.Sprintf("echo-%d", i)
					}
					if slug != want {
						t.Fatalf("expected %q, got %q", want, slug)
					}
					if _, err := s.Insert(ctx, catalog.Artists, artistEntity(id, slug, "Echo")); err != nil {
						t.Fatalf("insert failed: %v", err)
					}
				}

				seen := map[string]bool{}
				all, err := s.Find(ctx, catalog.Artists, nil)
				if err != nil {
					t.Fatalf("find failed: %v", err)
				}
				for _, e := range all {
					if e.Slug == "" {
						continue
					}
					if seen[e.Slug] {
						t.Fatalf("duplicate slug %q", e.Slug)
					}
					seen[e.Slug] = true
				}
			})
		}
	})
}

func TestSQLiteUnknownFieldRejected(t *testing.T) {
	ctx := context.Background()
	s := setupSQLite(t)

	_, err := s.Find(ctx, catalog.Artists, map[string]any{"nope": "x"})
	if !errors.Is(err, shared.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	_, err = s.Find(ctx, "sessions", nil)
	if !errors.Is(err, shared.ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestJSONFilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.json")

	s, err := OpenJSONFile(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if _, err := s.Insert(ctx, catalog.Artists, artistEntity("a1", "echo", "Echo")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	release := catalog.Entity{ID: "r1", Slug: "debut", Fields: map[string]any{"title": "Debut", "artist_id": "a1", "year": 1999}}
	if _, err := s.Insert(ctx, catalog.Releases, release); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	reopened, err := OpenJSONFile(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}

	found, err := reopened.Find(ctx, catalog.Artists, map[string]any{"slug": "echo"})
	if err != nil || len(found) != 1 {
		t.Fatalf("expected persisted artist, got %+v err=%v", found, err)
	}

	releases, err := reopened.Find(ctx, catalog.Releases, map[string]any{"artist_id": "a1"})
	if err != nil || len(releases) != 1 {
		t.Fatalf("expected persisted release, got %+v err=%v", releases, err)
	}
	if releases[0].IntField("year") != 1999 {
		t.Errorf("expected year to round-trip through JSON, got %v", releases[0].Fields["year"])
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		s, closer, err := Open(shared.DatabaseConfig{Backend: "memory"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closer()
		if _, ok := s.(*Memory); !ok {
			t.Fatalf("expected *Memory, got %T", s)
		}
	})

	t.Run("JSONFile", func(t *testing.T) {
		s, closer, err := Open(shared.DatabaseConfig{Backend: "jsonfile", Path: filepath.Join(t.TempDir(), "c.json")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closer()
		if _, ok := s.(*JSONFile); !ok {
			t.Fatalf("expected *JSONFile, got %T", s)
		}
	})

	t.Run("SQLite", func(t *testing.T) {
		s, closer, err := Open(shared.DatabaseConfig{Backend: "sqlite", Path: ":memory:"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closer()
		if _, ok := s.(*SQLite); !ok {
			t.Fatalf("expected *SQLite, got %T", s)
		}
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		_, _, err := Open(shared.DatabaseConfig{Backend: "etcd"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
