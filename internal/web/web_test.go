package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/models"
	"github.com/desertthunder/wax/internal/shared"
	"github.com/desertthunder/wax/internal/store"
	"github.com/gofrs/flock"
)

func setupSite(t *testing.T) (*Site, *catalog.Service) {
	t.Helper()

	service := catalog.NewService(store.NewMemory(), shared.NewLogger(os.Stderr))
	site, err := NewSite(service, shared.SiteConfig{Title: "Wax Records"}, shared.NewLogger(os.Stderr))
	if err != nil {
		t.Fatalf("failed to build site: %v", err)
	}
	return site, service
}

func seedCatalog(t *testing.T, service *catalog.Service) (models.Artist, models.Release) {
	t.Helper()
	ctx := context.Background()

	entity, err := service.Create(ctx, catalog.Artists, models.ArtistSource, map[string]any{
		"name": "Night Drive",
		"bio":  "Synthwave duo.",
	})
	if err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}
	artist := models.ArtistFromEntity(entity)

	entity, err = service.Create(ctx, catalog.Releases, models.ReleaseSource, map[string]any{
		"title":     "Night Drive, Vol. 2!",
		"artist_id": artist.ID,
		"year":      2024,
		"format":    "LP",
	})
	if err != nil {
		t.Fatalf("failed to create release: %v", err)
	}
	return artist, models.ReleaseFromEntity(entity)
}

func getPage(t *testing.T, site *Site, path string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	site.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func TestSitePages(t *testing.T) {
	site, service := setupSite(t)
	artist, release := seedCatalog(t, service)

	t.Run("Index", func(t *testing.T) {
		status, body := getPage(t, site, "/")
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if !strings.Contains(body, "Night Drive") {
			t.Errorf("expected index to list the artist, got: %s", body)
		}
		if !strings.Contains(body, "/artists/"+artist.Slug+"/") {
			t.Errorf("expected index to link the artist by slug")
		}
	})

	t.Run("ArtistBySlug", func(t *testing.T) {
		status, body := getPage(t, site, "/artists/"+artist.Slug)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if !strings.Contains(body, release.Title) {
			t.Errorf("expected artist page to list their release")
		}
	})

	t.Run("ArtistByID", func(t *testing.T) {
		status, _ := getPage(t, site, "/artists/"+artist.ID)
		if status != http.StatusOK {
			t.Fatalf("expected 200 for id lookup, got %d", status)
		}
	})

	t.Run("ReleaseLinksOwner", func(t *testing.T) {
		status, body := getPage(t, site, "/releases/"+release.Slug)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if !strings.Contains(body, "/artists/"+artist.Slug+"/") {
			t.Errorf("expected release page to link back to the artist")
		}
	})

	t.Run("UnknownSlugIs404", func(t *testing.T) {
		if status, _ := getPage(t, site, "/artists/nobody-here"); status != http.StatusNotFound {
			t.Errorf("expected 404, got %d", status)
		}
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		site.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestBuild(t *testing.T) {
	site, service := setupSite(t)
	artist, release := seedCatalog(t, service)
	ctx := context.Background()

	t.Run("WritesEveryPage", func(t *testing.T) {
		out := t.TempDir()
		if err := site.Build(ctx, out, ""); err != nil {
			t.Fatalf("build failed: %v", err)
		}

		for _, page := range []string{
			"index.html",
			filepath.Join("artists", artist.Slug, "index.html"),
			filepath.Join("releases", release.Slug, "index.html"),
		} {
			data, err := os.ReadFile(filepath.Join(out, page))
			if err != nil {
				t.Fatalf("expected %s to exist: %v", page, err)
			}
			if !strings.Contains(string(data), "Wax Records") {
				t.Errorf("expected %s to carry the site title", page)
			}
		}
	})

	t.Run("CopiesUploads", func(t *testing.T) {
		uploads := t.TempDir()
		if err := os.WriteFile(filepath.Join(uploads, "cover.png"), []byte("png bytes"), 0o644); err != nil {
			t.Fatal(err)
		}

		out := t.TempDir()
		if err := site.Build(ctx, out, uploads); err != nil {
			t.Fatalf("build failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "uploads", "cover.png")); err != nil {
			t.Errorf("expected upload to be copied: %v", err)
		}
	})

	t.Run("ConcurrentBuildIsRejected", func(t *testing.T) {
		out := t.TempDir()
		if err := os.MkdirAll(out, 0o755); err != nil {
			t.Fatal(err)
		}
		rival := flock.New(filepath.Join(out, lockFileName))
		locked, err := rival.TryLock()
		if err != nil || !locked {
			t.Fatalf("failed to take rival lock: locked=%v err=%v", locked, err)
		}
		defer rival.Unlock()

		if err := site.Build(ctx, out, ""); !errors.Is(err, shared.ErrBuildLocked) {
			t.Errorf("expected ErrBuildLocked, got %v", err)
		}
	})

	t.Run("MissingUploadsDirIsFine", func(t *testing.T) {
		out := t.TempDir()
		if err := site.Build(ctx, out, filepath.Join(out, "no-such-dir")); err != nil {
			t.Errorf("expected missing uploads dir to be skipped, got %v", err)
		}
	})

	t.Run("FallsBackToConfiguredOutputDir", func(t *testing.T) {
		dir := t.TempDir()
		site.config.OutputDir = filepath.Join(dir, "public")
		if err := site.Build(ctx, "", ""); err != nil {
			t.Fatalf("build failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(site.config.OutputDir, "index.html")); err != nil {
			t.Errorf("expected build to use the configured output dir: %v", err)
		}
	})
}
