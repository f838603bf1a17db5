package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
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
)

// setupHandler builds the admin API over a fresh in-memory store.
func setupHandler(t *testing.T) (*CatalogHandler, *catalog.Service) {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	service := catalog.NewService(store.NewMemory(), logger)

	uploads, err := NewUploadStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create upload store: %v", err)
	}

	return NewCatalogHandler(service, uploads, logger), service
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestArtistEndpoints(t *testing.T) {
	t.Run("CreateAssignsSlug", func(t *testing.T) {
		h, _ := setupHandler(t)

		rec := doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Night Drive, Vol. 2!"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
		}

		artist := decodeBody[models.Artist](t, rec)
		if artist.Slug != "night-drive-vol-2" {
			t.Errorf("expected slug night-drive-vol-2, got %q", artist.Slug)
		}
		if artist.ID == "" {
			t.Error("expected an id on the created artist")
		}
	})

	t.Run("CreateValidatesName", func(t *testing.T) {
		h, _ := setupHandler(t)

		rec := doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"bio": "nameless"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("DuplicateNamesDisambiguate", func(t *testing.T) {
		h, _ := setupHandler(t)

		first := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))
		second := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))

		if first.Slug != "echo" || second.Slug != "echo-1" {
			t.Errorf("expected echo then echo-1, got %q then %q", first.Slug, second.Slug)
		}
	})

	t.Run("GetBySlugAndByID", func(t *testing.T) {
		h, _ := setupHandler(t)

		created := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))

		for _, identifier := range []string{created.Slug, created.ID} {
			rec := doJSON(t, h, http.MethodGet, "/api/artists/"+identifier, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("GET by %q: expected 200, got %d", identifier, rec.Code)
			}
			if got := decodeBody[models.Artist](t, rec); got.ID != created.ID {
				t.Errorf("GET by %q returned %q", identifier, got.ID)
			}
		}
	})

	t.Run("RenameRegeneratesSlug", func(t *testing.T) {
		h, _ := setupHandler(t)

		created := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))

		rec := doJSON(t, h, http.MethodPut, "/api/artists/"+created.Slug, map[string]any{"name": "Reverb"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}
		if updated := decodeBody[models.Artist](t, rec); updated.Slug != "reverb" {
			t.Errorf("expected regenerated slug reverb, got %q", updated.Slug)
		}

		// Old slug link is dead, id link still resolves.
		if rec := doJSON(t, h, http.MethodGet, "/api/artists/echo", nil); rec.Code != http.StatusNotFound {
			t.Errorf("expected old slug to 404, got %d", rec.Code)
		}
		if rec := doJSON(t, h, http.MethodGet, "/api/artists/"+created.ID, nil); rec.Code != http.StatusOK {
			t.Errorf("expected id link to keep working, got %d", rec.Code)
		}
	})

	t.Run("UnknownIdentifier404s", func(t *testing.T) {
		h, _ := setupHandler(t)

		rec := doJSON(t, h, http.MethodGet, "/api/artists/missing", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("DeleteGuardedByReleases", func(t *testing.T) {
		h, _ := setupHandler(t)

		artist := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))
		release := decodeBody[models.Release](t, doJSON(t, h, http.MethodPost, "/api/releases",
			map[string]any{"title": "Debut", "artist_id": artist.ID}))

		rec := doJSON(t, h, http.MethodDelete, "/api/artists/"+artist.Slug, nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 while a release references the artist, got %d", rec.Code)
		}

		if rec := doJSON(t, h, http.MethodDelete, "/api/releases/"+release.Slug, nil); rec.Code != http.StatusNoContent {
			t.Fatalf("failed to delete release: %d", rec.Code)
		}

		if rec := doJSON(t, h, http.MethodDelete, "/api/artists/"+artist.Slug, nil); rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 once releases are gone, got %d", rec.Code)
		}
	})
}

func TestReleaseEndpoints(t *testing.T) {
	t.Run("DanglingArtistRejected", func(t *testing.T) {
		h, _ := setupHandler(t)

		rec := doJSON(t, h, http.MethodPost, "/api/releases", map[string]any{"title": "Debut", "artist_id": "ghost"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for dangling artist reference, got %d", rec.Code)
		}
	})

	t.Run("SlugForeignKeyStoredAsID", func(t *testing.T) {
		h, _ := setupHandler(t)

		artist := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))

		rec := doJSON(t, h, http.MethodPost, "/api/releases", map[string]any{"title": "Debut", "artist_id": artist.Slug})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
		}
		if created := decodeBody[models.Release](t, rec); created.ArtistID != artist.ID {
			t.Errorf("expected artist_id %q, got %q", artist.ID, created.ArtistID)
		}

		// The guard compares against the primary id, so the reference
		// still blocks the delete even when the client sent the slug.
		if rec := doJSON(t, h, http.MethodDelete, "/api/artists/"+artist.Slug, nil); rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 while a release references the artist, got %d", rec.Code)
		}
	})

	t.Run("UpdateResolvesAndValidatesArtist", func(t *testing.T) {
		h, _ := setupHandler(t)

		echo := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))
		reverb := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Reverb"}))
		release := decodeBody[models.Release](t, doJSON(t, h, http.MethodPost, "/api/releases",
			map[string]any{"title": "Debut", "artist_id": echo.ID}))

		rec := doJSON(t, h, http.MethodPut, "/api/releases/"+release.Slug, map[string]any{"artist_id": reverb.Slug})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}
		if updated := decodeBody[models.Release](t, rec); updated.ArtistID != reverb.ID {
			t.Errorf("expected reassignment to store %q, got %q", reverb.ID, updated.ArtistID)
		}

		if rec := doJSON(t, h, http.MethodPut, "/api/releases/"+release.Slug, map[string]any{"artist_id": "ghost"}); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for dangling artist reference, got %d", rec.Code)
		}
		if rec := doJSON(t, h, http.MethodPut, "/api/releases/"+release.Slug, map[string]any{"artist_id": 7}); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for non-string artist reference, got %d", rec.Code)
		}
	})

	t.Run("ListFiltersByArtist", func(t *testing.T) {
		h, _ := setupHandler(t)

		echo := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))
		reverb := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Reverb"}))

		doJSON(t, h, http.MethodPost, "/api/releases", map[string]any{"title": "One", "artist_id": echo.ID})
		doJSON(t, h, http.MethodPost, "/api/releases", map[string]any{"title": "Two", "artist_id": reverb.ID})

		rec := doJSON(t, h, http.MethodGet, "/api/releases?artist_id="+echo.ID, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		releases := decodeBody[[]models.Release](t, rec)
		if len(releases) != 1 || releases[0].Title != "One" {
			t.Fatalf("expected only Echo's release, got %+v", releases)
		}
	})

	t.Run("YearRoundTrips", func(t *testing.T) {
		h, _ := setupHandler(t)

		artist := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))
		created := decodeBody[models.Release](t, doJSON(t, h, http.MethodPost, "/api/releases",
			map[string]any{"title": "Debut", "artist_id": artist.ID, "year": 1999}))

		rec := doJSON(t, h, http.MethodPut, "/api/releases/"+created.Slug, map[string]any{"year": 2001})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}
		if updated := decodeBody[models.Release](t, rec); updated.Year != 2001 {
			t.Errorf("expected year 2001, got %d", updated.Year)
		}
	})
}

func TestImageUpload(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

	upload := func(t *testing.T, h http.Handler, path string, payload []byte) *httptest.ResponseRecorder {
		t.Helper()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("image", "cover.png")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("StoresImageAndUpdatesEntity", func(t *testing.T) {
		h, _ := setupHandler(t)

		artist := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))

		rec := upload(t, h, "/api/artists/"+artist.Slug+"/image", pngHeader)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}

		got := decodeBody[models.Artist](t, doJSON(t, h, http.MethodGet, "/api/artists/"+artist.Slug, nil))
		if got.Image != fmt.Sprintf("/uploads/%s.png", artist.ID) {
			t.Errorf("expected image path to be stored, got %q", got.Image)
		}
	})

	t.Run("ReuploadDropsOldExtension", func(t *testing.T) {
		h, _ := setupHandler(t)

		artist := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))

		if rec := upload(t, h, "/api/artists/"+artist.Slug+"/image", pngHeader); rec.Code != http.StatusOK {
			t.Fatalf("failed to upload png: %d", rec.Code)
		}
		if rec := upload(t, h, "/api/artists/"+artist.Slug+"/image", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")); rec.Code != http.StatusOK {
			t.Fatalf("failed to upload gif: %d", rec.Code)
		}

		if _, err := os.Stat(filepath.Join(h.uploads.Dir(), artist.ID+".gif")); err != nil {
			t.Errorf("expected the gif to exist: %v", err)
		}
		if _, err := os.Stat(filepath.Join(h.uploads.Dir(), artist.ID+".png")); !os.IsNotExist(err) {
			t.Errorf("expected the stale png to be removed, got %v", err)
		}
	})

	t.Run("RejectsNonImagePayload", func(t *testing.T) {
		h, _ := setupHandler(t)

		artist := decodeBody[models.Artist](t, doJSON(t, h, http.MethodPost, "/api/artists", map[string]any{"name": "Echo"}))

		rec := upload(t, h, "/api/artists/"+artist.Slug+"/image", []byte("#!/bin/sh\nrm -rf /\n"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for non-image payload, got %d", rec.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("HandleBindsOneMethod", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for the bound method, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405 for another method, got %d", rec.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("RateLimitAnswers429", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(RateLimit(1, 1))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		first := httptest.NewRecorder()
		router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if first.Code != http.StatusOK {
			t.Fatalf("expected first request to pass, got %d", first.Code)
		}

		second := httptest.NewRecorder()
		router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if second.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 once the bucket drains, got %d", second.Code)
		}
	})

	t.Run("LoggingPassesThrough", func(t *testing.T) {
		var buf strings.Builder
		router := NewBasicRouter()
		router.Use(Logging(shared.NewLogger(&buf)))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("expected handler status to pass through, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "/ping") {
			t.Error("expected the request path to be logged")
		}
	})
}
