package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/models"
	"github.com/desertthunder/wax/internal/shared"
)

// maxUploadBytes caps multipart image uploads.
const maxUploadBytes = 10 << 20

// artistFields and releaseFields whitelist the JSON keys a partial update may
// carry. The slug is never set directly; it follows the source field.
var (
	artistFields  = map[string]bool{"name": true, "bio": true, "image": true}
	releaseFields = map[string]bool{"title": true, "artist_id": true, "year": true, "format": true, "image": true, "about": true}
)

// CatalogHandler serves the admin JSON API under /api/.
type CatalogHandler struct {
	service *catalog.Service
	uploads *UploadStore
	logger  *log.Logger
}

// NewCatalogHandler creates the admin API handler.
func NewCatalogHandler(service *catalog.Service, uploads *UploadStore, logger *log.Logger) *CatalogHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CatalogHandler{service: service, uploads: uploads, logger: logger}
}

// Routes returns the path patterns this handler serves.
func (h *CatalogHandler) Routes() []string {
	return []string{"/api/artists", "/api/artists/", "/api/releases", "/api/releases/"}
}

// ServeHTTP dispatches /api/{collection}[/{identifier}[/image]].
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/"), "/"), "/")

	switch parts[0] {
	case "artists":
		h.serveArtists(w, r, parts[1:])
	case "releases":
		h.serveReleases(w, r, parts[1:])
	default:
		http.NotFound(w, r)
	}
}

func (h *CatalogHandler) serveArtists(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()

	switch {
	case len(rest) == 0 || rest[0] == "":
		switch r.Method {
		case http.MethodGet:
			entities, err := h.service.List(ctx, catalog.Artists, nil)
			if err != nil {
				h.writeError(w, err)
				return
			}
			h.writeJSON(w, http.StatusOK, models.ArtistsFromEntities(entities))
		case http.MethodPost:
			var artist models.Artist
			if err := json.NewDecoder(r.Body).Decode(&artist); err != nil {
				h.writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
				return
			}
			if err := artist.Validate(); err != nil {
				h.writeError(w, err)
				return
			}
			created, err := h.service.Create(ctx, catalog.Artists, models.ArtistSource, artist.Fields())
			if err != nil {
				h.writeError(w, err)
				return
			}
			h.writeJSON(w, http.StatusCreated, models.ArtistFromEntity(created))
		default:
			h.methodNotAllowed(w)
		}

	case len(rest) == 1:
		identifier := rest[0]
		switch r.Method {
		case http.MethodGet:
			entity, err := h.service.Get(ctx, catalog.Artists, identifier)
			if err != nil {
				h.writeError(w, err)
				return
			}
			h.writeJSON(w, http.StatusOK, models.ArtistFromEntity(entity))
		case http.MethodPut:
			partial, err := decodePartial(r, artistFields)
			if err != nil {
				h.writeError(w, err)
				return
			}
			updated, err := h.service.Update(ctx, catalog.Artists, models.ArtistSource, identifier, partial)
			if err != nil {
				h.writeError(w, err)
				return
			}
			h.writeJSON(w, http.StatusOK, models.ArtistFromEntity(updated))
		case http.MethodDelete:
			// Artists are parents: the delete is blocked while releases
			// still reference them.
			err := h.service.DeleteGuarded(ctx, catalog.Artists, identifier, catalog.Releases, models.ReleaseFK)
			if err != nil {
				h.writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			h.methodNotAllowed(w)
		}

	case len(rest) == 2 && rest[1] == "image" && r.Method == http.MethodPost:
		h.serveImageUpload(w, r, catalog.Artists, models.ArtistSource, rest[0])

	default:
		http.NotFound(w, r)
	}
}

func (h *CatalogHandler) serveReleases(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()

	switch {
	case len(rest) == 0 || rest[0] == "":
		switch r.Method {
		case http.MethodGet:
			criteria := map[string]any{}
			if artist := r.URL.Query().Get("artist_id"); artist != "" {
				criteria[models.ReleaseFK] = artist
			}
			entities, err := h.service.List(ctx, catalog.Releases, criteria)
			if err != nil {
				h.writeError(w, err)
				return
			}
			h.writeJSON(w, http.StatusOK, models.ReleasesFromEntities(entities))
		case http.MethodPost:
			var release models.Release
			if err := json.NewDecoder(r.Body).Decode(&release); err != nil {
				h.writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
				return
			}
			if err := release.Validate(); err != nil {
				h.writeError(w, err)
				return
			}
			if release.ArtistID != "" {
				// The store does not enforce the reference, so reject a
				// dangling artist id here rather than let it orphan. The
				// stored value is the resolved primary id, never a slug,
				// so the delete guard's reference check holds.
				artistID, err := h.resolveArtistID(ctx, release.ArtistID)
				if err != nil {
					h.writeError(w, err)
					return
				}
				release.ArtistID = artistID
			}
			created, err := h.service.Create(ctx, catalog.Releases, models.ReleaseSource, release.Fields())
			if err != nil {
				h.writeError(w, err)
				return
			}
			h.writeJSON(w, http.StatusCreated, models.ReleaseFromEntity(created))
		default:
			h.methodNotAllowed(w)
		}

	case len(rest) == 1:
		identifier := rest[0]
		switch r.Method {
		case http.MethodGet:
			entity, err := h.service.Get(ctx, catalog.Releases, identifier)
			if err != nil {
				h.writeError(w, err)
				return
			}
			h.writeJSON(w, http.StatusOK, models.ReleaseFromEntity(entity))
		case http.MethodPut:
			partial, err := decodePartial(r, releaseFields)
			if err != nil {
				h.writeError(w, err)
				return
			}
			if raw, ok := partial[models.ReleaseFK]; ok {
				value, ok := raw.(string)
				if !ok {
					h.writeError(w, fmt.Errorf("%w: artist_id must be a string", shared.ErrInvalidInput))
					return
				}
				if value != "" {
					artistID, err := h.resolveArtistID(ctx, value)
					if err != nil {
						h.writeError(w, err)
						return
					}
					partial[models.ReleaseFK] = artistID
				}
			}
			updated, err := h.service.Update(ctx, catalog.Releases, models.ReleaseSource, identifier, partial)
			if err != nil {
				h.writeError(w, err)
				return
			}
			h.writeJSON(w, http.StatusOK, models.ReleaseFromEntity(updated))
		case http.MethodDelete:
			if err := h.service.Delete(ctx, catalog.Releases, identifier); err != nil {
				h.writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			h.methodNotAllowed(w)
		}

	case len(rest) == 2 && rest[1] == "image" && r.Method == http.MethodPost:
		h.serveImageUpload(w, r, catalog.Releases, models.ReleaseSource, rest[0])

	default:
		http.NotFound(w, r)
	}
}

// resolveArtistID resolves a slug-or-id artist identifier to the artist's
// primary id. The foreign key is always stored as the primary id, so the
// delete guard compares like with like.
func (h *CatalogHandler) resolveArtistID(ctx context.Context, identifier string) (string, error) {
	artist, err := h.service.Get(ctx, catalog.Artists, identifier)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return artist.ID, nil
}

// serveImageUpload stores the multipart "image" part and points the entity's
// image field at the served path.
func (h *CatalogHandler) serveImageUpload(w http.ResponseWriter, r *http.Request, collection, sourceField, identifier string) {
	ctx := r.Context()

	entity, err := h.service.Get(ctx, collection, identifier)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	defer file.Close()

	path, err := h.uploads.Save(entity.ID, file)
	if err != nil {
		h.writeError(w, err)
		return
	}

	updated, err := h.service.Update(ctx, collection, sourceField, entity.ID, map[string]any{"image": path})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"id": updated.ID, "image": path})
}

// decodePartial reads a JSON object and keeps only whitelisted fields.
// JSON numbers arrive as float64 and are normalized to int for storage.
func decodePartial(r *http.Request, allowed map[string]bool) (map[string]any, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	partial := make(map[string]any, len(raw))
	for field, value := range raw {
		if !allowed[field] {
			continue
		}
		if f, ok := value.(float64); ok {
			partial[field] = int(f)
		} else {
			partial[field] = value
		}
	}
	return partial, nil
}

func (h *CatalogHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps the catalog error taxonomy onto HTTP statuses.
func (h *CatalogHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrUnknownField),
		errors.Is(err, shared.ErrUnsupportedImage):
		status = http.StatusBadRequest
	default:
		h.logger.Error("request failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (h *CatalogHandler) methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
