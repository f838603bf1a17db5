// Package web renders the public catalog pages, both live over HTTP and as a
// static site build.
//
// Every page is addressed by slug when the entity has one and by primary id
// otherwise; live handlers resolve the path segment through the catalog
// service, and the static build writes each page under the same segment, so
// the two surfaces share URLs.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/models"
	"github.com/desertthunder/wax/internal/shared"
)

//go:embed templates/*.html
var templateFiles embed.FS

// pageNames are the per-page templates layered over base.html.
var pageNames = []string{"index", "artist", "release"}

// Site serves the public pages for one catalog.
type Site struct {
	service *catalog.Service
	config  shared.SiteConfig
	pages   map[string]*template.Template
	logger  *log.Logger
}

// pageData is the payload every template renders from. Artist and Release
// are zero values on pages that do not use them.
type pageData struct {
	Site     shared.SiteConfig
	Artists  []models.Artist
	Artist   models.Artist
	Releases []models.Release
	Release  models.Release
}

// NewSite parses the embedded templates, one set per page layered over the
// shared base layout.
func NewSite(service *catalog.Service, config shared.SiteConfig, logger *log.Logger) (*Site, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFiles, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Site{service: service, config: config, pages: pages, logger: logger}, nil
}

// Routes returns the path patterns this handler serves.
func (s *Site) Routes() []string {
	return []string{"/", "/artists/", "/releases/"}
}

// ServeHTTP dispatches the public page routes.
func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	var err error
	switch {
	case path == "":
		err = s.renderIndex(r.Context(), w)
	case parts[0] == "artists" && len(parts) == 2:
		err = s.renderArtist(r.Context(), w, parts[1])
	case parts[0] == "releases" && len(parts) == 2:
		err = s.renderRelease(r.Context(), w, parts[1])
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("page render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Site) renderIndex(ctx context.Context, w io.Writer) error {
	entities, err := s.service.List(ctx, catalog.Artists, nil)
	if err != nil {
		return err
	}

	return s.render(w, "index", pageData{Site: s.config, Artists: models.ArtistsFromEntities(entities)})
}

func (s *Site) renderArtist(ctx context.Context, w io.Writer, identifier string) error {
	entity, err := s.service.Get(ctx, catalog.Artists, identifier)
	if err != nil {
		return err
	}
	artist := models.ArtistFromEntity(entity)

	entities, err := s.service.List(ctx, catalog.Releases, map[string]any{models.ReleaseFK: artist.ID})
	if err != nil {
		return err
	}

	return s.render(w, "artist", pageData{
		Site:     s.config,
		Artist:   artist,
		Releases: models.ReleasesFromEntities(entities),
	})
}

func (s *Site) renderRelease(ctx context.Context, w io.Writer, identifier string) error {
	entity, err := s.service.Get(ctx, catalog.Releases, identifier)
	if err != nil {
		return err
	}
	release := models.ReleaseFromEntity(entity)

	// The owning artist may be gone or never set; the page renders without it.
	var artist models.Artist
	if release.ArtistID != "" {
		if parent, err := s.service.Get(ctx, catalog.Artists, release.ArtistID); err == nil {
			artist = models.ArtistFromEntity(parent)
		}
	}

	return s.render(w, "release", pageData{Site: s.config, Release: release, Artist: artist})
}

func (s *Site) render(w io.Writer, page string, data pageData) error {
	tmpl, ok := s.pages[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("failed to render %s page: %w", page, err)
	}
	return nil
}
