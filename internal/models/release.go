package models

import (
	"fmt"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/shared"
)

// ReleaseSource is the field the release slug derives from.
const ReleaseSource = "title"

// ReleaseFK is the release field holding the owning artist's primary id.
// The store does not enforce the reference; deletes of the artist are guarded
// by the catalog service instead.
const ReleaseFK = "artist_id"

// Release is a catalog record (LP, EP, single, …) owned by an artist.
type Release struct {
	ID       string `json:"id"`
	Slug     string `json:"slug,omitempty"`
	Title    string `json:"title"`
	ArtistID string `json:"artist_id,omitempty"`
	Year     int    `json:"year,omitempty"`
	Format   string `json:"format,omitempty"`
	Image    string `json:"image,omitempty"`
	About    string `json:"about,omitempty"`
}

// Validate checks required fields.
func (r Release) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("%w: release title is required", shared.ErrInvalidInput)
	}
	return nil
}

// Fields returns the release's data fields as a partial map for store writes.
func (r Release) Fields() map[string]any {
	return map[string]any{
		"title":     r.Title,
		"artist_id": r.ArtistID,
		"year":      r.Year,
		"format":    r.Format,
		"image":     r.Image,
		"about":     r.About,
	}
}

// ReleaseFromEntity converts a generic store record into a Release.
func ReleaseFromEntity(e catalog.Entity) Release {
	return Release{
		ID:       e.ID,
		Slug:     e.Slug,
		Title:    e.Field("title"),
		ArtistID: e.Field("artist_id"),
		Year:     e.IntField("year"),
		Format:   e.Field("format"),
		Image:    e.Field("image"),
		About:    e.Field("about"),
	}
}

// ReleasesFromEntities converts a result set.
func ReleasesFromEntities(entities []catalog.Entity) []Release {
	releases := make([]Release, len(entities))
	for i, e := range entities {
		releases[i] = ReleaseFromEntity(e)
	}
	return releases
}

// Identifier returns the preferred path segment for the release.
func (r Release) Identifier() string {
	if r.Slug != "" {
		return r.Slug
	}
	return r.ID
}
