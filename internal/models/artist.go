package models

import (
	"fmt"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/shared"
)

// ArtistSource is the field the artist slug derives from.
const ArtistSource = "name"

// Artist is a label act. Name seeds the slug; Slug may be empty for artists
// created before slug support, in which case the artist is addressed by ID only.
type Artist struct {
	ID    string `json:"id"`
	Slug  string `json:"slug,omitempty"`
	Name  string `json:"name"`
	Bio   string `json:"bio,omitempty"`
	Image string `json:"image,omitempty"`
}

// Validate checks required fields.
func (a Artist) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrInvalidInput)
	}
	return nil
}

// Fields returns the artist's data fields as a partial map for store writes.
func (a Artist) Fields() map[string]any {
	return map[string]any{
		"name":  a.Name,
		"bio":   a.Bio,
		"image": a.Image,
	}
}

// ArtistFromEntity converts a generic store record into an Artist.
func ArtistFromEntity(e catalog.Entity) Artist {
	return Artist{
		ID:    e.ID,
		Slug:  e.Slug,
		Name:  e.Field("name"),
		Bio:   e.Field("bio"),
		Image: e.Field("image"),
	}
}

// ArtistsFromEntities converts a result set.
func ArtistsFromEntities(entities []catalog.Entity) []Artist {
	artists := make([]Artist, len(entities))
	for i, e := range entities {
		artists[i] = ArtistFromEntity(e)
	}
	return artists
}

// Identifier returns the preferred path segment for the artist: the slug when
// present, the primary id otherwise.
func (a Artist) Identifier() string {
	if a.Slug != "" {
		return a.Slug
	}
	return a.ID
}
