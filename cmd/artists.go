package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/formatter"
	"github.com/desertthunder/wax/internal/models"
	"github.com/desertthunder/wax/internal/shared"
	"github.com/urfave/cli/v3"
)

// ArtistsList prints the artist roster as a table or JSON.
func (r *Runner) ArtistsList(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	service, err := r.catalog()
	if err != nil {
		return err
	}

	entities, err := service.List(ctx, catalog.Artists, nil)
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}
	artists := models.ArtistsFromEntities(entities)

	if cmd.Bool("json") {
		return r.writeJSON(artists, true)
	}
	return r.writePlain("%s\n", formatter.ArtistTable(artists))
}

// ArtistsAdd creates an artist, deriving its slug from the name.
func (r *Runner) ArtistsAdd(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	service, err := r.catalog()
	if err != nil {
		return err
	}

	artist := models.Artist{
		Name: cmd.String("name"),
		Bio:  cmd.String("bio"),
	}
	if err := artist.Validate(); err != nil {
		return err
	}

	entity, err := service.Create(ctx, catalog.Artists, models.ArtistSource, artist.Fields())
	if err != nil {
		return fmt.Errorf("failed to create artist: %w", err)
	}

	created := models.ArtistFromEntity(entity)
	r.logger.Info("artist created", "id", created.ID, "slug", created.Slug)
	return r.writePlain("✓ Added %s (%s)\n", created.Name, created.Identifier())
}

// ArtistsShow prints one artist looked up by slug or id.
func (r *Runner) ArtistsShow(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: artist identifier is required", shared.ErrMissingArgument)
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	entity, err := service.Get(ctx, catalog.Artists, identifier)
	if err != nil {
		return fmt.Errorf("failed to resolve artist %q: %w", identifier, err)
	}

	return r.writeJSON(models.ArtistFromEntity(entity), true)
}

// ArtistsRemove deletes an artist unless releases still reference them.
func (r *Runner) ArtistsRemove(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: artist identifier is required", shared.ErrMissingArgument)
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	if err := service.DeleteGuarded(ctx, catalog.Artists, identifier, catalog.Releases, models.ReleaseFK); err != nil {
		return fmt.Errorf("failed to delete artist %q: %w", identifier, err)
	}

	return r.writePlain("✓ Deleted %s\n", identifier)
}
