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

// ReleasesList prints releases, optionally scoped to one artist.
func (r *Runner) ReleasesList(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	service, err := r.catalog()
	if err != nil {
		return err
	}

	var criteria map[string]any
	if artistIdentifier := cmd.String("artist"); artistIdentifier != "" {
		artist, err := service.Get(ctx, catalog.Artists, artistIdentifier)
		if err != nil {
			return fmt.Errorf("failed to resolve artist %q: %w", artistIdentifier, err)
		}
		criteria = map[string]any{models.ReleaseFK: artist.ID}
	}

	entities, err := service.List(ctx, catalog.Releases, criteria)
	if err != nil {
		return fmt.Errorf("failed to list releases: %w", err)
	}
	releases := models.ReleasesFromEntities(entities)

	if cmd.Bool("json") {
		return r.writeJSON(releases, true)
	}
	return r.writePlain("%s\n", formatter.ReleaseTable(releases))
}

// ReleasesAdd creates a release under an existing artist.
func (r *Runner) ReleasesAdd(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	service, err := r.catalog()
	if err != nil {
		return err
	}

	artist, err := service.Get(ctx, catalog.Artists, cmd.String("artist"))
	if err != nil {
		return fmt.Errorf("failed to resolve artist %q: %w", cmd.String("artist"), err)
	}

	release := models.Release{
		Title:    cmd.String("title"),
		ArtistID: artist.ID,
		Year:     cmd.Int("year"),
		Format:   cmd.String("format"),
		About:    cmd.String("about"),
	}
	if err := release.Validate(); err != nil {
		return err
	}

	entity, err := service.Create(ctx, catalog.Releases, models.ReleaseSource, release.Fields())
	if err != nil {
		return fmt.Errorf("failed to create release: %w", err)
	}

	created := models.ReleaseFromEntity(entity)
	r.logger.Info("release created", "id", created.ID, "slug", created.Slug)
	return r.writePlain("✓ Added %s (%s)\n", created.Title, created.Identifier())
}

// ReleasesShow prints one release looked up by slug or id.
func (r *Runner) ReleasesShow(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: release identifier is required", shared.ErrMissingArgument)
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	entity, err := service.Get(ctx, catalog.Releases, identifier)
	if err != nil {
		return fmt.Errorf("failed to resolve release %q: %w", identifier, err)
	}

	return r.writeJSON(models.ReleaseFromEntity(entity), true)
}

// ReleasesRemove deletes a release.
func (r *Runner) ReleasesRemove(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: release identifier is required", shared.ErrMissingArgument)
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	if err := service.Delete(ctx, catalog.Releases, identifier); err != nil {
		return fmt.Errorf("failed to delete release %q: %w", identifier, err)
	}

	return r.writePlain("✓ Deleted %s\n", identifier)
}
