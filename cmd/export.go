package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/formatter"
	"github.com/desertthunder/wax/internal/models"
	"github.com/desertthunder/wax/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export writes the whole catalog to disk in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	format := strings.ToLower(cmd.String("format"))
	switch format {
	case "csv", "markdown", "md", "json":
	default:
		return fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidFlag, format)
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	artistEntities, err := service.List(ctx, catalog.Artists, nil)
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}
	releaseEntities, err := service.List(ctx, catalog.Releases, nil)
	if err != nil {
		return fmt.Errorf("failed to list releases: %w", err)
	}

	result, err := formatter.WriteExport(
		format,
		cmd.String("output"),
		r.config.Site.Title,
		models.ArtistsFromEntities(artistEntities),
		models.ReleasesFromEntities(releaseEntities),
	)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainln("Export complete:")
	for _, file := range result.Files {
		r.writePlain("  %s\n", file)
	}
	return nil
}
