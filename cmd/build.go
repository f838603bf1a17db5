package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wax/internal/web"
	"github.com/urfave/cli/v3"
)

// Build renders the catalog into a static site directory.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	service, err := r.catalog()
	if err != nil {
		return err
	}

	site, err := web.NewSite(service, r.config.Site, r.logger)
	if err != nil {
		return fmt.Errorf("failed to build site: %w", err)
	}

	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = r.config.Site.OutputDir
	}

	if err := site.Build(ctx, outputDir, r.config.Server.UploadsDir); err != nil {
		return err
	}

	r.writePlain("✓ Static site written to %s\n", outputDir)
	return nil
}
