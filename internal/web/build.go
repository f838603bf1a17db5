package web

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/models"
	"github.com/desertthunder/wax/internal/shared"
	"github.com/gofrs/flock"
)

// lockFileName lives inside the output directory so concurrent builds of the
// same site contend on the same lock regardless of working directory.
const lockFileName = ".build.lock"

// Build renders every catalog page into outputDir as a static site. Each page
// lands at the same path the live handlers serve it from, with index.html
// appended, so the directory can be published as-is. When uploadsDir is
// non-empty its contents are copied under outputDir/uploads.
//
// Only one build may run against an output directory at a time; a second
// build returns shared.ErrBuildLocked instead of waiting.
func (s *Site) Build(ctx context.Context, outputDir string, uploadsDir string) error {
	if outputDir == "" {
		outputDir = s.config.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(outputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire build lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", shared.ErrBuildLocked, outputDir)
	}
	defer lock.Unlock()

	if err := s.writePage(filepath.Join(outputDir, "index.html"), func(w io.Writer) error {
		return s.renderIndex(ctx, w)
	}); err != nil {
		return err
	}

	artists, err := s.service.List(ctx, catalog.Artists, nil)
	if err != nil {
		return err
	}
	for _, entity := range artists {
		artist := models.ArtistFromEntity(entity)
		path := filepath.Join(outputDir, "artists", artist.Identifier(), "index.html")
		if err := s.writePage(path, func(w io.Writer) error {
			return s.renderArtist(ctx, w, artist.ID)
		}); err != nil {
			return err
		}
	}

	releases, err := s.service.List(ctx, catalog.Releases, nil)
	if err != nil {
		return err
	}
	for _, entity := range releases {
		release := models.ReleaseFromEntity(entity)
		path := filepath.Join(outputDir, "releases", release.Identifier(), "index.html")
		if err := s.writePage(path, func(w io.Writer) error {
			return s.renderRelease(ctx, w, release.ID)
		}); err != nil {
			return err
		}
	}

	if uploadsDir != "" {
		if err := copyUploads(uploadsDir, filepath.Join(outputDir, "uploads")); err != nil {
			return err
		}
	}

	s.logger.Info("site build complete",
		"output", outputDir, "artists", len(artists), "releases", len(releases))
	return nil
}

func (s *Site) writePage(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// copyUploads mirrors src into dst. A missing src is not an error so builds
// work before any image has been uploaded.
func copyUploads(src, dst string) error {
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to read uploads directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("%w: uploads path %s is not a directory", shared.ErrInvalidConfig, src)
	}

	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read upload %s: %w", path, err)
		}
		return os.WriteFile(target, data, 0o644)
	})
}
