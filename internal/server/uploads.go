package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/desertthunder/wax/internal/shared"
)

// imageExtensions maps sniffed content types to file extensions. Anything
// else is rejected before touching disk.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadStore persists entity images on disk under a single directory.
// Files are named by the owning entity's primary id, so re-uploading
// replaces the previous image.
type UploadStore struct {
	dir string
}

// NewUploadStore creates the uploads directory if needed.
func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

// Dir returns the directory images are stored in, for static file serving.
func (u *UploadStore) Dir() string {
	return u.dir
}

// Save sniffs the image type, writes the file as <entityID><ext> and returns
// the web path the image is served under.
func (u *UploadStore) Save(entityID string, r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrUnsupportedImage, http.DetectContentType(head))
	}

	// A re-upload may change the content type, so drop any image the
	// entity previously owned under another extension.
	for _, stale := range imageExtensions {
		if stale == ext {
			continue
		}
		if err := os.Remove(filepath.Join(u.dir, entityID+stale)); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to remove stale image: %w", err)
		}
	}

	name := entityID + ext
	f, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(head); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return "/uploads/" + name, nil
}
