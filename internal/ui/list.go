package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/wax/internal/models"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = releaseItem{}
)

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist   models.Artist
	releases int
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	desc := fmt.Sprintf("%d releases", i.releases)
	if i.artist.Bio != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.artist.Bio)
	}
	return desc
}

// releaseItem wraps [models.Release] to implement [list.Item].
type releaseItem struct {
	release models.Release
}

func (i releaseItem) FilterValue() string { return i.release.Title }
func (i releaseItem) Title() string       { return i.release.Title }
func (i releaseItem) Description() string {
	desc := i.release.Format
	if desc == "" {
		desc = "release"
	}
	if i.release.Year != 0 {
		desc = fmt.Sprintf("%s • %d", desc, i.release.Year)
	}
	return desc
}
