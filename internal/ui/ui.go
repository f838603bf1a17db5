package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wax/internal/catalog"
	"github.com/desertthunder/wax/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ArtistListView ViewState = iota
	ReleaseListView
	ReleaseDetailView
)

// Model represents the TUI application state.
type Model struct {
	ctx             context.Context
	view            ViewState
	service         *catalog.Service
	width           int
	height          int
	artistList      list.Model
	artists         []models.Artist
	releaseList     list.Model
	selectedArtist  models.Artist
	selectedRelease models.Release
	err             error
	help            help.Model
	keys            keyMap
}

type artistsFetchedMsg struct {
	artists []models.Artist
	counts  map[string]int
	err     error
}

type releasesFetchedMsg struct {
	artist   models.Artist
	releases []models.Release
	err      error
}

// NewModel creates a new TUI model reading from the provided catalog service.
func NewModel(ctx context.Context, service *catalog.Service) *Model {
	return &Model{
		ctx:     ctx,
		view:    ArtistListView,
		service: service,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching the artist roster.
func (m *Model) Init() tea.Cmd {
	return m.fetchArtists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.artistList.Width() == 0 {
			m.artistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.releaseList.Width() == 0 {
			m.releaseList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ArtistListView:
			return m.handleArtistListKeys(msg)
		case ReleaseListView:
			return m.handleReleaseListKeys(msg)
		case ReleaseDetailView:
			return m.handleDetailKeys(msg)
		}

	case artistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.err = nil
		m.artists = msg.artists
		items := make([]list.Item, len(msg.artists))
		for i, artist := range msg.artists {
			items[i] = artistItem{artist: artist, releases: msg.counts[artist.ID]}
		}
		m.artistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.artistList.Title = "Artists"
		m.artistList.SetSize(m.width-4, m.height-8)
		m.view = ArtistListView
		return m, nil

	case releasesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ArtistListView
			return m, nil
		}
		m.selectedArtist = msg.artist
		items := make([]list.Item, len(msg.releases))
		for i, release := range msg.releases {
			items[i] = releaseItem{release: release}
		}
		m.releaseList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.releaseList.Title = fmt.Sprintf("Releases by '%s'", msg.artist.Name)
		m.releaseList.SetSize(m.width-4, m.height-8)
		m.view = ReleaseListView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ArtistListView:
		return m.renderArtistList()
	case ReleaseListView:
		return m.renderReleaseList()
	case ReleaseDetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleArtistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.fetchArtists()
	case "enter":
		selected := m.artistList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(artistItem); ok {
				return m, m.fetchReleases(item.artist)
			}
		}
	}

	var cmd tea.Cmd
	m.artistList, cmd = m.artistList.Update(msg)
	return m, cmd
}

func (m *Model) handleReleaseListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ArtistListView
		return m, nil
	case "enter":
		selected := m.releaseList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(releaseItem); ok {
				m.selectedRelease = item.release
				m.view = ReleaseDetailView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.releaseList, cmd = m.releaseList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ReleaseListView
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ArtistListView:
		m.artistList, cmd = m.artistList.Update(msg)
	case ReleaseListView:
		m.releaseList, cmd = m.releaseList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchArtists() tea.Cmd {
	return func() tea.Msg {
		entities, err := m.service.List(m.ctx, catalog.Artists, nil)
		if err != nil {
			return artistsFetchedMsg{err: err}
		}

		releases, err := m.service.List(m.ctx, catalog.Releases, nil)
		if err != nil {
			return artistsFetchedMsg{err: err}
		}
		counts := make(map[string]int)
		for _, release := range releases {
			counts[release.Field(models.ReleaseFK)]++
		}

		return artistsFetchedMsg{artists: models.ArtistsFromEntities(entities), counts: counts}
	}
}

func (m *Model) fetchReleases(artist models.Artist) tea.Cmd {
	return func() tea.Msg {
		entities, err := m.service.List(m.ctx, catalog.Releases, map[string]any{models.ReleaseFK: artist.ID})
		if err != nil {
			return releasesFetchedMsg{err: err}
		}
		return releasesFetchedMsg{artist: artist, releases: models.ReleasesFromEntities(entities)}
	}
}

func (m *Model) renderArtistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.artistList.View(), helpView)
}

func (m *Model) renderReleaseList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.releaseList.View(), helpView)
}

func (m *Model) renderDetail() string {
	release := m.selectedRelease
	title := styles.title.Render(release.Title)

	info := fmt.Sprintf("\nArtist: %s", m.selectedArtist.Name)
	if release.Year != 0 {
		info += fmt.Sprintf("\nYear: %d", release.Year)
	}
	if release.Format != "" {
		info += fmt.Sprintf("\nFormat: %s", release.Format)
	}
	info += fmt.Sprintf("\nLink: /releases/%s/", release.Identifier())
	if release.About != "" {
		info += fmt.Sprintf("\n\n%s", release.About)
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n\n%s", title, info, helpView)
}
