// Package ui implements an interactive terminal catalog browser using
// bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the label catalog:
//  1. [ArtistListView] : Browse the label's artists
//  2. [ReleaseListView] : Browse the selected artist's releases
//  3. [ReleaseDetailView] : Inspect a single release
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. Catalog reads run as commands so the interface never blocks on the
// store.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
