// package formatter renders catalog data for terminals and exports it to
// portable formats (CSV, Markdown, JSON).
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/wax/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ArtistTable renders artists as a terminal table. Identifier is the segment
// the public site addresses the artist by.
func ArtistTable(artists []models.Artist) string {
	rows := make([][]string, len(artists))
	for i, artist := range artists {
		rows[i] = []string{artist.Identifier(), artist.Name, artist.Bio}
	}
	return renderTable([]string{"Identifier", "Name", "Bio"}, rows, nil)
}

// ReleaseTable renders releases as a terminal table.
func ReleaseTable(releases []models.Release) string {
	rows := make([][]string, len(releases))
	for i, release := range releases {
		year := ""
		if release.Year != 0 {
			year = strconv.Itoa(release.Year)
		}
		rows[i] = []string{release.Identifier(), release.Title, release.ArtistID, year, release.Format}
	}
	aligns := []text.Align{text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignLeft}
	return renderTable([]string{"Identifier", "Title", "Artist", "Year", "Format"}, rows, aligns)
}

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	if len(aligns) > 0 {
		configs := make([]table.ColumnConfig, len(aligns))
		for i, align := range aligns {
			configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
		}
		tw.SetColumnConfigs(configs)
	}

	return tw.Render()
}

// ExportToCSV converts releases to CSV with columns: ID, Slug, Title, ArtistID, Year, Format
func ExportToCSV(releases []models.Release) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Slug", "Title", "ArtistID", "Year", "Format"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, release := range releases {
		record := []string{
			release.ID,
			release.Slug,
			release.Title,
			release.ArtistID,
			strconv.Itoa(release.Year),
			release.Format,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts the whole catalog to Markdown, one section per
// artist with their releases listed underneath. Releases whose artist is
// missing land in a trailing Unattributed section.
func ExportToMarkdown(title string, artists []models.Artist, releases []models.Release) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n", len(artists)))
	buf.WriteString(fmt.Sprintf("**Releases**: %d\n\n", len(releases)))

	byArtist := make(map[string][]models.Release)
	for _, release := range releases {
		byArtist[release.ArtistID] = append(byArtist[release.ArtistID], release)
	}

	for _, artist := range artists {
		buf.WriteString(fmt.Sprintf("## %s\n\n", artist.Name))
		if artist.Bio != "" {
			buf.WriteString(artist.Bio + "\n\n")
		}
		for i, release := range byArtist[artist.ID] {
			buf.WriteString(formatReleaseLine(i+1, release))
		}
		if len(byArtist[artist.ID]) > 0 {
			buf.WriteString("\n")
		}
		delete(byArtist, artist.ID)
	}

	var orphans []models.Release
	for _, rest := range byArtist {
		orphans = append(orphans, rest...)
	}
	if len(orphans) > 0 {
		buf.WriteString("## Unattributed\n\n")
		for i, release := range orphans {
			buf.WriteString(formatReleaseLine(i+1, release))
		}
	}

	return buf.Bytes()
}

func formatReleaseLine(n int, release models.Release) string {
	yearPart := ""
	if release.Year != 0 {
		yearPart = fmt.Sprintf(" (%d)", release.Year)
	}
	formatPart := ""
	if release.Format != "" {
		formatPart = fmt.Sprintf(" [%s]", release.Format)
	}
	return fmt.Sprintf("%d. %s%s%s\n", n, release.Title, yearPart, formatPart)
}

// catalogDump is the JSON export envelope.
type catalogDump struct {
	Artists  []models.Artist  `json:"artists"`
	Releases []models.Release `json:"releases"`
}

// ExportToJSON converts the whole catalog to indented JSON.
func ExportToJSON(artists []models.Artist, releases []models.Release) ([]byte, error) {
	data, err := json.MarshalIndent(catalogDump{Artists: artists, Releases: releases}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}
	return data, nil
}

// ExportResult contains the paths of files created by WriteExport.
type ExportResult struct {
	Files []string
}

// WriteExport writes the catalog to disk in the requested format. baseFilepath
// defaults to "catalog"; the extension follows the format. The CSV format
// writes {base}_releases.csv plus {base}_artists.json since CSV has no natural
// place for artist metadata.
func WriteExport(format, baseFilepath, title string, artists []models.Artist, releases []models.Release) (*ExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "catalog"
	}

	result := &ExportResult{}
	switch format {
	case "csv":
		csvData, err := ExportToCSV(releases)
		if err != nil {
			return nil, err
		}
		releasesFile := baseFilepath + "_releases.csv"
		if err := os.WriteFile(releasesFile, csvData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write CSV file: %w", err)
		}
		result.Files = append(result.Files, releasesFile)

		artistsJSON, err := json.MarshalIndent(artists, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to generate artists JSON: %w", err)
		}
		artistsFile := baseFilepath + "_artists.json"
		if err := os.WriteFile(artistsFile, artistsJSON, 0644); err != nil {
			return nil, fmt.Errorf("failed to write artists file: %w", err)
		}
		result.Files = append(result.Files, artistsFile)
	case "markdown", "md":
		mdFile := baseFilepath + ".md"
		if err := os.WriteFile(mdFile, ExportToMarkdown(title, artists, releases), 0644); err != nil {
			return nil, fmt.Errorf("failed to write Markdown file: %w", err)
		}
		result.Files = append(result.Files, mdFile)
	case "json":
		data, err := ExportToJSON(artists, releases)
		if err != nil {
			return nil, err
		}
		jsonFile := baseFilepath + ".json"
		if err := os.WriteFile(jsonFile, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write JSON file: %w", err)
		}
		result.Files = append(result.Files, jsonFile)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}

	return result, nil
}
