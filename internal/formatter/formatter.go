// package formatter renders normalized playlists to JSON, CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/shared"
)

// Format is an output format for playlist exports.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// Formats lists the supported formats in display order.
var Formats = []Format{JSON, CSV, Markdown, Text}

// ParseFormat maps a flag value to a [Format]. "md" and "text" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want json, csv, markdown or txt)", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case CSV:
		return ".csv"
	case Markdown:
		return ".md"
	case Text:
		return ".txt"
	default:
		return ".json"
	}
}

// Render converts playlist to the given format.
func Render(playlist models.Playlist, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return ExportToJSON(playlist)
	case CSV:
		return ExportToCSV(playlist)
	case Markdown:
		return ExportToMarkdown(playlist)
	case Text:
		return ExportToText(playlist)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// ExportToJSON converts a playlist to indented JSON, the format read back by the export command.
func ExportToJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// ExportToCSV converts a playlist to CSV format with columns: Position, Name, Artist, FLO ID, Channel IDs
func ExportToCSV(playlist models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Name", "Artist", "FLO ID", "Channel IDs"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, song := range playlist.Tracks {
		floID, _ := song.ChannelID(models.ChannelFLO)
		record := []string{
			strconv.Itoa(i + 1),
			song.Name,
			song.Artist,
			floID,
			channelList(song.ChannelIDs),
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

// ExportToMarkdown converts a playlist to Markdown, linking the source URLs it was read from
func ExportToMarkdown(playlist models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", playlist.Name)

	if playlist.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", playlist.Description)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(playlist.Tracks))
	for _, channel := range sortedKeys(playlist.PreGenerated) {
		fmt.Fprintf(&buf, "**Source (%s)**: <%s>\n", channel, playlist.PreGenerated[channel])
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, song := range playlist.Tracks {
		idPart := ""
		if id, ok := song.ChannelID(models.ChannelFLO); ok {
			idPart = fmt.Sprintf(" `%s`", id)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, song.Artist, song.Name, idPart)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(playlist models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", playlist.Name)
	if playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", playlist.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(playlist.Tracks))

	for i, song := range playlist.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, song.Artist, song.Name)
	}

	return buf.Bytes(), nil
}

// WriteExport renders playlist and writes it to path.
//
// An empty path defaults to a file named after the playlist in the working directory.
// Returns the path written.
func WriteExport(playlist models.Playlist, f Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(playlist, f)
	}

	data, err := Render(playlist, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}

// ReadPlaylist loads a playlist previously written as JSON.
func ReadPlaylist(path string) (models.Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("failed to read playlist file: %w", err)
	}

	var playlist models.Playlist
	if err := shared.UnmarshalJSON(data, &playlist); err != nil {
		return models.Playlist{}, fmt.Errorf("%w: %s: %w", shared.ErrInvalidInput, path, err)
	}
	return playlist, nil
}

// DefaultFilename derives a file name from the playlist name, e.g. "road_trip.json".
func DefaultFilename(playlist models.Playlist, f Format) string {
	return slug(playlist.Name) + f.Extension()
}

func slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	s := strings.TrimSuffix(b.String(), "_")
	if s == "" {
		return "playlist"
	}
	return s
}

func channelList(ids map[string]string) string {
	parts := make([]string, 0, len(ids))
	for _, k := range sortedKeys(ids) {
		parts = append(parts, k+"="+ids[k])
	}
	return strings.Join(parts, ";")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
