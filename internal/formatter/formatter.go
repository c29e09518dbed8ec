// package formatter provides functions to export movie data to various formats (table, CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/shared"
)

// Format names an output format accepted by [Export].
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "text"
)

// Formats lists every supported format in the order shown in help text.
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat maps a user supplied name onto a [Format]. "markdown" is accepted as an alias of "md".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case "markdown":
		return FormatMarkdown, nil
	case FormatTable, FormatJSON, FormatCSV, FormatMarkdown, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

var headers = []string{"ID", "Title", "Type", "Director", "Budget", "Location", "Duration", "Year"}

func row(m models.Movie) []string {
	return []string{
		m.ID.String(),
		m.Title,
		string(m.Type),
		m.Director,
		m.Budget,
		m.Location,
		m.Duration,
		m.Year,
	}
}

// Export renders movies in the requested format.
func Export(movies []models.Movie, format Format) ([]byte, error) {
	switch format {
	case FormatTable:
		return ExportToTable(movies), nil
	case FormatJSON:
		return ExportToJSON(movies)
	case FormatCSV:
		return ExportToCSV(movies)
	case FormatMarkdown:
		return ExportToMarkdown(movies, "")
	case FormatText:
		return ExportToText(movies)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts movies to CSV format with columns: ID, Title, Type, Director, Budget, Location, Duration, Year
func ExportToCSV(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range movies {
		if err := writer.Write(row(m)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts movies to a Markdown document with a pipe table.
//
// title defaults to "Movies".
func ExportToMarkdown(movies []models.Movie, title string) ([]byte, error) {
	if title == "" {
		title = "Movies"
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Records**: %d\n\n", len(movies)))

	if len(movies) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, m := range movies {
		cells := row(m)
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts movies to plain text format, one line per record
func ExportToText(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(movies)))
	for i, m := range movies {
		buf.WriteString(fmt.Sprintf("%d. %s (%s, %s) - %s [#%s]\n", i+1, m.Title, m.Type, m.Year, m.Director, m.ID))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts movies to an indented JSON array. A nil slice encodes as [].
func ExportToJSON(movies []models.Movie) ([]byte, error) {
	if movies == nil {
		movies = []models.Movie{}
	}
	data, err := json.MarshalIndent(movies, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// ExportToTable renders movies as a bordered terminal table.
func ExportToTable(movies []models.Movie) []byte {
	rows := make([][]string, 0, len(movies))
	for _, m := range movies {
		rows = append(rows, row(m))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, _ int) lipgloss.Style {
			if r == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return []byte(t.String() + "\n")
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteImageFile writes image bytes to path, creating parent directories as needed.
func WriteImageFile(path string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty image", shared.ErrInvalidImage)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}
