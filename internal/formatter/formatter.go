// package formatter renders Twitch videos as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/shared"
)

// Format names an output format accepted by [Render].
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in help-text order.
var Formats = []Format{FormatText, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat accepts a format name, "md" being an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case FormatText, FormatCSV, FormatMarkdown, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Render converts videos to the given format. The title is used by Markdown and text output.
func Render(format Format, title string, videos []models.Video) ([]byte, error) {
	switch format {
	case FormatCSV:
		return VideosToCSV(videos)
	case FormatMarkdown:
		return VideosToMarkdown(title, videos)
	case FormatJSON:
		return shared.MarshalJSON(videos, true)
	case FormatText, "":
		return VideosToText(title, videos)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// VideosToCSV converts videos to CSV with columns: ID, Title, Channel, Game, Type, Views, Length, Created, URL
func VideosToCSV(videos []models.Video) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Channel", "Game", "Type", "Views", "Length", "Created", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range videos {
		record := []string{
			v.ID,
			v.Title,
			channelName(v.Channel),
			v.Game,
			v.BroadcastType,
			strconv.Itoa(v.Views),
			strconv.Itoa(v.Length),
			formatDate(v.CreatedAt),
			v.URL,
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

// VideosToMarkdown converts videos to a Markdown document with a numbered list of links
func VideosToMarkdown(title string, videos []models.Video) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Videos"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Videos**: %d\n\n", len(videos)))

	for i, v := range videos {
		name := v.Title
		if v.URL != "" {
			name = fmt.Sprintf("[%s](%s)", v.Title, v.URL)
		}

		details := []string{shared.FormatDuration(v.Length), fmt.Sprintf("%d views", v.Views)}
		if v.Game != "" {
			details = append([]string{v.Game}, details...)
		}

		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, channelName(v.Channel), name, strings.Join(details, ", ")))
	}

	return buf.Bytes(), nil
}

// VideosToText converts videos to plain text
func VideosToText(title string, videos []models.Video) ([]byte, error) {
	var buf bytes.Buffer

	if title != "" {
		buf.WriteString(fmt.Sprintf("%s\n", title))
	}
	buf.WriteString(fmt.Sprintf("Videos: %d\n\n", len(videos)))

	for i, v := range videos {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s, %d views)\n", i+1, channelName(v.Channel), v.Title, shared.FormatDuration(v.Length), v.Views))
	}

	return buf.Bytes(), nil
}

// VideoToText describes a single video, one field per line. Empty fields are skipped.
func VideoToText(v *models.Video) []byte {
	var buf bytes.Buffer

	field := func(name, value string) {
		if value != "" {
			buf.WriteString(fmt.Sprintf("%-10s %s\n", name+":", value))
		}
	}

	field("ID", v.ID)
	field("Title", v.Title)
	field("Channel", channelName(v.Channel))
	field("Game", v.Game)
	field("Type", v.BroadcastType)
	field("Length", shared.FormatDuration(v.Length))
	field("Views", strconv.Itoa(v.Views))
	field("Created", formatDate(v.CreatedAt))
	field("URL", v.URL)

	return buf.Bytes()
}

// WriteFile renders videos and writes them to path.
func WriteFile(path string, format Format, title string, videos []models.Video) error {
	data, err := Render(format, title, videos)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}

func channelName(c models.Channel) string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
