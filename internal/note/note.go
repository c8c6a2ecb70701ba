// Package note renders a summarized video as a markdown note, and the
// markdown as HTML.
package note

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const degradedNotice = "> This summary was assembled from summaries of separate transcript parts and may miss connections between them."

type Note struct {
	VideoID    string
	Title      string
	URL        string
	Summary    string
	Degraded   bool
	Transcript string
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Markdown renders the note. Missing titles fall back to the video id and
// the transcript section is omitted when empty.
func Markdown(n Note) string {
	var b strings.Builder

	title := strings.TrimSpace(n.Title)
	if title == "" {
		title = n.VideoID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if n.URL != "" {
		fmt.Fprintf(&b, "Source: <%s>\n\n", n.URL)
	}

	b.WriteString("## Summary\n\n")
	if n.Degraded {
		b.WriteString(degradedNotice)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(n.Summary))
	b.WriteString("\n")

	if t := strings.TrimSpace(n.Transcript); t != "" {
		b.WriteString("\n## Transcript\n\n")
		b.WriteString(t)
		b.WriteString("\n")
	}
	return b.String()
}

// HTML converts markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render note: %w", err)
	}
	return buf.String(), nil
}

// Filename is a filesystem-safe markdown file name for a video id.
func Filename(videoID string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, videoID)
	if clean == "" {
		clean = "untitled"
	}
	return clean + ".md"
}
