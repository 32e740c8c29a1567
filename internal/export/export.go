// Package export serializes cached list snapshots to JSON or XML for download.
package export

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"strconv"
	"strings"

	"github.com/watchlistapp/watchlist-server/internal/domain"
	"github.com/watchlistapp/watchlist-server/internal/errors"
)

// Format is an export output format.
type Format string

// Supported export formats.
const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat normalizes and validates a client-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXML:
		return FormatXML, nil
	}
	return "", errors.Validation("invalid format")
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXML {
		return "application/xml"
	}
	return "application/json; charset=utf-8"
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	return string(f)
}

// Formatter renders cached entries into downloadable documents.
// Output is byte-stable for identical input.
type Formatter struct{}

// NewFormatter creates a new formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format renders the entries in the given format.
func (f *Formatter) Format(entries []*domain.CachedEntry, kind Format) ([]byte, error) {
	switch kind {
	case FormatJSON:
		return f.formatJSON(entries)
	case FormatXML:
		return f.formatXML(entries), nil
	}
	return nil, errors.Validation("invalid format")
}

// formatJSON pretty-prints the full row shape. Non-ASCII text is
// preserved as-is rather than \u-escaped.
func (f *Formatter) formatJSON(entries []*domain.CachedEntry) ([]byte, error) {
	data, err := json.Marshal(entries, jsontext.WithIndent("  "))
	if err != nil {
		return nil, fmt.Errorf("marshal entries: %w", err)
	}
	return data, nil
}

// formatXML hand-builds the export document with a fixed element order.
func (f *Formatter) formatXML(entries []*domain.CachedEntry) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<animeList>\n")

	for _, e := range entries {
		title := e.TitleRomaji
		episodes := "N/A"
		if e.Episodes != nil {
			episodes = strconv.Itoa(*e.Episodes)
		}

		b.WriteString("  <anime>\n")
		fmt.Fprintf(&b, "    <id>%d</id>\n", e.ID)
		fmt.Fprintf(&b, "    <mediaId>%d</mediaId>\n", e.MediaID)
		fmt.Fprintf(&b, "    <titleRomaji>%s</titleRomaji>\n", escapeXML(title))
		fmt.Fprintf(&b, "    <status>%s</status>\n", escapeXML(string(e.Status)))
		fmt.Fprintf(&b, "    <score>%s</score>\n", strconv.FormatFloat(e.Score, 'g', -1, 64))
		fmt.Fprintf(&b, "    <progress>%d</progress>\n", e.Progress)
		fmt.Fprintf(&b, "    <episodes>%s</episodes>\n", escapeXML(episodes))
		b.WriteString("  </anime>\n")
	}

	b.WriteString("</animeList>\n")
	return []byte(b.String())
}

// escapeXML escapes the five XML metacharacters. The ampersand is
// replaced first so already-escaped sequences are never double-escaped.
func escapeXML(text string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(text)
}
