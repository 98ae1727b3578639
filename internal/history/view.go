package history

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/quotegen/internal/docstore"
)

// View names a projection of the accumulated records.
type View string

const (
	ViewTable   View = "table"
	ViewGallery View = "gallery"
)

// ParseView maps a query value onto a View. Empty selects the table.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewTable:
		return ViewTable, nil
	case ViewGallery:
		return ViewGallery, nil
	default:
		return "", fmt.Errorf("unknown view %q: must be table or gallery", s)
	}
}

// ExcerptRunes is the quote length shown in table rows.
const ExcerptRunes = 80

// Row is one line of the table projection.
type Row struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	Language  string    `json:"language"`
	Tone      string    `json:"tone"`
	Excerpt   string    `json:"excerpt"`
}

// Card is one tile of the gallery projection.
type Card struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	Language  string    `json:"language"`
	Tone      string    `json:"tone"`
	HTML      string    `json:"html"`
}

// Table projects records onto table rows, truncating quotes.
func Table(records []docstore.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			ID:        r.ID,
			Timestamp: r.Timestamp,
			Topic:     r.Topic,
			Language:  r.Language,
			Tone:      r.Tone,
			Excerpt:   Truncate(r.Quote, ExcerptRunes),
		})
	}
	return rows
}

// markdown renders card bodies with single line breaks kept as <br>.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Gallery projects records onto cards with the full quote rendered to HTML.
func Gallery(records []docstore.Record) ([]Card, error) {
	cards := make([]Card, 0, len(records))
	for _, r := range records {
		body, err := RenderQuote(r.Quote)
		if err != nil {
			return nil, fmt.Errorf("rendering card %s: %w", r.ID, err)
		}
		cards = append(cards, Card{
			ID:        r.ID,
			Timestamp: r.Timestamp,
			Topic:     r.Topic,
			Language:  r.Language,
			Tone:      r.Tone,
			HTML:      body,
		})
	}
	return cards, nil
}

// RenderQuote converts quote text to an HTML fragment. The text is shown
// as written: Markdown syntax in model output such as "- Author" or
// "*word*" stays literal.
func RenderQuote(quote string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(literal(quote)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// asciiPunct is every character CommonMark lets a backslash escape.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// literal backslash-escapes every ASCII punctuation character and drops
// leading indentation so no line parses as a Markdown block or inline.
func literal(s string) string {
	var b strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, r := range strings.TrimLeft(line, " \t") {
			if strings.ContainsRune(asciiPunct, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate shortens s to at most n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
