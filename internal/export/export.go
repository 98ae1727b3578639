// Package export renders quote cards for download.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"time"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ziadkadry99/quotegen/internal/docstore"
)

// Card is the content drawn on an exported image.
type Card struct {
	Quote string
	Topic string
}

// Footer returns the caption printed under the quote.
func (c Card) Footer() string {
	return "AI Generated • " + c.Topic
}

// Filename returns the download name for a card about topic created at now.
func Filename(topic string, now time.Time) string {
	return fmt.Sprintf("%s-%d.png", safeName(topic, "quote"), now.UnixMilli())
}

// RecordFilename names a card exported in bulk. The record id keeps two
// records with the same topic and millisecond from sharing a file.
func RecordFilename(r docstore.Record) string {
	return fmt.Sprintf("%s-%d-%s.png", safeName(r.Topic, "quote"), r.Timestamp.UnixMilli(), safeName(r.ID, "unsaved"))
}

func safeName(s, fallback string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || unicode.IsControl(r):
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	if name == "" {
		return fallback
	}
	return name
}

const (
	cardWidth  = 640
	margin     = 40
	lineHeight = 18
)

var (
	background = color.RGBA{R: 0xff, G: 0xf8, B: 0xe1, A: 0xff}
	ink        = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff}
	muted      = color.RGBA{R: 0x75, G: 0x75, B: 0x75, A: 0xff}
)

// RenderPNG draws the card and writes it to w as PNG.
func RenderPNG(w io.Writer, c Card) error {
	face := basicfont.Face7x13
	advance := face.Advance
	perLine := (cardWidth - 2*margin) / advance

	var lines []string
	for _, para := range strings.Split(strings.TrimSpace(c.Quote), "\n") {
		lines = append(lines, Wrap(para, perLine)...)
	}

	height := 2*margin + (len(lines)+2)*lineHeight
	img := image.NewRGBA(image.Rect(0, 0, cardWidth, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: face}
	y := margin + face.Ascent
	for _, line := range lines {
		d.Dot = fixed.P(margin, y)
		d.DrawString(line)
		y += lineHeight
	}

	d.Src = image.NewUniform(muted)
	d.Dot = fixed.P(margin, y+lineHeight)
	d.DrawString(c.Footer())

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding card: %w", err)
	}
	return nil
}

// Wrap breaks s into lines of at most width runes, splitting on spaces
// where possible. An empty s yields one empty line.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var (
		lines []string
		cur   []rune
	)
	for _, word := range words {
		wr := []rune(word)
		for len(wr) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(wr[:width]))
			wr = wr[width:]
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, wr...)
		case len(cur)+1+len(wr) <= width:
			cur = append(cur, ' ')
			cur = append(cur, wr...)
		default:
			lines = append(lines, string(cur))
			cur = append([]rune(nil), wr...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
