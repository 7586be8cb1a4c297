// Package pptx writes small PresentationML decks made of text boxes and
// tables, and reads their text back.
//
// Shapes whose name starts with ContentPrefix hold report content; every other
// shape is decoration. ExtractText relies on that naming.
package pptx

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

// Shape name prefixes.
const (
	ContentPrefix = "content"
	ChromePrefix  = "chrome"
)

// 16:9 slide size in EMU.
const (
	SlideWidth  int64 = 12192000
	SlideHeight int64 = 6858000
)

const emuPerInch = 914400

// Inches converts inches to EMU.
func Inches(v float64) int64 {
	return int64(v * emuPerInch)
}

// Box positions a shape on the slide, in EMU.
type Box struct {
	X, Y, W, H int64
}

// Rect builds a Box from inch values.
func Rect(x, y, w, h float64) Box {
	return Box{X: Inches(x), Y: Inches(y), W: Inches(w), H: Inches(h)}
}

type Align string

const (
	AlignLeft   Align = "l"
	AlignCenter Align = "ctr"
	AlignRight  Align = "r"
)

// Paragraph is one run of text. Size is in points; Color is RRGGBB.
type Paragraph struct {
	Text   string
	Size   float64
	Bold   bool
	Color  string
	Bullet bool
	Align  Align
}

// TextBox is a rectangle holding paragraphs.
type TextBox struct {
	Name       string
	Box        Box
	Fill       string
	Line       string
	Paragraphs []Paragraph
	// Anchor is the vertical text anchor: t, ctr or b.
	Anchor string
}

// Table is a grid of plain text cells. When Header is set it becomes the
// table's first row and is treated as decoration.
type Table struct {
	Name       string
	Box        Box
	Header     []string
	Rows       [][]string
	HeaderFill string
	HeaderText string
	FontSize   float64
}

type shape interface {
	writeXML(b *strings.Builder, id int)
}

// Slide is one page of a deck. Background is RRGGBB or empty for the master's.
type Slide struct {
	Background string
	shapes     []shape
}

func (s *Slide) AddText(t TextBox) {
	s.shapes = append(s.shapes, t)
}

func (s *Slide) AddTable(t Table) {
	s.shapes = append(s.shapes, t)
}

// Len reports how many shapes the slide holds.
func (s *Slide) Len() int { return len(s.shapes) }

// Deck is an ordered list of slides plus document properties.
type Deck struct {
	Title   string
	Author  string
	Created time.Time
	Slides  []*Slide
}

func New(title, author string) *Deck {
	return &Deck{Title: title, Author: author}
}

// AddSlide appends an empty slide and returns it.
func (d *Deck) AddSlide(background string) *Slide {
	s := &Slide{Background: background}
	d.Slides = append(d.Slides, s)
	return s
}

// Bytes returns the packaged deck.
func (d *Deck) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write packages the deck as a .pptx archive.
func (d *Deck) Write(w io.Writer) error {
	if len(d.Slides) == 0 {
		return fmt.Errorf("pptx: deck has no slides")
	}
	created := d.Created
	if created.IsZero() {
		created = time.Now()
	}
	return writePackage(w, d, created.UTC())
}
