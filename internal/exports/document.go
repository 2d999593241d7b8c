package exports

import (
	"strings"
	"time"
)

type OpKind int

const (
	OpText OpKind = iota
	OpRect
	OpLine
	OpImage
)

type FontStyle int

const (
	Regular FontStyle = iota
	Bold
	Italic
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Tag classifies an op so callers can inspect a laid out document without
// parsing the PDF.
type Tag string

const (
	TagRunningHeader Tag = "running-header"
	TagBranding      Tag = "branding"
	TagSection       Tag = "section"
	TagSubSection    Tag = "subsection"
	TagLabel         Tag = "label"
	TagValue         Tag = "value"
	TagBullet        Tag = "bullet"
	TagParagraph     Tag = "paragraph"
	TagDetails       Tag = "details"
	TagSignature     Tag = "signature"
	TagFooter        Tag = "footer"
	TagDecoration    Tag = "decoration"
)

// Op is one drawing primitive. For text, Y is the baseline; for rects and
// images, the upper left corner.
type Op struct {
	Kind  OpKind
	Tag   Tag
	X, Y  float64
	W, H  float64
	X2    float64
	Y2    float64
	Text  string
	Font  FontStyle
	Size  float64
	Color RGB
	Align Align
	// Style is the gopdf rect style: "F" fill, "D" stroke.
	Style     string
	LineWidth float64
	Image     []byte

	// Label is set on value lines and names the field they belong to.
	Label     string
	Highlight bool
	// Stamped marks ops whose content depends on the generation time.
	Stamped bool
}

type Page struct {
	Number int
	Ops    []Op
}

type Info struct {
	Title       string
	Author      string
	Subject     string
	Creator     string
	GeneratedAt time.Time
}

// Document is the device independent result of layout.
type Document struct {
	Info  Info
	Pages []Page
}

func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Texts returns every text op in drawing order.
func (d *Document) Texts() []Op {
	var out []Op
	for _, p := range d.Pages {
		for _, op := range p.Ops {
			if op.Kind == OpText {
				out = append(out, op)
			}
		}
	}
	return out
}

func (d *Document) ByTag(tag Tag) []Op {
	var out []Op
	for _, p := range d.Pages {
		for _, op := range p.Ops {
			if op.Tag == tag {
				out = append(out, op)
			}
		}
	}
	return out
}

// Field returns the value lines printed for label, in order.
func (d *Document) Field(label string) []Op {
	var out []Op
	for _, op := range d.ByTag(TagValue) {
		if op.Label == label {
			out = append(out, op)
		}
	}
	return out
}

// FieldValue joins the value lines printed for label with single spaces.
func (d *Document) FieldValue(label string) string {
	lines := d.Field(label)
	parts := make([]string, 0, len(lines))
	for _, op := range lines {
		parts = append(parts, op.Text)
	}
	return strings.Join(parts, " ")
}

func (d *Document) SectionTitles() []string {
	var out []string
	for _, op := range d.ByTag(TagSection) {
		out = append(out, op.Text)
	}
	return out
}

// PlainText is every text op joined by newlines.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for _, op := range d.Texts() {
		sb.WriteString(op.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
