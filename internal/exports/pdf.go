package exports

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/libertyplace/rentapp/internal"
	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

var fontFamilies = map[FontStyle]struct {
	name string
	ttf  []byte
}{
	Regular: {"go-regular", goregular.TTF},
	Bold:    {"go-bold", gobold.TTF},
	Italic:  {"go-italic", goitalic.TTF},
}

// PDFGenerator replays a laid out Document onto a gopdf page stream.
type PDFGenerator struct {
	pdf   *gopdf.GoPdf
	theme Theme
	log   *internal.Logger
	mutex sync.Mutex
}

func NewPDFGenerator(theme Theme, log *internal.Logger) (*PDFGenerator, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: theme.PageSize,
	})

	for _, style := range []FontStyle{Regular, Bold, Italic} {
		f := fontFamilies[style]
		if err := pdf.AddTTFFontData(f.name, f.ttf); err != nil {
			return nil, fmt.Errorf("failed to load font %s: %w", f.name, err)
		}
	}
	return &PDFGenerator{pdf: pdf, theme: theme, log: internal.OrDefault(log)}, nil
}

// Render draws every page of doc and returns the encoded PDF.
func (p *PDFGenerator) Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.WriteTo(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *PDFGenerator) WriteTo(w io.Writer, doc *Document) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.pdf == nil {
		return errors.New("PDF not initialized")
	}

	p.pdf.SetInfo(gopdf.PdfInfo{
		Title:        doc.Info.Title,
		Author:       doc.Info.Author,
		Subject:      doc.Info.Subject,
		Creator:      doc.Info.Creator,
		Producer:     doc.Info.Creator,
		CreationDate: doc.Info.GeneratedAt,
	})

	for _, page := range doc.Pages {
		p.pdf.AddPage()
		for _, op := range page.Ops {
			if err := p.draw(op); err != nil {
				return fmt.Errorf("page %d: %w", page.Number, err)
			}
		}
	}

	if _, err := p.pdf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (p *PDFGenerator) draw(op Op) error {
	switch op.Kind {
	case OpText:
		return p.drawText(op)
	case OpRect:
		p.setColor(op.Style, op.Color)
		p.pdf.SetLineWidth(op.LineWidth)
		p.pdf.RectFromUpperLeftWithStyle(op.X, op.Y, op.W, op.H, op.Style)
	case OpLine:
		p.pdf.SetStrokeColor(op.Color.R, op.Color.G, op.Color.B)
		p.pdf.SetLineWidth(op.LineWidth)
		p.pdf.Line(op.X, op.Y, op.X2, op.Y2)
	case OpImage:
		p.drawImage(op)
	}
	return nil
}

func (p *PDFGenerator) setColor(style string, c RGB) {
	if style == "D" {
		p.pdf.SetStrokeColor(c.R, c.G, c.B)
		return
	}
	p.pdf.SetFillColor(c.R, c.G, c.B)
}

func (p *PDFGenerator) drawText(op Op) error {
	text := printable(op.Text)
	if text == "" {
		return nil
	}
	if err := p.pdf.SetFont(fontFamilies[op.Font].name, "", op.Size); err != nil {
		return fmt.Errorf("failed to set font: %w", err)
	}
	p.pdf.SetTextColor(op.Color.R, op.Color.G, op.Color.B)

	x := op.X
	if op.Align != AlignLeft {
		width, err := p.pdf.MeasureTextWidth(text)
		if err != nil {
			return fmt.Errorf("failed to measure %q: %w", text, err)
		}
		if op.Align == AlignCenter {
			x -= width / 2
		} else {
			x -= width
		}
	}

	p.pdf.SetXY(x, op.Y)
	if err := p.pdf.Text(text); err != nil {
		return fmt.Errorf("failed to draw %q: %w", text, err)
	}
	return nil
}

// drawImage never fails the render; a bad image leaves its box empty.
func (p *PDFGenerator) drawImage(op Op) {
	if len(op.Image) == 0 {
		p.log.Warn("Skipping empty image data for %s", op.Label)
		return
	}
	holder, err := gopdf.ImageHolderByBytes(op.Image)
	if err != nil {
		p.log.Warn("Failed to create PDF image holder: %v", err)
		return
	}
	if err := p.pdf.ImageByHolder(holder, op.X, op.Y, &gopdf.Rect{W: op.W, H: op.H}); err != nil {
		p.log.Warn("Failed to add image to PDF: %v", err)
	}
}

func (p *PDFGenerator) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.pdf != nil {
		p.pdf.Close()
		p.pdf = nil
	}
}
