package exports

import (
	"encoding/base64"
	"time"

	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/libertyplace/rentapp/internal/metrics"
	"github.com/libertyplace/rentapp/internal/models"
)

// DocumentExporter turns an application bundle into a PDF.
type DocumentExporter interface {
	Compose(bundle *models.Bundle) ([]byte, error)
	ComposeDataURI(bundle *models.Bundle) (string, error)
}

// Composer lays out and renders rental applications. It holds no per
// document state, so one Composer may serve concurrent calls.
type Composer struct {
	theme Theme
	log   *internal.Logger
	now   func() time.Time
}

type Option func(*Composer)

func WithTheme(theme Theme) Option {
	return func(c *Composer) { c.theme = theme }
}

func WithLogger(log *internal.Logger) Option {
	return func(c *Composer) { c.log = log }
}

// WithClock sets the time used when a bundle carries no GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

func NewComposer(opts ...Option) *Composer {
	c := &Composer{theme: DefaultTheme(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.log = internal.OrDefault(c.log)
	return c
}

func NewDocumentExporter(opts ...Option) DocumentExporter {
	return NewComposer(opts...)
}

func (c *Composer) Theme() Theme {
	return c.theme
}

// Layout produces the display list for bundle without rendering it.
func (c *Composer) Layout(bundle *models.Bundle) *Document {
	generated := c.now()
	if bundle.GeneratedAt != nil {
		generated = *bundle.GeneratedAt
	}

	org := c.theme.Organization
	l := newLayout(c.theme, Info{
		Title:       org.Title,
		Author:      org.Name,
		Subject:     "Rental application for " + display(bundle.Applicant.Name),
		Creator:     org.Name,
		GeneratedAt: generated,
	})

	l.header(generated)
	l.instructions()
	l.requirements()
	l.applicationInfo(bundle.Application)

	for _, p := range bundle.Participants() {
		l.personalInfo(p.Role, p.Person)
		l.financialInfo(p.Role, p.Person)
	}

	l.legalQuestions(bundle.Application)
	l.occupants(bundle.Occupants)
	l.disclaimer()

	for _, s := range bundle.Signers() {
		img, err := decodeSignature(s.Signature)
		if err != nil {
			c.log.Warn("Signature for %s could not be embedded: %v", s.Role.Title(), err)
			metrics.SignatureFallbacks.Inc()
		}
		l.signature(s.Role, img, generated)
	}

	l.footer(generated)
	return l.document()
}

// Compose lays out bundle and renders it to PDF bytes. Missing or malformed
// optional data never fails composition; only rendering errors do.
func (c *Composer) Compose(bundle *models.Bundle) (out []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.ComposeDuration.Observe(time.Since(start).Seconds())
		metrics.DocumentsComposed.WithLabelValues(metrics.Outcome(err)).Inc()
	}()

	doc := c.Layout(bundle)
	metrics.DocumentPages.Observe(float64(doc.PageCount()))

	gen, err := NewPDFGenerator(c.theme, c.log)
	if err != nil {
		return nil, apperrors.NewRenderError(err)
	}
	defer gen.Close()

	out, err = gen.Render(doc)
	if err != nil {
		return nil, apperrors.NewRenderError(err)
	}
	c.log.Debug("Composed application for %s: %d pages, %d bytes", display(bundle.Applicant.Name), doc.PageCount(), len(out))
	return out, nil
}

// ComposeDataURI returns the PDF as a data:application/pdf URI.
func (c *Composer) ComposeDataURI(bundle *models.Bundle) (string, error) {
	b, err := c.Compose(bundle)
	if err != nil {
		return "", err
	}
	return "data:application/pdf;filename=generated.pdf;base64," + base64.StdEncoding.EncodeToString(b), nil
}
