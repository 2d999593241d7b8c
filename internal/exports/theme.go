package exports

import "github.com/signintech/gopdf"

type RGB struct {
	R, G, B uint8
}

type Organization struct {
	Name         string
	LogoLines    []string
	AddressLines []string
	Title        string
}

// Theme fixes every measurement the layout uses. All lengths are points on
// an A4 page.
type Theme struct {
	PageSize gopdf.Rect

	MarginLeft     float64
	MarginRight    float64
	MarginTop      float64
	RunningHeaderY float64
	BottomLimit    float64

	Primary   RGB
	Secondary RGB
	Accent    RGB
	LightGray RGB
	Muted     RGB
	Black     RGB
	White     RGB

	TitleSize      float64
	SectionSize    float64
	SubSectionSize float64
	BodySize       float64
	SmallSize      float64
	TinySize       float64

	RowHeight        float64
	WrapLineHeight   float64
	SectionGap       float64
	SectionAdvance   float64
	SubSectionGap    float64
	LabelWidth       float64
	WrapThreshold    int
	ParagraphWidth   int
	ParagraphLeading float64

	SignatureBoxWidth  float64
	SignatureBoxHeight float64
	SignaturePadding   float64

	Organization Organization
}

func DefaultTheme() Theme {
	return Theme{
		PageSize: *gopdf.PageSizeA4,

		MarginLeft:     56,
		MarginRight:    56,
		MarginTop:      72,
		RunningHeaderY: 36,
		BottomLimit:    780,

		Primary:   RGB{0, 102, 204},
		Secondary: RGB{51, 51, 51},
		Accent:    RGB{255, 193, 7},
		LightGray: RGB{245, 245, 245},
		Muted:     RGB{128, 128, 128},
		Black:     RGB{0, 0, 0},
		White:     RGB{255, 255, 255},

		TitleSize:      16,
		SectionSize:    13,
		SubSectionSize: 11,
		BodySize:       10,
		SmallSize:      8,
		TinySize:       7,

		RowHeight:        16,
		WrapLineHeight:   12,
		SectionGap:       14,
		SectionAdvance:   24,
		SubSectionGap:    18,
		LabelWidth:       200,
		WrapThreshold:    40,
		ParagraphWidth:   100,
		ParagraphLeading: 11,

		SignatureBoxWidth:  240,
		SignatureBoxHeight: 80,
		SignaturePadding:   6,

		Organization: Organization{
			Name:      "Liberty Place Property Management",
			LogoLines: []string{"LIBERTY", "PLACE"},
			AddressLines: []string{
				"122 East 42nd Street, Suite 1903, New York, NY 10168",
				"Tel: (646) 545-6700 | Fax: (646) 304-2255",
				"Leasing Direct Line: (646) 545-6700",
			},
			Title: "RENTAL APPLICATION",
		},
	}
}

func (t Theme) ContentWidth() float64 {
	return t.PageSize.W - t.MarginLeft - t.MarginRight
}

func (t Theme) ValueX() float64 {
	return t.MarginLeft + t.LabelWidth
}
