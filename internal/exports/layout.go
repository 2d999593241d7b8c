package exports

import "strconv"

// layout is a single-pass cursor over an ever growing list of pages.
type layout struct {
	theme Theme
	doc   *Document
	y     float64
}

func newLayout(theme Theme, info Info) *layout {
	l := &layout{theme: theme, doc: &Document{Info: info}}
	l.doc.Pages = append(l.doc.Pages, Page{Number: 1})
	l.y = theme.MarginTop
	return l
}

func (l *layout) page() *Page {
	return &l.doc.Pages[len(l.doc.Pages)-1]
}

func (l *layout) push(op Op) {
	p := l.page()
	p.Ops = append(p.Ops, op)
}

// ensure starts a new page when the next height points would cross the
// bottom limit.
func (l *layout) ensure(height float64) {
	if l.y+height > l.theme.BottomLimit {
		l.newPage()
	}
}

func (l *layout) newPage() {
	n := len(l.doc.Pages) + 1
	l.doc.Pages = append(l.doc.Pages, Page{Number: n})
	l.runningHeader(n)
	l.y = l.theme.MarginTop
}

func (l *layout) runningHeader(n int) {
	t := l.theme
	l.push(Op{
		Kind: OpText, Tag: TagRunningHeader,
		X: t.MarginLeft, Y: t.RunningHeaderY,
		Text: "Page " + strconv.Itoa(n), Font: Regular, Size: t.SmallSize, Color: t.Muted,
	})
	l.push(Op{
		Kind: OpText, Tag: TagRunningHeader,
		X: t.PageSize.W - t.MarginRight, Y: t.RunningHeaderY,
		Text: t.Organization.Name, Font: Regular, Size: t.SmallSize, Color: t.Muted, Align: AlignRight,
	})
	l.push(Op{
		Kind: OpLine, Tag: TagRunningHeader,
		X: t.MarginLeft, Y: t.RunningHeaderY + 6, X2: t.PageSize.W - t.MarginRight, Y2: t.RunningHeaderY + 6,
		Color: t.LightGray, LineWidth: 0.5,
	})
}

func (l *layout) advance(dy float64) {
	l.y += dy
}

func (l *layout) text(op Op) {
	op.Kind = OpText
	l.push(op)
}

func (l *layout) rect(x, y, w, h float64, color RGB, style string, tag Tag) {
	l.push(Op{Kind: OpRect, Tag: tag, X: x, Y: y, W: w, H: h, Color: color, Style: style, LineWidth: 1})
}

func (l *layout) line(x1, y1, x2, y2 float64, color RGB, width float64, tag Tag) {
	l.push(Op{Kind: OpLine, Tag: tag, X: x1, Y: y1, X2: x2, Y2: y2, Color: color, LineWidth: width})
}

// section prints a shaded section title. The title is kept together with at
// least one following row.
func (l *layout) section(title string) {
	t := l.theme
	l.advance(t.SectionGap)
	l.ensure(t.SectionAdvance + t.RowHeight)

	l.rect(t.MarginLeft-4, l.y-t.SectionSize, t.ContentWidth()+8, t.SectionSize+8, t.LightGray, "F", TagDecoration)
	l.text(Op{
		Tag: TagSection, X: t.MarginLeft, Y: l.y,
		Text: title, Font: Bold, Size: t.SectionSize, Color: t.Primary,
	})
	l.advance(t.SectionAdvance)
}

func (l *layout) subSection(title string) {
	t := l.theme
	l.ensure(t.SubSectionGap + t.RowHeight)
	l.text(Op{
		Tag: TagSubSection, X: t.MarginLeft, Y: l.y,
		Text: title, Font: Bold, Size: t.SubSectionSize, Color: t.Secondary,
	})
	l.advance(t.SubSectionGap)
}

// field prints a label and its value on a grid. Values longer than the
// wrap threshold continue on following lines under the value column.
func (l *layout) field(label, value string, highlight bool) {
	t := l.theme
	value = display(value)

	lines := wrapText(value, t.WrapThreshold)
	if len(lines) == 0 {
		lines = []string{Placeholder}
	}
	l.ensure(t.RowHeight + float64(len(lines)-1)*t.WrapLineHeight)

	l.text(Op{
		Tag: TagLabel, X: t.MarginLeft, Y: l.y,
		Text: label + ":", Font: Bold, Size: t.BodySize - 1, Color: t.Secondary,
	})

	font, color := Regular, t.Black
	if highlight {
		font, color = Bold, t.Primary
	}
	for i, line := range lines {
		l.text(Op{
			Tag: TagValue, X: t.ValueX(), Y: l.y + float64(i)*t.WrapLineHeight,
			Text: line, Font: font, Size: t.BodySize, Color: color,
			Label: label, Highlight: highlight,
		})
	}
	l.advance(t.RowHeight + float64(len(lines)-1)*t.WrapLineHeight)
}

// paragraph wraps free text to the paragraph width. Each line is checked
// against the page bottom on its own so long text flows across pages.
func (l *layout) paragraph(text string, x float64, font FontStyle, size float64, color RGB, tag Tag) {
	t := l.theme
	for _, line := range wrapText(text, t.ParagraphWidth) {
		l.ensure(t.ParagraphLeading)
		l.text(Op{Tag: tag, X: x, Y: l.y, Text: line, Font: font, Size: size, Color: color})
		l.advance(t.ParagraphLeading)
	}
}

func (l *layout) bullets(items []string) {
	t := l.theme
	for _, item := range items {
		lines := wrapText(item, t.ParagraphWidth-4)
		for i, line := range lines {
			l.ensure(t.ParagraphLeading)
			if i == 0 {
				l.text(Op{Tag: TagBullet, X: t.MarginLeft + 6, Y: l.y, Text: "•", Font: Regular, Size: t.SmallSize + 1, Color: t.Black})
			}
			l.text(Op{Tag: TagBullet, X: t.MarginLeft + 16, Y: l.y, Text: line, Font: Regular, Size: t.SmallSize + 1, Color: t.Black})
			l.advance(t.ParagraphLeading)
		}
	}
}

func (l *layout) document() *Document {
	return l.doc
}
