package exports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutBreaksBeforeBottom(t *testing.T) {
	theme := DefaultTheme()
	l := newLayout(theme, Info{})

	l.y = theme.BottomLimit - theme.RowHeight/2
	l.field("Building Address", "1 Main Street", false)

	require.Equal(t, 2, l.doc.PageCount())
	page := l.doc.Pages[1]
	assert.Equal(t, "Page 2", page.Ops[0].Text)
	assert.Equal(t, theme.Organization.Name, page.Ops[1].Text)

	values := l.doc.Field("Building Address")
	require.Len(t, values, 1)
	assert.Equal(t, theme.MarginTop, values[0].Y)
	assert.Equal(t, theme.MarginTop+theme.RowHeight, l.y)
}

func TestLayoutKeepsWrappedFieldTogether(t *testing.T) {
	theme := DefaultTheme()
	l := newLayout(theme, Info{})

	l.y = theme.BottomLimit - theme.RowHeight - 1
	l.field("Reason for Moving", "Relocating for a new position with a longer commute than we would like", false)

	lines := l.doc.Field("Reason for Moving")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, 2, l.doc.PageCount())
	assert.Empty(t, l.doc.Pages[0].Ops)
}

func TestParagraphFlowsAcrossPages(t *testing.T) {
	theme := DefaultTheme()
	l := newLayout(theme, Info{})

	l.y = theme.BottomLimit - theme.ParagraphLeading*1.5
	l.paragraph("one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty twenty-one twenty-two twenty-three twenty-four", theme.MarginLeft, Regular, theme.SmallSize, theme.Black, TagParagraph)

	require.Equal(t, 2, l.doc.PageCount())
	assert.Len(t, l.doc.Pages[0].Ops, 1)
	assert.Equal(t, TagParagraph, l.doc.Pages[1].Ops[len(l.doc.Pages[1].Ops)-1].Tag)
}

func TestSectionTitleNotOrphaned(t *testing.T) {
	theme := DefaultTheme()
	l := newLayout(theme, Info{})

	l.y = theme.BottomLimit - theme.SectionGap - theme.SectionAdvance
	l.section("Legal Questions")

	assert.Equal(t, 2, l.doc.PageCount())
	assert.Equal(t, []string{"Legal Questions"}, l.doc.SectionTitles())
	assert.Empty(t, l.doc.Pages[0].Ops)
}
