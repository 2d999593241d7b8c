package exports

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	return NewComposer(
		WithLogger(internal.NewTestLogger(t)),
		WithClock(func() time.Time { return fixedTime }),
	)
}

func signaturePNG(t *testing.T, blank bool) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 90))
	if !blank {
		for x := 20; x < 280; x++ {
			img.Set(x, 45+(x%7)-3, color.Black)
			img.Set(x, 46+(x%7)-3, color.Black)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func person(name string) *models.Person {
	return &models.Person{
		Name:            name,
		Relationship:    "Spouse",
		DOB:             models.ParseDate("1990-04-12"),
		SSN:             "123-45-6789",
		Phone:           "(212) 555-0101",
		Email:           strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		License:         "D1234567",
		LicenseState:    "NY",
		Address:         "55 Water Street",
		City:            "Brooklyn",
		State:           "NY",
		Zip:             "11201",
		LengthAtAddress: "3 years",
		LandlordName:    "Acme Holdings",
		CurrentRent:     models.NewMoney(2100),
		ReasonForMoving: "Closer to work",
		Employer:        "Northwind Traders",
		Position:        "Analyst",
		EmploymentStart: models.ParseDate("2019-09-01"),
		Income:          models.NewMoney(85000),
		OtherIncome:     models.NewMoney(1200),
		BankRecords: []models.BankRecord{
			{BankName: "First Bank", AccountType: "Checking", AccountNumber: "000123456789"},
			{BankName: "Second Bank", AccountType: "Savings", AccountNumber: "98765", Balance: models.NewMoney(15250)},
		},
	}
}

func fullBundle(t *testing.T) *models.Bundle {
	applicant := person("Jane Doe")
	generated := fixedTime
	b := &models.Bundle{
		Application: models.Application{
			BuildingAddress:           "200 East 10th Street",
			ApartmentNumber:           "4B",
			MoveInDate:                models.ParseDate("2025-05-01"),
			MonthlyRent:               models.NewMoney(2500),
			ApartmentType:             "1 Bedroom",
			HowDidYouHear:             "StreetEasy",
			LandlordTenantLegalAction: "yes",
			BrokenLease:               "no",
		},
		Applicant:   *applicant,
		CoApplicant: person("John Doe"),
		Guarantor:   person("Mary Major"),
		Signatures: models.Signatures{
			Applicant:   signaturePNG(t, false),
			CoApplicant: signaturePNG(t, false),
			Guarantor:   signaturePNG(t, false),
		},
		Occupants: []models.Occupant{
			{Name: "Sam Doe", Relationship: "Child", DOB: models.ParseDate("2015-02-03"), Age: "10"},
			{Name: "Alex Doe", Relationship: "Child", Age: "7"},
		},
		GeneratedAt: &generated,
	}
	b.Application.LandlordTenantLegalActionExplanation = "Dispute over a security deposit in 2018, settled."
	return b
}

func minimalBundle() *models.Bundle {
	return &models.Bundle{
		Application: models.Application{
			BuildingAddress: "200 East 10th Street",
			MoveInDate:      models.ParseDate("2025-05-01"),
			MonthlyRent:     models.NewMoney(2500),
		},
		Applicant: models.Person{Name: "Jane Doe"},
	}
}

func TestComposeProducesPDF(t *testing.T) {
	c := newTestComposer(t)

	out, err := c.Compose(fullBundle(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 1000)
}

func TestComposeDataURI(t *testing.T) {
	c := newTestComposer(t)

	uri, err := c.ComposeDataURI(minimalBundle())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:application/pdf;filename=generated.pdf;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:application/pdf;filename=generated.pdf;base64,"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
}

func TestMissingOptionalFieldsPrintPlaceholder(t *testing.T) {
	c := newTestComposer(t)
	doc := c.Layout(minimalBundle())

	labels := []string{
		"Apartment Number", "Apartment Type", "How did you hear about us",
		"Date of Birth", "Social Security Number", "Phone Number", "Email Address",
		"Driver's License", "License State", "Street Address", "City", "State",
		"ZIP Code", "Length at Address", "Current Landlord's Name", "Current Monthly Rent",
		"Reason for Moving", "Current Employer", "Position/Title", "Employment Start Date",
		"Annual Income", "Other Income", "Other Income Source",
		"Bank Name", "Account Type", "Account Number",
	}
	for _, label := range labels {
		assert.Equal(t, Placeholder, doc.FieldValue(label), label)
	}

	answers := doc.Field("Answer")
	require.Len(t, answers, 2)
	for _, a := range answers {
		assert.Equal(t, Placeholder, a.Text)
	}

	_, err := c.Compose(minimalBundle())
	assert.NoError(t, err)
}

func TestEmptyBundleStillComposes(t *testing.T) {
	c := newTestComposer(t)

	doc := c.Layout(&models.Bundle{})
	assert.Equal(t, Placeholder, doc.FieldValue("Full Name"))
	assert.Equal(t, Placeholder, doc.FieldValue("Monthly Rent"))
	assert.Equal(t, Placeholder, doc.FieldValue("Move-in Date"))

	_, err := c.Compose(&models.Bundle{})
	assert.NoError(t, err)
}

func TestLongValuesWrap(t *testing.T) {
	c := newTestComposer(t)

	b := minimalBundle()
	b.Application.BuildingAddress = "The Residences at Liberty Place, 1200 Avenue of the Americas, Floor 7"
	b.Application.ApartmentType = strings.Repeat("x", c.Theme().WrapThreshold)
	doc := c.Layout(b)

	lines := doc.Field("Building Address")
	require.Greater(t, len(lines), 1)
	for i, line := range lines {
		assert.LessOrEqual(t, len([]rune(line.Text)), c.Theme().WrapThreshold)
		assert.Equal(t, lines[0].X, line.X)
		if i > 0 {
			assert.Greater(t, line.Y, lines[i-1].Y)
		}
	}

	assert.Len(t, doc.Field("Apartment Type"), 1)
}

func TestMonthlyRentHighlighted(t *testing.T) {
	doc := newTestComposer(t).Layout(minimalBundle())

	rent := doc.Field("Monthly Rent")
	require.Len(t, rent, 1)
	assert.Equal(t, "$2500", rent[0].Text)
	assert.True(t, rent[0].Highlight)
	assert.Equal(t, Bold, rent[0].Font)
	assert.Equal(t, DefaultTheme().Primary, rent[0].Color)

	assert.Contains(t, doc.PlainText(), "$2500")
}

func TestIncomeGroupedAndHighlighted(t *testing.T) {
	b := minimalBundle()
	b.Applicant.Income = models.NewMoney(85000)
	doc := newTestComposer(t).Layout(b)

	income := doc.Field("Annual Income")
	require.Len(t, income, 1)
	assert.Equal(t, "$85,000", income[0].Text)
	assert.True(t, income[0].Highlight)
}

func TestSingleApplicantSections(t *testing.T) {
	doc := newTestComposer(t).Layout(minimalBundle())
	titles := doc.SectionTitles()

	count := func(title string) int {
		n := 0
		for _, s := range titles {
			if s == title {
				n++
			}
		}
		return n
	}

	assert.Equal(t, 1, count("Primary Applicant Information"))
	assert.Equal(t, 1, count("Primary Applicant - Employment & Financial Information"))
	assert.Zero(t, count("Co-Applicant Information"))
	assert.Zero(t, count("Guarantor Information"))
	assert.Zero(t, count("Other Occupants (Not Applicants)"))
	assert.Zero(t, count("Primary Applicant Signature"))
}

func TestSectionOrder(t *testing.T) {
	doc := newTestComposer(t).Layout(fullBundle(t))

	assert.Equal(t, []string{
		"Application Instructions",
		"Application Requirements",
		"Application Information",
		"Primary Applicant Information",
		"Primary Applicant - Employment & Financial Information",
		"Co-Applicant Information",
		"Co-Applicant - Employment & Financial Information",
		"Guarantor Information",
		"Guarantor - Employment & Financial Information",
		"Legal Questions",
		"Other Occupants (Not Applicants)",
		"PLEASE READ CAREFULLY BEFORE SIGNING",
		"Primary Applicant Signature",
		"Co-Applicant Signature",
		"Guarantor Signature",
	}, doc.SectionTitles())
}

func TestMultiPageRunningHeader(t *testing.T) {
	theme := DefaultTheme()
	doc := newTestComposer(t).Layout(fullBundle(t))

	require.Greater(t, doc.PageCount(), 1)
	for i, page := range doc.Pages {
		assert.Equal(t, i+1, page.Number)
		if i == 0 {
			require.NotEmpty(t, page.Ops)
			assert.NotEqual(t, TagRunningHeader, page.Ops[0].Tag)
			continue
		}
		require.GreaterOrEqual(t, len(page.Ops), 2)
		assert.Equal(t, TagRunningHeader, page.Ops[0].Tag)
		assert.Equal(t, "Page "+strconv.Itoa(page.Number), page.Ops[0].Text)
		assert.Equal(t, TagRunningHeader, page.Ops[1].Tag)
		assert.Equal(t, theme.Organization.Name, page.Ops[1].Text)
	}
}

func TestTextStaysAboveBottomLimit(t *testing.T) {
	theme := DefaultTheme()
	doc := newTestComposer(t).Layout(fullBundle(t))

	for _, page := range doc.Pages {
		for _, op := range page.Ops {
			if op.Kind == OpText {
				assert.LessOrEqual(t, op.Y, theme.BottomLimit, "%q on page %d", op.Text, page.Number)
			}
		}
	}
}

func TestAccountNumbersMasked(t *testing.T) {
	doc := newTestComposer(t).Layout(fullBundle(t))

	assert.Equal(t, "****6789", doc.Field("Account 1: Account Number")[0].Text)
	assert.Equal(t, "****8765", doc.Field("Account 2: Account Number")[0].Text)
	assert.NotContains(t, doc.PlainText(), "000123456789")
	assert.Equal(t, "$15,250", doc.Field("Account 2: Balance")[0].Text)
}

func TestLegalDetailsOnlyWhenYes(t *testing.T) {
	doc := newTestComposer(t).Layout(fullBundle(t))

	details := doc.ByTag(TagDetails)
	require.NotEmpty(t, details)
	assert.True(t, strings.HasPrefix(details[0].Text, "Details: Dispute"))
	assert.Equal(t, Italic, details[0].Font)

	var joined []string
	for _, d := range details {
		joined = append(joined, d.Text)
	}
	assert.NotContains(t, strings.Join(joined, " "), "broken")
}

func TestSignatureEmbedded(t *testing.T) {
	b := minimalBundle()
	b.Signatures.Applicant = signaturePNG(t, false)
	doc := newTestComposer(t).Layout(b)

	var images []Op
	for _, op := range doc.ByTag(TagSignature) {
		if op.Kind == OpImage {
			images = append(images, op)
		}
	}
	require.Len(t, images, 1)
	assert.True(t, bytes.HasPrefix(images[0].Image, []byte{0xFF, 0xD8}))
	assert.LessOrEqual(t, images[0].W, DefaultTheme().SignatureBoxWidth)
	assert.LessOrEqual(t, images[0].H, DefaultTheme().SignatureBoxHeight)
	assert.NotContains(t, doc.PlainText(), "No signature provided")
}

func TestMalformedSignatureDegrades(t *testing.T) {
	tests := []struct {
		name      string
		signature string
	}{
		{name: "not base64", signature: "data:image/png;base64,@@not-base64@@"},
		{name: "not an image", signature: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
		{name: "blank pad", signature: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := tt.signature
			if sig == "" {
				sig = signaturePNG(t, true)
			}
			b := minimalBundle()
			b.Signatures.Applicant = sig
			c := newTestComposer(t)

			doc := c.Layout(b)
			assert.Contains(t, doc.SectionTitles(), "Primary Applicant Signature")
			assert.Contains(t, doc.PlainText(), "No signature provided")

			_, err := c.Compose(b)
			assert.NoError(t, err)
		})
	}
}

func TestComposeDeterministic(t *testing.T) {
	c := newTestComposer(t)

	first, err := c.Compose(fullBundle(t))
	require.NoError(t, err)
	second, err := c.Compose(fullBundle(t))
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "identical bundles must render identical bytes")
}

func TestOnlyStampedOpsDependOnTime(t *testing.T) {
	c := newTestComposer(t)

	a := fullBundle(t)
	b := fullBundle(t)
	later := fixedTime.Add(49 * time.Hour)
	b.GeneratedAt = &later

	docA, docB := c.Layout(a), c.Layout(b)
	require.Equal(t, docA.PageCount(), docB.PageCount())

	stamped := 0
	for i := range docA.Pages {
		opsA, opsB := docA.Pages[i].Ops, docB.Pages[i].Ops
		require.Equal(t, len(opsA), len(opsB))
		for j := range opsA {
			if opsA[j].Stamped {
				stamped++
				assert.True(t, opsB[j].Stamped)
				continue
			}
			assert.Equal(t, opsA[j], opsB[j])
		}
	}
	assert.Greater(t, stamped, 0)
}

func TestComposeConcurrent(t *testing.T) {
	c := newTestComposer(t)
	want, err := c.Compose(fullBundle(t))
	require.NoError(t, err)

	bundles := make([]*models.Bundle, 4)
	for i := range bundles {
		bundles[i] = fullBundle(t)
	}

	var wg sync.WaitGroup
	results := make([][]byte, len(bundles))
	for i := range bundles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Compose(bundles[i])
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.True(t, bytes.Equal(want, got))
	}
}

func TestOrganizationFromTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Organization.Name = "Example Realty"
	c := NewComposer(WithTheme(theme), WithLogger(internal.NewNopLogger()))

	doc := c.Layout(minimalBundle())
	text := doc.PlainText()
	assert.Contains(t, text, "Example Realty")
	assert.Contains(t, text, "Example Realty - Rental Application")
	assert.Equal(t, "Example Realty", doc.Info.Author)
}
