package exports

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/libertyplace/rentapp/internal/models"
)

const stampLayout = "01/02/2006 03:04 PM"

func (l *layout) header(generated time.Time) {
	t := l.theme
	org := t.Organization
	top := l.y - 24

	l.rect(t.MarginLeft, top, 64, 46, t.Primary, "F", TagBranding)
	for i, word := range org.LogoLines {
		l.text(Op{
			Tag: TagBranding, X: t.MarginLeft + 7, Y: top + 18 + float64(i)*13,
			Text: word, Font: Bold, Size: t.TinySize + 2, Color: t.White,
		})
	}

	x := t.MarginLeft + 80
	l.text(Op{Tag: TagBranding, X: x, Y: top + 16, Text: org.Name, Font: Bold, Size: t.TitleSize, Color: t.Primary})
	for i, line := range org.AddressLines {
		l.text(Op{
			Tag: TagBranding, X: x, Y: top + 30 + float64(i)*10,
			Text: line, Font: Regular, Size: t.SmallSize, Color: t.Secondary,
		})
	}
	l.y = top + 30 + float64(len(org.AddressLines))*10 + 12

	l.rect(t.MarginLeft, l.y, t.ContentWidth(), 26, t.Accent, "F", TagBranding)
	l.text(Op{
		Tag: TagBranding, X: t.PageSize.W / 2, Y: l.y + 18,
		Text: org.Title, Font: Bold, Size: t.TitleSize - 2, Color: t.White, Align: AlignCenter,
	})
	l.advance(26 + 18)

	l.text(Op{
		Tag: TagBranding, X: t.MarginLeft, Y: l.y,
		Text: "Application Date: " + generated.Format("01/02/2006"), Font: Regular, Size: t.SmallSize + 1, Color: t.Secondary,
		Stamped: true,
	})
	l.text(Op{
		Tag: TagBranding, X: t.PageSize.W - t.MarginRight, Y: l.y,
		Text: "Generated: " + generated.Format(stampLayout), Font: Regular, Size: t.SmallSize + 1, Color: t.Secondary,
		Align: AlignRight, Stamped: true,
	})
	l.advance(t.RowHeight)
}

func (l *layout) instructions() {
	t := l.theme
	l.section("Application Instructions")
	l.paragraph(
		fmt.Sprintf("Thank you for choosing %s for your residential needs.", t.Organization.Name),
		t.MarginLeft, Regular, t.SmallSize+1, t.Secondary, TagParagraph,
	)
	l.advance(4)

	for _, group := range []struct {
		title string
		items []string
	}{
		{"IMPORTANT REQUIREMENTS:", importantRequirements},
		{"REQUIRED DOCUMENTS:", requiredDocuments},
	} {
		l.ensure(t.ParagraphLeading * 2)
		l.text(Op{Tag: TagSubSection, X: t.MarginLeft, Y: l.y, Text: group.title, Font: Bold, Size: t.SmallSize + 1, Color: t.Primary})
		l.advance(t.ParagraphLeading + 2)
		l.bullets(group.items)
		l.advance(4)
	}
}

func (l *layout) requirements() {
	l.section("Application Requirements")
	l.bullets(requirementsSummary)
}

func (l *layout) applicationInfo(app models.Application) {
	l.section("Application Information")

	hear := app.HowDidYouHear
	if strings.EqualFold(strings.TrimSpace(hear), "other") && strings.TrimSpace(app.HowDidYouHearOther) != "" {
		hear = "Other: " + app.HowDidYouHearOther
	}

	l.field("Building Address", app.BuildingAddress, false)
	l.field("Apartment Number", app.ApartmentNumber, false)
	l.field("Move-in Date", formatDate(app.MoveInDate), false)
	l.field("Monthly Rent", formatMoney(app.MonthlyRent, false), true)
	l.field("Apartment Type", app.ApartmentType, false)
	l.field("How did you hear about us", hear, false)
}

func (l *layout) personalInfo(role models.Role, p *models.Person) {
	l.section(role.Title() + " Information")

	l.subSection("Personal Information")
	l.field("Full Name", p.Name, false)
	if role != models.RoleApplicant {
		l.field("Relationship", p.Relationship, false)
	}
	l.field("Date of Birth", formatDate(p.DOB), false)
	l.field("Social Security Number", p.SSN, false)
	l.field("Phone Number", p.Phone, false)
	l.field("Email Address", p.Email, false)
	l.field("Driver's License", p.License, false)
	l.field("License State", p.LicenseState, false)

	l.advance(6)
	l.subSection("Current Address")
	l.field("Street Address", p.Address, false)
	l.field("City", p.City, false)
	l.field("State", p.State, false)
	l.field("ZIP Code", p.Zip, false)
	l.field("Length at Address", p.LengthAtAddress, false)
	l.field("Current Landlord's Name", p.LandlordName, false)
	l.field("Current Monthly Rent", formatMoney(p.CurrentRent, false), false)
	l.field("Reason for Moving", p.ReasonForMoving, false)
}

func (l *layout) financialInfo(role models.Role, p *models.Person) {
	l.section(role.Title() + " - Employment & Financial Information")

	l.subSection("Employment Information")
	l.field("Current Employer", p.Employer, false)
	l.field("Position/Title", p.Position, false)
	l.field("Employment Start Date", formatDate(p.EmploymentStart), false)

	l.advance(6)
	l.subSection("Financial Information")
	l.field("Annual Income", formatMoney(p.Income, true), true)
	l.field("Other Income", formatMoney(p.OtherIncome, true), false)
	l.field("Other Income Source", p.OtherIncomeSource, false)

	l.advance(6)
	l.subSection("Bank Information")
	records := p.BankRecords
	if len(records) == 0 {
		records = []models.BankRecord{{}}
	}
	for i, rec := range records {
		prefix := ""
		if len(records) > 1 {
			prefix = "Account " + strconv.Itoa(i+1) + ": "
		}
		l.field(prefix+"Bank Name", rec.BankName, false)
		l.field(prefix+"Account Type", rec.AccountType, false)
		l.field(prefix+"Account Number", maskAccount(rec.AccountNumber), false)
		if !rec.Balance.IsZero() {
			l.field(prefix+"Balance", formatMoney(rec.Balance, true), false)
		}
		if i < len(records)-1 {
			l.advance(4)
		}
	}
}

func (l *layout) legalQuestions(app models.Application) {
	t := l.theme
	l.section("Legal Questions")

	for _, q := range []struct {
		question, answer, details string
	}{
		{"Have you ever been in landlord/tenant legal action?", app.LandlordTenantLegalAction, app.LandlordTenantLegalActionExplanation},
		{"Have you ever broken a lease?", app.BrokenLease, app.BrokenLeaseExplanation},
	} {
		l.ensure(t.RowHeight * 2)
		l.text(Op{Tag: TagLabel, X: t.MarginLeft, Y: l.y, Text: q.question, Font: Bold, Size: t.BodySize - 1, Color: t.Secondary})
		l.advance(t.WrapLineHeight)
		l.field("Answer", yesNo(q.answer), false)
		if yesNo(q.answer) == "Yes" {
			l.paragraph("Details: "+display(q.details), t.MarginLeft+10, Italic, t.SmallSize, t.Muted, TagDetails)
		}
		l.advance(4)
	}
}

func (l *layout) occupants(occupants []models.Occupant) {
	if len(occupants) == 0 {
		return
	}
	t := l.theme
	l.section("Other Occupants (Not Applicants)")
	l.paragraph("List any other people who will be living in the apartment", t.MarginLeft, Italic, t.SmallSize, t.Secondary, TagParagraph)
	l.advance(2)

	for i, o := range occupants {
		parts := []string{
			"Name: " + display(o.Name),
			"Relationship: " + display(o.Relationship),
			"Date of Birth: " + formatDate(o.DOB),
			"Social Security #: " + display(o.SSN),
			"Driver's License #: " + display(o.DriverLicense),
			"Age: " + display(o.Age.String()),
		}
		if strings.TrimSpace(o.Sex) != "" {
			parts = append(parts, "Sex: "+o.Sex)
		}
		l.paragraph(strconv.Itoa(i+1)+". "+strings.Join(parts, " | "), t.MarginLeft, Regular, t.SmallSize, t.Black, TagParagraph)
		l.advance(2)
	}
}

func (l *layout) disclaimer() {
	t := l.theme
	l.section("PLEASE READ CAREFULLY BEFORE SIGNING")
	for _, sentence := range disclaimer {
		l.paragraph(sentence, t.MarginLeft, Regular, t.SmallSize, t.Secondary, TagParagraph)
		l.advance(2)
	}
}

// signature draws the boxed signature for one signer. img is nil when the
// payload could not be decoded.
func (l *layout) signature(role models.Role, img *signatureImage, generated time.Time) {
	t := l.theme
	l.section(role.Title() + " Signature")
	l.ensure(t.SignatureBoxHeight + t.RowHeight + 8)

	top := l.y - 8
	l.rect(t.MarginLeft, top, t.SignatureBoxWidth, t.SignatureBoxHeight, t.Primary, "D", TagSignature)

	if img != nil {
		w, h := img.fit(t.SignatureBoxWidth-2*t.SignaturePadding, t.SignatureBoxHeight-2*t.SignaturePadding)
		l.push(Op{
			Kind: OpImage, Tag: TagSignature,
			X: t.MarginLeft + t.SignaturePadding, Y: top + t.SignaturePadding, W: w, H: h,
			Image: img.jpeg, Label: role.Title(),
		})
	} else {
		l.text(Op{
			Tag: TagSignature, X: t.MarginLeft + 12, Y: top + t.SignatureBoxHeight/2 + 3,
			Text: "No signature provided", Font: Italic, Size: t.SmallSize + 1, Color: t.Muted, Label: role.Title(),
		})
	}
	l.y = top + t.SignatureBoxHeight + 16

	l.text(Op{
		Tag: TagSignature, X: t.MarginLeft, Y: l.y,
		Text: "Date: " + generated.Format("01/02/2006"), Font: Regular, Size: t.SmallSize + 1, Color: t.Black,
		Stamped: true,
	})
	l.advance(t.RowHeight)
}

func (l *layout) footer(generated time.Time) {
	t := l.theme
	l.advance(t.SectionGap)
	l.ensure(40)

	l.line(t.MarginLeft, l.y, t.PageSize.W-t.MarginRight, l.y, t.Primary, 0.5, TagFooter)
	l.advance(12)
	for i, s := range []string{
		"This application was submitted electronically on " + generated.Format(stampLayout),
		t.Organization.Name + " - Rental Application",
		"All information is encrypted and secure",
	} {
		l.text(Op{Tag: TagFooter, X: t.MarginLeft, Y: l.y, Text: s, Font: Regular, Size: t.TinySize, Color: t.Muted, Stamped: i == 0})
		l.advance(9)
	}
}
