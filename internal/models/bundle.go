package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleApplicant   Role = "applicant"
	RoleCoApplicant Role = "coApplicant"
	RoleGuarantor   Role = "guarantor"
)

// Title is the heading used for the role in the rendered application.
func (r Role) Title() string {
	switch r {
	case RoleCoApplicant:
		return "Co-Applicant"
	case RoleGuarantor:
		return "Guarantor"
	default:
		return "Primary Applicant"
	}
}

// Bundle is everything needed to render one application. GeneratedAt pins
// the stamp printed in the header and footer; when nil the composer clock is
// used.
type Bundle struct {
	Application Application `json:"application"`
	Applicant   Person      `json:"applicant"`
	CoApplicant *Person     `json:"coApplicant,omitempty"`
	Guarantor   *Person     `json:"guarantor,omitempty"`
	Signatures  Signatures  `json:"signatures"`
	Occupants   []Occupant  `json:"occupants,omitempty"`
	GeneratedAt *time.Time  `json:"generatedAt,omitempty"`
}

type Application struct {
	BuildingAddress    string `json:"buildingAddress"`
	ApartmentNumber    string `json:"apartmentNumber"`
	MoveInDate         Date   `json:"moveInDate"`
	MonthlyRent        Money  `json:"monthlyRent"`
	ApartmentType      string `json:"apartmentType"`
	HowDidYouHear      string `json:"howDidYouHear"`
	HowDidYouHearOther string `json:"howDidYouHearOther,omitempty"`

	LandlordTenantLegalAction            string `json:"landlordTenantLegalAction"`
	LandlordTenantLegalActionExplanation string `json:"landlordTenantLegalActionExplanation"`
	BrokenLease                          string `json:"brokenLease"`
	BrokenLeaseExplanation               string `json:"brokenLeaseExplanation"`
}

type Person struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	DOB          Date   `json:"dob"`
	SSN          string `json:"ssn"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	License      string `json:"license"`
	LicenseState string `json:"licenseState"`

	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	Zip             string `json:"zip"`
	LengthAtAddress string `json:"lengthAtAddress"`
	LandlordName    string `json:"landlordName"`
	CurrentRent     Money  `json:"currentRent"`
	ReasonForMoving string `json:"reasonForMoving"`

	Employer          string `json:"employer"`
	Position          string `json:"position"`
	EmploymentStart   Date   `json:"employmentStart"`
	Income            Money  `json:"income"`
	OtherIncome       Money  `json:"otherIncome"`
	OtherIncomeSource string `json:"otherIncomeSource"`

	BankRecords []BankRecord `json:"bankRecords,omitempty"`
}

// Present reports whether the person was filled in at all.
func (p *Person) Present() bool {
	return p != nil && strings.TrimSpace(p.Name) != ""
}

type BankRecord struct {
	BankName      string `json:"bankName"`
	AccountType   string `json:"accountType"`
	AccountNumber string `json:"accountNumber"`
	Balance       Money  `json:"balance"`
}

type Occupant struct {
	Name          string `json:"name"`
	Relationship  string `json:"relationship"`
	DOB           Date   `json:"dob"`
	Age           Text   `json:"age,omitempty"`
	SSN           string `json:"ssn"`
	DriverLicense string `json:"driverLicense"`
	Sex           string `json:"sex,omitempty"`
}

// Signatures holds one encoded image per role. Empty means unsigned.
type Signatures struct {
	Applicant   string `json:"applicant,omitempty"`
	CoApplicant string `json:"coApplicant,omitempty"`
	Guarantor   string `json:"guarantor,omitempty"`
}

func (s Signatures) For(role Role) string {
	switch role {
	case RoleCoApplicant:
		return s.CoApplicant
	case RoleGuarantor:
		return s.Guarantor
	default:
		return s.Applicant
	}
}

type Participant struct {
	Role      Role
	Person    *Person
	Signature string
}

// Participants returns the present persons in print order. The primary
// applicant is always included.
func (b *Bundle) Participants() []Participant {
	out := []Participant{{Role: RoleApplicant, Person: &b.Applicant, Signature: b.Signatures.Applicant}}
	if b.CoApplicant.Present() {
		out = append(out, Participant{Role: RoleCoApplicant, Person: b.CoApplicant, Signature: b.Signatures.CoApplicant})
	}
	if b.Guarantor.Present() {
		out = append(out, Participant{Role: RoleGuarantor, Person: b.Guarantor, Signature: b.Signatures.Guarantor})
	}
	return out
}

// Signers is the subset of Participants that supplied a signature.
func (b *Bundle) Signers() []Participant {
	var out []Participant
	for _, p := range b.Participants() {
		if strings.TrimSpace(p.Signature) != "" {
			out = append(out, p)
		}
	}
	return out
}
