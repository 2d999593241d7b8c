package validation

import (
	"encoding/json"
	"testing"

	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/libertyplace/rentapp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBundle() *models.Bundle {
	return &models.Bundle{
		Application: models.Application{
			BuildingAddress: "200 East 10th Street",
			MoveInDate:      models.ParseDate("2025-05-01"),
			MonthlyRent:     models.NewMoney(2500),
		},
		Applicant: models.Person{Name: "Jane Doe", Email: "jane@example.com"},
	}
}

func TestValidateBundle(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(b *models.Bundle)
		wantFields []string
	}{
		{name: "valid", mutate: func(b *models.Bundle) {}},
		{name: "missing building address", mutate: func(b *models.Bundle) { b.Application.BuildingAddress = "  " }, wantFields: []string{"application.buildingAddress"}},
		{name: "missing move-in date", mutate: func(b *models.Bundle) { b.Application.MoveInDate = models.Date{} }, wantFields: []string{"application.moveInDate"}},
		{name: "unparsable move-in date", mutate: func(b *models.Bundle) { b.Application.MoveInDate = models.ParseDate("whenever") }, wantFields: []string{"application.moveInDate"}},
		{name: "zero rent", mutate: func(b *models.Bundle) { b.Application.MonthlyRent = models.NewMoney(0) }, wantFields: []string{"application.monthlyRent"}},
		{name: "missing rent", mutate: func(b *models.Bundle) { b.Application.MonthlyRent = models.Money{} }, wantFields: []string{"application.monthlyRent"}},
		{name: "non-finite rent", mutate: func(b *models.Bundle) { b.Application.MonthlyRent = models.ParseMoney("NaN") }, wantFields: []string{"application.monthlyRent"}},
		{name: "infinite rent", mutate: func(b *models.Bundle) { b.Application.MonthlyRent = models.ParseMoney("Infinity") }, wantFields: []string{"application.monthlyRent"}},
		{name: "missing applicant name", mutate: func(b *models.Bundle) { b.Applicant.Name = "" }, wantFields: []string{"applicant.name"}},
		{name: "bad guarantor email", mutate: func(b *models.Bundle) { b.Guarantor = &models.Person{Name: "G", Email: "not-an-email"} }, wantFields: []string{"guarantor.email"}},
		{name: "empty email allowed", mutate: func(b *models.Bundle) { b.Applicant.Email = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle()
			tt.mutate(b)

			res, err := ValidateBundle(b)
			require.NoError(t, err)

			if len(tt.wantFields) == 0 {
				assert.True(t, res.Valid, "%+v", res.Errors)
				assert.NoError(t, res.Err())
				return
			}
			assert.False(t, res.Valid)
			for _, f := range tt.wantFields {
				assert.Contains(t, res.Fields(), f)
			}
			assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(res.Err()))
		})
	}
}

func TestValidateNumericMoveInDate(t *testing.T) {
	raw := `{
		"application": {"buildingAddress": "1 Main St", "moveInDate": 20250601, "monthlyRent": 2400},
		"applicant": {"name": "Jane"}
	}`
	var b models.Bundle
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	res, err := ValidateBundle(&b)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Fields(), "application.moveInDate")
}

func TestValidateDecodedFormInput(t *testing.T) {
	raw := `{
		"application": {"buildingAddress": "1 Main St", "moveInDate": "2025-06-01", "monthlyRent": "2,400"},
		"applicant": {"name": "Jane"}
	}`
	var b models.Bundle
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	res, err := ValidateBundle(&b)
	require.NoError(t, err)
	assert.True(t, res.Valid, "%+v", res.Errors)
}

func TestErrCollectsAllFields(t *testing.T) {
	res, err := ValidateBundle(&models.Bundle{})
	require.NoError(t, err)
	require.False(t, res.Valid)

	assert.Subset(t, res.Fields(), []string{
		"application.buildingAddress",
		"application.moveInDate",
		"application.monthlyRent",
		"applicant.name",
	})
	assert.ErrorContains(t, res.Err(), "application.monthlyRent")
}
