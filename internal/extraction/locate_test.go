package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"loan-intake-workers/internal/models"
)

func TestLocate_RegexTierSameLine(t *testing.T) {
	text := "HDFC BANK\nStatement of Account\nAccount Number: 1234567890\nIFSC: HDFC0001234"

	value, ok := Locate(models.FieldAccountNumber, []string{"Account Number", "Account No"}, text)

	assert.True(t, ok)
	assert.Equal(t, "1234567890", value)
}

func TestLocate_RegexTierIsCaseInsensitive(t *testing.T) {
	value, ok := Locate(models.FieldLoanAmount, []string{"Loan Amount"}, "LOAN AMOUNT - 5,00,000")

	assert.True(t, ok)
	assert.Equal(t, "5,00,000", value)
}

func TestLocate_LineScanTier(t *testing.T) {
	text := "Applicant Name\n\n   PRIYA NAIR  \nSignature"

	value, ok := Locate(models.FieldApplicantName, []string{"Applicant Name"}, text)

	assert.True(t, ok)
	assert.Equal(t, "PRIYA NAIR", value)
}

func TestLocate_LineScanWindowIsFiveLines(t *testing.T) {
	inside := "Net Pay\n\n\n\n\n45000"
	value, ok := Locate(models.FieldNetSalary, []string{"Net Pay"}, inside)
	assert.True(t, ok)
	assert.Equal(t, "45000", value)

	outside := "Net Pay\n\n\n\n\n\n45000"
	_, ok = Locate(models.FieldNetSalary, []string{"Net Pay"}, outside)
	assert.False(t, ok)
}

func TestLocate_AbbreviatedLabelSkipsTrailingDot(t *testing.T) {
	tests := []struct {
		name     string
		variants []string
		text     string
		expected string
	}{
		{"passport", []string{"Passport No", "Passport Number"}, "REPUBLIC OF INDIA\nPassport No.: K1234567", "K1234567"},
		{"aadhaar", []string{"Aadhaar No", "Aadhaar Number"}, "Aadhaar No.: 1234 5678 9012", "1234 5678 9012"},
		{"dot without colon", []string{"DL No"}, "DL No. MH12 20110012345", "MH12 20110012345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := Locate(models.FieldDocumentNumber, tt.variants, tt.text)

			assert.True(t, ok)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestLocate_PunctuationIsNeverAValue(t *testing.T) {
	value, ok := Locate(models.FieldDocumentNumber, []string{"Passport No"}, "Passport No.:\n----\nK1234567")
	assert.True(t, ok)
	assert.Equal(t, "K1234567", value)

	_, ok = Locate(models.FieldDocumentNumber, []string{"Passport No"}, "Passport No. /\n. .")
	assert.False(t, ok)
}

func TestBuild_PassportNumberAfterAbbreviatedLabel(t *testing.T) {
	profile, ok := DefaultCatalog().Lookup(models.DocPassport)
	assert.True(t, ok)

	rec := Build(profile, &models.RawExtractionResult{
		Fields: map[string]interface{}{
			"FirstName":        "PRIYA",
			"LastName":         "NAIR",
			"DateOfBirth":      "1990-05-12",
			"DateOfExpiration": "2030-05-11",
		},
		Lines: []string{"REPUBLIC OF INDIA", "Passport No.: K1234567"},
	})

	assert.Equal(t, "K1234567", rec.CanonicalFields[models.FieldDocumentNumber])
}

func TestLocate_NotFound(t *testing.T) {
	_, ok := Locate(models.FieldIFSC, []string{"IFSC"}, "nothing relevant here")
	assert.False(t, ok)

	_, ok = Locate(models.FieldIFSC, []string{"IFSC"}, "")
	assert.False(t, ok)
}

func TestLocate_LabelMustStartAtWordBoundary(t *testing.T) {
	_, ok := Locate(models.FieldPAN, []string{"PAN"}, "Company: Acme Traders")
	assert.False(t, ok)
}

func TestLocate_DefaultsToSplitFieldName(t *testing.T) {
	value, ok := Locate(models.FieldReportDate, nil, "Report Date: 05/03/2024")

	assert.True(t, ok)
	assert.Equal(t, "05/03/2024", value)
}

func TestLocateName(t *testing.T) {
	text := "INCOME TAX DEPARTMENT\nGOVT. OF INDIA\nRAHUL  KUMAR SHARMA\nABCDE1234F"

	name, ok := LocateName(text)

	assert.True(t, ok)
	assert.Equal(t, "RAHUL KUMAR SHARMA", name)
}

func TestLocateName_RequiresTwoUppercaseWords(t *testing.T) {
	_, ok := LocateName("RAHUL\nRahul Sharma\nPERMANENT ACCOUNT NUMBER CARD")
	assert.False(t, ok)
}
