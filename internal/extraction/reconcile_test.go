package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-intake-workers/internal/models"
)

func lookup(t *testing.T, docType string) *DocumentTypeProfile {
	t.Helper()
	p, ok := DefaultCatalog().Lookup(docType)
	require.True(t, ok, "profile %q should exist", docType)
	return p
}

func TestReconcile_DirectAlias(t *testing.T) {
	pan := lookup(t, models.DocPAN)

	name, ok := Reconcile("P A N", pan)

	assert.True(t, ok)
	assert.Equal(t, models.FieldPAN, name)
}

func TestReconcile_NormalizedAlias(t *testing.T) {
	pan := lookup(t, models.DocPAN)

	tests := []struct {
		raw  string
		want models.FieldName
	}{
		{"pan number", models.FieldPAN},
		{"PERMANENT ACCOUNT  NUMBER", models.FieldPAN},
		{"DateOfBirth", models.FieldDateOfBirth},
		{"date of birth", models.FieldDateOfBirth},
		{"  dob ", models.FieldDateOfBirth},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, ok := Reconcile(tt.raw, pan)
			assert.True(t, ok)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestReconcile_FuzzyRequiredField(t *testing.T) {
	slip := lookup(t, models.DocSalarySlip)

	name, ok := Reconcile("Employer Nme", slip)

	assert.True(t, ok)
	assert.Equal(t, models.FieldEmployerName, name)
}

func TestReconcile_FallbackStripsSpaces(t *testing.T) {
	pan := lookup(t, models.DocPAN)

	name, ok := Reconcile("Blood Group", pan)

	assert.False(t, ok)
	assert.Equal(t, models.FieldName("BloodGroup"), name)
}

func TestReconcile_EmptyName(t *testing.T) {
	pan := lookup(t, models.DocPAN)

	name, ok := Reconcile("", pan)
	assert.False(t, ok)
	assert.Equal(t, models.FieldName(""), name)

	name, ok = Reconcile("   ", pan)
	assert.False(t, ok)
	assert.Equal(t, models.FieldName(""), name)
}

func TestReconcile_IdempotentForCanonicalNames(t *testing.T) {
	catalog := DefaultCatalog()

	for _, docType := range catalog.Types() {
		profile, _ := catalog.Lookup(docType)
		for _, f := range profile.RequiredFields {
			name, ok := Reconcile(string(f), profile)
			assert.True(t, ok, "%s/%s", docType, f)
			assert.Equal(t, f, name, "%s/%s", docType, f)
		}
		for alias, target := range profile.FieldNameAliases {
			name, ok := Reconcile(alias, profile)
			assert.True(t, ok)
			assert.Equal(t, target, name, "%s alias %q", docType, alias)
		}
	}
}

func TestReconcile_NeverAcceptsBelowThreshold(t *testing.T) {
	bank := lookup(t, models.DocBankStatement)

	candidates := []string{"Branch Address", "Opening Balance", "Nominee", "Transaction Date", "Micr"}
	for _, raw := range candidates {
		norm := normalizeLabel(raw)
		for _, f := range bank.RequiredFields {
			require.Less(t, Similarity(norm, normalizeLabel(string(f))), FuzzyMatchThreshold, raw)
		}

		name, ok := Reconcile(raw, bank)
		if _, isAlias := bank.FieldNameAliases[raw]; isAlias {
			continue
		}
		assert.False(t, ok, raw)
		assert.Equal(t, models.FieldName(stripSpaces(raw)), name)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("ifsc", "ifsc"))
	assert.InDelta(t, 16.0/17.0, Similarity("firstnme", "firstname"), 1e-9)
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestCatalog_LookupFallsBackToOthers(t *testing.T) {
	catalog := DefaultCatalog()

	p, ok := catalog.Lookup("Ration Card")
	assert.False(t, ok)
	assert.Equal(t, models.DocOthers, p.Name)
	assert.Empty(t, p.RequiredFields)

	p, ok = catalog.Lookup("  pan   card ")
	assert.True(t, ok)
	assert.Equal(t, models.DocPAN, p.Name)
}

func TestCatalog_AliasTargetsInVocabulary(t *testing.T) {
	catalog := DefaultCatalog()
	for _, docType := range catalog.Types() {
		profile, _ := catalog.Lookup(docType)
		vocab := profile.Vocabulary()
		for _, f := range profile.RequiredFields {
			_, ok := vocab[f]
			assert.True(t, ok, "%s missing %s", docType, f)
		}
		assert.NotEmpty(t, profile.ExtractionModel, docType)
	}
}

func TestLabelVariants(t *testing.T) {
	bank := lookup(t, models.DocBankStatement)

	variants := bank.LabelVariants(models.FieldAccountNumber)

	assert.Equal(t, []string{"Account Number", "AccountNumber", "Account No", "A/C No"}, variants)
}

func TestSplitCamel(t *testing.T) {
	assert.Equal(t, "Date Of Birth", splitCamel("DateOfBirth"))
	assert.Equal(t, "IFSC", splitCamel("IFSC"))
	assert.Equal(t, "Total EMI", splitCamel("TotalEMI"))
	assert.Equal(t, "PAN", splitCamel("PAN"))
}
