package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalFieldSet_GetHasTrim(t *testing.T) {
	fields := CanonicalFieldSet{
		FieldFirstName: "  RAHUL ",
		FieldLastName:  "   ",
	}

	assert.Equal(t, "RAHUL", fields.Get(FieldFirstName))
	assert.True(t, fields.Has(FieldFirstName))
	assert.False(t, fields.Has(FieldLastName))
	assert.False(t, fields.Has(FieldPAN))
}

func TestCanonicalFieldSet_CloneIsIndependent(t *testing.T) {
	orig := CanonicalFieldSet{FieldPAN: "ABCDE1234F"}
	clone := orig.Clone()
	clone[FieldPAN] = "changed"

	assert.Equal(t, "ABCDE1234F", orig[FieldPAN])
}

func TestRawExtractionResult_FullText(t *testing.T) {
	raw := &RawExtractionResult{Lines: []string{"INCOME TAX DEPARTMENT", "RAHUL SHARMA"}}
	assert.Equal(t, "INCOME TAX DEPARTMENT\nRAHUL SHARMA", raw.FullText())

	var missing *RawExtractionResult
	assert.Equal(t, "", missing.FullText())
}
