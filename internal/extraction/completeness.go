// internal/extraction/completeness.go
package extraction

import (
	"fmt"
	"strings"

	"loan-intake-workers/internal/models"
)

const (
	reasonNoFields     = "No fields could be extracted from the document."
	reasonUnrecognized = "Document type is unrecognized. Please review manually."
	reasonAllPresent   = "All required fields are present. No issues detected by AI."
)

// CheckCompleteness reports which required fields lack a non-blank value,
// in the order they are required.
func CheckCompleteness(fields models.CanonicalFieldSet, required []models.FieldName) (bool, []models.FieldName) {
	missing := make([]models.FieldName, 0)
	for _, f := range required {
		if !fields.Has(f) {
			missing = append(missing, f)
		}
	}
	return len(missing) == 0, missing
}

// FlagReason decides whether a record needs human review and why.
// The first matching condition wins.
func FlagReason(fields models.CanonicalFieldSet, required, missing []models.FieldName, docType string) (bool, string) {
	switch {
	case len(missing) > 0:
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return true, fmt.Sprintf("Missing required fields: %s", strings.Join(names, ", "))
	case len(fields) == 0 && len(required) > 0:
		return true, reasonNoFields
	case docType == models.DocOthers:
		return true, reasonUnrecognized
	default:
		return false, reasonAllPresent
	}
}
