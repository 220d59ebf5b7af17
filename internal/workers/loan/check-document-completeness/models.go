// internal/workers/loan/check-document-completeness/models.go
package checkdocumentcompleteness

type Input struct {
	ApplicantID string `json:"applicantId"`
	// RequiredDocuments overrides the default required document set.
	RequiredDocuments []string `json:"requiredDocuments,omitempty"`
}

type IncompleteDocument struct {
	RecordID      string   `json:"recordId"`
	DocumentType  string   `json:"documentType"`
	MissingFields []string `json:"missingFields"`
	FlaggedReason string   `json:"flaggedReason,omitempty"`
}

type Output struct {
	AllRequiredPresent   bool                 `json:"allRequiredPresent"`
	MissingDocumentTypes []string             `json:"missingDocumentTypes"`
	IncompleteDocuments  []IncompleteDocument `json:"incompleteDocuments"`
	// MissingInfo is a readable line per problem, used by the verification notification.
	MissingInfo []string `json:"missingInfo"`
}
