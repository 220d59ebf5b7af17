// internal/workers/loan/extract-document-fields/models.go
package extractdocumentfields

type Input struct {
	ApplicantID  string `json:"applicantId"`
	DocumentID   string `json:"documentId,omitempty"`
	DocumentType string `json:"documentType"`
	// DocumentContent arrives base64 encoded in the job variables.
	DocumentContent []byte `json:"documentContent"`
}

type Output struct {
	RecordID      string   `json:"recordId"`
	DocumentType  string   `json:"documentType"`
	IsComplete    bool     `json:"isComplete"`
	MissingFields []string `json:"missingFields"`
	FlaggedByAI   bool     `json:"flaggedByAi"`
	FlaggedReason string   `json:"flaggedReason"`
}
