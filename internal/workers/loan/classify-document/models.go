// internal/workers/loan/classify-document/models.go
package classifydocument

type Input struct {
	ApplicantID string `json:"applicantId"`
	DocumentID  string `json:"documentId"`
	Text        string `json:"text"`
}

type Output struct {
	DocumentType string `json:"documentType"`
	Reason       string `json:"reason"`
	Flagged      bool   `json:"flagged"`
}
