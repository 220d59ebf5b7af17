// internal/workers/loan/evaluate-compliance/models.go
package evaluatecompliance

import "loan-intake-workers/internal/models"

type Input struct {
	ApplicantID string  `json:"applicantId"`
	LoanType    string  `json:"loanType,omitempty"`
	LoanAmount  float64 `json:"loanAmount,omitempty"`
	// Documents maps document keys (aadhaar, pan, ...) to stored paths.
	// When empty the applicant's extraction records are used.
	Documents map[string]string `json:"documents,omitempty"`
}

type Output struct {
	ComplianceStatus models.ComplianceStatus `json:"complianceStatus"`
	IsCompliant      bool                    `json:"isCompliant"`
	ViolationCount   int                     `json:"violationCount"`
	RiskLevel        models.Severity         `json:"riskLevel"`
	Recommendations  []string                `json:"recommendations"`
	MissingDocuments []string                `json:"missingDocuments"`
}
