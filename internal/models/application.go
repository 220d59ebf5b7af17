// internal/models/application.go
package models

import "time"

// ApplicantContact is what the notification worker needs to reach an applicant.
type ApplicantContact struct {
	ApplicantID string `json:"applicantId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
}

// Stage names written to the applicant's status record as each step finishes.
const (
	StageClassificationComplete = "classification_complete"
	StageExtractionComplete     = "extraction_complete"
	StageValidationComplete     = "validation_complete"
	StageEligibilityComplete    = "eligibility_complete"
	StageComplianceComplete     = "compliance_complete"
	StageNotificationSent       = "notification_sent"
)

type ApplicationStatus struct {
	ApplicantID string                 `json:"applicantId"`
	Stage       string                 `json:"stage"`
	Details     map[string]interface{} `json:"details,omitempty"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// RequiredApplicantDocuments is the document set an application needs before scoring.
var RequiredApplicantDocuments = []string{
	DocPAN,
	DocPassport,
	DocBankStatement,
	DocIncomeTaxReturn,
	DocCreditReport,
}
