// internal/workers/loan/score-eligibility/models.go
package scoreeligibility

import "loan-intake-workers/internal/models"

type Input struct {
	ApplicantID string `json:"applicantId"`
}

type Output struct {
	Decision        models.Decision               `json:"decision"`
	ConfidenceScore float64                       `json:"confidenceScore"`
	Summary         string                        `json:"summary"`
	Criteria        []models.EligibilityCriterion `json:"criteria"`
}
