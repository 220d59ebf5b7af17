// internal/models/eligibility.go
package models

// ApplicantFinancialProfile is the aggregated input to eligibility scoring.
// Absent inputs are zero.
type ApplicantFinancialProfile struct {
	Income         float64 `json:"income"`
	CreditScore    int     `json:"creditScore"`
	EMIPercent     float64 `json:"emiPercent"`
	AvgBankBalance float64 `json:"avgBankBalance"`
	OverdraftCount int     `json:"overdraftCount"`
	ITRYearsFiled  int     `json:"itrYearsFiled"`
}

type Decision string

const (
	DecisionYes         Decision = "Yes"
	DecisionNeedsReview Decision = "Needs Review"
	DecisionNo          Decision = "No"
)

type EligibilityCriterion struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Weight   int    `json:"weight"`
	Comments string `json:"comments"`
}

type EligibilityResult struct {
	ApplicantID     string                 `json:"applicantId,omitempty"`
	Decision        Decision               `json:"decision"`
	ConfidenceScore float64                `json:"confidenceScore"`
	Criteria        []EligibilityCriterion `json:"criteria"`
	Summary         string                 `json:"summary"`
}
