// internal/eligibility/score.go
package eligibility

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"loan-intake-workers/internal/models"
)

// Criterion names and weights. Weights sum to 100.
const (
	CriterionIncome  = "Income Stability"
	CriterionCredit  = "Credit History"
	CriterionEMI     = "EMI-to-Income Ratio"
	CriterionBanking = "Banking Hygiene"
	CriterionTax     = "Tax Filing Consistency"

	weightIncome  = 25
	weightCredit  = 30
	weightEMI     = 20
	weightBanking = 15
	weightTax     = 10
)

// Decision thresholds on the 0-10 composite.
const (
	ApproveThreshold = 8.5
	ReviewThreshold  = 7.0
)

// Score bands the profile into five weighted criteria. It is pure.
func Score(p models.ApplicantFinancialProfile) models.EligibilityResult {
	criteria := []models.EligibilityCriterion{
		{
			Name:     CriterionIncome,
			Score:    band(p.Income >= 50000, p.Income >= 25000),
			Weight:   weightIncome,
			Comments: "Income: ₹" + formatNumber(p.Income),
		},
		{
			Name:     CriterionCredit,
			Score:    band(p.CreditScore >= 750, p.CreditScore >= 650),
			Weight:   weightCredit,
			Comments: fmt.Sprintf("Score: %d", p.CreditScore),
		},
		{
			Name:     CriterionEMI,
			Score:    band(p.EMIPercent < 30, p.EMIPercent <= 50),
			Weight:   weightEMI,
			Comments: "EMI: " + formatNumber(p.EMIPercent) + "%",
		},
		{
			Name:     CriterionBanking,
			Score:    band(p.AvgBankBalance >= 20000 && p.OverdraftCount == 0, p.OverdraftCount <= 1),
			Weight:   weightBanking,
			Comments: fmt.Sprintf("Avg: ₹%s, overdrafts: %d", formatNumber(p.AvgBankBalance), p.OverdraftCount),
		},
		{
			Name:     CriterionTax,
			Score:    band(p.ITRYearsFiled == 3, p.ITRYearsFiled == 2),
			Weight:   weightTax,
			Comments: fmt.Sprintf("Years filed: %d", p.ITRYearsFiled),
		},
	}

	// Integer sum keeps the threshold comparison exact.
	sum := 0
	for _, c := range criteria {
		sum += c.Score * c.Weight
	}

	result := models.EligibilityResult{
		Decision:        decide(float64(sum) / 100),
		ConfidenceScore: math.Round(float64(sum)/10) / 10,
		Criteria:        criteria,
	}
	result.Summary = Summarize(result)
	return result
}

func band(high, mid bool) int {
	switch {
	case high:
		return 10
	case mid:
		return 7
	default:
		return 4
	}
}

func decide(composite float64) models.Decision {
	switch {
	case composite >= ApproveThreshold:
		return models.DecisionYes
	case composite >= ReviewThreshold:
		return models.DecisionNeedsReview
	default:
		return models.DecisionNo
	}
}

// Summarize renders the decision and every criterion's score and comment.
func Summarize(r models.EligibilityResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s candidate (score %.1f/10).", r.Decision, r.ConfidenceScore)
	for _, c := range r.Criteria {
		fmt.Fprintf(&b, " %s %d/10: %s.", c.Name, c.Score, c.Comments)
	}
	return b.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
