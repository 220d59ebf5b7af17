// internal/compliance/report.go
package compliance

import (
	"strings"
	"time"

	"loan-intake-workers/internal/models"
)

// Risk score cut-offs from the fraud-check service.
const (
	highRiskScore   = 70
	mediumRiskScore = 30
)

// BuildReport expands an evaluation into the persisted compliance report.
func BuildReport(app ApplicationData, result Result, now time.Time) models.ComplianceReport {
	report := models.ComplianceReport{
		ApplicantID:      app.ApplicantID,
		ComplianceStatus: models.StatusNonCompliant,
		ApplicationSummary: models.ApplicationSummary{
			ApplicantID:   app.ApplicantID,
			LoanType:      app.LoanType,
			LoanAmount:    app.LoanAmount,
			MonthlyIncome: app.MonthlyIncome,
			RiskScore:     app.RiskScore,
		},
		Violations:       categorize(result.Violations),
		MissingDocuments: []string{},
		RiskAssessment: models.RiskAssessment{
			RiskLevel:   RiskLevel(app.RiskScore),
			RiskScore:   app.RiskScore,
			FraudAlerts: nonNil(app.FraudAlerts),
			RiskFlags:   []models.ComplianceViolation{},
		},
		Recommendations: nonNil(result.Recommendations),
		IsCompliant:     result.IsCompliant,
		Timestamp:       now.UTC(),
	}
	if result.IsCompliant {
		report.ComplianceStatus = models.StatusCompliant
	}
	if app.CreditScore != nil {
		report.ApplicationSummary.CreditScore = *app.CreditScore
	}

	for _, v := range result.Violations {
		if strings.HasPrefix(v.RuleID, "KYC") && strings.Contains(strings.ToLower(v.Message), "missing") {
			report.MissingDocuments = append(report.MissingDocuments, v.Message)
		}
		if v.Severity == models.SeverityHigh {
			report.RiskAssessment.RiskFlags = append(report.RiskAssessment.RiskFlags, v)
		}
	}

	report.ComplianceSummary = models.ComplianceSummary{
		KYCStatus:        pick(app.KYCVerified, "VERIFIED", "PENDING"),
		CreditStatus:     pick(app.CreditScore != nil && *app.CreditScore >= MinCreditScore, "APPROVED", "REJECTED"),
		FraudCheckStatus: pick(app.Blacklisted, "FLAGGED", "CLEAR"),
		DocumentStatus:   pick(len(report.Violations.Document) == 0, "COMPLETE", "INCOMPLETE"),
	}

	return report
}

// RiskLevel buckets a fraud-check risk score.
func RiskLevel(score float64) models.Severity {
	switch {
	case score > highRiskScore:
		return models.SeverityHigh
	case score > mediumRiskScore:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func categorize(violations []models.ComplianceViolation) models.CategorizedViolations {
	c := models.CategorizedViolations{
		KYC:      []models.ComplianceViolation{},
		Identity: []models.ComplianceViolation{},
		Income:   []models.ComplianceViolation{},
		Document: []models.ComplianceViolation{},
		RBI:      []models.ComplianceViolation{},
	}
	for _, v := range violations {
		switch v.RuleCategory {
		case CategoryKYC:
			c.KYC = append(c.KYC, v)
		case CategoryIdentity:
			c.Identity = append(c.Identity, v)
		case CategoryIncome:
			c.Income = append(c.Income, v)
		case CategoryForm:
			c.Document = append(c.Document, v)
		case CategoryRBI:
			c.RBI = append(c.RBI, v)
		}
	}
	return c
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
