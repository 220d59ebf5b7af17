// internal/models/compliance.go
package models

import "time"

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

type ComplianceViolation struct {
	RuleID       string   `json:"ruleId"`
	RuleCategory string   `json:"ruleCategory"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
}

type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "COMPLIANT"
	StatusNonCompliant ComplianceStatus = "NON_COMPLIANT"
)

type ApplicationSummary struct {
	ApplicantID   string  `json:"applicantId"`
	LoanType      string  `json:"loanType"`
	LoanAmount    float64 `json:"loanAmount"`
	CreditScore   int     `json:"creditScore"`
	MonthlyIncome float64 `json:"monthlyIncome"`
	RiskScore     float64 `json:"riskScore"`
}

// CategorizedViolations buckets violations by the area they concern.
type CategorizedViolations struct {
	KYC      []ComplianceViolation `json:"kycViolations"`
	Identity []ComplianceViolation `json:"identityViolations"`
	Income   []ComplianceViolation `json:"incomeViolations"`
	Document []ComplianceViolation `json:"documentViolations"`
	RBI      []ComplianceViolation `json:"rbiViolations"`
}

type RiskAssessment struct {
	RiskLevel   Severity              `json:"riskLevel"`
	RiskScore   float64               `json:"riskScore"`
	FraudAlerts []string              `json:"fraudAlerts"`
	RiskFlags   []ComplianceViolation `json:"riskFlags"`
}

type ComplianceSummary struct {
	KYCStatus        string `json:"kycStatus"`
	CreditStatus     string `json:"creditStatus"`
	FraudCheckStatus string `json:"fraudCheckStatus"`
	DocumentStatus   string `json:"documentStatus"`
}

// ComplianceReport is the persisted outcome of a compliance evaluation.
type ComplianceReport struct {
	ApplicantID        string                `json:"applicantId"`
	ComplianceStatus   ComplianceStatus      `json:"complianceStatus"`
	ApplicationSummary ApplicationSummary    `json:"applicationSummary"`
	Violations         CategorizedViolations `json:"violations"`
	MissingDocuments   []string              `json:"missingDocuments"`
	RiskAssessment     RiskAssessment        `json:"riskAssessment"`
	ComplianceSummary  ComplianceSummary     `json:"complianceSummary"`
	Recommendations    []string              `json:"recommendations"`
	IsCompliant        bool                  `json:"isCompliant"`
	Timestamp          time.Time             `json:"timestamp"`
}
