// internal/compliance/application.go
package compliance

import (
	"strings"

	"loan-intake-workers/internal/financial"
	"loan-intake-workers/internal/models"
)

// ApplicationData is the evaluator's view of one application.
type ApplicationData struct {
	ApplicantID string  `json:"applicantId"`
	LoanType    string  `json:"loanType"`
	LoanAmount  float64 `json:"loanAmount"`

	// CreditScore is nil when no credit assessment was returned.
	CreditScore        *int    `json:"creditScore,omitempty"`
	EmploymentVerified bool    `json:"employmentVerified"`
	EmployerName       string  `json:"employerName,omitempty"`
	MonthlyIncome      float64 `json:"monthlyIncome"`
	AvgBankBalance     float64 `json:"avgBankBalance"`

	KYCVerified bool     `json:"kycVerified"`
	FraudAlerts []string `json:"fraudAlerts"`
	RiskScore   float64  `json:"riskScore"`
	Blacklisted bool     `json:"blacklisted"`

	// ApplicantNames holds the name read from each document, keyed by document key.
	ApplicantNames map[string]string `json:"applicantNames,omitempty"`
	// IncompleteDocuments marks document keys whose extraction is missing required fields.
	IncompleteDocuments map[string]bool `json:"incompleteDocuments,omitempty"`
}

var documentKeys = map[string]string{
	models.DocAadhaar:             "aadhaar",
	models.DocPAN:                 "pan",
	models.DocPassport:            "passport",
	models.DocVoterID:             "voter_id",
	models.DocDrivingLicense:      "driving_license",
	models.DocBankStatement:       "bank_statements",
	models.DocSalarySlip:          "salary_slip",
	models.DocLoanApplicationForm: "loan_application",
	models.DocForm16:              "form16",
	models.DocIncomeTaxReturn:     "itr",
	models.DocCreditReport:        "credit_report",
}

// DocumentKey maps a document type label to the key used in the documents
// map. Unmapped types get a snake_case form of the label.
func DocumentKey(docType string) string {
	if key, ok := documentKeys[docType]; ok {
		return key
	}
	return strings.ToLower(strings.Join(strings.Fields(docType), "_"))
}

// NewApplicationData assembles evaluator input from the financial services
// and the applicant's extraction records.
func NewApplicationData(applicantID, loanType string, loanAmount float64, bundle financial.Bundle, records []*models.ExtractionRecord) ApplicationData {
	credit := bundle.Get(financial.SourceCreditReport)
	employment := bundle.Get(financial.SourceEmployment)
	bank := bundle.Get(financial.SourceBankStatements)
	kyc := bundle.Get(financial.SourceKYC)
	fraud := bundle.Get(financial.SourceFraudCheck)

	app := ApplicationData{
		ApplicantID:         applicantID,
		LoanType:            loanType,
		LoanAmount:          loanAmount,
		EmploymentVerified:  employment.Bool(financial.KeyEmploymentVerified),
		EmployerName:        employment.String(financial.KeyEmployerName),
		MonthlyIncome:       employment.Float(financial.KeyMonthlyIncome),
		AvgBankBalance:      bank.Float(financial.KeyAverageBalance),
		KYCVerified:         kyc.Bool(financial.KeyKYCVerified),
		FraudAlerts:         fraud.Strings(financial.KeyFraudAlerts),
		RiskScore:           fraud.Float(financial.KeyRiskScore),
		Blacklisted:         fraud.Bool("blacklisted"),
		ApplicantNames:      make(map[string]string),
		IncompleteDocuments: make(map[string]bool),
	}
	if credit.Has(financial.KeyCreditScore) {
		score := credit.Int(financial.KeyCreditScore)
		app.CreditScore = &score
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		key := DocumentKey(rec.DocumentType)
		if name := applicantName(rec.CanonicalFields); name != "" {
			app.ApplicantNames[key] = name
		}
		if !rec.IsComplete {
			app.IncompleteDocuments[key] = true
		}
	}

	return app
}

func applicantName(fields models.CanonicalFieldSet) string {
	if v := fields.Get(models.FieldFullName); v != "" {
		return v
	}
	first, last := fields.Get(models.FieldFirstName), fields.Get(models.FieldLastName)
	if first != "" || last != "" {
		return strings.TrimSpace(first + " " + last)
	}
	for _, f := range []models.FieldName{
		models.FieldApplicantName,
		models.FieldEmployeeName,
		models.FieldAccountHolderName,
	} {
		if v := fields.Get(f); v != "" {
			return v
		}
	}
	return ""
}
