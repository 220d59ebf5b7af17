// internal/eligibility/profile.go
package eligibility

import (
	"regexp"
	"strconv"
	"strings"

	"loan-intake-workers/internal/financial"
	"loan-intake-workers/internal/models"
)

var amountRe = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// BuildProfile aggregates scoring inputs from the financial services. When a
// service reports zero for income or credit score, the applicant's extracted
// documents fill the gap. Missing signals stay zero.
func BuildProfile(bundle financial.Bundle, records []*models.ExtractionRecord) models.ApplicantFinancialProfile {
	itr := bundle.Get(financial.SourceITR)
	credit := bundle.Get(financial.SourceCreditReport)
	bank := bundle.Get(financial.SourceBankStatements)

	p := models.ApplicantFinancialProfile{
		Income:         itr.Float(financial.KeyAnnualIncome),
		CreditScore:    credit.Int(financial.KeyCreditScore),
		EMIPercent:     credit.Float(financial.KeyEMIBurdenPct),
		AvgBankBalance: bank.Float(financial.KeyAverageBalance),
		OverdraftCount: bank.Int(financial.KeyOverdraftInstances),
		ITRYearsFiled:  itr.Int(financial.KeyConsistencyYears),
	}

	if p.Income == 0 {
		p.Income = firstAmount(records, models.DocIncomeTaxReturn, models.FieldTotalIncome)
	}
	if p.Income == 0 {
		p.Income = firstAmount(records, models.DocSalarySlip, models.FieldNetSalary) * 12
	}
	if p.CreditScore == 0 {
		p.CreditScore = int(firstAmount(records, models.DocCreditReport, models.FieldCreditScore))
	}
	if p.ITRYearsFiled == 0 {
		p.ITRYearsFiled = assessmentYears(records)
	}

	return p
}

func firstAmount(records []*models.ExtractionRecord, docType string, field models.FieldName) float64 {
	for _, rec := range records {
		if rec == nil || rec.DocumentType != docType {
			continue
		}
		if v := ParseAmount(rec.CanonicalFields[field]); v > 0 {
			return v
		}
	}
	return 0
}

// assessmentYears counts distinct assessment years across ITR records.
func assessmentYears(records []*models.ExtractionRecord) int {
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec == nil || rec.DocumentType != models.DocIncomeTaxReturn {
			continue
		}
		if ay := strings.TrimSpace(rec.CanonicalFields[models.FieldAssessmentYear]); ay != "" {
			seen[ay] = true
		}
	}
	return len(seen)
}

// ParseAmount reads the first number in s, ignoring currency marks and
// thousands separators. Unparseable input is zero.
func ParseAmount(s string) float64 {
	m := amountRe.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
