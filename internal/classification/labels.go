// internal/classification/labels.go
package classification

import (
	"strings"

	"loan-intake-workers/internal/models"
)

// DocumentTypes are the labels the classifier may return, in prompt order.
var DocumentTypes = []string{
	models.DocAadhaar,
	models.DocPAN,
	models.DocPassport,
	models.DocVoterID,
	models.DocDrivingLicense,
	models.DocSalarySlip,
	models.DocForm16,
	models.DocIncomeTaxReturn,
	models.DocBankStatement,
	"Offer Letter",
	"Employment Certificate",
	"Employee ID",
	"Increment Letter",
	"Appraisal Letter",
	"Cancelled Cheque",
	models.DocLoanApplicationForm,
	"Consent Form",
	"FATCA Declaration",
	"Proof of Residence",
	"Photograph",
	"Co-Applicant Document",
	models.DocCreditReport,
	"Insurance Proof",
	"Digital Consent",
	"Video KYC",
	models.DocOthers,
}

var labelIndex = func() map[string]string {
	idx := make(map[string]string, len(DocumentTypes))
	for _, t := range DocumentTypes {
		idx[strings.ToLower(t)] = t
	}
	return idx
}()

// CanonicalLabel returns the allowed spelling of label, or Others.
func CanonicalLabel(label string) (string, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(label), " "))
	if t, ok := labelIndex[key]; ok {
		return t, true
	}
	return models.DocOthers, false
}
