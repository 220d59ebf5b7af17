// internal/models/extraction.go
package models

import "strings"

// FieldName is a canonical field name from the document-type vocabulary.
type FieldName string

const (
	FieldFirstName         FieldName = "FirstName"
	FieldLastName          FieldName = "LastName"
	FieldFullName          FieldName = "FullName"
	FieldFatherName        FieldName = "FatherName"
	FieldDateOfBirth       FieldName = "DateOfBirth"
	FieldSex               FieldName = "Sex"
	FieldNationality       FieldName = "Nationality"
	FieldDocumentNumber    FieldName = "DocumentNumber"
	FieldPAN               FieldName = "PAN"
	FieldAddress           FieldName = "Address"
	FieldIssueDate         FieldName = "IssueDate"
	FieldExpiryDate        FieldName = "ExpiryDate"
	FieldAccountNumber     FieldName = "AccountNumber"
	FieldIFSC              FieldName = "IFSC"
	FieldBankName          FieldName = "BankName"
	FieldAccountHolderName FieldName = "AccountHolderName"
	FieldStatementPeriod   FieldName = "StatementPeriod"
	FieldClosingBalance    FieldName = "ClosingBalance"
	FieldEmployeeName      FieldName = "EmployeeName"
	FieldEmployerName      FieldName = "EmployerName"
	FieldNetSalary         FieldName = "NetSalary"
	FieldGrossSalary       FieldName = "GrossSalary"
	FieldMonth             FieldName = "Month"
	FieldYear              FieldName = "Year"
	FieldApplicantName     FieldName = "ApplicantName"
	FieldLoanAmount        FieldName = "LoanAmount"
	FieldLoanPurpose       FieldName = "LoanPurpose"
	FieldApplicationDate   FieldName = "ApplicationDate"
	FieldAssessmentYear    FieldName = "AssessmentYear"
	FieldTaxDeducted       FieldName = "TaxDeducted"
	FieldTotalIncome       FieldName = "TotalIncome"
	FieldCreditScore       FieldName = "CreditScore"
	FieldReportDate        FieldName = "ReportDate"
	FieldActiveLoans       FieldName = "ActiveLoans"
	FieldTotalEMI          FieldName = "TotalEMI"
)

// Document types understood by the extraction catalog and the classifier.
const (
	DocAadhaar             = "Aadhaar Card"
	DocPAN                 = "PAN Card"
	DocPassport            = "Passport"
	DocVoterID             = "VoterID"
	DocDrivingLicense      = "Driving License"
	DocBankStatement       = "Bank Statement"
	DocSalarySlip          = "Salary Slip"
	DocLoanApplicationForm = "Loan Application Form"
	DocForm16              = "Form 16"
	DocIncomeTaxReturn     = "Income Tax Return"
	DocCreditReport        = "Credit Report"
	DocOthers              = "Others"
)

// CanonicalFieldSet maps canonical field names to normalized string values.
type CanonicalFieldSet map[FieldName]string

// Get returns the trimmed value for f, or "".
func (c CanonicalFieldSet) Get(f FieldName) string {
	return strings.TrimSpace(c[f])
}

// Has reports whether f is present with a non-blank value.
func (c CanonicalFieldSet) Has(f FieldName) bool {
	return c.Get(f) != ""
}

func (c CanonicalFieldSet) Clone() CanonicalFieldSet {
	out := make(CanonicalFieldSet, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

type KeyValuePair struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence,omitempty"`
}

type TableCell struct {
	Table   int    `json:"table"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Content string `json:"content"`
}

// RawExtractionResult is the backend's untouched output for one document.
type RawExtractionResult struct {
	Fields        map[string]interface{} `json:"fields"`
	KeyValuePairs []KeyValuePair         `json:"keyValuePairs,omitempty"`
	TableCells    []TableCell            `json:"tableCells,omitempty"`
	Lines         []string               `json:"lines,omitempty"`
}

// FullText joins the OCR lines with newlines.
func (r *RawExtractionResult) FullText() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Lines, "\n")
}

// ExtractionRecord is the per-document outcome handed to storage and downstream scoring.
type ExtractionRecord struct {
	DocumentID       string                 `json:"documentId,omitempty"`
	DocumentType     string                 `json:"documentType"`
	CanonicalFields  CanonicalFieldSet      `json:"canonicalFields"`
	AdditionalFields map[string]string      `json:"additionalFields,omitempty"`
	RawFields        map[string]interface{} `json:"rawExtractedFields,omitempty"`
	IsComplete       bool                   `json:"isComplete"`
	MissingFields    []FieldName            `json:"missingFields"`
	FlaggedByAI      bool                   `json:"flaggedByAi"`
	FlaggedReason    string                 `json:"flaggedReason"`
	ExtractionError  string                 `json:"extractionError,omitempty"`

	// FullText is the OCR text the record was built from. It feeds the
	// search index and is not persisted with the record.
	FullText string `json:"-"`
}

// Classification is the classifier verdict for a document.
type Classification struct {
	DocumentType string `json:"documentType"`
	Reason       string `json:"reason"`
	Flagged      bool   `json:"flagged"`
}
