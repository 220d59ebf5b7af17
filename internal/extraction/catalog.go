// internal/extraction/catalog.go
package extraction

import (
	"sort"
	"strings"
	"unicode"

	"loan-intake-workers/internal/models"
)

// DocumentTypeProfile is the static extraction configuration for one document type.
type DocumentTypeProfile struct {
	Name             string
	RequiredFields   []models.FieldName
	OptionalFields   []models.FieldName
	FieldNameAliases map[string]models.FieldName
	ExtractionModel  string
}

// Vocabulary returns every canonical name the profile may produce.
func (p *DocumentTypeProfile) Vocabulary() map[models.FieldName]struct{} {
	vocab := make(map[models.FieldName]struct{}, len(p.RequiredFields)+len(p.OptionalFields)+len(p.FieldNameAliases))
	for _, f := range p.RequiredFields {
		vocab[f] = struct{}{}
	}
	for _, f := range p.OptionalFields {
		vocab[f] = struct{}{}
	}
	for _, f := range p.FieldNameAliases {
		vocab[f] = struct{}{}
	}
	return vocab
}

// InVocabulary reports whether f belongs to the profile.
func (p *DocumentTypeProfile) InVocabulary(f models.FieldName) bool {
	_, ok := p.Vocabulary()[f]
	return ok
}

// IsCatchAll reports whether this is the profile used for unrecognized documents.
func (p *DocumentTypeProfile) IsCatchAll() bool {
	return p.Name == models.DocOthers
}

// LabelVariants lists the printed labels that may precede a value for f,
// longest first so that "PAN Number" is tried before "PAN".
func (p *DocumentTypeProfile) LabelVariants(f models.FieldName) []string {
	seen := map[string]bool{}
	var variants []string
	add := func(label string) {
		label = strings.TrimSpace(label)
		key := strings.ToLower(label)
		if label == "" || seen[key] {
			return
		}
		seen[key] = true
		variants = append(variants, label)
	}

	add(splitCamel(string(f)))
	add(string(f))
	for alias, target := range p.FieldNameAliases {
		if target == f {
			add(alias)
		}
	}

	sort.SliceStable(variants, func(i, j int) bool {
		if len(variants[i]) != len(variants[j]) {
			return len(variants[i]) > len(variants[j])
		}
		return variants[i] < variants[j]
	})
	return variants
}

// splitCamel turns "DateOfBirth" into "Date Of Birth". Runs of capitals stay together.
func splitCamel(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Catalog holds the immutable set of document profiles.
type Catalog struct {
	profiles map[string]*DocumentTypeProfile
	fallback *DocumentTypeProfile
}

// NewCatalog builds a catalog. A profile named Others, if supplied, becomes
// the fallback for unknown types; otherwise an empty one is created.
func NewCatalog(profiles ...*DocumentTypeProfile) *Catalog {
	c := &Catalog{profiles: make(map[string]*DocumentTypeProfile, len(profiles))}
	for _, p := range profiles {
		c.profiles[normalizeTypeName(p.Name)] = p
		if p.IsCatchAll() {
			c.fallback = p
		}
	}
	if c.fallback == nil {
		c.fallback = &DocumentTypeProfile{Name: models.DocOthers, ExtractionModel: modelGeneric}
		c.profiles[normalizeTypeName(models.DocOthers)] = c.fallback
	}
	return c
}

// Lookup returns the profile for docType. Unknown types resolve to the
// catch-all profile and ok is false.
func (c *Catalog) Lookup(docType string) (*DocumentTypeProfile, bool) {
	if p, ok := c.profiles[normalizeTypeName(docType)]; ok {
		return p, true
	}
	return c.fallback, false
}

// Types lists the configured document type names, sorted.
func (c *Catalog) Types() []string {
	out := make([]string, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p.Name)
	}
	sort.Strings(out)
	return out
}

func normalizeTypeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

const (
	modelIDDocument    = "prebuilt-idDocument"
	modelBankStatement = "prebuilt-bankStatement"
	modelGeneric       = "prebuilt-document"
)

var identityAliases = map[string]models.FieldName{
	"First Name":       models.FieldFirstName,
	"Given Name":       models.FieldFirstName,
	"Given Names":      models.FieldFirstName,
	"Last Name":        models.FieldLastName,
	"Surname":          models.FieldLastName,
	"Name":             models.FieldFullName,
	"Full Name":        models.FieldFullName,
	"Father's Name":    models.FieldFatherName,
	"Father Name":      models.FieldFatherName,
	"Date of Birth":    models.FieldDateOfBirth,
	"DOB":              models.FieldDateOfBirth,
	"D.O.B":            models.FieldDateOfBirth,
	"Birth Date":       models.FieldDateOfBirth,
	"Sex":              models.FieldSex,
	"Gender":           models.FieldSex,
	"Nationality":      models.FieldNationality,
	"Document Number":  models.FieldDocumentNumber,
	"Address":          models.FieldAddress,
	"DateOfIssue":      models.FieldIssueDate,
	"Date of Issue":    models.FieldIssueDate,
	"DateOfExpiration": models.FieldExpiryDate,
	"Date of Expiry":   models.FieldExpiryDate,
	"Expiry Date":      models.FieldExpiryDate,
	"Valid Till":       models.FieldExpiryDate,
}

func withAliases(base map[string]models.FieldName, extra map[string]models.FieldName) map[string]models.FieldName {
	out := make(map[string]models.FieldName, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var identityOptional = []models.FieldName{
	models.FieldFullName,
	models.FieldFatherName,
	models.FieldSex,
	models.FieldNationality,
	models.FieldIssueDate,
}

// DefaultCatalog returns the loan-intake document profiles.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		&DocumentTypeProfile{
			Name: models.DocAadhaar,
			RequiredFields: []models.FieldName{
				models.FieldFirstName, models.FieldLastName, models.FieldDateOfBirth,
				models.FieldDocumentNumber, models.FieldAddress,
			},
			OptionalFields: identityOptional,
			FieldNameAliases: withAliases(identityAliases, map[string]models.FieldName{
				"Aadhaar Number": models.FieldDocumentNumber,
				"Aadhaar No":     models.FieldDocumentNumber,
				"UID":            models.FieldDocumentNumber,
				"VID":            models.FieldDocumentNumber,
			}),
			ExtractionModel: modelIDDocument,
		},
		&DocumentTypeProfile{
			Name: models.DocPAN,
			RequiredFields: []models.FieldName{
				models.FieldFirstName, models.FieldLastName, models.FieldDateOfBirth, models.FieldPAN,
			},
			OptionalFields: identityOptional,
			FieldNameAliases: withAliases(identityAliases, map[string]models.FieldName{
				"P A N":                    models.FieldPAN,
				"PAN":                      models.FieldPAN,
				"PAN Number":               models.FieldPAN,
				"Permanent Account Number": models.FieldPAN,
				"DocumentNumber":           models.FieldPAN,
				"Document Number":          models.FieldPAN,
			}),
			ExtractionModel: modelIDDocument,
		},
		&DocumentTypeProfile{
			Name: models.DocPassport,
			RequiredFields: []models.FieldName{
				models.FieldFirstName, models.FieldLastName, models.FieldDateOfBirth,
				models.FieldDocumentNumber, models.FieldExpiryDate,
			},
			OptionalFields: identityOptional,
			FieldNameAliases: withAliases(identityAliases, map[string]models.FieldName{
				"Passport No":     models.FieldDocumentNumber,
				"Passport Number": models.FieldDocumentNumber,
			}),
			ExtractionModel: modelIDDocument,
		},
		&DocumentTypeProfile{
			Name: models.DocVoterID,
			RequiredFields: []models.FieldName{
				models.FieldFirstName, models.FieldLastName, models.FieldDocumentNumber, models.FieldAddress,
			},
			OptionalFields: identityOptional,
			FieldNameAliases: withAliases(identityAliases, map[string]models.FieldName{
				"EPIC No":        models.FieldDocumentNumber,
				"EPIC Number":    models.FieldDocumentNumber,
				"Elector's Name": models.FieldFullName,
			}),
			ExtractionModel: modelIDDocument,
		},
		&DocumentTypeProfile{
			Name: models.DocDrivingLicense,
			RequiredFields: []models.FieldName{
				models.FieldFirstName, models.FieldLastName, models.FieldDateOfBirth,
				models.FieldDocumentNumber, models.FieldExpiryDate,
			},
			OptionalFields: identityOptional,
			FieldNameAliases: withAliases(identityAliases, map[string]models.FieldName{
				"DL No":          models.FieldDocumentNumber,
				"Licence No":     models.FieldDocumentNumber,
				"License Number": models.FieldDocumentNumber,
				"Validity (NT)":  models.FieldExpiryDate,
			}),
			ExtractionModel: modelIDDocument,
		},
		&DocumentTypeProfile{
			Name:           models.DocBankStatement,
			RequiredFields: []models.FieldName{models.FieldAccountNumber, models.FieldIFSC, models.FieldBankName},
			OptionalFields: []models.FieldName{
				models.FieldAccountHolderName, models.FieldStatementPeriod, models.FieldClosingBalance,
			},
			FieldNameAliases: map[string]models.FieldName{
				"Account Number":      models.FieldAccountNumber,
				"Account No":          models.FieldAccountNumber,
				"A/C No":              models.FieldAccountNumber,
				"IFSC Code":           models.FieldIFSC,
				"IFS Code":            models.FieldIFSC,
				"Bank":                models.FieldBankName,
				"Bank Name":           models.FieldBankName,
				"Account Holder":      models.FieldAccountHolderName,
				"Account Holder Name": models.FieldAccountHolderName,
				"Customer Name":       models.FieldAccountHolderName,
				"Statement Period":    models.FieldStatementPeriod,
				"Closing Balance":     models.FieldClosingBalance,
			},
			ExtractionModel: modelBankStatement,
		},
		&DocumentTypeProfile{
			Name: models.DocSalarySlip,
			RequiredFields: []models.FieldName{
				models.FieldEmployeeName, models.FieldEmployerName, models.FieldNetSalary,
				models.FieldMonth, models.FieldYear,
			},
			OptionalFields: []models.FieldName{models.FieldGrossSalary},
			FieldNameAliases: map[string]models.FieldName{
				"Employee Name":  models.FieldEmployeeName,
				"Name":           models.FieldEmployeeName,
				"Employer":       models.FieldEmployerName,
				"Company Name":   models.FieldEmployerName,
				"Net Pay":        models.FieldNetSalary,
				"Net Salary":     models.FieldNetSalary,
				"Take Home":      models.FieldNetSalary,
				"Gross Salary":   models.FieldGrossSalary,
				"Gross Earnings": models.FieldGrossSalary,
				"Pay Month":      models.FieldMonth,
			},
			ExtractionModel: modelGeneric,
		},
		&DocumentTypeProfile{
			Name: models.DocLoanApplicationForm,
			RequiredFields: []models.FieldName{
				models.FieldApplicantName, models.FieldLoanAmount, models.FieldApplicationDate,
			},
			OptionalFields: []models.FieldName{models.FieldLoanPurpose},
			FieldNameAliases: map[string]models.FieldName{
				"Applicant Name":    models.FieldApplicantName,
				"Name of Applicant": models.FieldApplicantName,
				"Loan Amount":       models.FieldLoanAmount,
				"Amount Requested":  models.FieldLoanAmount,
				"Date":              models.FieldApplicationDate,
				"Application Date":  models.FieldApplicationDate,
				"Purpose of Loan":   models.FieldLoanPurpose,
			},
			ExtractionModel: modelGeneric,
		},
		&DocumentTypeProfile{
			Name: models.DocForm16,
			RequiredFields: []models.FieldName{
				models.FieldEmployeeName, models.FieldEmployerName, models.FieldAssessmentYear,
				models.FieldGrossSalary, models.FieldTaxDeducted,
			},
			OptionalFields: []models.FieldName{models.FieldPAN},
			FieldNameAliases: map[string]models.FieldName{
				"Name of the Employee": models.FieldEmployeeName,
				"Name of the Employer": models.FieldEmployerName,
				"Assessment Year":      models.FieldAssessmentYear,
				"AY":                   models.FieldAssessmentYear,
				"Gross Salary":         models.FieldGrossSalary,
				"Total Tax Deducted":   models.FieldTaxDeducted,
				"TDS":                  models.FieldTaxDeducted,
				"PAN of the Employee":  models.FieldPAN,
			},
			ExtractionModel: modelGeneric,
		},
		&DocumentTypeProfile{
			Name:           models.DocIncomeTaxReturn,
			RequiredFields: []models.FieldName{models.FieldPAN, models.FieldAssessmentYear, models.FieldTotalIncome},
			OptionalFields: []models.FieldName{models.FieldFullName},
			FieldNameAliases: map[string]models.FieldName{
				"PAN":                models.FieldPAN,
				"PAN Number":         models.FieldPAN,
				"Assessment Year":    models.FieldAssessmentYear,
				"AY":                 models.FieldAssessmentYear,
				"Total Income":       models.FieldTotalIncome,
				"Gross Total Income": models.FieldTotalIncome,
				"Name":               models.FieldFullName,
			},
			ExtractionModel: modelGeneric,
		},
		&DocumentTypeProfile{
			Name:           models.DocCreditReport,
			RequiredFields: []models.FieldName{models.FieldCreditScore, models.FieldReportDate},
			OptionalFields: []models.FieldName{models.FieldActiveLoans, models.FieldTotalEMI, models.FieldFullName},
			FieldNameAliases: map[string]models.FieldName{
				"Credit Score":    models.FieldCreditScore,
				"CIBIL Score":     models.FieldCreditScore,
				"Score":           models.FieldCreditScore,
				"Report Date":     models.FieldReportDate,
				"Date of Report":  models.FieldReportDate,
				"Active Loans":    models.FieldActiveLoans,
				"Active Accounts": models.FieldActiveLoans,
				"Total EMI":       models.FieldTotalEMI,
				"Name":            models.FieldFullName,
			},
			ExtractionModel: modelGeneric,
		},
		&DocumentTypeProfile{
			Name:            models.DocOthers,
			ExtractionModel: modelGeneric,
		},
	)
}
