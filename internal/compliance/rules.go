// internal/compliance/rules.go
package compliance

// Rule categories. Violations carry one of these as RuleCategory.
const (
	CategoryKYC              = "KYC Compliance"
	CategoryIdentity         = "Identity Consistency"
	CategoryAddress          = "Address Verification"
	CategorySignature        = "Signature Validation"
	CategoryAge              = "Age Eligibility"
	CategoryIncome           = "Income Documentation"
	CategoryApplication      = "Loan Application Completeness"
	CategoryForm             = "Form Validity"
	CategoryFraud            = "Document Fraud Prevention"
	CategoryCompliance       = "Compliance Review"
	CategoryRBI              = "RBI Regulation"
	CategoryDocumentValidity = "Document Validity"
)

type Rule struct {
	ID       string `json:"ruleId"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Entity   string `json:"entity,omitempty"`
	Source   string `json:"source,omitempty"`
}

var internalRules = []Rule{
	{
		ID:       "KYC001",
		Category: CategoryKYC,
		Title:    "Mandatory KYC Verification",
		Content:  "Every loan application must include valid KYC documents such as Passport, PAN Card, Voter ID. Documents must be verified before approval.",
	},
	{
		ID:       "ID001",
		Category: CategoryIdentity,
		Title:    "Name Consistency Across Documents",
		Content:  "Applicant's full name must match exactly across all submitted identity and income documents. Minor spelling variations must be flagged for manual review.",
	},
	{
		ID:       "ADDR001",
		Category: CategoryAddress,
		Title:    "Address Confirmation",
		Content:  "At least one identity document must contain a complete and valid address. Address should match the address mentioned in the loan application form. Any mismatch should trigger a review.",
	},
	{
		ID:       "SIG001",
		Category: CategorySignature,
		Title:    "Signature Matching",
		Content:  "Applicant's signature must match across the loan application form and supporting documents such as Passport or PAN.",
	},
	{
		ID:       "AGE001",
		Category: CategoryAge,
		Title:    "Minimum and Maximum Age",
		Content:  "Applicants must be between 21 and 58 years old at the time of application. DOB should be parsed from Passport, PAN, or Voter ID and validated against this range.",
	},
	{
		ID:       "INC001",
		Category: CategoryIncome,
		Title:    "Income Proof Requirement",
		Content:  "At least one valid income document must be submitted (Salary Slip, Bank Statement, Income Tax Return, Form 16). Each must include employer name, salary/net income, and recent date (within 3 months).",
	},
	{
		ID:       "APP001",
		Category: CategoryApplication,
		Title:    "Mandatory Fields in Loan Form",
		Content:  "Loan Application Form must contain Applicant Name, Loan Amount Requested, Application Date, and Signature. Missing fields must be flagged as 'incomplete'.",
	},
	{
		ID:       "FORM001",
		Category: CategoryForm,
		Title:    "Form Freshness",
		Content:  "Loan Application Form and supporting documents must be dated within the last 6 months to be considered valid.",
	},
	{
		ID:       "FRD001",
		Category: CategoryFraud,
		Title:    "Forgery and Tampering Detection",
		Content:  "Any signs of digital tampering, overwriting, or image artifacts should trigger an automatic flag for fraud detection.",
	},
	{
		ID:       "CMP001",
		Category: CategoryCompliance,
		Title:    "Final Compliance Check",
		Content:  "All required fields must be extracted, verified, and marked 'complete' before a document can be approved by the loan officer. Missing or uncertain fields must be listed with reasoning.",
	},
}

var rbiRules = []Rule{
	{
		ID:       "RBI-001",
		Category: CategoryRBI,
		Title:    "Eligibility & Creditworthiness",
		Content:  "Lenders must assess creditworthiness using credit score, income stability, employment history, and existing debts.",
		Entity:   "Borrower",
		Source:   "RBI Guidelines for Personal Loans",
	},
	{
		ID:       "RBI-002",
		Category: CategoryRBI,
		Title:    "Credit Information",
		Content:  "Lenders must use credit information companies (e.g., CIBIL) to obtain credit scores and reports.",
		Entity:   "Lender",
		Source:   "RBI Guidelines for Personal Loans",
	},
	{
		ID:       "RBI-003",
		Category: CategoryRBI,
		Title:    "Interest Rates Transparency",
		Content:  "Interest rates must be disclosed transparently, including the Annual Percentage Rate (APR).",
		Entity:   "Lender",
		Source:   "RBI Guidelines for Personal Loans",
	},
	{
		ID:       "RBI-004",
		Category: CategoryRBI,
		Title:    "Communication of Loan Terms",
		Content:  "Loan terms and repayment schedules must be clearly communicated in the borrower's preferred language.",
		Entity:   "Lender",
		Source:   "Fair Practices Code (FPC)",
	},
	{
		ID:       "RBI-005",
		Category: CategoryRBI,
		Title:    "Non-Discrimination & Harassment",
		Content:  "Lenders must avoid discrimination based on caste, religion, or gender and must not harass borrowers.",
		Entity:   "Lender",
		Source:   "Fair Practices Code (FPC)",
	},
	{
		ID:       "RBI-006",
		Category: CategoryRBI,
		Title:    "Loan Processing & Disclosure",
		Content:  "Loan applications must be acknowledged with timelines provided. Loan terms must be disclosed in full.",
		Entity:   "Lender",
		Source:   "RBI Processing Guidelines",
	},
	{
		ID:       "RBI-007",
		Category: CategoryRBI,
		Title:    "Foreclosure & Prepayment",
		Content:  "Borrowers must be allowed to prepay or foreclose loans, with charges communicated in advance.",
		Entity:   "Borrower",
		Source:   "RBI Foreclosure Rules",
	},
	{
		ID:       "RBI-008",
		Category: CategoryRBI,
		Title:    "Grievance Redressal",
		Content:  "Lenders must resolve complaints within 30 days and provide escalation paths including Ombudsman.",
		Entity:   "Lender",
		Source:   "RBI Grievance Redressal Guidelines",
	},
	{
		ID:       "RBI-009",
		Category: CategoryRBI,
		Title:    "Data Privacy",
		Content:  "Lenders must ensure data privacy, obtain explicit borrower consent for non-loan-related data usage.",
		Entity:   "Lender",
		Source:   "RBI Digital Lending Guidelines",
	},
	{
		ID:       "RBI-010",
		Category: CategoryRBI,
		Title:    "Debt Restructuring Options",
		Content:  "During financial distress, lenders must offer restructuring options like tenure extension or lower interest.",
		Entity:   "Borrower",
		Source:   "RBI Restructuring Guidelines",
	},
	{
		ID:       "RBI-011",
		Category: CategoryRBI,
		Title:    "Monitoring & Internal Reporting",
		Content:  "Banks must submit regular loan portfolio reports and conduct internal audits for RBI compliance.",
		Entity:   "Lender",
		Source:   "RBI Compliance Framework",
	},
}

// Rules returns the internal rules followed by the RBI rules.
func Rules() []Rule {
	out := make([]Rule, 0, len(internalRules)+len(rbiRules))
	out = append(out, internalRules...)
	return append(out, rbiRules...)
}

func RuleByID(id string) (Rule, bool) {
	for _, r := range Rules() {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
