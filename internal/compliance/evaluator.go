// internal/compliance/evaluator.go
package compliance

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"loan-intake-workers/internal/models"
)

const (
	MinCreditScore = 700

	// NameMatchThreshold is the lowest token-sorted similarity two document
	// names may have before the pair needs manual review.
	NameMatchThreshold = 0.85
)

var (
	requiredKYCDocuments    = []string{"aadhaar", "pan"}
	acceptedIncomeDocuments = []string{"salary_slip", "form16", "bank_statements"}
)

const (
	recommendKYC      = "Please provide all required KYC documents"
	recommendIdentity = "Ensure consistent name across all documents"
	recommendIncome   = "Provide valid income proof documents"
	recommendRBI      = "Address credit score and employment verification requirements"
)

type Result struct {
	IsCompliant     bool                         `json:"isCompliant"`
	Violations      []models.ComplianceViolation `json:"violations"`
	Recommendations []string                     `json:"recommendations"`
}

type check struct {
	run            func(app ApplicationData, documents map[string]string) []models.ComplianceViolation
	recommendation string
}

var checks = []check{
	{run: checkKYC, recommendation: recommendKYC},
	{run: checkIdentity, recommendation: recommendIdentity},
	{run: checkIncome, recommendation: recommendIncome},
	{run: checkRBI, recommendation: recommendRBI},
}

// Evaluate runs the KYC, identity, income and RBI checks in that order.
// documents maps a document key (see DocumentKey) to its stored path.
// Each failing check adds one recommendation.
func Evaluate(app ApplicationData, documents map[string]string) Result {
	result := Result{
		Violations:      []models.ComplianceViolation{},
		Recommendations: []string{},
	}

	for _, c := range checks {
		violations := c.run(app, documents)
		if len(violations) == 0 {
			continue
		}
		result.Violations = append(result.Violations, violations...)
		result.Recommendations = append(result.Recommendations, c.recommendation)
	}

	result.IsCompliant = len(result.Violations) == 0
	return result
}

func checkKYC(_ ApplicationData, documents map[string]string) []models.ComplianceViolation {
	var violations []models.ComplianceViolation

	var missing []string
	for _, doc := range requiredKYCDocuments {
		if _, ok := documents[doc]; !ok {
			missing = append(missing, doc)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		violations = append(violations, violation("KYC001", CategoryKYC, models.SeverityHigh,
			"Missing required KYC documents: "+strings.Join(missing, ", ")))
	}

	for _, doc := range sortedKeys(documents) {
		if strings.TrimSpace(documents[doc]) == "" {
			violations = append(violations, violation("KYC001", CategoryKYC, models.SeverityHigh,
				fmt.Sprintf("Invalid or missing %s document path", doc)))
		}
	}

	return violations
}

func checkIdentity(app ApplicationData, documents map[string]string) []models.ComplianceViolation {
	var violations []models.ComplianceViolation

	if len(documents) < 2 {
		violations = append(violations, violation("ID001", CategoryIdentity, models.SeverityMedium,
			"Insufficient documents to verify identity consistency"))
	}

	if namesDiverge(app.ApplicantNames) {
		violations = append(violations, violation("ID001", CategoryIdentity, models.SeverityMedium,
			"Name variations detected across documents - requires manual review"))
	}

	return violations
}

func checkIncome(app ApplicationData, documents map[string]string) []models.ComplianceViolation {
	var violations []models.ComplianceViolation

	var provided []string
	for _, doc := range acceptedIncomeDocuments {
		if _, ok := documents[doc]; ok {
			provided = append(provided, doc)
		}
	}

	if len(provided) == 0 {
		return append(violations, violation("INC001", CategoryIncome, models.SeverityHigh,
			"No valid income proof document provided"))
	}

	for _, doc := range provided {
		if app.IncompleteDocuments[doc] {
			violations = append(violations, violation("INC001", CategoryIncome, models.SeverityHigh,
				fmt.Sprintf("Invalid %s: required fields missing or illegible", doc)))
		}
	}

	return violations
}

func checkRBI(app ApplicationData, _ map[string]string) []models.ComplianceViolation {
	var violations []models.ComplianceViolation

	switch {
	case app.CreditScore == nil:
		violations = append(violations, violation("RBI-001", CategoryRBI, models.SeverityHigh,
			"Credit score assessment missing"))
	case *app.CreditScore < MinCreditScore:
		violations = append(violations, violation("RBI-001", CategoryRBI, models.SeverityHigh,
			fmt.Sprintf("Credit score %d below minimum requirement (%d)", *app.CreditScore, MinCreditScore)))
	}

	if !app.EmploymentVerified {
		violations = append(violations, violation("RBI-001", CategoryRBI, models.SeverityMedium,
			"Employment history verification pending"))
	}

	return violations
}

func violation(ruleID, category string, severity models.Severity, message string) models.ComplianceViolation {
	return models.ComplianceViolation{
		RuleID:       ruleID,
		RuleCategory: category,
		Severity:     severity,
		Message:      message,
	}
}

// namesDiverge reports whether any two document names fall below NameMatchThreshold.
func namesDiverge(names map[string]string) bool {
	keys := sortedKeys(names)
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if NameSimilarity(names[keys[i]], names[keys[j]]) < NameMatchThreshold {
				return true
			}
		}
	}
	return false
}

// NameSimilarity compares two names with token order and case ignored.
// The result is in [0, 1].
func NameSimilarity(a, b string) float64 {
	a, b = tokenSort(a), tokenSort(b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func tokenSort(s string) string {
	tokens := strings.Fields(strings.ToUpper(strings.NewReplacer(".", " ", ",", " ").Replace(s)))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
