// internal/extraction/postprocess.go
package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"loan-intake-workers/internal/models"
)

// postProcessor fills canonical fields the reconciler left empty. It never
// overwrites a resolved value and never touches raw.
type postProcessor func(raw *models.RawExtractionResult, fields models.CanonicalFieldSet)

var postProcessors = map[string]postProcessor{
	models.DocBankStatement:   bankStatement,
	models.DocIncomeTaxReturn: incomeTaxReturn,
	models.DocCreditReport:    creditReport,
	models.DocAadhaar:         identityDocument,
	models.DocPAN:             panCard,
	models.DocPassport:        identityDocument,
	models.DocVoterID:         identityDocument,
	models.DocDrivingLicense:  identityDocument,
}

var (
	accountNumberRe = regexp.MustCompile(`(?i)\b(?:account|a/c|acc|ac)\.?\s*(?:no|number|num)\.?\s*[:\-]?\s*([0-9]{9,18})\b`)
	digitsRe        = regexp.MustCompile(`[0-9]{9,18}`)
	ifscRe          = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)
	bankNameRe      = regexp.MustCompile(`\b((?:[A-Z][A-Za-z&.]*[ \t]+){1,4}(?:BANK|Bank)(?:[ \t]+(?:of|OF)[ \t]+[A-Z][A-Za-z]+)?)\b`)
	panRe           = regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`)
	dobRe           = regexp.MustCompile(`\b(?:0[1-9]|[12][0-9]|3[01])[/-](?:0[1-9]|1[0-2])[/-][0-9]{4}\b`)
	assessmentRe    = regexp.MustCompile(`(?i)assessment\s+year\s*[:\-]?\s*([0-9]{4}\s*-\s*[0-9]{2,4})`)
	yearRangeRe     = regexp.MustCompile(`\b(20[0-9]{2}-[0-9]{2,4})\b`)
	totalIncomeRe   = regexp.MustCompile(`(?i)(?:gross\s+)?total\s+income\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	creditScoreRe   = regexp.MustCompile(`(?i)(?:credit|cibil)\s*score\s*[:\-]?\s*([0-9]{3})\b`)
	reportDateRe    = regexp.MustCompile(`(?i)(?:report\s*date|date\s*of\s*report)\s*[:\-]?\s*([0-9]{1,2}[/.\-][0-9]{1,2}[/.\-][0-9]{4}|[0-9]{4}-[0-9]{2}-[0-9]{2})`)
	activeLoansRe   = regexp.MustCompile(`(?i)active\s+(?:loans|accounts)\s*[:\-]?\s*([0-9]+)`)
	totalEMIRe      = regexp.MustCompile(`(?i)total\s+emi\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
)

func postProcess(docType string, raw *models.RawExtractionResult, fields models.CanonicalFieldSet) {
	if pp, ok := postProcessors[docType]; ok {
		pp(raw, fields)
	}
}

func fill(fields models.CanonicalFieldSet, f models.FieldName, value string) {
	value = strings.TrimSpace(value)
	if value == "" || fields.Has(f) {
		return
	}
	fields[f] = value
}

// bankStatement recovers account number, IFSC and bank name from key-value
// pairs, then table cells, then the full text.
func bankStatement(raw *models.RawExtractionResult, fields models.CanonicalFieldSet) {
	recoverField(raw, fields, models.FieldAccountNumber, isAccountNumberLabel, func(v string) string {
		return digitsRe.FindString(strings.ReplaceAll(v, " ", ""))
	}, func(text string) string {
		return firstGroup(accountNumberRe, text)
	})

	recoverField(raw, fields, models.FieldIFSC, func(key string) bool {
		return strings.HasPrefix(key, "ifs")
	}, func(v string) string {
		return ifscRe.FindString(strings.ToUpper(strings.ReplaceAll(v, " ", "")))
	}, func(text string) string {
		return ifscRe.FindString(text)
	})

	recoverField(raw, fields, models.FieldBankName, func(key string) bool {
		return strings.Contains(key, "bank") && !strings.Contains(key, "ifsc") && !strings.Contains(key, "account")
	}, strings.TrimSpace, func(text string) string {
		return firstGroup(bankNameRe, text)
	})
}

func isAccountNumberLabel(key string) bool {
	if strings.Contains(key, "holder") || strings.Contains(key, "type") || strings.Contains(key, "customer") {
		return false
	}
	return (strings.Contains(key, "account") || strings.HasPrefix(key, "a/c") || strings.HasPrefix(key, "acc")) &&
		(strings.Contains(key, "no") || strings.Contains(key, "num"))
}

// recoverField tries key-value pairs, then table cells, then text for f.
// keyMatch receives normalized labels; value validates a candidate.
func recoverField(
	raw *models.RawExtractionResult,
	fields models.CanonicalFieldSet,
	f models.FieldName,
	keyMatch func(string) bool,
	value func(string) string,
	fromText func(string) string,
) {
	if fields.Has(f) || raw == nil {
		return
	}

	for _, kv := range raw.KeyValuePairs {
		if keyMatch(normalizeLabel(kv.Key)) {
			if v := value(kv.Value); v != "" {
				fill(fields, f, v)
				return
			}
		}
	}

	for _, cell := range raw.TableCells {
		if !keyMatch(normalizeLabel(cell.Content)) {
			continue
		}
		for _, n := range neighbours(raw.TableCells, cell) {
			if v := value(n.Content); v != "" {
				fill(fields, f, v)
				return
			}
		}
	}

	fill(fields, f, fromText(raw.FullText()))
}

// neighbours returns the cell to the right of c, then the one below it.
func neighbours(cells []models.TableCell, c models.TableCell) []models.TableCell {
	var right, below []models.TableCell
	for _, o := range cells {
		if o.Table != c.Table {
			continue
		}
		if o.Row == c.Row && o.Column == c.Column+1 {
			right = append(right, o)
		}
		if o.Column == c.Column && o.Row == c.Row+1 {
			below = append(below, o)
		}
	}
	return append(right, below...)
}

func incomeTaxReturn(raw *models.RawExtractionResult, fields models.CanonicalFieldSet) {
	text := raw.FullText()
	fill(fields, models.FieldPAN, panRe.FindString(text))

	ay := firstGroup(assessmentRe, text)
	if ay == "" {
		ay = firstGroup(yearRangeRe, text)
	}
	fill(fields, models.FieldAssessmentYear, strings.Join(strings.Fields(ay), ""))

	fill(fields, models.FieldTotalIncome, cleanAmount(firstGroup(totalIncomeRe, text)))
}

func creditReport(raw *models.RawExtractionResult, fields models.CanonicalFieldSet) {
	text := raw.FullText()

	if s := firstGroup(creditScoreRe, text); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 300 && n <= 900 {
			fill(fields, models.FieldCreditScore, s)
		}
	}
	if d := firstGroup(reportDateRe, text); d != "" {
		fill(fields, models.FieldReportDate, NormalizeDate(strings.ReplaceAll(d, ".", "/")))
	}
	fill(fields, models.FieldActiveLoans, firstGroup(activeLoansRe, text))
	fill(fields, models.FieldTotalEMI, cleanAmount(firstGroup(totalEMIRe, text)))
}

func panCard(raw *models.RawExtractionResult, fields models.CanonicalFieldSet) {
	fill(fields, models.FieldPAN, panRe.FindString(raw.FullText()))
	identityDocument(raw, fields)
}

// identityDocument splits a full name into first and last names and picks up
// a dd/mm/yyyy date of birth.
func identityDocument(raw *models.RawExtractionResult, fields models.CanonicalFieldSet) {
	text := raw.FullText()

	if !fields.Has(models.FieldFirstName) || !fields.Has(models.FieldLastName) {
		name := fields.Get(models.FieldFullName)
		if name == "" {
			name, _ = LocateName(text)
		}
		if parts := strings.Fields(name); len(parts) >= 2 {
			fill(fields, models.FieldFirstName, parts[0])
			fill(fields, models.FieldLastName, strings.Join(parts[1:], " "))
		}
	}

	if dob := dobRe.FindString(text); dob != "" {
		fill(fields, models.FieldDateOfBirth, NormalizeDate(dob))
	}
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func cleanAmount(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
