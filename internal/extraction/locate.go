// internal/extraction/locate.go
package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"loan-intake-workers/internal/models"
)

// lineScanWindow is how many lines below a label are searched for its value.
const lineScanWindow = 5

// Locate recovers a value for field from the document text. A same-line
// "<label>: value" match wins; otherwise the first line within
// lineScanWindow lines below a line mentioning the label is returned.
// Values without a letter or digit are never accepted.
func Locate(field models.FieldName, labelVariants []string, fullText string) (string, bool) {
	if strings.TrimSpace(fullText) == "" {
		return "", false
	}
	if len(labelVariants) == 0 {
		labelVariants = []string{splitCamel(string(field))}
	}

	for _, label := range labelVariants {
		re := labelPattern(label)
		if re == nil {
			continue
		}
		for _, m := range re.FindAllStringSubmatch(fullText, -1) {
			if v := strings.TrimSpace(m[1]); hasAlphanumeric(v) {
				return v, true
			}
		}
	}

	lines := strings.Split(fullText, "\n")
	for _, label := range labelVariants {
		needle := strings.ToLower(strings.TrimSpace(label))
		if needle == "" {
			continue
		}
		for i, line := range lines {
			if !strings.Contains(strings.ToLower(line), needle) {
				continue
			}
			for j := i + 1; j < len(lines) && j <= i+lineScanWindow; j++ {
				if v := strings.TrimSpace(lines[j]); hasAlphanumeric(v) {
					return v, true
				}
			}
		}
	}

	return "", false
}

func labelPattern(label string) *regexp.Regexp {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	prefix := ""
	if isWordByte(label[0]) {
		prefix = `\b`
	}
	return regexp.MustCompile(`(?i)` + prefix + regexp.QuoteMeta(label) + `[ \t]*\.?[ \t]*[:\-]?[ \t]*([A-Za-z0-9 \t,./]+)`)
}

func hasAlphanumeric(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

var (
	uppercaseNameLine = regexp.MustCompile(`^[A-Z][A-Z.']*(?:[ \t]+[A-Z][A-Z.']*)+$`)

	// nonNameLabels are headings that look like names on Indian ID cards.
	nonNameLabels = []string{
		"INCOME TAX",
		"DEPARTMENT",
		"GOVT",
		"GOVERNMENT",
		"INDIA",
		"PERMANENT ACCOUNT",
		"ACCOUNT NUMBER",
		"ELECTION COMMISSION",
		"IDENTIFICATION AUTHORITY",
		"DRIVING LICEN",
		"UNION OF",
		"REPUBLIC",
		"DATE OF BIRTH",
		"SIGNATURE",
		"FATHER",
		"ADDRESS",
		"PASSPORT",
		"CARD",
	}
)

// LocateName returns the first line made of two or more uppercase words that
// is not a known card heading.
func LocateName(fullText string) (string, bool) {
	for _, line := range strings.Split(fullText, "\n") {
		line = strings.TrimSpace(line)
		if !uppercaseNameLine.MatchString(line) || isNonNameLabel(line) {
			continue
		}
		return strings.Join(strings.Fields(line), " "), true
	}
	return "", false
}

func isNonNameLabel(line string) bool {
	for _, label := range nonNameLabels {
		if strings.Contains(line, label) {
			return true
		}
	}
	return false
}
