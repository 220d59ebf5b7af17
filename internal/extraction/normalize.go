// internal/extraction/normalize.go
package extraction

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"loan-intake-workers/internal/models"
)

const isoDate = "2006-01-02"

var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var dateFields = map[models.FieldName]bool{
	models.FieldDateOfBirth:     true,
	models.FieldExpiryDate:      true,
	models.FieldIssueDate:       true,
	models.FieldApplicationDate: true,
	models.FieldReportDate:      true,
}

// addressOrder is the print order for structured address values.
var addressOrder = []string{
	"houseNumber", "poBox", "road", "streetAddress", "unit", "cityDistrict",
	"city", "suburb", "state", "stateDistrict", "postalCode", "countryRegion",
}

// NormalizeValue renders a backend value as a plain string.
// Nested objects are flattened; a "content" entry is preferred when present.
func NormalizeValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case time.Time:
		return val.Format(isoDate)
	case map[string]interface{}:
		return normalizeObject(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := NormalizeValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func normalizeObject(obj map[string]interface{}) string {
	if content, ok := obj["content"]; ok {
		if s := NormalizeValue(content); s != "" {
			return s
		}
	}
	if value, ok := obj["value"]; ok {
		if s := NormalizeValue(value); s != "" {
			return s
		}
	}

	used := map[string]bool{}
	var parts []string
	for _, k := range addressOrder {
		if v, ok := obj[k]; ok {
			used[k] = true
			if s := NormalizeValue(v); s != "" {
				parts = append(parts, s)
			}
		}
	}

	rest := make([]string, 0, len(obj))
	for k := range obj {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if s := NormalizeValue(obj[k]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// NormalizeDate converts a recognised date to ISO-8601. Unrecognised input
// is returned trimmed and unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}
	return s
}

// normalizeField applies field-specific rules on top of NormalizeValue.
func normalizeField(f models.FieldName, v interface{}) string {
	s := NormalizeValue(v)
	if dateFields[f] {
		return NormalizeDate(s)
	}
	return s
}
