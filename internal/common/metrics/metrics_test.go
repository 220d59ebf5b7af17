package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordExtraction(t *testing.T) {
	completeBefore := testutil.ToFloat64(DocumentsExtracted.WithLabelValues("Salary Slip", "true"))
	incompleteBefore := testutil.ToFloat64(DocumentsExtracted.WithLabelValues("Salary Slip", "false"))
	failuresBefore := testutil.ToFloat64(ExtractionFailures.WithLabelValues("Salary Slip"))

	RecordExtraction("Salary Slip", true, false)
	RecordExtraction("Salary Slip", false, true)

	assert.Equal(t, completeBefore+1, testutil.ToFloat64(DocumentsExtracted.WithLabelValues("Salary Slip", "true")))
	assert.Equal(t, incompleteBefore+1, testutil.ToFloat64(DocumentsExtracted.WithLabelValues("Salary Slip", "false")))
	assert.Equal(t, failuresBefore+1, testutil.ToFloat64(ExtractionFailures.WithLabelValues("Salary Slip")))
}
