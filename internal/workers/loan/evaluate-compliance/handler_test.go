// internal/workers/loan/evaluate-compliance/handler_test.go
package evaluatecompliance

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "loan-intake-workers/internal/common/errors"
	"loan-intake-workers/internal/common/logger"
	"loan-intake-workers/internal/financial"
	"loan-intake-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockFetcher struct {
	FetchFunc func(ctx context.Context, applicantID string) (financial.Response, error)
}

func (m *MockFetcher) Fetch(ctx context.Context, applicantID string) (financial.Response, error) {
	return m.FetchFunc(ctx, applicantID)
}

func respond(resp financial.Response) *MockFetcher {
	return &MockFetcher{FetchFunc: func(context.Context, string) (financial.Response, error) { return resp, nil }}
}

type MockRecordStore struct {
	records   []*models.ExtractionRecord
	listErr   error
	reports   map[string]models.ComplianceReport
	upsertErr error
	statuses  []models.ApplicationStatus
}

func newMockRecordStore(records ...*models.ExtractionRecord) *MockRecordStore {
	return &MockRecordStore{records: records, reports: make(map[string]models.ComplianceReport)}
}

func (m *MockRecordStore) ListExtractions(context.Context, string) ([]*models.ExtractionRecord, error) {
	return m.records, m.listErr
}

func (m *MockRecordStore) UpsertCompliance(_ context.Context, applicantID string, report models.ComplianceReport) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.reports[applicantID] = report
	return nil
}

func (m *MockRecordStore) UpsertStatus(_ context.Context, status models.ApplicationStatus) error {
	m.statuses = append(m.statuses, status)
	return nil
}

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestHandler(t *testing.T, services financial.Services, store RecordStore) *Handler {
	h := NewHandler(&Config{Timeout: 5 * time.Second}, services, store, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h
}

func healthyServices() financial.Services {
	return financial.Services{
		financial.SourceCreditReport:   respond(financial.Response{"credit_score": 760.0}),
		financial.SourceEmployment:     respond(financial.Response{"is_verified": true, "employer_name": "Infosys", "monthly_income": 85000.0}),
		financial.SourceBankStatements: respond(financial.Response{"average_balance": 42000.0}),
		financial.SourceKYC:            respond(financial.Response{"is_verified": true}),
		financial.SourceFraudCheck:     respond(financial.Response{"risk_score": 12.0, "alerts": []interface{}{}, "blacklisted": false}),
	}
}

func record(id, docType string, fields models.CanonicalFieldSet) *models.ExtractionRecord {
	return &models.ExtractionRecord{DocumentID: id, DocumentType: docType, CanonicalFields: fields, IsComplete: true}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_CompliantApplicant(t *testing.T) {
	store := newMockRecordStore(
		record("r-pan", models.DocPAN, models.CanonicalFieldSet{models.FieldFirstName: "ASHA", models.FieldLastName: "VERMA"}),
		record("r-aadhaar", models.DocAadhaar, models.CanonicalFieldSet{models.FieldFullName: "Asha Verma"}),
		record("r-slip", models.DocSalarySlip, models.CanonicalFieldSet{models.FieldEmployeeName: "ASHA VERMA"}),
	)
	h := newTestHandler(t, healthyServices(), store)

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", LoanType: "personal", LoanAmount: 500000})

	require.NoError(t, err)
	assert.True(t, output.IsCompliant)
	assert.Equal(t, models.StatusCompliant, output.ComplianceStatus)
	assert.Zero(t, output.ViolationCount)
	assert.Equal(t, models.SeverityLow, output.RiskLevel)
	assert.Empty(t, output.Recommendations)

	report, ok := store.reports["APP-1001"]
	require.True(t, ok)
	assert.Equal(t, fixedNow, report.Timestamp)
	assert.Equal(t, 760, report.ApplicationSummary.CreditScore)
	assert.Equal(t, "VERIFIED", report.ComplianceSummary.KYCStatus)

	require.Len(t, store.statuses, 1)
	assert.Equal(t, models.StageComplianceComplete, store.statuses[0].Stage)
}

func TestHandler_Execute_OnlyPassportProvided(t *testing.T) {
	store := newMockRecordStore()
	h := newTestHandler(t, financial.Services{}, store)

	output, err := h.Execute(context.Background(), &Input{
		ApplicantID: "APP-1002",
		Documents:   map[string]string{"passport": "docs/passport.pdf"},
	})

	require.NoError(t, err)
	assert.False(t, output.IsCompliant)
	assert.Equal(t, models.StatusNonCompliant, output.ComplianceStatus)
	assert.Equal(t, []string{"Missing required KYC documents: aadhaar, pan"}, output.MissingDocuments)
	require.NotEmpty(t, output.Recommendations)
	assert.Equal(t, "Please provide all required KYC documents", output.Recommendations[0])
	assert.GreaterOrEqual(t, output.ViolationCount, 4)

	report := store.reports["APP-1002"]
	assert.Len(t, report.Violations.KYC, 1)
	assert.Equal(t, "REJECTED", report.ComplianceSummary.CreditStatus)
}

func TestHandler_Execute_HighRiskApplicant(t *testing.T) {
	services := healthyServices()
	services[financial.SourceFraudCheck] = respond(financial.Response{"risk_score": 85.0, "alerts": []interface{}{"velocity"}, "blacklisted": true})
	store := newMockRecordStore()
	h := newTestHandler(t, services, store)

	output, err := h.Execute(context.Background(), &Input{
		ApplicantID: "APP-1003",
		Documents:   map[string]string{"aadhaar": "a.pdf", "pan": "p.pdf", "salary_slip": "s.pdf"},
	})

	require.NoError(t, err)
	assert.Equal(t, models.SeverityHigh, output.RiskLevel)

	report := store.reports["APP-1003"]
	assert.Equal(t, "FLAGGED", report.ComplianceSummary.FraudCheckStatus)
	assert.Equal(t, []string{"velocity"}, report.RiskAssessment.FraudAlerts)
}

func TestHandler_Execute_PersistFailure(t *testing.T) {
	store := newMockRecordStore()
	store.upsertErr = errors.New("disk full")
	h := newTestHandler(t, healthyServices(), store)

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001"})

	assert.Nil(t, output)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeRecordPersistFailed, stdErr.Code)
}

func TestDocumentsFromRecords(t *testing.T) {
	docs := DocumentsFromRecords([]*models.ExtractionRecord{
		record("r1", models.DocPAN, nil),
		nil,
		record("r2", models.DocBankStatement, nil),
		record("r3", models.DocPAN, nil),
	})

	assert.Equal(t, map[string]string{"pan": "r3", "bank_statements": "r2"}, docs)
}
