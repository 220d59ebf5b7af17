// internal/workers/loan/send-decision-notification/handler_test.go
package senddecisionnotification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	apperrors "loan-intake-workers/internal/common/errors"
	"loan-intake-workers/internal/common/logger"
	"loan-intake-workers/internal/models"
	"loan-intake-workers/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockRecordStore struct {
	contacts    map[string]*models.ApplicantContact
	eligibility map[string]*models.EligibilityResult
	getErr      error
	statuses    []models.ApplicationStatus
}

func (m *MockRecordStore) GetContact(_ context.Context, applicantID string) (*models.ApplicantContact, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.contacts[applicantID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrRecordNotFound, applicantID)
	}
	return c, nil
}

func (m *MockRecordStore) GetEligibility(_ context.Context, applicantID string) (*models.EligibilityResult, error) {
	r, ok := m.eligibility[applicantID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrRecordNotFound, applicantID)
	}
	return r, nil
}

func (m *MockRecordStore) UpsertStatus(_ context.Context, status models.ApplicationStatus) error {
	m.statuses = append(m.statuses, status)
	return nil
}

type sentMessage struct {
	to, subject, body string
}

type MockEmailSender struct {
	sent []sentMessage
	err  error
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, sentMessage{to: to, subject: subject, body: body})
	return "msg-1", nil
}

type MockSMSSender struct {
	sent []sentMessage
	err  error
}

func (m *MockSMSSender) SendSMS(_ context.Context, phone, message string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, sentMessage{to: phone, body: message})
	return "sms-1", nil
}

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func createTestStore() *MockRecordStore {
	return &MockRecordStore{
		contacts: map[string]*models.ApplicantContact{
			"APP-1001": {ApplicantID: "APP-1001", Name: "Asha Verma", Email: "asha@example.com", Phone: "+919800000000"},
		},
		eligibility: map[string]*models.EligibilityResult{},
	}
}

func createTestConfig() *Config {
	return &Config{EmailEnabled: true, SMSEnabled: true, Timeout: 5 * time.Second}
}

func newTestHandler(t *testing.T, cfg *Config, st RecordStore, email EmailSender, sms SMSSender) *Handler {
	h := NewHandler(cfg, st, email, sms, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Submission(t *testing.T) {
	st := createTestStore()
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	h := newTestHandler(t, createTestConfig(), st, email, sms)

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: models.NotificationSubmission})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, "2026-03-14T09:30:00Z", output.SentAt)
	assert.NotEmpty(t, output.NotificationID)

	require.Len(t, email.sent, 1)
	assert.Equal(t, "asha@example.com", email.sent[0].to)
	assert.Equal(t, "Loan Application Submitted - Asha Verma", email.sent[0].subject)
	assert.True(t, strings.HasPrefix(email.sent[0].body, "Dear Asha Verma,\n\nThank you for submitting"))
	assert.True(t, strings.HasSuffix(email.sent[0].body, "Best regards,\nLoan Processing Team"))
	assert.Empty(t, sms.sent, "sms is reserved for high priority")

	require.Len(t, st.statuses, 1)
	assert.Equal(t, models.StageNotificationSent, st.statuses[0].Stage)
	assert.Equal(t, StatusSent, st.statuses[0].Details["status"])
}

func TestHandler_Execute_Verification(t *testing.T) {
	tests := []struct {
		name        string
		missingInfo []string
		contains    string
	}{
		{
			name:        "missing information listed",
			missingInfo: []string{"Passport: missing ExpiryDate", "Credit Report: document not submitted"},
			contains:    "missing or incomplete:\n- Passport: missing ExpiryDate\n- Credit Report: document not submitted\n\n",
		},
		{
			name:     "nothing missing",
			contains: "No missing information was found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &MockEmailSender{}
			h := newTestHandler(t, createTestConfig(), createTestStore(), email, nil)

			output, err := h.Execute(context.Background(), &Input{
				ApplicantID:      "APP-1001",
				NotificationType: models.NotificationVerification,
				MissingInfo:      tt.missingInfo,
			})

			require.NoError(t, err)
			assert.Equal(t, StatusSent, output.Status)
			require.Len(t, email.sent, 1)
			assert.Equal(t, "Loan Application Verification Update - Asha Verma", email.sent[0].subject)
			assert.Contains(t, email.sent[0].body, tt.contains)
			assert.NotContains(t, email.sent[0].body, "{{")
		})
	}
}

func TestHandler_Execute_EligibilityDecisions(t *testing.T) {
	tests := []struct {
		decision    models.Decision
		wantSubject string
		wantStatus  string
	}{
		{models.DecisionYes, "Loan Application Approved - Asha Verma", DecisionApproved},
		{models.DecisionNo, "Loan Application Update - Asha Verma", DecisionRejected},
		{models.DecisionNeedsReview, "Loan Application Under Review - Asha Verma", DecisionUnderReview},
	}

	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			st := createTestStore()
			st.eligibility["APP-1001"] = &models.EligibilityResult{Decision: tt.decision, Summary: "Scored 7.4/10."}
			email := &MockEmailSender{}
			h := newTestHandler(t, createTestConfig(), st, email, nil)

			_, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: models.NotificationEligibility})

			require.NoError(t, err)
			require.Len(t, email.sent, 1)
			assert.Equal(t, tt.wantSubject, email.sent[0].subject)
			assert.Contains(t, email.sent[0].body, "- Status: "+tt.wantStatus+"\n- Reason: Scored 7.4/10.")
		})
	}
}

func TestHandler_Execute_EligibilityMissingResult(t *testing.T) {
	h := newTestHandler(t, createTestConfig(), createTestStore(), &MockEmailSender{}, nil)

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: models.NotificationEligibility})

	assert.Nil(t, output)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeRecordNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_HighPrioritySendsSMS(t *testing.T) {
	sms := &MockSMSSender{}
	h := newTestHandler(t, createTestConfig(), createTestStore(), &MockEmailSender{}, sms)

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: models.NotificationSubmission, Priority: "high"})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+919800000000", sms.sent[0].to)
	assert.Equal(t, "Loan Application Submitted - Asha Verma", sms.sent[0].body)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_RecipientNotFound(t *testing.T) {
	email := &MockEmailSender{}
	h := newTestHandler(t, createTestConfig(), createTestStore(), email, nil)

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-404", NotificationType: models.NotificationSubmission})

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, email.sent)
}

func TestHandler_Execute_StoreUnavailable(t *testing.T) {
	st := createTestStore()
	st.getErr = errors.New("connection refused")
	h := newTestHandler(t, createTestConfig(), st, &MockEmailSender{}, nil)

	_, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: models.NotificationSubmission})

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDatabaseConnectionFailed, stdErr.Code)
}

func TestHandler_Execute_EmailFailure(t *testing.T) {
	st := createTestStore()
	h := newTestHandler(t, createTestConfig(), st, &MockEmailSender{err: errors.New("throttled")}, &MockSMSSender{})

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: models.NotificationSubmission, Priority: "high"})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
	require.Len(t, st.statuses, 1)
	assert.Equal(t, StatusFailed, st.statuses[0].Details["status"])
}

func TestHandler_Execute_SMSFailureAfterEmailStillSent(t *testing.T) {
	st := createTestStore()
	email := &MockEmailSender{}
	h := newTestHandler(t, createTestConfig(), st, email, &MockSMSSender{err: errors.New("opted out")})

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: models.NotificationSubmission, Priority: "high"})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Len(t, email.sent, 1)
	require.Len(t, st.statuses, 1)
	assert.Equal(t, StatusSent, st.statuses[0].Details["status"])
}

func TestHandler_Execute_SMSOnlyFailure(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	h := newTestHandler(t, cfg, createTestStore(), &MockEmailSender{}, &MockSMSSender{err: errors.New("opted out")})

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: models.NotificationSubmission, Priority: "high"})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
}

func TestHandler_Execute_ChannelsDisabled(t *testing.T) {
	email := &MockEmailSender{}
	h := newTestHandler(t, &Config{Timeout: time.Second}, createTestStore(), email, &MockSMSSender{})

	output, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: models.NotificationSubmission, Priority: "high"})

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, email.sent)
}

func TestHandler_Execute_UnknownType(t *testing.T) {
	h := newTestHandler(t, createTestConfig(), createTestStore(), &MockEmailSender{}, nil)

	_, err := h.Execute(context.Background(), &Input{ApplicantID: "APP-1001", NotificationType: "reminder"})

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidJobVariables, stdErr.Code)
}

// ==========================
// Template Tests
// ==========================

func TestRenderTemplate(t *testing.T) {
	got := renderTemplate("Hi {{name}}, {{unknown}}done", map[string]string{"name": "Asha"})
	assert.Equal(t, "Hi Asha, done", got)
}

func TestDecisionStatus(t *testing.T) {
	assert.Equal(t, DecisionApproved, DecisionStatus(models.DecisionYes))
	assert.Equal(t, DecisionRejected, DecisionStatus(models.DecisionNo))
	assert.Equal(t, DecisionUnderReview, DecisionStatus(models.DecisionNeedsReview))
}

func TestTemplatesCoverEveryKey(t *testing.T) {
	for _, nt := range []string{models.NotificationSubmission, models.NotificationVerification, models.NotificationEligibility} {
		for _, d := range []models.Decision{models.DecisionYes, models.DecisionNo, models.DecisionNeedsReview} {
			for _, missing := range [][]string{nil, {"x"}} {
				key, err := templateKey(nt, missing, d)
				require.NoError(t, err)
				_, ok := templates[key]
				assert.True(t, ok, key)
			}
		}
	}
}
