package classification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "loan-intake-workers/internal/common/http"
	"loan-intake-workers/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantType    string
		wantFlagged bool
	}{
		{
			name:     "plain json",
			content:  `{"document_type": "PAN Card", "reason": "Contains PAN"}`,
			wantType: models.DocPAN,
		},
		{
			name:     "markdown fenced with json tag",
			content:  "```json\n{\"document_type\": \"Bank Statement\", \"reason\": \"Account details\"}\n```",
			wantType: models.DocBankStatement,
		},
		{
			name:     "label casing is normalized",
			content:  `{"document_type": "income tax return", "reason": "ITR acknowledgement"}`,
			wantType: models.DocIncomeTaxReturn,
		},
		{
			name:        "others is flagged",
			content:     `{"document_type": "Others", "reason": "Unclear"}`,
			wantType:    models.DocOthers,
			wantFlagged: true,
		},
		{
			name:        "unknown label maps to others",
			content:     `{"document_type": "Ration Card", "reason": "Food supply card"}`,
			wantType:    models.DocOthers,
			wantFlagged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.DocumentType)
			assert.Equal(t, tt.wantFlagged, got.Flagged)
		})
	}
}

func TestParse_MalformedFallsBackToOthers(t *testing.T) {
	for _, content := range []string{"I think this is a PAN card", "", `{"reason": "no type"}`} {
		got, err := Parse(content)

		assert.ErrorIs(t, err, ErrMalformedResponse)
		assert.Equal(t, models.DocOthers, got.DocumentType)
		assert.True(t, got.Flagged)
		assert.True(t, strings.HasPrefix(got.Reason, "Classification failed or invalid response: "), got.Reason)
	}
}

func TestCanonicalLabel(t *testing.T) {
	label, ok := CanonicalLabel("  driving   license ")
	assert.True(t, ok)
	assert.Equal(t, models.DocDrivingLicense, label)

	label, ok = CanonicalLabel("Utility Bill")
	assert.False(t, ok)
	assert.Equal(t, models.DocOthers, label)

	assert.Len(t, DocumentTypes, 26)
}

func TestClient_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.Equal(t, 300, req.MaxTokens)
		assert.Contains(t, req.Prompt, "- Video KYC")
		assert.True(t, strings.HasSuffix(req.Prompt, "CIBIL Report\nScore: 782"))

		_ = json.NewEncoder(w).Encode(generateResponse{Text: "```json\n{\"document_type\": \"Credit Report\", \"reason\": \"Mentions CIBIL\"}\n```"})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Model: "gpt-4o"}, httpclient.NewClient(time.Second))
	got, err := client.Classify(context.Background(), "CIBIL Report\nScore: 782")

	require.NoError(t, err)
	assert.Equal(t, models.DocCreditReport, got.DocumentType)
	assert.Equal(t, "Mentions CIBIL", got.Reason)
	assert.False(t, got.Flagged)
}

func TestClient_ClassifyTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, httpclient.NewClient(time.Second))
	_, err := client.Classify(context.Background(), "text")

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedResponse))
}

func TestBuildPrompt_TruncatesLongDocuments(t *testing.T) {
	prompt := BuildPrompt(strings.Repeat("x", maxDocumentChars+500))

	assert.Equal(t, maxDocumentChars, strings.Count(prompt, "x")-strings.Count(BuildPrompt(""), "x"))
}
