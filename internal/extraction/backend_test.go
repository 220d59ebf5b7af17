package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "loan-intake-workers/internal/common/http"
)

func TestHTTPBackend_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "prebuilt-idDocument", req.Model)
		doc, err := base64.StdEncoding.DecodeString(req.Document)
		require.NoError(t, err)
		assert.Equal(t, "scan-bytes", string(doc))

		_, _ = w.Write([]byte(`{
			"fields": {"PAN": "ABCDE1234F", "Address": {"city": "Pune"}},
			"keyValuePairs": [{"key": "Name", "value": "RAHUL SHARMA"}],
			"lines": ["INCOME TAX DEPARTMENT", "RAHUL SHARMA"]
		}`))
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL+"/", httpclient.NewClient(time.Second))
	raw, err := backend.Analyze(context.Background(), []byte("scan-bytes"), "prebuilt-idDocument")

	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", raw.Fields["PAN"])
	assert.Equal(t, map[string]interface{}{"city": "Pune"}, raw.Fields["Address"])
	require.Len(t, raw.KeyValuePairs, 1)
	assert.Equal(t, "RAHUL SHARMA", raw.KeyValuePairs[0].Value)
	assert.Equal(t, "INCOME TAX DEPARTMENT\nRAHUL SHARMA", raw.FullText())
}

func TestHTTPBackend_ServerErrorIsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL, httpclient.NewClient(time.Second))
	raw, err := backend.Analyze(context.Background(), []byte("x"), "prebuilt-document")

	assert.Nil(t, raw)
	var backendErr *BackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "prebuilt-document", backendErr.Model)

	var statusErr *httpclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestHTTPBackend_TimeoutIsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	backend := NewHTTPBackend(srv.URL, httpclient.NewClient(time.Second))
	_, err := backend.Analyze(ctx, []byte("x"), "prebuilt-document")

	var backendErr *BackendError
	assert.True(t, errors.As(err, &backendErr))
}

func TestHTTPBackend_EmptyDocument(t *testing.T) {
	backend := NewHTTPBackend("http://unused", httpclient.NewClient(time.Second))

	_, err := backend.Analyze(context.Background(), nil, "prebuilt-document")

	var backendErr *BackendError
	assert.True(t, errors.As(err, &backendErr))
}

func TestPipelineWithHTTPBackend_FailureNeverEscapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPipeline(NewHTTPBackend(srv.URL, httpclient.NewClient(time.Second)))
	rec := p.Extract(context.Background(), []byte("scan"), "Bank Statement")

	assert.True(t, rec.FlaggedByAI)
	assert.Contains(t, rec.FlaggedReason, "Extraction failed: extraction backend (model prebuilt-bankStatement)")
	assert.Len(t, rec.MissingFields, 3)
}
