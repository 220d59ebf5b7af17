// internal/extraction/backend.go
package extraction

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	httpclient "loan-intake-workers/internal/common/http"
	"loan-intake-workers/internal/models"
)

// BackendError is any failure of the extraction service, including timeouts.
type BackendError struct {
	Model string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("extraction backend (model %s): %v", e.Model, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

type analyzeRequest struct {
	Model    string `json:"model"`
	Document string `json:"document"`
}

// HTTPBackend calls the document-analysis service over JSON.
type HTTPBackend struct {
	client  *httpclient.Client
	baseURL string
}

func NewHTTPBackend(baseURL string, client *httpclient.Client) *HTTPBackend {
	return &HTTPBackend{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (b *HTTPBackend) Analyze(ctx context.Context, document []byte, modelID string) (*models.RawExtractionResult, error) {
	if len(document) == 0 {
		return nil, &BackendError{Model: modelID, Err: fmt.Errorf("empty document")}
	}

	req := analyzeRequest{
		Model:    modelID,
		Document: base64.StdEncoding.EncodeToString(document),
	}

	var result models.RawExtractionResult
	if err := b.client.PostJSON(ctx, b.baseURL+"/analyze", req, &result); err != nil {
		return nil, &BackendError{Model: modelID, Err: err}
	}
	return &result, nil
}
