// internal/classification/parse.go
package classification

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"loan-intake-workers/internal/models"
)

// ErrMalformedResponse means the model reply could not be read as a classification.
var ErrMalformedResponse = errors.New("malformed classification response")

type classifierReply struct {
	DocumentType string `json:"document_type"`
	Reason       string `json:"reason"`
}

// Parse reads a model reply, tolerating markdown fences and a leading "json"
// tag. On failure it returns the safe Others classification together with an
// error wrapping ErrMalformedResponse, so callers always have a usable value.
func Parse(content string) (models.Classification, error) {
	cleaned := strings.Trim(strings.TrimSpace(content), "` \n\r\t")
	if strings.HasPrefix(strings.ToLower(cleaned), "json") {
		cleaned = strings.TrimSpace(cleaned[4:])
	}

	var reply classifierReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return Fallback(err), fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(reply.DocumentType) == "" {
		err := errors.New("document_type missing")
		return Fallback(err), fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	label, known := CanonicalLabel(reply.DocumentType)
	reason := strings.TrimSpace(reply.Reason)
	if !known {
		reason = fmt.Sprintf("Unrecognized document type %q: %s", reply.DocumentType, reason)
	}

	return models.Classification{
		DocumentType: label,
		Reason:       reason,
		Flagged:      label == models.DocOthers,
	}, nil
}

// Fallback is the classification used when the classifier cannot be trusted.
func Fallback(cause error) models.Classification {
	return models.Classification{
		DocumentType: models.DocOthers,
		Reason:       fmt.Sprintf("Classification failed or invalid response: %v", cause),
		Flagged:      true,
	}
}
