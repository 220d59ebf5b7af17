// internal/classification/client.go
package classification

import (
	"context"
	"fmt"
	"strings"

	httpclient "loan-intake-workers/internal/common/http"
	"loan-intake-workers/internal/models"
)

const systemMessage = "You are a document classification expert helping a bank process loan applications. " +
	"Always respond ONLY in valid JSON using the allowed document types."

// maxDocumentChars bounds how much OCR text is sent with the prompt.
const maxDocumentChars = 6000

type Config struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

type generateRequest struct {
	Model       string  `json:"model,omitempty"`
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Client asks the GenAI service to label a document from its text.
type Client struct {
	http   *httpclient.Client
	config Config
}

func NewClient(cfg Config, http *httpclient.Client) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{http: http, config: cfg}
}

// Classify returns a transport error when the service cannot be reached.
// A reply that cannot be parsed yields the Others fallback and an error
// wrapping ErrMalformedResponse.
func (c *Client) Classify(ctx context.Context, text string) (models.Classification, error) {
	req := generateRequest{
		Model:       c.config.Model,
		System:      systemMessage,
		Prompt:      BuildPrompt(text),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	var resp generateResponse
	if err := c.http.PostJSON(ctx, c.config.BaseURL+"/api/ai/generate", req, &resp); err != nil {
		return models.Classification{}, fmt.Errorf("classify document: %w", err)
	}
	return Parse(resp.Text)
}

// BuildPrompt renders the classification instructions around the document text.
func BuildPrompt(text string) string {
	if r := []rune(text); len(r) > maxDocumentChars {
		text = string(r[:maxDocumentChars])
	}

	var b strings.Builder
	b.WriteString("You must classify the following document into one of these types:\n")
	for _, t := range DocumentTypes {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString(`
Instructions:
- Only choose one from the above types for "document_type".
- If uncertain, choose "Others".
- Provide a concise, factual reason for your classification.
- Respond ONLY in this JSON format:
{"document_type": "...", "reason": "..."}

--- EXAMPLES ---

Document:
"PAN: ACBPP1234D\nIncome Tax Department\nDOB: 10-11-1990"
Response:
{"document_type": "PAN Card", "reason": "Contains PAN number and Income Tax Department details"}

Document:
"Bank Statement\nAccount Number: XXXXXXXX\nPeriod: Jan-Jun 2023"
Response:
{"document_type": "Bank Statement", "reason": "Mentions bank statement and account details"}

Document:
"CIBIL Report\nScore: 750"
Response:
{"document_type": "Credit Report", "reason": "Mentions CIBIL or credit report"}

--- CLASSIFY THIS DOCUMENT ---

`)
	b.WriteString(text)
	return b.String()
}
