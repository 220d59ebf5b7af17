// internal/store/search.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"loan-intake-workers/internal/models"
)

const DefaultExtractionIndex = "extraction-records"

// ExtractionIndexMapping is the mapping applied when the index is created.
const ExtractionIndexMapping = `{
  "mappings": {
    "properties": {
      "documentId":      {"type": "keyword"},
      "applicantId":     {"type": "keyword"},
      "documentType":    {"type": "keyword"},
      "canonicalFields": {"type": "object", "dynamic": true},
      "isComplete":      {"type": "boolean"},
      "missingFields":   {"type": "keyword"},
      "flaggedByAi":     {"type": "boolean"},
      "flaggedReason":   {"type": "text"},
      "fullText":        {"type": "text"},
      "indexedAt":       {"type": "date"}
    }
  }
}`

// ExtractionDocument is the searchable form of an extraction record.
type ExtractionDocument struct {
	DocumentID       string                   `json:"documentId"`
	ApplicantID      string                   `json:"applicantId"`
	DocumentType     string                   `json:"documentType"`
	CanonicalFields  models.CanonicalFieldSet `json:"canonicalFields"`
	AdditionalFields map[string]string        `json:"additionalFields,omitempty"`
	IsComplete       bool                     `json:"isComplete"`
	MissingFields    []models.FieldName       `json:"missingFields"`
	FlaggedByAI      bool                     `json:"flaggedByAi"`
	FlaggedReason    string                   `json:"flaggedReason"`
	FullText         string                   `json:"fullText,omitempty"`
	IndexedAt        time.Time                `json:"indexedAt"`
}

// SearchFilter narrows SearchExtractions. Empty fields do not filter.
type SearchFilter struct {
	ApplicantID  string
	DocumentType string
	FlaggedOnly  bool
	Text         string
	Size         int
}

type SearchIndex struct {
	client *elasticsearch.Client
	index  string
	now    func() time.Time
}

func NewSearchIndex(client *elasticsearch.Client, index string) *SearchIndex {
	if index == "" {
		index = DefaultExtractionIndex
	}
	return &SearchIndex{client: client, index: index, now: time.Now}
}

func (s *SearchIndex) Index() string { return s.index }

// IndexExtraction writes rec under its DocumentID, replacing any earlier copy.
func (s *SearchIndex) IndexExtraction(ctx context.Context, applicantID string, rec *models.ExtractionRecord) error {
	doc := ExtractionDocument{
		DocumentID:       rec.DocumentID,
		ApplicantID:      applicantID,
		DocumentType:     rec.DocumentType,
		CanonicalFields:  rec.CanonicalFields,
		AdditionalFields: rec.AdditionalFields,
		IsComplete:       rec.IsComplete,
		MissingFields:    rec.MissingFields,
		FlaggedByAI:      rec.FlaggedByAI,
		FlaggedReason:    rec.FlaggedReason,
		FullText:         rec.FullText,
		IndexedAt:        s.now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal extraction document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: rec.DocumentID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index %s: %w", rec.DocumentID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index %s: %s", rec.DocumentID, res.String())
	}
	return nil
}

// SearchExtractions returns matching documents, newest first.
func (s *SearchIndex) SearchExtractions(ctx context.Context, filter SearchFilter) ([]ExtractionDocument, int64, error) {
	size := filter.Size
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": buildQuery(filter),
		"sort":  []map[string]interface{}{{"indexedAt": map[string]string{"order": "desc"}}},
	})
	if err != nil {
		return nil, 0, err
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search %s: %s", s.index, res.String())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ExtractionDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]ExtractionDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, r.Hits.Total.Value, nil
}

func buildQuery(filter SearchFilter) map[string]interface{} {
	var must []map[string]interface{}
	var filters []map[string]interface{}

	if filter.ApplicantID != "" {
		filters = append(filters, term("applicantId", filter.ApplicantID))
	}
	if filter.DocumentType != "" {
		filters = append(filters, term("documentType", filter.DocumentType))
	}
	if filter.FlaggedOnly {
		filters = append(filters, term("flaggedByAi", true))
	}
	if filter.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  filter.Text,
				"fields": []string{"fullText", "flaggedReason", "canonicalFields.*"},
			},
		})
	}

	if len(must) == 0 && len(filters) == 0 {
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	return map[string]interface{}{"bool": boolQuery}
}

func term(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{"term": map[string]interface{}{field: value}}
}
