// internal/extraction/pipeline.go
package extraction

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"loan-intake-workers/internal/models"
)

// Backend runs the structured-extraction model over a document.
// Failures must be returned as errors, never as an empty result.
type Backend interface {
	Analyze(ctx context.Context, document []byte, modelID string) (*models.RawExtractionResult, error)
}

// DocumentInput is one uploaded file handed to ExtractAll.
type DocumentInput struct {
	ID           string
	DocumentType string
	Content      []byte
}

type Pipeline struct {
	backend     Backend
	catalog     *Catalog
	maxParallel int
}

type Option func(*Pipeline)

func WithCatalog(c *Catalog) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.catalog = c
		}
	}
}

// WithMaxParallel bounds concurrent backend calls in ExtractAll.
func WithMaxParallel(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxParallel = n
		}
	}
}

func NewPipeline(backend Backend, opts ...Option) *Pipeline {
	p := &Pipeline{
		backend:     backend,
		catalog:     DefaultCatalog(),
		maxParallel: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Catalog() *Catalog {
	return p.catalog
}

// Extract produces a record for one document. It never fails: a backend
// error yields a flagged record with every required field missing.
func (p *Pipeline) Extract(ctx context.Context, document []byte, docType string) *models.ExtractionRecord {
	profile, _ := p.catalog.Lookup(docType)

	raw, err := p.backend.Analyze(ctx, document, profile.ExtractionModel)
	if err != nil {
		return failedRecord(profile, err)
	}
	if raw == nil {
		raw = &models.RawExtractionResult{}
	}
	return Build(profile, raw)
}

// ExtractAll extracts documents concurrently and returns records in input order.
func (p *Pipeline) ExtractAll(ctx context.Context, docs []DocumentInput) []*models.ExtractionRecord {
	records := make([]*models.ExtractionRecord, len(docs))
	sem := make(chan struct{}, p.maxParallel)

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc DocumentInput) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rec := p.Extract(ctx, doc.Content, doc.DocumentType)
			rec.DocumentID = doc.ID
			records[i] = rec
		}(i, doc)
	}
	wg.Wait()

	return records
}

// Build turns a backend result into a record: reconcile, post-process,
// locate missing required fields, then check completeness. raw is not modified.
func Build(profile *DocumentTypeProfile, raw *models.RawExtractionResult) *models.ExtractionRecord {
	canonical := models.CanonicalFieldSet{}
	additional := map[string]string{}

	names := make([]string, 0, len(raw.Fields))
	for k := range raw.Fields {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, rawName := range names {
		name, matched := Reconcile(rawName, profile)
		value := normalizeField(name, raw.Fields[rawName])
		if value == "" {
			continue
		}
		if matched {
			canonical[name] = value
		} else if name != "" {
			additional[string(name)] = value
		}
	}

	postProcess(profile.Name, raw, canonical)

	fullText := raw.FullText()
	for _, f := range profile.RequiredFields {
		if canonical.Has(f) {
			continue
		}
		if v, ok := Locate(f, profile.LabelVariants(f), fullText); ok {
			canonical[f] = normalizeField(f, v)
		}
	}

	complete, missing := CheckCompleteness(canonical, profile.RequiredFields)
	flagged, reason := FlagReason(canonical, profile.RequiredFields, missing, profile.Name)

	rec := &models.ExtractionRecord{
		DocumentType:    profile.Name,
		CanonicalFields: canonical,
		RawFields:       raw.Fields,
		IsComplete:      complete,
		MissingFields:   missing,
		FlaggedByAI:     flagged,
		FlaggedReason:   reason,
		FullText:        fullText,
	}
	if len(additional) > 0 {
		rec.AdditionalFields = additional
	}
	return rec
}

func failedRecord(profile *DocumentTypeProfile, err error) *models.ExtractionRecord {
	missing := make([]models.FieldName, len(profile.RequiredFields))
	copy(missing, profile.RequiredFields)

	return &models.ExtractionRecord{
		DocumentType:    profile.Name,
		CanonicalFields: models.CanonicalFieldSet{},
		IsComplete:      len(missing) == 0,
		MissingFields:   missing,
		FlaggedByAI:     true,
		FlaggedReason:   fmt.Sprintf("Extraction failed: %v", err),
		ExtractionError: err.Error(),
	}
}
