// internal/workers/loan/extract-document-fields/handler.go
package extractdocumentfields

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "loan-intake-workers/internal/common/errors"
	"loan-intake-workers/internal/common/logger"
	"loan-intake-workers/internal/common/metrics"
	"loan-intake-workers/internal/common/validation"
	"loan-intake-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "extract-document-fields"
)

type Extractor interface {
	Extract(ctx context.Context, document []byte, docType string) *models.ExtractionRecord
}

type RecordStore interface {
	UpsertExtraction(ctx context.Context, applicantID string, rec *models.ExtractionRecord) (string, error)
	UpsertStatus(ctx context.Context, status models.ApplicationStatus) error
}

// Indexer makes stored records searchable. It is optional.
type Indexer interface {
	IndexExtraction(ctx context.Context, applicantID string, rec *models.ExtractionRecord) error
	Index() string
}

type Handler struct {
	config       *Config
	extractor    Extractor
	store        RecordStore
	indexer      Indexer
	validator    *validation.Validator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, extractor Extractor, store RecordStore, indexer Indexer, validator *validation.Validator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		extractor:    extractor,
		store:        store,
		indexer:      indexer,
		validator:    validator,
		errorHandler: apperrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	if h.validator != nil {
		if err := h.validator.Check(TaskType, variables); err != nil {
			return nil, apperrors.NewInvalidJobVariablesError(err.Error())
		}
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidJobVariablesError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	rec := h.extractor.Extract(ctx, input.DocumentContent, input.DocumentType)
	rec.DocumentID = input.DocumentID

	backendFailed := rec.ExtractionError != ""
	metrics.RecordExtraction(rec.DocumentType, rec.IsComplete, backendFailed)
	if backendFailed && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// Nothing is stored so the retry starts clean.
		return nil, apperrors.NewExtractionTimeoutError(rec.DocumentType)
	}
	if backendFailed {
		h.logger.Warn("extraction backend failed", map[string]interface{}{
			"applicantId":  input.ApplicantID,
			"documentType": rec.DocumentType,
			"error":        rec.ExtractionError,
		})
	}

	recordID, err := h.store.UpsertExtraction(ctx, input.ApplicantID, rec)
	if err != nil {
		return nil, apperrors.NewRecordPersistFailedError(recordID, err)
	}
	rec.DocumentID = recordID

	if h.indexer != nil {
		if err := h.indexer.IndexExtraction(ctx, input.ApplicantID, rec); err != nil {
			// Postgres holds the record; search catches up on the next write.
			h.logger.Warn("search index write failed", map[string]interface{}{
				"index":    h.indexer.Index(),
				"recordId": recordID,
				"error":    err,
			})
		}
	}

	missing := make([]string, 0, len(rec.MissingFields))
	for _, f := range rec.MissingFields {
		missing = append(missing, string(f))
	}

	h.logger.Info("document extracted", map[string]interface{}{
		"applicantId":  input.ApplicantID,
		"recordId":     recordID,
		"documentType": rec.DocumentType,
		"isComplete":   rec.IsComplete,
		"missing":      len(missing),
	})

	h.markStage(ctx, input.ApplicantID, recordID, rec)

	return &Output{
		RecordID:      recordID,
		DocumentType:  rec.DocumentType,
		IsComplete:    rec.IsComplete,
		MissingFields: missing,
		FlaggedByAI:   rec.FlaggedByAI,
		FlaggedReason: rec.FlaggedReason,
	}, nil
}

func (h *Handler) markStage(ctx context.Context, applicantID, recordID string, rec *models.ExtractionRecord) {
	err := h.store.UpsertStatus(ctx, models.ApplicationStatus{
		ApplicantID: applicantID,
		Stage:       models.StageExtractionComplete,
		Details: map[string]interface{}{
			"recordId":     recordID,
			"documentType": rec.DocumentType,
			"isComplete":   rec.IsComplete,
		},
	})
	if err != nil {
		h.logger.Warn("status update failed", map[string]interface{}{
			"applicantId": applicantID,
			"error":       err,
		})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
