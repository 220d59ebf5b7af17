// internal/workers/loan/check-document-completeness/handler.go
package checkdocumentcompleteness

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "loan-intake-workers/internal/common/errors"
	"loan-intake-workers/internal/common/logger"
	"loan-intake-workers/internal/common/validation"
	"loan-intake-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "check-document-completeness"
)

type RecordStore interface {
	ListExtractions(ctx context.Context, applicantID string) ([]*models.ExtractionRecord, error)
	UpsertStatus(ctx context.Context, status models.ApplicationStatus) error
}

type Handler struct {
	config       *Config
	store        RecordStore
	validator    *validation.Validator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store RecordStore, validator *validation.Validator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
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
	records, err := h.store.ListExtractions(ctx, input.ApplicantID)
	if err != nil {
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}

	required := input.RequiredDocuments
	if len(required) == 0 {
		required = models.RequiredApplicantDocuments
	}

	output := Check(records, required)

	h.logger.Info("completeness checked", map[string]interface{}{
		"applicantId": input.ApplicantID,
		"records":     len(records),
		"missing":     output.MissingDocumentTypes,
		"incomplete":  len(output.IncompleteDocuments),
	})

	h.markStage(ctx, input.ApplicantID, output)
	return output, nil
}

// Check compares stored records against the required document types.
// A type counts as present when at least one record of it exists.
func Check(records []*models.ExtractionRecord, required []string) *Output {
	present := make(map[string]bool, len(records))
	for _, rec := range records {
		present[rec.DocumentType] = true
	}

	output := &Output{
		MissingDocumentTypes: []string{},
		IncompleteDocuments:  []IncompleteDocument{},
		MissingInfo:          []string{},
	}
	for _, docType := range required {
		if !present[docType] {
			output.MissingDocumentTypes = append(output.MissingDocumentTypes, docType)
			output.MissingInfo = append(output.MissingInfo, fmt.Sprintf("%s: document not submitted", docType))
		}
	}

	for _, rec := range records {
		if rec.IsComplete {
			continue
		}
		fields := make([]string, 0, len(rec.MissingFields))
		for _, f := range rec.MissingFields {
			fields = append(fields, string(f))
		}
		output.IncompleteDocuments = append(output.IncompleteDocuments, IncompleteDocument{
			RecordID:      rec.DocumentID,
			DocumentType:  rec.DocumentType,
			MissingFields: fields,
			FlaggedReason: rec.FlaggedReason,
		})
		if len(fields) > 0 {
			output.MissingInfo = append(output.MissingInfo, fmt.Sprintf("%s: missing %s", rec.DocumentType, strings.Join(fields, ", ")))
		}
	}

	output.AllRequiredPresent = len(output.MissingDocumentTypes) == 0
	return output
}

func (h *Handler) markStage(ctx context.Context, applicantID string, output *Output) {
	err := h.store.UpsertStatus(ctx, models.ApplicationStatus{
		ApplicantID: applicantID,
		Stage:       models.StageValidationComplete,
		Details: map[string]interface{}{
			"allRequiredPresent": output.AllRequiredPresent,
			"missingDocuments":   output.MissingDocumentTypes,
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
