// internal/workers/loan/classify-document/handler.go
package classifydocument

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"loan-intake-workers/internal/classification"
	apperrors "loan-intake-workers/internal/common/errors"
	"loan-intake-workers/internal/common/logger"
	"loan-intake-workers/internal/common/validation"
	"loan-intake-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "classify-document"
)

type Classifier interface {
	Classify(ctx context.Context, text string) (models.Classification, error)
}

type StatusStore interface {
	UpsertStatus(ctx context.Context, status models.ApplicationStatus) error
}

type Handler struct {
	config       *Config
	classifier   Classifier
	store        StatusStore
	validator    *validation.Validator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, classifier Classifier, store StatusStore, validator *validation.Validator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		classifier:   classifier,
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
	result, err := h.classifier.Classify(ctx, input.Text)
	if err != nil {
		if !errors.Is(err, classification.ErrMalformedResponse) {
			return nil, apperrors.NewClassificationFailedError(err)
		}
		// Unreadable model output still yields a usable, flagged label.
		h.logger.Warn("classifier reply malformed", map[string]interface{}{
			"documentId": input.DocumentID,
			"error":      err,
		})
	}

	h.logger.Info("document classified", map[string]interface{}{
		"applicantId":  input.ApplicantID,
		"documentId":   input.DocumentID,
		"documentType": result.DocumentType,
		"flagged":      result.Flagged,
	})

	h.markStage(ctx, input, result)

	return &Output{
		DocumentType: result.DocumentType,
		Reason:       result.Reason,
		Flagged:      result.Flagged,
	}, nil
}

func (h *Handler) markStage(ctx context.Context, input *Input, result models.Classification) {
	err := h.store.UpsertStatus(ctx, models.ApplicationStatus{
		ApplicantID: input.ApplicantID,
		Stage:       models.StageClassificationComplete,
		Details: map[string]interface{}{
			"documentId":   input.DocumentID,
			"documentType": result.DocumentType,
		},
	})
	if err != nil {
		h.logger.Warn("status update failed", map[string]interface{}{
			"applicantId": input.ApplicantID,
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
