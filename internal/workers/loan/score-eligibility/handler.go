// internal/workers/loan/score-eligibility/handler.go
package scoreeligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	apperrors "loan-intake-workers/internal/common/errors"
	"loan-intake-workers/internal/common/logger"
	"loan-intake-workers/internal/common/metrics"
	"loan-intake-workers/internal/common/validation"
	"loan-intake-workers/internal/eligibility"
	"loan-intake-workers/internal/financial"
	"loan-intake-workers/internal/models"
	"loan-intake-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-eligibility"
)

// scoringSources are the financial services the scorer reads.
var scoringSources = []financial.Source{
	financial.SourceITR,
	financial.SourceCreditReport,
	financial.SourceBankStatements,
}

type RecordStore interface {
	ListExtractions(ctx context.Context, applicantID string) ([]*models.ExtractionRecord, error)
	UpsertEligibility(ctx context.Context, applicantID string, result models.EligibilityResult) error
	UpsertStatus(ctx context.Context, status models.ApplicationStatus) error
}

type Handler struct {
	config       *Config
	services     financial.Services
	store        RecordStore
	validator    *validation.Validator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, services financial.Services, store RecordStore, validator *validation.Validator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		services:     services,
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

	bundle := financial.Gather(ctx, h.services, input.ApplicantID, scoringSources...)
	h.reportFetchErrors(input.ApplicantID, bundle)

	// With no service data and no documents there is nothing to score;
	// retry instead of rejecting the applicant.
	if len(bundle.Errors) == len(scoringSources) && len(records) == 0 {
		return nil, apperrors.NewFinancialDataUnavailableError(input.ApplicantID, fmt.Errorf("%s", joinErrors(bundle)))
	}

	profile := eligibility.BuildProfile(bundle, records)
	result := eligibility.Score(profile)
	result.ApplicantID = input.ApplicantID

	if err := h.store.UpsertEligibility(ctx, input.ApplicantID, result); err != nil {
		return nil, apperrors.NewRecordPersistFailedError(store.RecordID(input.ApplicantID, store.RecordEligibility), err)
	}
	metrics.EligibilityDecisions.WithLabelValues(string(result.Decision)).Inc()

	h.logger.Info("eligibility scored", map[string]interface{}{
		"applicantId":     input.ApplicantID,
		"decision":        result.Decision,
		"confidenceScore": result.ConfidenceScore,
	})

	h.markStage(ctx, input.ApplicantID, result)

	return &Output{
		Decision:        result.Decision,
		ConfidenceScore: result.ConfidenceScore,
		Summary:         result.Summary,
		Criteria:        result.Criteria,
	}, nil
}

func (h *Handler) reportFetchErrors(applicantID string, bundle financial.Bundle) {
	for src, msg := range bundle.Errors {
		metrics.FinancialFetchFailures.WithLabelValues(string(src)).Inc()
		h.logger.Warn("financial source unavailable", map[string]interface{}{
			"applicantId": applicantID,
			"source":      src,
			"error":       msg,
		})
	}
}

func joinErrors(bundle financial.Bundle) string {
	parts := make([]string, 0, len(bundle.Errors))
	for src, msg := range bundle.Errors {
		parts = append(parts, string(src)+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func (h *Handler) markStage(ctx context.Context, applicantID string, result models.EligibilityResult) {
	err := h.store.UpsertStatus(ctx, models.ApplicationStatus{
		ApplicantID: applicantID,
		Stage:       models.StageEligibilityComplete,
		Details: map[string]interface{}{
			"decision":        result.Decision,
			"confidenceScore": result.ConfidenceScore,
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
