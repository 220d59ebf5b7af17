// internal/workers/loan/evaluate-compliance/handler.go
package evaluatecompliance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "loan-intake-workers/internal/common/errors"
	"loan-intake-workers/internal/common/logger"
	"loan-intake-workers/internal/common/metrics"
	"loan-intake-workers/internal/common/validation"
	"loan-intake-workers/internal/compliance"
	"loan-intake-workers/internal/financial"
	"loan-intake-workers/internal/models"
	"loan-intake-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-compliance"
)

var complianceSources = []financial.Source{
	financial.SourceCreditReport,
	financial.SourceEmployment,
	financial.SourceBankStatements,
	financial.SourceKYC,
	financial.SourceFraudCheck,
}

type RecordStore interface {
	ListExtractions(ctx context.Context, applicantID string) ([]*models.ExtractionRecord, error)
	UpsertCompliance(ctx context.Context, applicantID string, report models.ComplianceReport) error
	UpsertStatus(ctx context.Context, status models.ApplicationStatus) error
}

type Handler struct {
	config       *Config
	services     financial.Services
	store        RecordStore
	validator    *validation.Validator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
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
		now:          time.Now,
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

	bundle := financial.Gather(ctx, h.services, input.ApplicantID, complianceSources...)
	for src, msg := range bundle.Errors {
		metrics.FinancialFetchFailures.WithLabelValues(string(src)).Inc()
		h.logger.Warn("financial source unavailable", map[string]interface{}{
			"applicantId": input.ApplicantID,
			"source":      src,
			"error":       msg,
		})
	}

	documents := input.Documents
	if len(documents) == 0 {
		documents = DocumentsFromRecords(records)
	}

	app := compliance.NewApplicationData(input.ApplicantID, input.LoanType, input.LoanAmount, bundle, records)
	result := compliance.Evaluate(app, documents)
	report := compliance.BuildReport(app, result, h.now())

	if err := h.store.UpsertCompliance(ctx, input.ApplicantID, report); err != nil {
		return nil, apperrors.NewRecordPersistFailedError(store.RecordID(input.ApplicantID, store.RecordCompliance), err)
	}
	for _, v := range result.Violations {
		metrics.ComplianceViolations.WithLabelValues(v.RuleID, string(v.Severity)).Inc()
	}

	h.logger.Info("compliance evaluated", map[string]interface{}{
		"applicantId": input.ApplicantID,
		"status":      report.ComplianceStatus,
		"violations":  len(result.Violations),
		"riskLevel":   report.RiskAssessment.RiskLevel,
	})

	h.markStage(ctx, input.ApplicantID, report)

	return &Output{
		ComplianceStatus: report.ComplianceStatus,
		IsCompliant:      report.IsCompliant,
		ViolationCount:   len(result.Violations),
		RiskLevel:        report.RiskAssessment.RiskLevel,
		Recommendations:  report.Recommendations,
		MissingDocuments: report.MissingDocuments,
	}, nil
}

// DocumentsFromRecords keys each stored record id by its document key.
// A later record of the same type replaces an earlier one.
func DocumentsFromRecords(records []*models.ExtractionRecord) map[string]string {
	documents := make(map[string]string, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		documents[compliance.DocumentKey(rec.DocumentType)] = rec.DocumentID
	}
	return documents
}

func (h *Handler) markStage(ctx context.Context, applicantID string, report models.ComplianceReport) {
	err := h.store.UpsertStatus(ctx, models.ApplicationStatus{
		ApplicantID: applicantID,
		Stage:       models.StageComplianceComplete,
		Details: map[string]interface{}{
			"complianceStatus": report.ComplianceStatus,
			"riskLevel":        report.RiskAssessment.RiskLevel,
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
