// internal/workers/loan/send-decision-notification/handler.go
package senddecisionnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "loan-intake-workers/internal/common/errors"
	"loan-intake-workers/internal/common/logger"
	"loan-intake-workers/internal/common/validation"
	"loan-intake-workers/internal/models"
	"loan-intake-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-decision-notification"
)

type RecordStore interface {
	GetContact(ctx context.Context, applicantID string) (*models.ApplicantContact, error)
	GetEligibility(ctx context.Context, applicantID string) (*models.EligibilityResult, error)
	UpsertStatus(ctx context.Context, status models.ApplicationStatus) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config       *Config
	store        RecordStore
	email        EmailSender
	sms          SMSSender
	validator    *validation.Validator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(config *Config, store RecordStore, email EmailSender, sms SMSSender, validator *validation.Validator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		email:        email,
		sms:          sms,
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
	notificationID := uuid.New().String()
	sentAt := h.now().UTC().Format(time.RFC3339)

	contact, err := h.store.GetContact(ctx, input.ApplicantID)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		h.logger.Warn("recipient not found", map[string]interface{}{
			"applicantId": input.ApplicantID,
		})
		return &Output{NotificationID: notificationID, Status: StatusDisabled, SentAt: sentAt}, nil
	}

	data := map[string]string{
		"name":        displayName(contact),
		"missingInfo": bulletList(input.MissingInfo),
	}
	if len(input.MissingInfo) > 0 {
		data["missingFields"] = "\n- Missing: " + strings.Join(input.MissingInfo, ", ")
	}

	var decision models.Decision
	if input.NotificationType == models.NotificationEligibility {
		result, err := h.store.GetEligibility(ctx, input.ApplicantID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil, apperrors.NewRecordNotFoundError(store.RecordID(input.ApplicantID, store.RecordEligibility))
			}
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		decision = result.Decision
		data["reason"] = result.Summary
	}

	key, err := templateKey(input.NotificationType, input.MissingInfo, decision)
	if err != nil {
		return nil, apperrors.NewInvalidJobVariablesError(err.Error())
	}
	tmpl := templates[key]
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	emailSent, smsSent := false, false

	if h.config.EmailEnabled && h.email != nil && contact.Email != "" {
		if _, err := h.email.SendEmail(ctx, contact.Email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":       err,
				"applicantId": input.ApplicantID,
			})
			return h.finish(ctx, input, &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}), nil
		}
		emailSent = true
	}

	// SMS goes out only for high priority notifications.
	if h.config.SMSEnabled && h.sms != nil && contact.Phone != "" && input.Priority == "high" {
		_, err := h.sms.SendSMS(ctx, contact.Phone, subject)
		switch {
		case err == nil:
			smsSent = true
		case emailSent:
			// The email already reached the applicant; a failed status would
			// get it resent.
			h.logger.Warn("SMS send failed after email was sent", map[string]interface{}{
				"error":       err,
				"applicantId": input.ApplicantID,
			})
		default:
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":       err,
				"applicantId": input.ApplicantID,
			})
			return h.finish(ctx, input, &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}), nil
		}
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	h.logger.Info("notification processed", map[string]interface{}{
		"applicantId":      input.ApplicantID,
		"notificationType": input.NotificationType,
		"template":         key,
		"status":           status,
	})

	return h.finish(ctx, input, &Output{NotificationID: notificationID, Status: status, SentAt: sentAt}), nil
}

func displayName(contact *models.ApplicantContact) string {
	if name := strings.TrimSpace(contact.Name); name != "" {
		return name
	}
	return "Applicant"
}

// finish records the notification stage and returns output unchanged.
func (h *Handler) finish(ctx context.Context, input *Input, output *Output) *Output {
	err := h.store.UpsertStatus(ctx, models.ApplicationStatus{
		ApplicantID: input.ApplicantID,
		Stage:       models.StageNotificationSent,
		Details: map[string]interface{}{
			"notificationId":   output.NotificationID,
			"notificationType": input.NotificationType,
			"status":           output.Status,
		},
	})
	if err != nil {
		h.logger.Warn("status update failed", map[string]interface{}{
			"applicantId": input.ApplicantID,
			"error":       err,
		})
	}
	return output
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
