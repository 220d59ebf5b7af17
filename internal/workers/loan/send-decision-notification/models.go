// internal/workers/loan/send-decision-notification/models.go
package senddecisionnotification

type Input struct {
	ApplicantID      string   `json:"applicantId"`
	NotificationType string   `json:"notificationType"` // submission, verification, eligibility
	MissingInfo      []string `json:"missingInfo,omitempty"`
	Priority         string   `json:"priority,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Decision statuses shown to the applicant.
const (
	DecisionApproved    = "APPROVED"
	DecisionRejected    = "REJECTED"
	DecisionUnderReview = "UNDER REVIEW"
)
