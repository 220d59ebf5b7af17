// internal/models/notification.go
package models

// Notification types sent to applicants.
const (
	NotificationSubmission   = "submission"
	NotificationVerification = "verification"
	NotificationEligibility  = "eligibility"
)

type Notification struct {
	ID          string                 `json:"id"`
	ApplicantID string                 `json:"applicantId"`
	Type        string                 `json:"type"`
	Channel     string                 `json:"channel"` // "email", "sms"
	Status      string                 `json:"status"`  // "sent", "failed", "disabled"
	Payload     map[string]interface{} `json:"payload,omitempty"`
	SentAt      string                 `json:"sentAt"`
}

type NotificationTemplate struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
