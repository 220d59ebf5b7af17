// internal/workers/loan/send-decision-notification/templates.go
package senddecisionnotification

import (
	"fmt"
	"strings"

	"loan-intake-workers/internal/models"
)

type emailTemplate struct {
	Subject string
	Body    string
}

const signature = "\n\nBest regards,\nLoan Processing Team"

var templates = map[string]emailTemplate{
	"submission": {
		Subject: "Loan Application Submitted - {{name}}",
		Body: "Dear {{name}},\n\n" +
			"Thank you for submitting your loan application. We have received your application and will begin processing it shortly.\n\n" +
			"You will receive updates as your application progresses through verification and eligibility checks." + signature,
	},
	"verification_incomplete": {
		Subject: "Loan Application Verification Update - {{name}}",
		Body: "Dear {{name}},\n\n" +
			"Your document verification is complete. However, the following information is missing or incomplete:\n{{missingInfo}}\n\n" +
			"Please provide the required information to proceed with your application." + signature,
	},
	"verification_complete": {
		Subject: "Loan Application Verification Update - {{name}}",
		Body: "Dear {{name}},\n\n" +
			"Your documents have been successfully verified. No missing information was found.\n\n" +
			"We will now proceed to the eligibility check. You will receive another update soon." + signature,
	},
	"eligibility_" + DecisionApproved: {
		Subject: "Loan Application Approved - {{name}}",
		Body: "Dear {{name}},\n\n" +
			"We are pleased to inform you that your loan application has been APPROVED.\n\n" +
			"Decision details:\n- Status: APPROVED\n- Reason: {{reason}}\n\n" +
			"You will receive detailed loan terms within 2-3 business days. Please review them carefully and contact our loan officer with any questions." + signature,
	},
	"eligibility_" + DecisionRejected: {
		Subject: "Loan Application Update - {{name}}",
		Body: "Dear {{name}},\n\n" +
			"We regret to inform you that your loan application has been REJECTED.\n\n" +
			"Decision details:\n- Status: REJECTED\n- Reason: {{reason}}{{missingFields}}\n\n" +
			"If your circumstances have changed you may request a review or reapply after addressing the issues above." + signature,
	},
	"eligibility_" + DecisionUnderReview: {
		Subject: "Loan Application Under Review - {{name}}",
		Body: "Dear {{name}},\n\n" +
			"Your loan application is currently UNDER REVIEW.\n\n" +
			"Current status:\n- Status: UNDER REVIEW\n- Reason: {{reason}}{{missingFields}}\n\n" +
			"We will contact you if additional documents or clarification are needed, or once a decision has been reached." + signature,
	},
}

// DecisionStatus maps a scorer decision to the wording used in emails.
func DecisionStatus(d models.Decision) string {
	switch d {
	case models.DecisionYes:
		return DecisionApproved
	case models.DecisionNo:
		return DecisionRejected
	default:
		return DecisionUnderReview
	}
}

// templateKey picks the template for a notification type.
func templateKey(notificationType string, missingInfo []string, decision models.Decision) (string, error) {
	switch notificationType {
	case models.NotificationSubmission:
		return "submission", nil
	case models.NotificationVerification:
		if len(missingInfo) > 0 {
			return "verification_incomplete", nil
		}
		return "verification_complete", nil
	case models.NotificationEligibility:
		return "eligibility_" + DecisionStatus(decision), nil
	default:
		return "", fmt.Errorf("unknown notification type %q", notificationType)
	}
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			lines = append(lines, "- "+item)
		}
	}
	return strings.Join(lines, "\n")
}

// renderTemplate replaces {{key}} placeholders and drops any left unfilled.
func renderTemplate(tmpl string, data map[string]string) string {
	result := tmpl
	for k, v := range data {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
