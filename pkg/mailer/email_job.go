package mailer

import "strings"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (rendered by the worker from Data) or Subject with Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// EnsureRecipient copies the recipient into Data so templates can greet by address.
func (j *EmailJob) EnsureRecipient() {
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	if v, ok := j.Data["Email"].(string); !ok || strings.TrimSpace(v) == "" {
		j.Data["Email"] = j.To
	}
}
