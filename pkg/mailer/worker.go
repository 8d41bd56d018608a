package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/taskmaster-api/pkg/mailer/templates"
)

// ErrBadJob marks a message that can never be delivered and must not be requeued.
var ErrBadJob = errors.New("bad email job")

// Prepare resolves the subject and bodies of a job, rendering its template when set.
func Prepare(job *EmailJob) (subject, text, html string, err error) {
	if strings.TrimSpace(job.To) == "" {
		return "", "", "", fmt.Errorf("%w: missing recipient", ErrBadJob)
	}
	job.EnsureRecipient()

	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", fmt.Errorf("%w: no template and no body", ErrBadJob)
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	if !mailtpl.Known(job.Template) {
		return "", "", "", fmt.Errorf("%w: unknown template %q", ErrBadJob, job.Template)
	}
	subject, text, html, err = mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	return subject, text, html, nil
}

// Worker turns queued messages into sent emails.
type Worker struct {
	Sender Sender
	Logger *logrus.Logger
}

// Handle decodes and sends one queued message. A returned error wrapping
// ErrBadJob means the message should be dropped; any other error means retry.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	subject, text, html, err := Prepare(&job)
	if err != nil {
		return err
	}
	if err := w.Sender.Send(ctx, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send to %s: %w", job.To, err)
	}
	if w.Logger != nil {
		w.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	}
	return nil
}
