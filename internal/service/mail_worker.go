package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-leave-api/pkg/jobs"
	"github.com/noah-isme/faculty-leave-api/pkg/mailer"
)

// MailWorker bridges queued email jobs to the configured sender.
type MailWorker struct {
	users     userStore
	templates *mailer.Templates
	sender    mailer.Sender
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewMailWorker constructs a worker.
func NewMailWorker(users userStore, templates *mailer.Templates, sender mailer.Sender, metrics *MetricsService, logger *zap.Logger) *MailWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailWorker{users: users, templates: templates, sender: sender, metrics: metrics, logger: logger}
}

// Handle renders and sends one email. Problems that a retry cannot fix are logged and
// swallowed; delivery errors are returned so the queue retries them.
func (w *MailWorker) Handle(ctx context.Context, job jobs.Job) error {
	req, ok := emailPayload(job.Payload)
	if !ok {
		w.logger.Warn("mail job carries unexpected payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}

	user, err := w.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.logger.Warn("mail recipient not found", zap.String("user_id", req.UserID), zap.String("template", req.Template))
			return nil
		}
		return err
	}
	if user.Email == "" {
		w.logger.Warn("mail recipient has no address", zap.String("user_id", req.UserID))
		return nil
	}

	data := req.Data
	if data.RecipientName == "" {
		data.RecipientName = user.FullName()
	}
	subject, body, err := w.templates.Render(req.Template, data)
	if err != nil {
		w.logger.Error("mail template failed", zap.String("template", req.Template), zap.Error(err))
		return nil
	}

	return w.sender.Send(ctx, mailer.Message{To: []string{user.Email}, Subject: subject, HTMLBody: body})
}

// OnResult records the final outcome of a mail job.
func (w *MailWorker) OnResult(job jobs.Job, err error) {
	req, ok := emailPayload(job.Payload)
	if !ok {
		return
	}
	w.metrics.RecordMailDelivery(req.Template, err)
	if err != nil {
		w.logger.Error("email delivery failed",
			zap.String("job_id", job.ID),
			zap.String("template", req.Template),
			zap.String("user_id", req.UserID),
			zap.Int("attempt", job.Attempt),
			zap.Error(err))
	}
}

func emailPayload(payload interface{}) (EmailRequest, bool) {
	switch v := payload.(type) {
	case EmailRequest:
		return v, true
	case *EmailRequest:
		if v == nil {
			return EmailRequest{}, false
		}
		return *v, true
	default:
		return EmailRequest{}, false
	}
}
