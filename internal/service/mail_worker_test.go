package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/pkg/jobs"
	"github.com/noah-isme/faculty-leave-api/pkg/mailer"
)

type senderStub struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *senderStub) Send(ctx context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newMailWorkerFixture(t *testing.T) (*memDB, *senderStub, *MetricsService, *MailWorker) {
	t.Helper()
	db := newMemDB()
	db.addUser(models.User{ID: "fac-1", FirstName: "Ravi", LastName: "Kumar", Email: "ravi@example.com", Role: models.RoleFaculty})
	db.addUser(models.User{ID: "no-mail", FirstName: "Silent", Role: models.RoleFaculty})

	templates, err := mailer.NewTemplates("http://localhost:8080")
	require.NoError(t, err)
	sender := &senderStub{}
	metrics := NewMetricsService()
	worker := NewMailWorker(db.Stores().Users, templates, sender, metrics, zap.NewNop())
	return db, sender, metrics, worker
}

func mailJob(req EmailRequest) jobs.Job {
	return jobs.Job{ID: "job-1", Type: MailJobType, Payload: req}
}

func TestMailWorkerHandleSendsRenderedMail(t *testing.T) {
	_, sender, _, worker := newMailWorkerFixture(t)

	err := worker.Handle(context.Background(), mailJob(EmailRequest{
		UserID:   "fac-1",
		Template: mailer.TemplateLeaveApproved,
		Data:     mailer.Data{ApplicationID: "app-42", LeaveType: "casual_leave"},
	}))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ravi@example.com"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "app-42")
	assert.Contains(t, sender.sent[0].HTMLBody, "Ravi Kumar")
}

func TestMailWorkerHandleSkipsUndeliverable(t *testing.T) {
	_, sender, _, worker := newMailWorkerFixture(t)
	ctx := context.Background()

	cases := []jobs.Job{
		mailJob(EmailRequest{UserID: "ghost", Template: mailer.TemplateLeaveApplied}),
		mailJob(EmailRequest{UserID: "no-mail", Template: mailer.TemplateLeaveApplied}),
		mailJob(EmailRequest{UserID: "fac-1", Template: "UNKNOWN"}),
		{ID: "job-2", Type: MailJobType, Payload: "not an email"},
	}
	for _, job := range cases {
		assert.NoError(t, worker.Handle(ctx, job))
	}
	assert.Empty(t, sender.sent)
}

func TestMailWorkerHandleReturnsSendErrors(t *testing.T) {
	_, sender, _, worker := newMailWorkerFixture(t)
	sender.err = errors.New("relay unavailable")

	err := worker.Handle(context.Background(), mailJob(EmailRequest{UserID: "fac-1", Template: mailer.TemplateLeaveApplied}))
	assert.Error(t, err)
}

func TestMailWorkerOnResultRecordsOutcome(t *testing.T) {
	_, _, metrics, worker := newMailWorkerFixture(t)

	worker.OnResult(mailJob(EmailRequest{UserID: "fac-1", Template: mailer.TemplateLeaveApplied}), nil)
	worker.OnResult(mailJob(EmailRequest{UserID: "fac-1", Template: mailer.TemplateLeaveApplied}), errors.New("boom"))
	worker.OnResult(jobs.Job{Payload: 42}, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.mailDeliveries.WithLabelValues(mailer.TemplateLeaveApplied, "sent")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.mailDeliveries.WithLabelValues(mailer.TemplateLeaveApplied, "failed")))
}
