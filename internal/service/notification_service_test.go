package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
	"github.com/noah-isme/faculty-leave-api/pkg/mailer"
)

func newNotificationFixture() (*memDB, *queueStub, *NotificationService) {
	db := newMemDB()
	queue := &queueStub{}
	svc := NewNotificationService(db.Stores().Notifications, queue, zap.NewNop())
	return db, queue, svc
}

func TestNotificationServiceNotifyDefersEmail(t *testing.T) {
	db, queue, svc := newNotificationFixture()
	ctx := context.Background()

	email, err := svc.Notify(ctx, nil, Notice{
		UserID:  "fac-1",
		Title:   "Leave Application Approved",
		Message: "approved",
		Type:    models.NotificationSuccess,
		Link:    "/leaves/1",
		Email:   &EmailRequest{Template: mailer.TemplateLeaveApproved},
	})
	require.NoError(t, err)
	require.NotNil(t, email)
	assert.Equal(t, "fac-1", email.UserID)
	assert.Empty(t, queue.templates(), "email must wait for dispatch")

	inbox := db.notificationsFor("fac-1")
	require.Len(t, inbox, 1)
	assert.False(t, inbox[0].IsRead)
	require.NotNil(t, inbox[0].Link)
	assert.Equal(t, "/leaves/1", *inbox[0].Link)

	svc.Dispatch(email, nil)
	assert.Equal(t, []string{mailer.TemplateLeaveApproved}, queue.templates())
	assert.Equal(t, MailJobType, queue.jobs[0].Type)
}

func TestNotificationServiceNotifyValidation(t *testing.T) {
	_, _, svc := newNotificationFixture()
	_, err := svc.Notify(context.Background(), nil, Notice{Title: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestNotificationServiceNotifyStoreFailure(t *testing.T) {
	db, _, svc := newNotificationFixture()
	db.failNotification = true
	_, err := svc.Notify(context.Background(), nil, Notice{UserID: "fac-1", Title: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrDependency))
}

func TestNotificationServiceDispatchSwallowsQueueErrors(t *testing.T) {
	_, queue, svc := newNotificationFixture()
	queue.err = errors.New("queue full")
	assert.NotPanics(t, func() {
		svc.Dispatch(&EmailRequest{UserID: "fac-1", Template: mailer.TemplateLeaveApplied})
	})

	disabled := NewNotificationService(nil, nil, nil)
	assert.NotPanics(t, func() {
		disabled.Dispatch(&EmailRequest{UserID: "fac-1", Template: mailer.TemplateLeaveApplied})
	})
}

func TestNotificationServiceInbox(t *testing.T) {
	_, _, svc := newNotificationFixture()
	ctx := context.Background()
	me := models.Caller{UserID: "fac-1", Role: models.RoleFaculty}
	other := models.Caller{UserID: "fac-2", Role: models.RoleFaculty}

	for _, title := range []string{"one", "two", "three"} {
		_, err := svc.Notify(ctx, nil, Notice{UserID: me.UserID, Title: title})
		require.NoError(t, err)
	}
	_, err := svc.Notify(ctx, nil, Notice{UserID: other.UserID, Title: "theirs"})
	require.NoError(t, err)

	items, page, err := svc.List(ctx, me, 1, 10, false)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 3, page.TotalCount)

	count, err := svc.CountUnread(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.MarkRead(ctx, me, items[0].ID))
	err = svc.MarkRead(ctx, other, items[1].ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound), "cannot touch another user's notification")

	unread, _, err := svc.List(ctx, me, 1, 10, true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	updated, err := svc.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err = svc.CountUnread(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, svc.Delete(ctx, me, items[2].ID))
	assert.True(t, errors.Is(svc.Delete(ctx, me, items[2].ID), appErrors.ErrNotFound))

	theirs, err := svc.CountUnread(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, theirs)
}

func TestNotificationServiceCleanupRemovesOnlyOldRead(t *testing.T) {
	db, _, svc := newNotificationFixture()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -120)
	store := db.Stores().Notifications

	for _, n := range []models.Notification{
		{ID: "old-read", UserID: "u", Title: "a", IsRead: true, CreatedAt: old},
		{ID: "old-unread", UserID: "u", Title: "b", CreatedAt: old},
		{ID: "new-read", UserID: "u", Title: "c", IsRead: true, CreatedAt: now},
	} {
		n := n
		require.NoError(t, store.Create(ctx, &n))
	}
	svc.now = func() time.Time { return now }
	removed, err := svc.CleanupOlderThan(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining := db.notificationsFor("u")
	require.Len(t, remaining, 2)
	assert.ElementsMatch(t, []string{"old-unread", "new-read"}, []string{remaining[0].ID, remaining[1].ID})

	_, err = svc.CleanupOlderThan(ctx, 0)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestNotificationServiceRunCleanupStopsOnCancel(t *testing.T) {
	_, _, svc := newNotificationFixture()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunCleanup(ctx, 10*time.Millisecond, 30)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}
