package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/internal/repository"
)

type leaveApplicationStore interface {
	Create(ctx context.Context, app *models.LeaveApplication) error
	GetDetail(ctx context.Context, id string) (*models.LeaveApplicationDetail, error)
	GetForUpdate(ctx context.Context, id string) (*models.LeaveApplicationDetail, error)
	UpdateDecision(ctx context.Context, update models.LeaveStatusUpdate) error
	UpdateStatus(ctx context.Context, id string, expected, status models.LeaveStatus, at time.Time) error
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveApplicationDetail, int, error)
}

type leaveBalanceStore interface {
	ApplyUsage(ctx context.Context, userID, leaveTypeID string, year, days int) error
	ListForUser(ctx context.Context, userID string, year int) ([]models.BalanceView, error)
}

type leaveTypeStore interface {
	GetByID(ctx context.Context, id string) (*models.LeaveType, error)
	List(ctx context.Context) ([]models.LeaveType, error)
}

type classAdjustmentStore interface {
	Create(ctx context.Context, adj *models.ClassAdjustment) error
	GetForUpdate(ctx context.Context, id string) (*models.ClassAdjustmentDetail, error)
	Respond(ctx context.Context, id string, status models.AdjustmentStatus, remarks *string, at time.Time) error
	ListForColleague(ctx context.Context, userID string, pendingOnly bool) ([]models.ClassAdjustmentDetail, error)
	ListByApplication(ctx context.Context, applicationID string) ([]models.ClassAdjustmentDetail, error)
}

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindDepartmentHOD(ctx context.Context, deptID string) (*models.User, error)
	SearchFaculty(ctx context.Context, filter models.FacultySearchFilter) ([]models.User, int, error)
}

type leaveHistoryStore interface {
	Create(ctx context.Context, entry *models.LeaveHistory) error
	ListByApplication(ctx context.Context, applicationID string) ([]models.LeaveHistory, error)
}

// LeaveStores bundles every store a workflow step may touch. Inside RunInTx all of them
// share one transaction.
type LeaveStores struct {
	Applications  leaveApplicationStore
	Balances      leaveBalanceStore
	LeaveTypes    leaveTypeStore
	Adjustments   classAdjustmentStore
	Notifications notificationStore
	Users         userStore
	History       leaveHistoryStore
}

// TxRunner executes fn with stores bound to a single transaction, committing when fn
// returns nil and rolling back otherwise.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(LeaveStores) error) error
}

// NewSQLStores binds every repository to the given executor.
func NewSQLStores(db sqlx.ExtContext) LeaveStores {
	return LeaveStores{
		Applications:  repository.NewLeaveApplicationRepository(db),
		Balances:      repository.NewLeaveBalanceRepository(db),
		LeaveTypes:    repository.NewLeaveTypeRepository(db),
		Adjustments:   repository.NewClassAdjustmentRepository(db),
		Notifications: repository.NewNotificationRepository(db),
		Users:         repository.NewUserRepository(db),
		History:       repository.NewLeaveHistoryRepository(db),
	}
}

// SQLTxRunner runs workflow steps inside a database transaction.
type SQLTxRunner struct {
	tx *repository.TxManager
}

// NewSQLTxRunner constructs a SQLTxRunner.
func NewSQLTxRunner(tx *repository.TxManager) *SQLTxRunner {
	return &SQLTxRunner{tx: tx}
}

// RunInTx implements TxRunner.
func (r *SQLTxRunner) RunInTx(ctx context.Context, fn func(LeaveStores) error) error {
	return r.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(NewSQLStores(tx))
	})
}
