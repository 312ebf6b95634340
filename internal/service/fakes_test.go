package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/pkg/jobs"
)

type balanceKey struct {
	userID      string
	leaveTypeID string
	year        int
}

type memState struct {
	apps          map[string]models.LeaveApplication
	balances      map[balanceKey]models.LeaveBalance
	leaveTypes    map[string]models.LeaveType
	adjustments   map[string]models.ClassAdjustment
	notifications map[string]models.Notification
	notifyOrder   []string
	users         map[string]models.User
	history       []models.LeaveHistory
}

func (s memState) clone() memState {
	out := memState{
		apps:          make(map[string]models.LeaveApplication, len(s.apps)),
		balances:      make(map[balanceKey]models.LeaveBalance, len(s.balances)),
		leaveTypes:    s.leaveTypes,
		adjustments:   make(map[string]models.ClassAdjustment, len(s.adjustments)),
		notifications: make(map[string]models.Notification, len(s.notifications)),
		notifyOrder:   append([]string(nil), s.notifyOrder...),
		users:         s.users,
		history:       append([]models.LeaveHistory(nil), s.history...),
	}
	for k, v := range s.apps {
		out.apps[k] = v
	}
	for k, v := range s.balances {
		out.balances[k] = v
	}
	for k, v := range s.adjustments {
		out.adjustments[k] = v
	}
	for k, v := range s.notifications {
		out.notifications[k] = v
	}
	return out
}

// memDB is an in-memory stand-in for the database. RunInTx serialises transactions and
// restores a snapshot when fn fails.
type memDB struct {
	mu    sync.Mutex
	state memState

	failHistory      bool
	failBalance      bool
	failNotification bool
}

func newMemDB() *memDB {
	return &memDB{state: memState{
		apps:          map[string]models.LeaveApplication{},
		balances:      map[balanceKey]models.LeaveBalance{},
		leaveTypes:    map[string]models.LeaveType{},
		adjustments:   map[string]models.ClassAdjustment{},
		notifications: map[string]models.Notification{},
		users:         map[string]models.User{},
	}}
}

func (db *memDB) RunInTx(ctx context.Context, fn func(LeaveStores) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	snapshot := db.state.clone()
	if err := fn(db.stores()); err != nil {
		db.state = snapshot
		return err
	}
	return nil
}

// Stores returns stores for non-transactional reads.
func (db *memDB) Stores() LeaveStores {
	return LeaveStores{
		Applications:  lockedApps{db: db},
		Balances:      lockedBalances{db: db},
		LeaveTypes:    memLeaveTypes{db: db},
		Adjustments:   lockedAdjustments{db: db},
		Notifications: lockedNotifications{db: db},
		Users:         memUsers{db: db},
		History:       lockedHistory{db: db},
	}
}

func (db *memDB) stores() LeaveStores {
	return LeaveStores{
		Applications:  memApps{db: db},
		Balances:      memBalances{db: db},
		LeaveTypes:    memLeaveTypes{db: db},
		Adjustments:   memAdjustments{db: db},
		Notifications: memNotifications{db: db},
		Users:         memUsers{db: db},
		History:       memHistory{db: db},
	}
}

func (db *memDB) addUser(u models.User) {
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	db.state.users[u.ID] = u
}

func (db *memDB) addLeaveType(t models.LeaveType) {
	db.state.leaveTypes[t.ID] = t
}

func (db *memDB) app(id string) models.LeaveApplication {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state.apps[id]
}

func (db *memDB) balance(userID, leaveTypeID string, year int) (models.LeaveBalance, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	b, ok := db.state.balances[balanceKey{userID, leaveTypeID, year}]
	return b, ok
}

func (db *memDB) notificationsFor(userID string) []models.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.Notification
	for _, id := range db.state.notifyOrder {
		if n, ok := db.state.notifications[id]; ok && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (db *memDB) historyFor(appID string) []models.LeaveHistory {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.LeaveHistory
	for _, h := range db.state.history {
		if h.ApplicationID == appID {
			out = append(out, h)
		}
	}
	return out
}

func (db *memDB) adjustmentsFor(appID string) []models.ClassAdjustment {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.ClassAdjustment
	for _, a := range db.state.adjustments {
		if a.ApplicationID == appID {
			out = append(out, a)
		}
	}
	return out
}

func (db *memDB) detail(app models.LeaveApplication) models.LeaveApplicationDetail {
	user := db.state.users[app.UserID]
	return models.LeaveApplicationDetail{
		LeaveApplication: app,
		DeptID:           user.DeptID,
		ApplicantName:    user.FullName(),
		LeaveTypeName:    db.state.leaveTypes[app.LeaveTypeID].Name,
	}
}

type memApps struct{ db *memDB }

func (r memApps) Create(ctx context.Context, app *models.LeaveApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	r.db.state.apps[app.ID] = *app
	return nil
}

func (r memApps) GetDetail(ctx context.Context, id string) (*models.LeaveApplicationDetail, error) {
	app, ok := r.db.state.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := r.db.detail(app)
	return &d, nil
}

func (r memApps) GetForUpdate(ctx context.Context, id string) (*models.LeaveApplicationDetail, error) {
	return r.GetDetail(ctx, id)
}

func (r memApps) UpdateDecision(ctx context.Context, u models.LeaveStatusUpdate) error {
	app, ok := r.db.state.apps[u.ID]
	if !ok || app.Status != u.ExpectedStatus {
		return sql.ErrNoRows
	}
	app.Status = u.Status
	app.HODApproval = u.HODApproval
	app.AdminApproval = u.AdminApproval
	app.HODRemarks = u.HODRemarks
	app.AdminRemarks = u.AdminRemarks
	app.HODActionDate = u.HODActionDate
	app.AdminActionDate = u.AdminActionDate
	app.ForwardedAt = u.ForwardedAt
	app.BalanceApplied = u.BalanceApplied
	app.LastUpdated = u.LastUpdated
	r.db.state.apps[u.ID] = app
	return nil
}

func (r memApps) UpdateStatus(ctx context.Context, id string, expected, status models.LeaveStatus, at time.Time) error {
	app, ok := r.db.state.apps[id]
	if !ok || app.Status != expected {
		return sql.ErrNoRows
	}
	app.Status = status
	app.LastUpdated = at
	r.db.state.apps[id] = app
	return nil
}

func (r memApps) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveApplicationDetail, int, error) {
	var out []models.LeaveApplicationDetail
	for _, app := range r.db.state.apps {
		d := r.db.detail(app)
		if filter.UserID != "" && d.UserID != filter.UserID {
			continue
		}
		if filter.DeptID != "" && d.DeptID != filter.DeptID {
			continue
		}
		if len(filter.Status) > 0 && !containsStatus(filter.Status, d.Status) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicationDate.After(out[j].ApplicationDate) })
	return out, len(out), nil
}

func containsStatus(list []models.LeaveStatus, s models.LeaveStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type memBalances struct{ db *memDB }

func (r memBalances) ApplyUsage(ctx context.Context, userID, leaveTypeID string, year, days int) error {
	if r.db.failBalance {
		return errors.New("balance write failed")
	}
	lt, ok := r.db.state.leaveTypes[leaveTypeID]
	if !ok {
		return sql.ErrNoRows
	}
	key := balanceKey{userID, leaveTypeID, year}
	b, ok := r.db.state.balances[key]
	if !ok {
		b = models.LeaveBalance{ID: uuid.NewString(), UserID: userID, LeaveTypeID: leaveTypeID, Year: year, TotalDays: lt.DefaultBalance}
	}
	b.UsedDays += days
	r.db.state.balances[key] = b
	return nil
}

func (r memBalances) ListForUser(ctx context.Context, userID string, year int) ([]models.BalanceView, error) {
	var out []models.BalanceView
	for _, lt := range r.db.state.leaveTypes {
		view := models.BalanceView{LeaveTypeID: lt.ID, LeaveTypeName: lt.Name, Year: year, TotalDays: lt.DefaultBalance}
		if b, ok := r.db.state.balances[balanceKey{userID, lt.ID, year}]; ok {
			view.TotalDays = b.TotalDays
			view.UsedDays = b.UsedDays
		}
		view.Remaining = view.TotalDays - view.UsedDays
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveTypeName < out[j].LeaveTypeName })
	return out, nil
}

type memLeaveTypes struct{ db *memDB }

func (r memLeaveTypes) GetByID(ctx context.Context, id string) (*models.LeaveType, error) {
	lt, ok := r.db.state.leaveTypes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &lt, nil
}

func (r memLeaveTypes) List(ctx context.Context) ([]models.LeaveType, error) {
	out := make([]models.LeaveType, 0, len(r.db.state.leaveTypes))
	for _, lt := range r.db.state.leaveTypes {
		out = append(out, lt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memAdjustments struct{ db *memDB }

func (r memAdjustments) Create(ctx context.Context, adj *models.ClassAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.NewString()
	}
	r.db.state.adjustments[adj.ID] = *adj
	return nil
}

func (r memAdjustments) detail(adj models.ClassAdjustment) models.ClassAdjustmentDetail {
	app := r.db.state.apps[adj.ApplicationID]
	return models.ClassAdjustmentDetail{
		ClassAdjustment: adj,
		ApplicantID:     app.UserID,
		ApplicantName:   r.db.state.users[app.UserID].FullName(),
		ColleagueName:   r.db.state.users[adj.AdjustedBy].FullName(),
		LeaveStartDate:  app.StartDate,
		LeaveEndDate:    app.EndDate,
		LeaveStatus:     app.Status,
	}
}

func (r memAdjustments) GetForUpdate(ctx context.Context, id string) (*models.ClassAdjustmentDetail, error) {
	adj, ok := r.db.state.adjustments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := r.detail(adj)
	return &d, nil
}

func (r memAdjustments) Respond(ctx context.Context, id string, status models.AdjustmentStatus, remarks *string, at time.Time) error {
	adj, ok := r.db.state.adjustments[id]
	if !ok || adj.Status != models.AdjustmentPending {
		return sql.ErrNoRows
	}
	adj.Status = status
	adj.Remarks = remarks
	adj.RespondedAt = &at
	r.db.state.adjustments[id] = adj
	return nil
}

func (r memAdjustments) ListForColleague(ctx context.Context, userID string, pendingOnly bool) ([]models.ClassAdjustmentDetail, error) {
	var out []models.ClassAdjustmentDetail
	for _, adj := range r.db.state.adjustments {
		if adj.AdjustedBy != userID || (pendingOnly && adj.Status != models.AdjustmentPending) {
			continue
		}
		out = append(out, r.detail(adj))
	}
	return out, nil
}

func (r memAdjustments) ListByApplication(ctx context.Context, applicationID string) ([]models.ClassAdjustmentDetail, error) {
	var out []models.ClassAdjustmentDetail
	for _, adj := range r.db.state.adjustments {
		if adj.ApplicationID == applicationID {
			out = append(out, r.detail(adj))
		}
	}
	return out, nil
}

type memNotifications struct{ db *memDB }

func (r memNotifications) Create(ctx context.Context, n *models.Notification) error {
	if r.db.failNotification {
		return errors.New("notification write failed")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	r.db.state.notifications[n.ID] = *n
	r.db.state.notifyOrder = append(r.db.state.notifyOrder, n.ID)
	return nil
}

func (r memNotifications) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	var out []models.Notification
	for _, n := range r.db.state.notifications {
		if n.UserID != filter.UserID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (r memNotifications) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	n, ok := r.db.state.notifications[id]
	if !ok || n.UserID != userID {
		return sql.ErrNoRows
	}
	n.IsRead = true
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
	r.db.state.notifications[id] = n
	return nil
}

func (r memNotifications) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	var count int64
	for id, n := range r.db.state.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			r.db.state.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (r memNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range r.db.state.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r memNotifications) Delete(ctx context.Context, id, userID string) error {
	n, ok := r.db.state.notifications[id]
	if !ok || n.UserID != userID {
		return sql.ErrNoRows
	}
	delete(r.db.state.notifications, id)
	return nil
}

func (r memNotifications) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	for id, n := range r.db.state.notifications {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			delete(r.db.state.notifications, id)
			count++
		}
	}
	return count, nil
}

type memUsers struct{ db *memDB }

func (r memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.db.state.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (r memUsers) FindDepartmentHOD(ctx context.Context, deptID string) (*models.User, error) {
	for _, u := range r.db.state.users {
		if u.DeptID == deptID && u.Role == models.RoleHOD && u.Status == models.UserStatusActive {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memUsers) SearchFaculty(ctx context.Context, filter models.FacultySearchFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range r.db.state.users {
		if u.ID == filter.ExcludeUserID {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

type memHistory struct{ db *memDB }

func (r memHistory) Create(ctx context.Context, entry *models.LeaveHistory) error {
	if r.db.failHistory {
		return errors.New("history write failed")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.db.state.history = append(r.db.state.history, *entry)
	return nil
}

func (r memHistory) ListByApplication(ctx context.Context, applicationID string) ([]models.LeaveHistory, error) {
	var out []models.LeaveHistory
	for _, h := range r.db.state.history {
		if h.ApplicationID == applicationID {
			out = append(out, h)
		}
	}
	return out, nil
}

// Locked wrappers serialise reads made outside RunInTx.

type lockedApps struct{ db *memDB }

func (r lockedApps) Create(ctx context.Context, app *models.LeaveApplication) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memApps(r).Create(ctx, app)
}

func (r lockedApps) GetDetail(ctx context.Context, id string) (*models.LeaveApplicationDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memApps(r).GetDetail(ctx, id)
}

func (r lockedApps) GetForUpdate(ctx context.Context, id string) (*models.LeaveApplicationDetail, error) {
	return r.GetDetail(ctx, id)
}

func (r lockedApps) UpdateDecision(ctx context.Context, u models.LeaveStatusUpdate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memApps(r).UpdateDecision(ctx, u)
}

func (r lockedApps) UpdateStatus(ctx context.Context, id string, expected, status models.LeaveStatus, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memApps(r).UpdateStatus(ctx, id, expected, status, at)
}

func (r lockedApps) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveApplicationDetail, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memApps(r).List(ctx, filter)
}

type lockedBalances struct{ db *memDB }

func (r lockedBalances) ApplyUsage(ctx context.Context, userID, leaveTypeID string, year, days int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memBalances(r).ApplyUsage(ctx, userID, leaveTypeID, year, days)
}

func (r lockedBalances) ListForUser(ctx context.Context, userID string, year int) ([]models.BalanceView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memBalances(r).ListForUser(ctx, userID, year)
}

type lockedAdjustments struct{ db *memDB }

func (r lockedAdjustments) Create(ctx context.Context, adj *models.ClassAdjustment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdjustments(r).Create(ctx, adj)
}

func (r lockedAdjustments) GetForUpdate(ctx context.Context, id string) (*models.ClassAdjustmentDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdjustments(r).GetForUpdate(ctx, id)
}

func (r lockedAdjustments) Respond(ctx context.Context, id string, status models.AdjustmentStatus, remarks *string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdjustments(r).Respond(ctx, id, status, remarks, at)
}

func (r lockedAdjustments) ListForColleague(ctx context.Context, userID string, pendingOnly bool) ([]models.ClassAdjustmentDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdjustments(r).ListForColleague(ctx, userID, pendingOnly)
}

func (r lockedAdjustments) ListByApplication(ctx context.Context, applicationID string) ([]models.ClassAdjustmentDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memAdjustments(r).ListByApplication(ctx, applicationID)
}

type lockedNotifications struct{ db *memDB }

func (r lockedNotifications) Create(ctx context.Context, n *models.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memNotifications(r).Create(ctx, n)
}

func (r lockedNotifications) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memNotifications(r).List(ctx, filter)
}

func (r lockedNotifications) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memNotifications(r).MarkRead(ctx, id, userID, at)
}

func (r lockedNotifications) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memNotifications(r).MarkAllRead(ctx, userID, at)
}

func (r lockedNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memNotifications(r).CountUnread(ctx, userID)
}

func (r lockedNotifications) Delete(ctx context.Context, id, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memNotifications(r).Delete(ctx, id, userID)
}

func (r lockedNotifications) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memNotifications(r).DeleteReadBefore(ctx, cutoff)
}

type lockedHistory struct{ db *memDB }

func (r lockedHistory) Create(ctx context.Context, entry *models.LeaveHistory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memHistory(r).Create(ctx, entry)
}

func (r lockedHistory) ListByApplication(ctx context.Context, applicationID string) ([]models.LeaveHistory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return memHistory(r).ListByApplication(ctx, applicationID)
}

// queueStub records enqueued jobs.
type queueStub struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *queueStub) templates() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, job.Payload.(EmailRequest).Template)
	}
	return out
}
