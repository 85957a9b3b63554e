package attendance

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

// memAttendanceRepo is an in-memory attendance.AttendanceRepository. Each method
// holds the lock for its whole body, standing in for a single atomic statement.
type memAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*attendance.Record
	nextID  int
	now     func() time.Time

	countErr error
	closeErr error
	calls    []string
}

func newMemAttendanceRepo(now func() time.Time) *memAttendanceRepo {
	return &memAttendanceRepo{records: make(map[string]*attendance.Record), now: now}
}

func cloneRecord(rec attendance.Record) attendance.Record {
	out := rec
	out.Sessions = append([]attendance.Session(nil), rec.Sessions...)
	return out
}

func (m *memAttendanceRepo) called(name string) {
	m.calls = append(m.calls, name)
}

func (m *memAttendanceRepo) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *memAttendanceRepo) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("create")

	for _, r := range m.records {
		if r.EmployeeID == record.EmployeeID && r.Date == record.Date {
			return attendance.Record{}, attendance.ErrDuplicateRecord
		}
	}

	m.nextID++
	rec := cloneRecord(record)
	rec.ID = "att-" + strconv.Itoa(m.nextID)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	rec.UpdatedAt = rec.CreatedAt
	m.records[rec.ID] = &rec

	return cloneRecord(rec), nil
}

func (m *memAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return cloneRecord(*rec), nil
}

func (m *memAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.Date == date {
			rec := cloneRecord(*r)
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *memAttendanceRepo) GetOpenRecord(ctx context.Context, employeeID string) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *attendance.Record
	for _, r := range m.records {
		if r.EmployeeID != employeeID || !attendance.HasOpenSession(r) {
			continue
		}
		if latest == nil || r.Date > latest.Date {
			latest = r
		}
	}
	if latest == nil {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return cloneRecord(*latest), nil
}

func (m *memAttendanceRepo) AppendSession(ctx context.Context, recordID string, session attendance.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("append")

	rec, ok := m.records[recordID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if attendance.HasOpenSession(rec) {
		return attendance.ErrSessionConflict
	}

	rec.Sessions = append(rec.Sessions, session)
	if rec.ClockIn == nil {
		in := session.In
		rec.ClockIn = &in
	}
	rec.ClockOut = nil
	rec.UpdatedAt = m.now()
	return nil
}

func (m *memAttendanceRepo) CloseSession(ctx context.Context, recordID string, out time.Time, editedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("close_session")

	rec, ok := m.records[recordID]
	if !ok {
		return attendance.ErrNoOpenSession
	}
	open, _ := attendance.OpenSession(rec)
	if open == nil || open.In.After(out) {
		return attendance.ErrNoOpenSession
	}

	o := out
	open.Out = &o
	rec.ClockOut = &o
	rec.EditedBy = &editedBy
	now := m.now()
	rec.EditedAt = &now
	rec.UpdatedAt = now
	return nil
}

func (m *memAttendanceRepo) CountClockInsBetween(ctx context.Context, start, end time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("count")

	if m.countErr != nil {
		return 0, m.countErr
	}

	var n int64
	for _, r := range m.records {
		if r.ClockIn != nil && !r.ClockIn.Before(start) && r.ClockIn.Before(end) {
			n++
		}
	}
	return n, nil
}

func (m *memAttendanceRepo) CloseOpenRecordsForDate(ctx context.Context, date string, cutoff time.Time, editedBy string, editedAt time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("close_open")

	if m.closeErr != nil {
		return nil, m.closeErr
	}

	var ids []string
	for _, r := range m.records {
		if r.Date != date {
			continue
		}
		if attendance.ApplyAutoClose(r, cutoff, editedBy, editedAt) {
			ids = append(ids, r.EmployeeID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memAttendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []attendance.Record
	for _, r := range m.records {
		if len(filter.EmployeeIDs) > 0 && !contains(filter.EmployeeIDs, r.EmployeeID) {
			continue
		}
		if filter.Date != nil && r.Date != *filter.Date {
			continue
		}
		if filter.StartDate != nil && r.Date < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && r.Date > *filter.EndDate {
			continue
		}
		if filter.Status != nil && string(r.Status) != *filter.Status {
			continue
		}
		matched = append(matched, cloneRecord(*r))
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		return matched[i].EmployeeID < matched[j].EmployeeID
	})

	total := int64(len(matched))
	start := min((filter.Page-1)*filter.Limit, len(matched))
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

func (m *memAttendanceRepo) UpdateDetails(ctx context.Context, id string, status attendance.Status, reason string, editedBy string, editedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	rec.Status = status
	rec.Reason = reason
	rec.EditedBy = &editedBy
	rec.EditedAt = &editedAt
	return nil
}

func (m *memAttendanceRepo) UpdateOTStatus(ctx context.Context, id string, otStatus attendance.OTStatus, decision attendance.OTDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	rec.OTStatus = &otStatus
	rec.OTDecision = &decision
	return nil
}

func (m *memAttendanceRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(m.records, id)
	return nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

type memEmployeeRepo struct {
	employees map[string]employee.Employee
}

func newMemEmployeeRepo(emps ...employee.Employee) *memEmployeeRepo {
	m := &memEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, e := range emps {
		m.employees[e.ID] = e
	}
	return m
}

func (m *memEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *memEmployeeRepo) GetByIDs(ctx context.Context, ids []string) (map[string]employee.Employee, error) {
	out := make(map[string]employee.Employee)
	for _, id := range ids {
		if emp, ok := m.employees[id]; ok {
			out[id] = emp
		}
	}
	return out, nil
}

// recordingNotifier captures queued notifications synchronously.
type recordingNotifier struct {
	mu   sync.Mutex
	reqs []notification.CreateNotificationRequest
}

func (r *recordingNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return nil
}

func (r *recordingNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		_ = r.QueueNotification(ctx, req)
	}
	return nil
}

func (r *recordingNotifier) Subscribe(ctx context.Context, topic string) (<-chan notification.SSEEvent, func()) {
	ch := make(chan notification.SSEEvent)
	return ch, func() {}
}

func (r *recordingNotifier) Stop() {}

func (r *recordingNotifier) ofType(t notification.NotificationType) []notification.CreateNotificationRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []notification.CreateNotificationRequest
	for _, req := range r.reqs {
		if req.Type == t {
			out = append(out, req)
		}
	}
	return out
}
