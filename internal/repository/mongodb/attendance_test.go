package mongodb_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/civiltime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// newTestDB connects to TEST_MONGO_URI and returns a throwaway database that
// is dropped when the test ends.
func newTestDB(t *testing.T) *database.MongoDB {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	db, err := database.NewMongoDB(ctx, uri, "attendance_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, mongodb.EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		_ = db.Close(context.Background())
	})
	return db
}

func istAt(t *testing.T, date string, hour, minute int) time.Time {
	t.Helper()
	ts, err := civiltime.DateTimeToUTC(date, hour, minute)
	require.NoError(t, err)
	return ts
}

func newOpenRecord(t *testing.T, employeeID, date string, in time.Time) attendance.Record {
	t.Helper()
	rec := attendance.Record{
		EmployeeID: employeeID,
		Date:       date,
		Status:     attendance.StatusPresent,
		CreatedBy:  employeeID,
	}
	require.NoError(t, attendance.StartSession(&rec, in, attendance.SourceWeb, ""))
	return rec
}

func TestAttendanceRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	in := istAt(t, "2024-03-11", 9, 15)
	created, err := repo.Create(ctx, newOpenRecord(t, "emp-1", "2024-03-11", in))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", got.Date)
	require.Len(t, got.Sessions, 1)
	assert.True(t, got.Sessions[0].IsOpen())
	assert.True(t, in.Equal(got.Sessions[0].In))

	_, err = repo.Create(ctx, newOpenRecord(t, "emp-1", "2024-03-11", in))
	assert.ErrorIs(t, err, attendance.ErrDuplicateRecord)

	missing, err := repo.GetByEmployeeAndDate(ctx, "emp-1", "2024-03-12")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_SessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	created, err := repo.Create(ctx, newOpenRecord(t, "emp-1", "2024-03-11", istAt(t, "2024-03-11", 9, 0)))
	require.NoError(t, err)

	err = repo.AppendSession(ctx, created.ID, attendance.Session{In: istAt(t, "2024-03-11", 10, 0), Source: attendance.SourceWeb})
	assert.ErrorIs(t, err, attendance.ErrSessionConflict)

	err = repo.AppendSession(ctx, "missing", attendance.Session{In: istAt(t, "2024-03-11", 10, 0), Source: attendance.SourceWeb})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	err = repo.CloseSession(ctx, created.ID, istAt(t, "2024-03-11", 8, 0), "emp-1")
	assert.ErrorIs(t, err, attendance.ErrNoOpenSession)

	require.NoError(t, repo.CloseSession(ctx, created.ID, istAt(t, "2024-03-11", 12, 30), "emp-1"))
	require.NoError(t, repo.AppendSession(ctx, created.ID, attendance.Session{In: istAt(t, "2024-03-11", 13, 15), Source: attendance.SourceMobile, Note: "$not-a-field"}))

	open, err := repo.GetOpenRecord(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, open.Sessions, 2)
	assert.Nil(t, open.ClockOut)
	assert.Equal(t, "$not-a-field", open.Sessions[1].Note)

	end := istAt(t, "2024-03-11", 18, 0)
	require.NoError(t, repo.CloseSession(ctx, created.ID, end, "emp-1"))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ClockOut)
	assert.True(t, end.Equal(*got.ClockOut))
	assert.Equal(t, 495, attendance.WorkedMinutes(got.Sessions, got.ClockIn, got.ClockOut, got.Date, end))

	_, err = repo.GetOpenRecord(ctx, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_ConcurrentAppendAllowsOneOpenSession(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	created, err := repo.Create(ctx, attendance.Record{EmployeeID: "emp-1", Date: "2024-03-11", Status: attendance.StatusPresent})
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.AppendSession(ctx, created.ID, attendance.Session{In: istAt(t, "2024-03-11", 9, i), Source: attendance.SourceWeb})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, attendance.ErrSessionConflict)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Sessions, 1)
}

func TestAttendanceRepository_CloseOpenRecordsForDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	cutoff := istAt(t, "2024-03-11", 23, 59)
	now := istAt(t, "2024-03-12", 8, 0)

	open, err := repo.Create(ctx, newOpenRecord(t, "emp-1", "2024-03-11", istAt(t, "2024-03-11", 9, 0)))
	require.NoError(t, err)

	done := newOpenRecord(t, "emp-2", "2024-03-11", istAt(t, "2024-03-11", 9, 0))
	require.NoError(t, attendance.CloseSession(&done, istAt(t, "2024-03-11", 17, 0)))
	_, err = repo.Create(ctx, done)
	require.NoError(t, err)

	onLeave, err := repo.Create(ctx, attendance.Record{
		EmployeeID: "emp-3",
		Date:       "2024-03-11",
		Status:     attendance.StatusOnLeave,
		CreatedBy:  "mgr-1",
	})
	require.NoError(t, err)

	ids, err := repo.CloseOpenRecordsForDate(ctx, "2024-03-11", cutoff, "system", now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"emp-1", "emp-3"}, ids)

	leave, err := repo.GetByID(ctx, onLeave.ID)
	require.NoError(t, err)
	require.NotNil(t, leave.ClockOut)
	assert.True(t, cutoff.Equal(*leave.ClockOut))
	assert.Nil(t, leave.ClockIn)

	got, err := repo.GetByID(ctx, open.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Sessions[0].Out)
	assert.True(t, cutoff.Equal(*got.Sessions[0].Out))
	require.NotNil(t, got.EditedBy)
	assert.Equal(t, "system", *got.EditedBy)

	again, err := repo.CloseOpenRecordsForDate(ctx, "2024-03-11", cutoff, "system", now)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestAttendanceRepository_UsesOperationInstant(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	in := istAt(t, "2024-03-11", 9, 0)
	rec := newOpenRecord(t, "emp-1", "2024-03-11", in)
	rec.CreatedAt = in
	created, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	assert.True(t, in.Equal(created.CreatedAt))

	out := istAt(t, "2024-03-11", 18, 0)
	require.NoError(t, repo.CloseSession(ctx, created.ID, out, "emp-1"))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, in.Equal(got.CreatedAt))
	assert.True(t, out.Equal(got.UpdatedAt))

	decidedAt := istAt(t, "2024-03-12", 10, 0)
	require.NoError(t, repo.UpdateOTStatus(ctx, created.ID, attendance.OTApproved, attendance.OTDecision{ActionBy: "mgr-1", ActionAt: decidedAt}))
	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decidedAt.Equal(got.UpdatedAt))
}

func TestAttendanceRepository_ListAndMutations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	var ids []string
	for _, d := range []string{"2024-03-11", "2024-03-12", "2024-03-13"} {
		rec, err := repo.Create(ctx, newOpenRecord(t, "emp-1", d, istAt(t, d, 9, 0)))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	_, err := repo.Create(ctx, newOpenRecord(t, "emp-2", "2024-03-12", istAt(t, "2024-03-12", 9, 30)))
	require.NoError(t, err)

	start, end := "2024-03-12", "2024-03-13"
	records, total, err := repo.List(ctx, attendance.AttendanceFilter{
		StartDate: &start, EndDate: &end, Page: 1, Limit: 10, SortBy: "date", SortOrder: "desc",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-03-13", records[0].Date)

	editedAt := istAt(t, "2024-03-14", 10, 0)
	require.NoError(t, repo.UpdateDetails(ctx, ids[0], attendance.StatusHalfDay, "doctor visit", "mgr-1", editedAt))
	require.NoError(t, repo.UpdateOTStatus(ctx, ids[0], attendance.OTRejected, attendance.OTDecision{ActionBy: "mgr-1", ActionAt: editedAt}))

	got, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusHalfDay, got.Status)
	require.NotNil(t, got.OTStatus)
	assert.Equal(t, attendance.OTRejected, *got.OTStatus)

	require.NoError(t, repo.Delete(ctx, ids[0]))
	assert.ErrorIs(t, repo.Delete(ctx, ids[0]), attendance.ErrAttendanceNotFound)
	assert.ErrorIs(t, repo.UpdateOTStatus(ctx, ids[0], attendance.OTApproved, attendance.OTDecision{}), attendance.ErrAttendanceNotFound)
}

func TestEmployeeRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := mongodb.NewEmployeeRepository(db)

	_, err := db.Database.Collection("employees").InsertMany(ctx, []any{
		bson.M{"_id": "emp-1", "full_name": "Asha Rao", "department": "Engineering", "role": "employee", "employment_status": "active"},
		bson.M{"_id": "emp-2", "full_name": "Vikram Nair", "department": nil, "role": "manager", "employment_status": "resigned"},
	})
	require.NoError(t, err)

	emp, err := repo.GetByID(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", emp.FullName)
	assert.True(t, emp.IsActive())

	_, err = repo.GetByID(ctx, "emp-404")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	found, err := repo.GetByIDs(ctx, []string{"emp-1", "emp-2", "emp-404"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, employee.RoleManager, found["emp-2"].Role)
	assert.False(t, found["emp-2"].IsActive())
}

func TestEmployeeRepository_Seed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := mongodb.NewEmployeeRepository(db)

	seeder, ok := repo.(fixtures.EmployeeSeeder)
	require.True(t, ok)

	n, err := fixtures.SeedEmployees(ctx, seeder)
	require.NoError(t, err)

	// Reseeding overwrites in place.
	_, err = fixtures.SeedEmployees(ctx, seeder)
	require.NoError(t, err)

	ids := make([]string, 0, n)
	for _, emp := range fixtures.DefaultEmployees() {
		ids = append(ids, emp.ID)
	}
	found, err := repo.GetByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, found, n)
	assert.Equal(t, employee.RoleAdmin, found["EMP-0001"].Role)
	assert.Nil(t, found["EMP-0006"].Department)
	assert.False(t, found["EMP-0006"].IsActive())

	renamed := found["EMP-0003"]
	renamed.FullName = "Kavya Iyer-Nair"
	require.NoError(t, seeder.Upsert(ctx, renamed))

	got, err := repo.GetByID(ctx, "EMP-0003")
	require.NoError(t, err)
	assert.Equal(t, "Kavya Iyer-Nair", got.FullName)
}
