package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const attendanceCollection = "attendance_records"

type sessionDoc struct {
	In     time.Time  `bson:"in"`
	Out    *time.Time `bson:"out"`
	Source string     `bson:"source"`
	Note   string     `bson:"note"`
}

type attendanceDoc struct {
	ID         string       `bson:"_id"`
	EmployeeID string       `bson:"employee_id"`
	Date       string       `bson:"date"` // YYYY-MM-DD
	Sessions   []sessionDoc `bson:"sessions"`
	ClockIn    *time.Time   `bson:"clock_in"`
	ClockOut   *time.Time   `bson:"clock_out"`
	Status     string       `bson:"status"`
	Reason     string       `bson:"reason"`
	OTStatus   *string      `bson:"ot_status"`
	OTActionBy *string      `bson:"ot_action_by"`
	OTActionAt *time.Time   `bson:"ot_action_at"`
	CreatedBy  string       `bson:"created_by"`
	EditedBy   *string      `bson:"edited_by"`
	EditedAt   *time.Time   `bson:"edited_at"`
	CreatedAt  time.Time    `bson:"created_at"`
	UpdatedAt  time.Time    `bson:"updated_at"`

	// Tag of the last bulk close that touched the record.
	AutoCloseRun string `bson:"auto_close_run,omitempty"`
}

func newSessionDoc(s attendance.Session) sessionDoc {
	return sessionDoc{In: s.In.UTC(), Out: s.Out, Source: string(s.Source), Note: s.Note}
}

func toDoc(rec attendance.Record) attendanceDoc {
	doc := attendanceDoc{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Date:       rec.Date,
		Sessions:   make([]sessionDoc, 0, len(rec.Sessions)),
		ClockIn:    rec.ClockIn,
		ClockOut:   rec.ClockOut,
		Status:     string(rec.Status),
		Reason:     rec.Reason,
		CreatedBy:  rec.CreatedBy,
		EditedBy:   rec.EditedBy,
		EditedAt:   rec.EditedAt,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	for _, s := range rec.Sessions {
		doc.Sessions = append(doc.Sessions, newSessionDoc(s))
	}
	if rec.OTStatus != nil {
		s := string(*rec.OTStatus)
		doc.OTStatus = &s
	}
	if rec.OTDecision != nil {
		by := rec.OTDecision.ActionBy
		at := rec.OTDecision.ActionAt
		doc.OTActionBy = &by
		doc.OTActionAt = &at
	}
	return doc
}

func (d attendanceDoc) toRecord() attendance.Record {
	rec := attendance.Record{
		ID:         d.ID,
		EmployeeID: d.EmployeeID,
		Date:       d.Date,
		Sessions:   make([]attendance.Session, 0, len(d.Sessions)),
		ClockIn:    d.ClockIn,
		ClockOut:   d.ClockOut,
		Status:     attendance.Status(d.Status),
		Reason:     d.Reason,
		CreatedBy:  d.CreatedBy,
		EditedBy:   d.EditedBy,
		EditedAt:   d.EditedAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	for _, s := range d.Sessions {
		rec.Sessions = append(rec.Sessions, attendance.Session{
			In:     s.In,
			Out:    s.Out,
			Source: attendance.Source(s.Source),
			Note:   s.Note,
		})
	}
	if d.OTStatus != nil {
		s := attendance.OTStatus(*d.OTStatus)
		rec.OTStatus = &s
	}
	if d.OTActionBy != nil && d.OTActionAt != nil {
		rec.OTDecision = &attendance.OTDecision{ActionBy: *d.OTActionBy, ActionAt: *d.OTActionAt}
	}
	return rec
}

type attendanceRepository struct {
	coll *mongo.Collection
}

func NewAttendanceRepository(db *database.MongoDB) attendance.AttendanceRepository {
	return &attendanceRepository{coll: db.Database.Collection(attendanceCollection)}
}

// EnsureIndexes creates the unique (employee, date) index and the lookup indexes.
func EnsureIndexes(ctx context.Context, db *database.MongoDB) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("employee_date_unique"),
		},
		{Keys: bson.D{{Key: "clock_in", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "auto_close_run", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	if _, err := db.Database.Collection(attendanceCollection).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create attendance indexes: %w", err)
	}
	return nil
}

func (a *attendanceRepository) findOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) (attendance.Record, error) {
	var doc attendanceDoc
	if err := a.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return attendance.Record{}, err
	}
	return doc.toRecord(), nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.CreatedAt
	if record.Sessions == nil {
		record.Sessions = []attendance.Session{}
	}

	if _, err := a.coll.InsertOne(ctx, toDoc(record)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.Record{}, attendance.ErrDuplicateRecord
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return record, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	rec, err := a.findOne(ctx, bson.M{"_id": id})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	return rec, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Record, error) {
	rec, err := a.findOne(ctx, bson.M{"employee_id": employeeID, "date": date})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return &rec, nil
}

// GetOpenRecord implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenRecord(ctx context.Context, employeeID string) (attendance.Record, error) {
	filter := bson.M{
		"employee_id": employeeID,
		"sessions":    bson.M{"$elemMatch": bson.M{"out": nil}},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	rec, err := a.findOne(ctx, filter, opts)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get open attendance: %w", err)
	}
	return rec, nil
}

// AppendSession implements attendance.AttendanceRepository.
// The no-open-session predicate is part of the update filter, so the check
// and the push are one atomic document write.
func (a *attendanceRepository) AppendSession(ctx context.Context, recordID string, session attendance.Session) error {
	filter := bson.M{
		"_id":      recordID,
		"sessions": bson.M{"$not": bson.M{"$elemMatch": bson.M{"out": nil}}},
	}

	doc := newSessionDoc(session)
	doc.Out = nil
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "sessions", Value: bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$sessions", bson.A{}}},
				bson.M{"$literal": bson.A{doc}},
			}}},
			{Key: "clock_in", Value: bson.M{"$ifNull": bson.A{"$clock_in", doc.In}}},
			{Key: "clock_out", Value: nil},
			{Key: "updated_at", Value: doc.In},
		}}},
	}

	res, err := a.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to append session: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := a.coll.CountDocuments(ctx, bson.M{"_id": recordID})
	if err != nil {
		return fmt.Errorf("failed to check attendance existence: %w", err)
	}
	if n == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return attendance.ErrSessionConflict
}

// CloseSession implements attendance.AttendanceRepository.
// The open session is always the last element because AppendSession refuses
// while one is open, so the legacy clock-out follows it unconditionally.
func (a *attendanceRepository) CloseSession(ctx context.Context, recordID string, out time.Time, editedBy string) error {
	out = out.UTC()
	filter := bson.M{
		"_id":      recordID,
		"sessions": bson.M{"$elemMatch": bson.M{"out": nil, "in": bson.M{"$lte": out}}},
	}
	update := bson.M{"$set": bson.M{
		"sessions.$[open].out": out,
		"clock_out":            out,
		"edited_by":            editedBy,
		"edited_at":            out,
		"updated_at":           out,
	}}
	opts := options.UpdateOne().SetArrayFilters([]any{
		bson.M{"open.out": nil, "open.in": bson.M{"$lte": out}},
	})

	res, err := a.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if res.MatchedCount == 0 {
		return attendance.ErrNoOpenSession
	}
	return nil
}

// CountClockInsBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountClockInsBetween(ctx context.Context, start, end time.Time) (int64, error) {
	filter := bson.M{"clock_in": bson.M{"$gte": start.UTC(), "$lt": end.UTC()}}

	n, err := a.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count clock-ins: %w", err)
	}
	return n, nil
}

// CloseOpenRecordsForDate implements attendance.AttendanceRepository.
// One UpdateMany closes and tags every selected record; the tag then yields the
// affected employees.
func (a *attendanceRepository) CloseOpenRecordsForDate(ctx context.Context, date string, cutoff time.Time, editedBy string, editedAt time.Time) ([]string, error) {
	cutoff = cutoff.UTC()
	runID := uuid.NewString()

	filter := bson.M{
		"date": date,
		"$or": bson.A{
			bson.M{"clock_out": nil},
			bson.M{"sessions": bson.M{"$elemMatch": bson.M{"out": nil, "in": bson.M{"$lte": cutoff}}}},
		},
	}
	update := bson.M{"$set": bson.M{
		"sessions.$[open].out": cutoff,
		"clock_out":            cutoff,
		"edited_by":            editedBy,
		"edited_at":            editedAt.UTC(),
		"updated_at":           editedAt.UTC(),
		"auto_close_run":       runID,
	}}
	opts := options.UpdateMany().SetArrayFilters([]any{
		bson.M{"open.out": nil, "open.in": bson.M{"$lte": cutoff}},
	})

	res, err := a.coll.UpdateMany(ctx, filter, update, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to close open attendance for %s: %w", date, err)
	}
	if res.ModifiedCount == 0 {
		return nil, nil
	}

	cursor, err := a.coll.Find(ctx, bson.M{"auto_close_run": runID},
		options.Find().SetProjection(bson.M{"employee_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to collect closed attendance: %w", err)
	}

	var docs []struct {
		EmployeeID string `bson:"employee_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode closed attendance: %w", err)
	}

	employeeIDs := make([]string, 0, len(docs))
	for _, d := range docs {
		employeeIDs = append(employeeIDs, d.EmployeeID)
	}
	return employeeIDs, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	query := bson.M{}

	if len(filter.EmployeeIDs) > 0 {
		query["employee_id"] = bson.M{"$in": filter.EmployeeIDs}
	}

	dateCond := bson.M{}
	if filter.Date != nil && *filter.Date != "" {
		dateCond["$eq"] = *filter.Date
	}
	// YYYY-MM-DD strings order the same way as the dates.
	if filter.StartDate != nil && *filter.StartDate != "" {
		dateCond["$gte"] = *filter.StartDate
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		dateCond["$lte"] = *filter.EndDate
	}
	if len(dateCond) > 0 {
		query["date"] = dateCond
	}

	if filter.Status != nil && *filter.Status != "" {
		query["status"] = *filter.Status
	}

	total, err := a.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	sortField := "date"
	switch filter.SortBy {
	case "clock_in_time":
		sortField = "clock_in"
	case "clock_out_time":
		sortField = "clock_out"
	case "status":
		sortField = "status"
	}
	direction := -1
	if strings.ToLower(filter.SortOrder) == "asc" {
		direction = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}, {Key: "employee_id", Value: 1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := a.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}

	var docs []attendanceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode attendances: %w", err)
	}

	records := make([]attendance.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toRecord())
	}
	return records, total, nil
}

func (a *attendanceRepository) updateByID(ctx context.Context, id string, at time.Time, set bson.M) error {
	set["updated_at"] = at.UTC()

	res, err := a.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// UpdateDetails implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateDetails(ctx context.Context, id string, status attendance.Status, reason string, editedBy string, editedAt time.Time) error {
	err := a.updateByID(ctx, id, editedAt, bson.M{
		"status":    string(status),
		"reason":    reason,
		"edited_by": editedBy,
		"edited_at": editedAt.UTC(),
	})
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return err
}

// UpdateOTStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateOTStatus(ctx context.Context, id string, otStatus attendance.OTStatus, decision attendance.OTDecision) error {
	err := a.updateByID(ctx, id, decision.ActionAt, bson.M{
		"ot_status":    string(otStatus),
		"ot_action_by": decision.ActionBy,
		"ot_action_at": decision.ActionAt.UTC(),
	})
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return fmt.Errorf("failed to update OT status: %w", err)
	}
	return err
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	res, err := a.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if res.DeletedCount == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}
