package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	recordsEmployeeDateKey = "attendance_records_employee_date_key"
)

const recordColumns = `
	r.id::text, r.employee_id, to_char(r.date, 'YYYY-MM-DD'),
	r.clock_in, r.clock_out, r.status, r.reason,
	r.ot_status, r.ot_action_by, r.ot_action_at,
	r.created_by, r.edited_by, r.edited_at, r.created_at, r.updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func pgErrorCode(err error) (code string, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var (
		rec        attendance.Record
		status     string
		otStatus   *string
		otActionBy *string
		otActionAt *time.Time
	)

	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date,
		&rec.ClockIn, &rec.ClockOut, &status, &rec.Reason,
		&otStatus, &otActionBy, &otActionAt,
		&rec.CreatedBy, &rec.EditedBy, &rec.EditedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	rec.Status = attendance.Status(status)
	if otStatus != nil {
		s := attendance.OTStatus(*otStatus)
		rec.OTStatus = &s
	}
	if otActionBy != nil && otActionAt != nil {
		rec.OTDecision = &attendance.OTDecision{ActionBy: *otActionBy, ActionAt: *otActionAt}
	}

	return rec, nil
}

// loadSessions attaches sessions in insertion order to each record.
func (a *attendanceRepository) loadSessions(ctx context.Context, q database.Querier, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	index := make(map[string]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		index[rec.ID] = i
		records[i].Sessions = []attendance.Session{}
	}

	query := `
		SELECT record_id::text, in_at, out_at, source, note
		FROM attendance_sessions
		WHERE record_id = ANY($1::uuid[])
		ORDER BY record_id, seq
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recordID string
			s        attendance.Session
			source   string
		)
		if err := rows.Scan(&recordID, &s.In, &s.Out, &source, &s.Note); err != nil {
			return fmt.Errorf("failed to scan session: %w", err)
		}
		s.Source = attendance.Source(source)
		i := index[recordID]
		records[i].Sessions = append(records[i].Sessions, s)
	}

	return rows.Err()
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	err := WithTransaction(ctx, a.db, func(ctx context.Context, tx pgx.Tx) error {
		var otStatus *string
		if record.OTStatus != nil {
			s := string(*record.OTStatus)
			otStatus = &s
		}

		query := `
			INSERT INTO attendance_records (
				employee_id, date, clock_in, clock_out, status, reason, ot_status, created_by,
				created_at, updated_at
			) VALUES (
				$1, $2::date, $3, $4, $5, $6, $7, $8,
				COALESCE($9, NOW()), COALESCE($9, NOW())
			) RETURNING id::text, created_at, updated_at
		`

		var createdAt *time.Time
		if !record.CreatedAt.IsZero() {
			createdAt = &record.CreatedAt
		}

		err := tx.QueryRow(ctx, query,
			record.EmployeeID,
			record.Date,
			record.ClockIn,
			record.ClockOut,
			string(record.Status),
			record.Reason,
			otStatus,
			record.CreatedBy,
			createdAt,
		).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
		if err != nil {
			if code, constraint := pgErrorCode(err); code == pgUniqueViolation && constraint == recordsEmployeeDateKey {
				return attendance.ErrDuplicateRecord
			}
			return fmt.Errorf("failed to create attendance: %w", err)
		}

		for i, s := range record.Sessions {
			_, err := tx.Exec(ctx, `
				INSERT INTO attendance_sessions (record_id, seq, in_at, out_at, source, note)
				VALUES ($1::uuid, $2, $3, $4, $5, $6)
			`, record.ID, i+1, s.In, s.Out, string(s.Source), s.Note)
			if err != nil {
				if code, _ := pgErrorCode(err); code == pgUniqueViolation {
					return attendance.ErrSessionConflict
				}
				return fmt.Errorf("failed to create session: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	if record.Sessions == nil {
		record.Sessions = []attendance.Session{}
	}
	return record, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records r
		WHERE r.id = $1::uuid
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}

	records := []attendance.Record{rec}
	if err := a.loadSessions(ctx, q, records); err != nil {
		return attendance.Record{}, err
	}

	return records[0], nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records r
		WHERE r.employee_id = $1
		  AND r.date = $2::date
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	records := []attendance.Record{rec}
	if err := a.loadSessions(ctx, q, records); err != nil {
		return nil, err
	}

	return &records[0], nil
}

// GetOpenRecord implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenRecord(ctx context.Context, employeeID string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records r
		WHERE r.employee_id = $1
		  AND EXISTS (
			SELECT 1 FROM attendance_sessions s
			WHERE s.record_id = r.id AND s.out_at IS NULL
		  )
		ORDER BY r.date DESC
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get open attendance: %w", err)
	}

	records := []attendance.Record{rec}
	if err := a.loadSessions(ctx, q, records); err != nil {
		return attendance.Record{}, err
	}

	return records[0], nil
}

// AppendSession implements attendance.AttendanceRepository.
// The partial unique index on open sessions rejects a second open session.
func (a *attendanceRepository) AppendSession(ctx context.Context, recordID string, session attendance.Session) error {
	if _, err := uuid.Parse(recordID); err != nil {
		return attendance.ErrAttendanceNotFound
	}

	return WithTransaction(ctx, a.db, func(ctx context.Context, tx pgx.Tx) error {
		insert := `
			INSERT INTO attendance_sessions (record_id, seq, in_at, out_at, source, note)
			SELECT $1::uuid, COALESCE(MAX(seq), 0) + 1, $2, NULL, $3, $4
			FROM attendance_sessions
			WHERE record_id = $1::uuid
		`
		if _, err := tx.Exec(ctx, insert, recordID, session.In, string(session.Source), session.Note); err != nil {
			switch code, _ := pgErrorCode(err); code {
			case pgUniqueViolation:
				return attendance.ErrSessionConflict
			case pgForeignKeyViolation:
				return attendance.ErrAttendanceNotFound
			}
			return fmt.Errorf("failed to append session: %w", err)
		}

		update := `
			UPDATE attendance_records
			SET clock_in = COALESCE(clock_in, $2), clock_out = NULL, updated_at = $2
			WHERE id = $1::uuid
		`
		if _, err := tx.Exec(ctx, update, recordID, session.In); err != nil {
			return fmt.Errorf("failed to update legacy clock-in: %w", err)
		}

		return nil
	})
}

// CloseSession implements attendance.AttendanceRepository.
func (a *attendanceRepository) CloseSession(ctx context.Context, recordID string, out time.Time, editedBy string) error {
	if _, err := uuid.Parse(recordID); err != nil {
		return attendance.ErrNoOpenSession
	}

	return WithTransaction(ctx, a.db, func(ctx context.Context, tx pgx.Tx) error {
		var seq int
		closeQuery := `
			UPDATE attendance_sessions
			SET out_at = $2
			WHERE record_id = $1::uuid AND out_at IS NULL AND in_at <= $2
			RETURNING seq
		`
		if err := tx.QueryRow(ctx, closeQuery, recordID, out).Scan(&seq); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return attendance.ErrNoOpenSession
			}
			return fmt.Errorf("failed to close session: %w", err)
		}

		// Legacy clock-out mirrors the last session only.
		update := `
			UPDATE attendance_records
			SET clock_out = CASE
					WHEN NOT EXISTS (
						SELECT 1 FROM attendance_sessions
						WHERE record_id = $1::uuid AND seq > $3
					) THEN $2
					ELSE clock_out
				END,
				edited_by = $4,
				edited_at = $2,
				updated_at = $2
			WHERE id = $1::uuid
		`
		if _, err := tx.Exec(ctx, update, recordID, out, seq, editedBy); err != nil {
			return fmt.Errorf("failed to update legacy clock-out: %w", err)
		}

		return nil
	})
}

// CountClockInsBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountClockInsBetween(ctx context.Context, start, end time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	var count int64
	query := `SELECT COUNT(*) FROM attendance_records WHERE clock_in >= $1 AND clock_in < $2`
	if err := q.QueryRow(ctx, query, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count clock-ins: %w", err)
	}

	return count, nil
}

// CloseOpenRecordsForDate implements attendance.AttendanceRepository.
// Selection, session close and record stamp run as one statement. A concurrent
// run waits on the row locks; the final stamp only touches rows whose clock-out
// is still empty or whose sessions this run closed, so it reports nothing twice.
func (a *attendanceRepository) CloseOpenRecordsForDate(ctx context.Context, date string, cutoff time.Time, editedBy string, editedAt time.Time) ([]string, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		WITH targets AS (
			SELECT r.id
			FROM attendance_records r
			WHERE r.date = $1::date
			  AND (
				r.clock_out IS NULL
				OR EXISTS (
					SELECT 1 FROM attendance_sessions s
					WHERE s.record_id = r.id AND s.out_at IS NULL AND s.in_at <= $2
				)
			  )
			FOR UPDATE
		), closed_sessions AS (
			UPDATE attendance_sessions s
			SET out_at = $2
			FROM targets t
			WHERE s.record_id = t.id AND s.out_at IS NULL AND s.in_at <= $2
			RETURNING s.record_id
		)
		UPDATE attendance_records r
		SET clock_out = $2, edited_by = $3, edited_at = $4, updated_at = $4
		FROM targets t
		WHERE r.id = t.id
		  AND (
			r.clock_out IS NULL
			OR r.id IN (SELECT record_id FROM closed_sessions)
		  )
		RETURNING r.employee_id
	`

	rows, err := q.Query(ctx, query, date, cutoff, editedBy, editedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to close open attendance for %s: %w", date, err)
	}
	defer rows.Close()

	var employeeIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan closed employee id: %w", err)
		}
		employeeIDs = append(employeeIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to close open attendance for %s: %w", date, err)
	}

	return employeeIDs, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	// Employee set filter
	if len(filter.EmployeeIDs) > 0 {
		baseWhere += fmt.Sprintf(" AND r.employee_id = ANY($%d)", argIdx)
		args = append(args, filter.EmployeeIDs)
		argIdx++
	}

	// Date filter
	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND r.date = $%d::date", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND r.date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND r.date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	// Status filter
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND r.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM attendance_records r WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	// Build ORDER BY
	orderByField := "r.date"
	switch filter.SortBy {
	case "clock_in_time":
		orderByField = "r.clock_in"
	case "clock_out_time":
		orderByField = "r.clock_out"
	case "status":
		orderByField = "r.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	// Build query with pagination
	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records r
		WHERE %s
		ORDER BY %s %s NULLS LAST, r.employee_id ASC
		LIMIT $%d OFFSET $%d
	`, recordColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}

	if err := a.loadSessions(ctx, q, records); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// UpdateDetails implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateDetails(ctx context.Context, id string, status attendance.Status, reason string, editedBy string, editedAt time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET status = $2, reason = $3, edited_by = $4, edited_at = $5, updated_at = $5
		WHERE id = $1::uuid
	`

	tag, err := q.Exec(ctx, query, id, string(status), reason, editedBy, editedAt)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// UpdateOTStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateOTStatus(ctx context.Context, id string, otStatus attendance.OTStatus, decision attendance.OTDecision) error {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET ot_status = $2, ot_action_by = $3, ot_action_at = $4, updated_at = $4
		WHERE id = $1::uuid
	`

	tag, err := q.Exec(ctx, query, id, string(otStatus), decision.ActionBy, decision.ActionAt)
	if err != nil {
		return fmt.Errorf("failed to update OT status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}
