// Copyright 2026 The Ofisi Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ofisihq/ofisi/internal/school"
)

// StaffRepository implements school.StaffRepository inside the
// request's bound partition.
type StaffRepository struct {
	db *DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *DB) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = `id, staff_number, first_name, last_name, gender, email, phone,
	staff_type, role, department, qualification, hire_date, salary, is_active,
	created_at, updated_at`

func scanStaff(row pgx.Row) (*school.Staff, error) {
	var st school.Staff
	err := row.Scan(
		&st.ID, &st.StaffNumber, &st.FirstName, &st.LastName, &st.Gender, &st.Email,
		&st.Phone, &st.StaffType, &st.Role, &st.Department, &st.Qualification,
		&st.HireDate, &st.Salary, &st.IsActive, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, school.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to scan staff: %w", err)
	}
	return &st, nil
}

// Create inserts a staff member. Teaching staff get STAFF-prefixed
// numbers, support staff EMP-prefixed, each from its own counter.
func (r *StaffRepository) Create(ctx context.Context, staff *school.Staff) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		if staff.StaffNumber == "" {
			if staff.StaffType == school.StaffTypeTeaching {
				seq, err := nextSeq(ctx, tx, seqTeaching)
				if err != nil {
					return err
				}
				staff.StaffNumber = fmt.Sprintf("STAFF%03d", seq)
			} else {
				seq, err := nextSeq(ctx, tx, seqSupport)
				if err != nil {
					return err
				}
				staff.StaffNumber = fmt.Sprintf("EMP%03d", seq)
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO staff (
				id, staff_number, first_name, last_name, gender, email, phone,
				staff_type, role, department, qualification, hire_date, salary,
				is_active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`,
			staff.ID, staff.StaffNumber, staff.FirstName, staff.LastName, staff.Gender,
			staff.Email, staff.Phone, staff.StaffType, staff.Role, staff.Department,
			staff.Qualification, staff.HireDate, staff.Salary, staff.IsActive,
			staff.CreatedAt, staff.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert staff: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a staff member
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*school.Staff, error) {
	var staff *school.Staff
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id)
		var err error
		staff, err = scanStaff(row)
		return err
	})
	return staff, err
}

// Update rewrites a staff member's mutable fields
func (r *StaffRepository) Update(ctx context.Context, staff *school.Staff) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE staff SET
				first_name = $2, last_name = $3, gender = $4, email = $5, phone = $6,
				role = $7, department = $8, qualification = $9, salary = $10,
				is_active = $11, updated_at = $12
			WHERE id = $1
		`,
			staff.ID, staff.FirstName, staff.LastName, staff.Gender, staff.Email,
			staff.Phone, staff.Role, staff.Department, staff.Qualification,
			staff.Salary, staff.IsActive, staff.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update staff: %w", err)
		}
		if result.RowsAffected() == 0 {
			return school.ErrStaffNotFound
		}
		return nil
	})
}

// Delete removes a staff member
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete staff: %w", err)
		}
		if result.RowsAffected() == 0 {
			return school.ErrStaffNotFound
		}
		return nil
	})
}

// List returns a filtered page of staff plus the matching total.
func (r *StaffRepository) List(ctx context.Context, filter school.ListFilter) ([]*school.Staff, int, error) {
	var members []*school.Staff
	var total int

	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		where := ``
		args := []any{}
		if filter.Query != "" {
			args = append(args, "%"+filter.Query+"%")
			where = fmt.Sprintf(` WHERE (first_name ILIKE $%d OR last_name ILIKE $%d OR staff_number ILIKE $%d)`,
				len(args), len(args), len(args))
		}

		if err := tx.QueryRow(ctx, `SELECT count(*) FROM staff`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count staff: %w", err)
		}

		args = append(args, filter.PageSize, filter.Offset())
		rows, err := tx.Query(ctx,
			`SELECT `+staffColumns+` FROM staff`+where+
				fmt.Sprintf(` ORDER BY staff_number LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
			args...)
		if err != nil {
			return fmt.Errorf("failed to list staff: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			member, err := scanStaff(rows)
			if err != nil {
				return err
			}
			members = append(members, member)
		}
		return rows.Err()
	})
	return members, total, err
}

// ListByType returns active staff of one type
func (r *StaffRepository) ListByType(ctx context.Context, staffType string) ([]*school.Staff, error) {
	var members []*school.Staff
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+staffColumns+` FROM staff WHERE staff_type = $1 AND is_active ORDER BY staff_number`,
			staffType)
		if err != nil {
			return fmt.Errorf("failed to list staff: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			member, err := scanStaff(rows)
			if err != nil {
				return err
			}
			members = append(members, member)
		}
		return rows.Err()
	})
	return members, err
}

// RecordAttendance upserts one staff member's mark for a day
func (r *StaffRepository) RecordAttendance(ctx context.Context, attendance *school.StaffAttendance) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO staff_attendance (id, staff_id, date, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (staff_id, date) DO UPDATE SET status = EXCLUDED.status
		`, attendance.ID, attendance.StaffID, attendance.Date, attendance.Status, attendance.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to record attendance: %w", err)
		}
		return nil
	})
}

// ListAttendance returns one staff member's marks in a date window
func (r *StaffRepository) ListAttendance(ctx context.Context, staffID string, from, to time.Time) ([]*school.StaffAttendance, error) {
	var marks []*school.StaffAttendance
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, staff_id, date, status, created_at
			FROM staff_attendance
			WHERE staff_id = $1 AND date BETWEEN $2 AND $3
			ORDER BY date
		`, staffID, from, to)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var mark school.StaffAttendance
			if err := rows.Scan(&mark.ID, &mark.StaffID, &mark.Date, &mark.Status, &mark.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan attendance: %w", err)
			}
			marks = append(marks, &mark)
		}
		return rows.Err()
	})
	return marks, err
}
