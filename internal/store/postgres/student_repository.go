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

	"github.com/jackc/pgx/v5"
	"github.com/ofisihq/ofisi/internal/school"
)

// StudentRepository implements school.StudentRepository inside the
// request's bound partition.
type StudentRepository struct {
	db *DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, admission_number, first_name, last_name, gender, date_of_birth,
	grade_level, section, student_type, guardian_name, guardian_phone, guardian_email,
	address, medical_conditions, admission_date, is_active, created_at, updated_at`

func scanStudent(row pgx.Row) (*school.Student, error) {
	var st school.Student
	err := row.Scan(
		&st.ID, &st.AdmissionNumber, &st.FirstName, &st.LastName, &st.Gender, &st.DateOfBirth,
		&st.GradeLevel, &st.Section, &st.StudentType, &st.GuardianName, &st.GuardianPhone,
		&st.GuardianEmail, &st.Address, &st.MedicalConditions, &st.AdmissionDate,
		&st.IsActive, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, school.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	return &st, nil
}

// Create inserts a student, assigning the admission number from the
// tenant's counter when none is set.
func (r *StudentRepository) Create(ctx context.Context, student *school.Student) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		if student.AdmissionNumber == "" {
			seq, err := nextSeq(ctx, tx, seqAdmission)
			if err != nil {
				return err
			}
			student.AdmissionNumber = fmt.Sprintf("STU%06d", seq)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO students (
				id, admission_number, first_name, last_name, gender, date_of_birth,
				grade_level, section, student_type, guardian_name, guardian_phone,
				guardian_email, address, medical_conditions, admission_date, is_active,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`,
			student.ID, student.AdmissionNumber, student.FirstName, student.LastName,
			student.Gender, student.DateOfBirth, student.GradeLevel, student.Section,
			student.StudentType, student.GuardianName, student.GuardianPhone,
			student.GuardianEmail, student.Address, student.MedicalConditions,
			student.AdmissionDate, student.IsActive, student.CreatedAt, student.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert student: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a student
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*school.Student, error) {
	var student *school.Student
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
		var err error
		student, err = scanStudent(row)
		return err
	})
	return student, err
}

// List returns a filtered page of students plus the matching total.
func (r *StudentRepository) List(ctx context.Context, filter school.ListFilter) ([]*school.Student, int, error) {
	var students []*school.Student
	var total int

	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		where := ` WHERE is_active`
		args := []any{}
		if filter.Query != "" {
			args = append(args, "%"+filter.Query+"%")
			where += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR admission_number ILIKE $%d)`,
				len(args), len(args), len(args))
		}
		if filter.GradeLevel != "" {
			args = append(args, filter.GradeLevel)
			where += fmt.Sprintf(` AND grade_level = $%d`, len(args))
		}
		if filter.Section != "" {
			args = append(args, filter.Section)
			where += fmt.Sprintf(` AND section = $%d`, len(args))
		}

		if err := tx.QueryRow(ctx, `SELECT count(*) FROM students`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count students: %w", err)
		}

		args = append(args, filter.PageSize, filter.Offset())
		rows, err := tx.Query(ctx,
			`SELECT `+studentColumns+` FROM students`+where+
				fmt.Sprintf(` ORDER BY admission_number LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
			args...)
		if err != nil {
			return fmt.Errorf("failed to list students: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			student, err := scanStudent(rows)
			if err != nil {
				return err
			}
			students = append(students, student)
		}
		return rows.Err()
	})
	return students, total, err
}
