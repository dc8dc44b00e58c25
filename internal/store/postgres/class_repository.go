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

// ClassRepository implements school.ClassRepository inside the
// request's bound partition.
type ClassRepository struct {
	db *DB
}

// NewClassRepository creates a new class repository
func NewClassRepository(db *DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `id, name, grade_level, section, academic_year, teacher_id, capacity,
	schedule, created_at, updated_at`

func scanClass(row pgx.Row) (*school.StudentClass, error) {
	var c school.StudentClass
	err := row.Scan(
		&c.ID, &c.Name, &c.GradeLevel, &c.Section, &c.AcademicYear, &c.TeacherID,
		&c.Capacity, &c.Schedule, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, school.ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to scan class: %w", err)
	}
	return &c, nil
}

// Create inserts a class
func (r *ClassRepository) Create(ctx context.Context, class *school.StudentClass) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO classes (
				id, name, grade_level, section, academic_year, teacher_id, capacity,
				schedule, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			class.ID, class.Name, class.GradeLevel, class.Section, class.AcademicYear,
			class.TeacherID, class.Capacity, class.Schedule, class.CreatedAt, class.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert class: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a class
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*school.StudentClass, error) {
	var class *school.StudentClass
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id)
		var err error
		class, err = scanClass(row)
		return err
	})
	return class, err
}

// List returns a filtered page of classes plus the matching total.
func (r *ClassRepository) List(ctx context.Context, filter school.ListFilter) ([]*school.StudentClass, int, error) {
	var classes []*school.StudentClass
	var total int

	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		where := ``
		args := []any{}
		if filter.GradeLevel != "" {
			args = append(args, filter.GradeLevel)
			where = fmt.Sprintf(` WHERE grade_level = $%d`, len(args))
		}

		if err := tx.QueryRow(ctx, `SELECT count(*) FROM classes`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count classes: %w", err)
		}

		args = append(args, filter.PageSize, filter.Offset())
		rows, err := tx.Query(ctx,
			`SELECT `+classColumns+` FROM classes`+where+
				fmt.Sprintf(` ORDER BY grade_level, name LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
			args...)
		if err != nil {
			return fmt.Errorf("failed to list classes: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			class, err := scanClass(rows)
			if err != nil {
				return err
			}
			classes = append(classes, class)
		}
		return rows.Err()
	})
	return classes, total, err
}
