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
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ofisihq/ofisi/internal/school"
)

// SubjectRepository implements school.SubjectRepository inside the
// request's bound partition.
type SubjectRepository struct {
	db *DB
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create inserts a subject
func (r *SubjectRepository) Create(ctx context.Context, subject *school.Subject) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO subjects (id, name, code, grade_level, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, subject.ID, subject.Name, subject.Code, subject.GradeLevel, subject.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert subject: %w", err)
		}
		return nil
	})
}

// List returns all subjects
func (r *SubjectRepository) List(ctx context.Context) ([]*school.Subject, error) {
	var subjects []*school.Subject
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, name, code, grade_level, created_at
			FROM subjects ORDER BY name
		`)
		if err != nil {
			return fmt.Errorf("failed to list subjects: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var subject school.Subject
			if err := rows.Scan(&subject.ID, &subject.Name, &subject.Code, &subject.GradeLevel, &subject.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan subject: %w", err)
			}
			subjects = append(subjects, &subject)
		}
		return rows.Err()
	})
	return subjects, err
}
