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

// FeeRepository implements school.FeeRepository inside the request's
// bound partition.
type FeeRepository struct {
	db *DB
}

// NewFeeRepository creates a new fee repository
func NewFeeRepository(db *DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// CreateStructure inserts a fee structure
func (r *FeeRepository) CreateStructure(ctx context.Context, structure *school.FeeStructure) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO fee_structures (id, name, grade_level, academic_year, term, amount, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			structure.ID, structure.Name, structure.GradeLevel, structure.AcademicYear,
			structure.Term, structure.Amount, structure.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fee structure: %w", err)
		}
		return nil
	})
}

// GetStructure retrieves one fee structure
func (r *FeeRepository) GetStructure(ctx context.Context, id string) (*school.FeeStructure, error) {
	var structure *school.FeeStructure
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		var s school.FeeStructure
		err := tx.QueryRow(ctx, `
			SELECT id, name, grade_level, academic_year, term, amount, created_at
			FROM fee_structures WHERE id = $1
		`, id).Scan(&s.ID, &s.Name, &s.GradeLevel, &s.AcademicYear, &s.Term, &s.Amount, &s.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return school.ErrFeeNotFound
			}
			return fmt.Errorf("failed to get fee structure: %w", err)
		}
		structure = &s
		return nil
	})
	return structure, err
}

// ListStructures returns fee structures, optionally for one academic year
func (r *FeeRepository) ListStructures(ctx context.Context, academicYear string) ([]*school.FeeStructure, error) {
	var structures []*school.FeeStructure
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		query := `
			SELECT id, name, grade_level, academic_year, term, amount, created_at
			FROM fee_structures`
		args := []any{}
		if academicYear != "" {
			query += ` WHERE academic_year = $1`
			args = append(args, academicYear)
		}
		query += ` ORDER BY grade_level, term`

		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to list fee structures: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s school.FeeStructure
			if err := rows.Scan(&s.ID, &s.Name, &s.GradeLevel, &s.AcademicYear, &s.Term, &s.Amount, &s.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan fee structure: %w", err)
			}
			structures = append(structures, &s)
		}
		return rows.Err()
	})
	return structures, err
}

// CreatePayment inserts a payment, assigning the receipt number from the
// tenant's counter when none is set.
func (r *FeeRepository) CreatePayment(ctx context.Context, payment *school.FeePayment) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		if payment.ReceiptNumber == "" {
			seq, err := nextSeq(ctx, tx, seqReceipt)
			if err != nil {
				return err
			}
			payment.ReceiptNumber = fmt.Sprintf("RCP%06d", seq)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO fee_payments (
				id, receipt_number, student_id, fee_structure_id, amount,
				payment_method, reference, paid_at, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			payment.ID, payment.ReceiptNumber, payment.StudentID, nullable(payment.StructureID),
			payment.Amount, payment.Method, payment.Reference, payment.PaidAt, payment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fee payment: %w", err)
		}
		return nil
	})
}

// ListPayments returns a page of payments, optionally for one student.
func (r *FeeRepository) ListPayments(ctx context.Context, studentID string, filter school.ListFilter) ([]*school.FeePayment, int, error) {
	var payments []*school.FeePayment
	var total int

	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		where := ``
		args := []any{}
		if studentID != "" {
			args = append(args, studentID)
			where = ` WHERE student_id = $1`
		}

		if err := tx.QueryRow(ctx, `SELECT count(*) FROM fee_payments`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count fee payments: %w", err)
		}

		args = append(args, filter.PageSize, filter.Offset())
		rows, err := tx.Query(ctx, `
			SELECT id, receipt_number, student_id, COALESCE(fee_structure_id::text, ''), amount,
				payment_method, reference, paid_at, created_at
			FROM fee_payments`+where+
			fmt.Sprintf(` ORDER BY paid_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
			args...)
		if err != nil {
			return fmt.Errorf("failed to list fee payments: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var p school.FeePayment
			if err := rows.Scan(
				&p.ID, &p.ReceiptNumber, &p.StudentID, &p.StructureID, &p.Amount,
				&p.Method, &p.Reference, &p.PaidAt, &p.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan fee payment: %w", err)
			}
			payments = append(payments, &p)
		}
		return rows.Err()
	})
	return payments, total, err
}

// TotalPaid sums all payments recorded for a student
func (r *FeeRepository) TotalPaid(ctx context.Context, studentID string) (float64, error) {
	var total float64
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			SELECT COALESCE(sum(amount), 0) FROM fee_payments WHERE student_id = $1
		`, studentID).Scan(&total)
	})
	return total, err
}

// CreateDiscount inserts a fee discount
func (r *FeeRepository) CreateDiscount(ctx context.Context, discount *school.FeeDiscount) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO fee_discounts (id, student_id, name, amount, reason, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, discount.ID, discount.StudentID, discount.Name, discount.Amount, discount.Reason, discount.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert fee discount: %w", err)
		}
		return nil
	})
}

// ListDiscounts returns a student's discounts
func (r *FeeRepository) ListDiscounts(ctx context.Context, studentID string) ([]*school.FeeDiscount, error) {
	var discounts []*school.FeeDiscount
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, student_id, name, amount, reason, created_at
			FROM fee_discounts WHERE student_id = $1
		`, studentID)
		if err != nil {
			return fmt.Errorf("failed to list fee discounts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var d school.FeeDiscount
			if err := rows.Scan(&d.ID, &d.StudentID, &d.Name, &d.Amount, &d.Reason, &d.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan fee discount: %w", err)
			}
			discounts = append(discounts, &d)
		}
		return rows.Err()
	})
	return discounts, err
}

// nullable converts empty strings to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
