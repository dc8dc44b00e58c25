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
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ofisihq/ofisi/internal/sme"
)

// TransactionRepository implements sme.Repository inside the request's
// bound partition.
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *sme.Transaction) error {
	return r.db.InPartition(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO transactions (id, description, amount, is_income, category, date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			transaction.ID, transaction.Description, transaction.Amount, transaction.IsIncome,
			transaction.Category, transaction.Date, transaction.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		return nil
	})
}

// List returns a filtered page of transactions plus the matching total.
func (r *TransactionRepository) List(ctx context.Context, filter sme.ListFilter) ([]*sme.Transaction, int, error) {
	var transactions []*sme.Transaction
	var total int

	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		where := ` WHERE true`
		args := []any{}
		if !filter.From.IsZero() {
			args = append(args, filter.From)
			where += fmt.Sprintf(` AND date >= $%d`, len(args))
		}
		if !filter.To.IsZero() {
			args = append(args, filter.To)
			where += fmt.Sprintf(` AND date <= $%d`, len(args))
		}
		if filter.Income != nil {
			args = append(args, *filter.Income)
			where += fmt.Sprintf(` AND is_income = $%d`, len(args))
		}

		if err := tx.QueryRow(ctx, `SELECT count(*) FROM transactions`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}

		args = append(args, filter.PageSize, filter.Offset())
		rows, err := tx.Query(ctx, `
			SELECT id, description, amount, is_income, category, date, created_at
			FROM transactions`+where+
			fmt.Sprintf(` ORDER BY date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
			args...)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var t sme.Transaction
			if err := rows.Scan(&t.ID, &t.Description, &t.Amount, &t.IsIncome, &t.Category, &t.Date, &t.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan transaction: %w", err)
			}
			transactions = append(transactions, &t)
		}
		return rows.Err()
	})
	return transactions, total, err
}

// Totals sums income and expenses over a date window
func (r *TransactionRepository) Totals(ctx context.Context, from, to time.Time) (float64, float64, error) {
	var income, expenses float64
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			SELECT
				COALESCE(sum(amount) FILTER (WHERE is_income), 0),
				COALESCE(sum(amount) FILTER (WHERE NOT is_income), 0)
			FROM transactions
			WHERE date BETWEEN $1 AND $2
		`, from, to).Scan(&income, &expenses)
	})
	return income, expenses, err
}
