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
)

// Counter names, one row each in the tenant's counters table.
const (
	seqAdmission = "admission"
	seqTeaching  = "teaching_staff"
	seqSupport   = "support_staff"
	seqReceipt   = "receipt"
)

// nextSeq atomically increments a named per-tenant counter and returns
// the new value. The upsert makes concurrent writers serialize on the
// counter row instead of racing over the last inserted record.
func nextSeq(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var value int64
	err := tx.QueryRow(ctx, `
		INSERT INTO counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", name, err)
	}
	return value, nil
}
