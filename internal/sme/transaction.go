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

package sme

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrValidation          = errors.New("validation failed")
)

// Transaction is one income or expense entry in a tenant's books.
type Transaction struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	IsIncome    bool      `json:"is_income"`
	Category    string    `json:"category,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	From     time.Time
	To       time.Time
	Income   *bool
	Page     int
	PageSize int
}

// Normalize applies pagination defaults and bounds.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// Offset returns the row offset for the current page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Repository persists transactions inside the active partition.
type Repository interface {
	Create(ctx context.Context, transaction *Transaction) error
	List(ctx context.Context, filter ListFilter) ([]*Transaction, int, error)
	Totals(ctx context.Context, from, to time.Time) (income float64, expenses float64, err error)
}
