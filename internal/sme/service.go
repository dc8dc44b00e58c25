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
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ofisihq/ofisi/internal/audit"
	"github.com/ofisihq/ofisi/internal/id"
)

// CreateTransactionInput is the typed bookkeeping entry request.
type CreateTransactionInput struct {
	Description string  `json:"description" validate:"required,max=255"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	IsIncome    bool    `json:"is_income"`
	Category    string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Date        string  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Service implements SME bookkeeping operations.
type Service struct {
	repo        Repository
	validate    *validator.Validate
	auditLogger audit.Logger
}

// NewService creates an SME service.
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		auditLogger: auditLogger,
	}
}

// CreateTransaction records an income or expense entry. The date defaults
// to today when omitted.
func (s *Service) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*Transaction, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	now := time.Now()
	transaction := &Transaction{
		ID:          id.NewUUIDv7(),
		Description: in.Description,
		Amount:      in.Amount,
		IsIncome:    in.IsIncome,
		Category:    in.Category,
		Date:        now,
		CreatedAt:   now,
	}
	if in.Date != "" {
		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date: %s", ErrValidation, err)
		}
		transaction.Date = date
	}

	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRecordCreated,
		Resource: "transaction",
		Metadata: map[string]any{"amount": transaction.Amount, "is_income": transaction.IsIncome},
	})
	return transaction, nil
}

// ListTransactions returns a page of transactions plus the total.
func (s *Service) ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Totals returns income and expense sums for the given window.
func (s *Service) Totals(ctx context.Context, from, to time.Time) (float64, float64, error) {
	return s.repo.Totals(ctx, from, to)
}
