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
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ofisihq/ofisi/internal/identity"
	"github.com/ofisihq/ofisi/internal/registry"
	"github.com/stretchr/testify/assert"
)

func TestMapConflict(t *testing.T) {
	cases := map[string]error{
		"users_username_key":             identity.ErrUsernameTaken,
		"tenants_name_key":               registry.ErrNameTaken,
		"tenants_schema_name_key":        registry.ErrSchemaTaken,
		"tenants_owner_id_key":           registry.ErrOwnerHasTenant,
		"hostname_bindings_hostname_key": registry.ErrHostnameTaken,
	}
	for constraint, want := range cases {
		err := mapConflict(&pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint})
		assert.ErrorIs(t, err, want, constraint)
	}

	// wrapped errors still match
	wrapped := fmt.Errorf("insert tenant: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "tenants_name_key"})
	assert.ErrorIs(t, mapConflict(wrapped), registry.ErrNameTaken)
}

func TestMapConflict_PassThrough(t *testing.T) {
	// non-unique violations and unknown constraints pass unchanged
	notNull := &pgconn.PgError{Code: "23502", ConstraintName: "users_username_key"}
	assert.Equal(t, error(notNull), mapConflict(notNull))

	unknown := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "somewhere_else_key"}
	assert.Equal(t, error(unknown), mapConflict(unknown))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapConflict(plain))
}
