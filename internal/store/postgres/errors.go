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

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ofisihq/ofisi/internal/identity"
	"github.com/ofisihq/ofisi/internal/registry"
)

// uniqueViolation is the Postgres error code for duplicate unique keys.
const uniqueViolation = "23505"

// conflictErrors maps unique constraint names to domain sentinels.
var conflictErrors = map[string]error{
	"users_username_key":             identity.ErrUsernameTaken,
	"tenants_name_key":               registry.ErrNameTaken,
	"tenants_schema_name_key":        registry.ErrSchemaTaken,
	"tenants_owner_id_key":           registry.ErrOwnerHasTenant,
	"hostname_bindings_hostname_key": registry.ErrHostnameTaken,
}

// mapConflict translates a unique violation into its domain error, or
// returns the original error unchanged.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if sentinel, ok := conflictErrors[pgErr.ConstraintName]; ok {
			return sentinel
		}
	}
	return err
}
