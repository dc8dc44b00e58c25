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
	"github.com/ofisihq/ofisi/internal/identity"
	"github.com/ofisihq/ofisi/internal/registry"
)

// Provisioner implements auth.Provisioner. The owner identity, tenant
// record, hostname binding and the tenant's schema (with its full DDL)
// are created in a single transaction: a failure at any step leaves no
// orphaned tenant without a binding or schema, and vice versa.
type Provisioner struct {
	db *DB
}

// NewProvisioner creates a tenant provisioner
func NewProvisioner(db *DB) *Provisioner {
	return &Provisioner{db: db}
}

// ProvisionTenant creates everything a new workspace needs, atomically.
func (p *Provisioner) ProvisionTenant(
	ctx context.Context,
	user *identity.User,
	creds *identity.Credentials,
	tenant *registry.Tenant,
	binding *registry.HostnameBinding,
) error {
	tx, err := p.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO public.users (id, username, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Username, user.Email, user.CreatedAt, user.UpdatedAt); err != nil {
		return mapConflict(err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO public.credentials (user_id, password_hash, updated_at)
		VALUES ($1, $2, $3)
	`, creds.UserID, creds.PasswordHash, creds.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert credentials: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO public.tenants (
			id, name, tenant_type, owner_id, paid_until, on_trial, schema_name,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		tenant.ID, tenant.Name, tenant.Type, tenant.OwnerID, tenant.PaidUntil,
		tenant.OnTrial, tenant.SchemaName, tenant.CreatedAt, tenant.UpdatedAt,
	); err != nil {
		return mapConflict(err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO public.hostname_bindings (id, tenant_id, hostname, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, binding.ID, binding.TenantID, binding.Hostname, binding.IsPrimary, binding.CreatedAt); err != nil {
		return mapConflict(err)
	}

	schema := pgx.Identifier{tenant.SchemaName}.Sanitize()
	if _, err := tx.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(ctx, "SET LOCAL search_path TO "+schema); err != nil {
		return fmt.Errorf("failed to set search_path: %w", err)
	}
	if _, err := tx.Exec(ctx, tenantSchema); err != nil {
		return fmt.Errorf("failed to create tenant tables: %w", err)
	}

	return tx.Commit(ctx)
}
