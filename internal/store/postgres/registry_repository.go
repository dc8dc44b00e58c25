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
	"github.com/ofisihq/ofisi/internal/registry"
)

// RegistryRepository implements registry.Repository. Tenant records and
// hostname bindings always live in the shared public schema, never in a
// tenant partition.
type RegistryRepository struct {
	db *DB
}

// NewRegistryRepository creates a new registry repository
func NewRegistryRepository(db *DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

const tenantColumns = `id, name, tenant_type, owner_id, paid_until, on_trial, schema_name, created_at, updated_at`

func scanTenant(row pgx.Row) (*registry.Tenant, error) {
	var t registry.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Type, &t.OwnerID, &t.PaidUntil,
		&t.OnTrial, &t.SchemaName, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registry.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to scan tenant: %w", err)
	}
	return &t, nil
}

// Create inserts a tenant record
func (r *RegistryRepository) Create(ctx context.Context, tenant *registry.Tenant) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO public.tenants (
			id, name, tenant_type, owner_id, paid_until, on_trial, schema_name,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		tenant.ID, tenant.Name, tenant.Type, tenant.OwnerID, tenant.PaidUntil,
		tenant.OnTrial, tenant.SchemaName, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		return mapConflict(err)
	}
	return nil
}

// BindHostname inserts a hostname binding
func (r *RegistryRepository) BindHostname(ctx context.Context, binding *registry.HostnameBinding) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO public.hostname_bindings (id, tenant_id, hostname, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, binding.ID, binding.TenantID, binding.Hostname, binding.IsPrimary, binding.CreatedAt)
	if err != nil {
		return mapConflict(err)
	}
	return nil
}

// GetByHostname resolves a hostname binding to its tenant. The inner
// join makes a binding whose tenant row is gone indistinguishable from
// no binding at all.
func (r *RegistryRepository) GetByHostname(ctx context.Context, hostname string) (*registry.Tenant, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT t.id, t.name, t.tenant_type, t.owner_id, t.paid_until,
			t.on_trial, t.schema_name, t.created_at, t.updated_at
		FROM public.hostname_bindings b
		JOIN public.tenants t ON t.id = b.tenant_id
		WHERE b.hostname = $1
	`, hostname)
	return scanTenant(row)
}

// GetBySchema retrieves a tenant by its partition schema name
func (r *RegistryRepository) GetBySchema(ctx context.Context, schema string) (*registry.Tenant, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM public.tenants
		WHERE schema_name = $1
	`, schema)
	return scanTenant(row)
}

// GetByID retrieves a tenant by ID
func (r *RegistryRepository) GetByID(ctx context.Context, id string) (*registry.Tenant, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM public.tenants
		WHERE id = $1
	`, id)
	return scanTenant(row)
}

// ListByOwner retrieves all tenants owned by a user
func (r *RegistryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*registry.Tenant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+tenantColumns+`
		FROM public.tenants
		WHERE owner_id = $1
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*registry.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

// PrimaryHostname returns the tenant's primary hostname
func (r *RegistryRepository) PrimaryHostname(ctx context.Context, tenantID string) (string, error) {
	var hostname string
	err := r.db.pool.QueryRow(ctx, `
		SELECT hostname FROM public.hostname_bindings
		WHERE tenant_id = $1 AND is_primary
	`, tenantID).Scan(&hostname)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", registry.ErrTenantNotFound
		}
		return "", fmt.Errorf("failed to get primary hostname: %w", err)
	}
	return hostname, nil
}
