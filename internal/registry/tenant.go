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

package registry

import (
	"context"
	"errors"
	"time"
)

// Type identifies the business domain a tenant operates in.
type Type string

const (
	TypeEnterprise Type = "SME"
	TypeSchool     Type = "SCHOOL"
)

// Valid reports whether t is one of the closed set of tenant types.
func (t Type) Valid() bool {
	return t == TypeEnterprise || t == TypeSchool
}

// Tenant is one customer organization and the owner of one data partition.
// SchemaName is assigned at signup and immutable afterwards; tenants are
// never hard-deleted.
type Tenant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       Type      `json:"company_type"`
	OwnerID    string    `json:"owner_id"`
	PaidUntil  time.Time `json:"paid_until"`
	OnTrial    bool      `json:"on_trial"`
	SchemaName string    `json:"schema"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HostnameBinding maps an externally visible hostname to exactly one tenant.
// At most one binding per tenant is flagged primary.
type HostnameBinding struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Hostname  string    `json:"hostname"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

// Domain errors
var (
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrNameTaken       = errors.New("tenant name already taken")
	ErrSchemaTaken     = errors.New("partition schema already assigned")
	ErrOwnerHasTenant  = errors.New("owner already bound to a tenant")
	ErrHostnameTaken   = errors.New("hostname already bound")
	ErrInvalidType     = errors.New("invalid tenant type")
	ErrInvalidName     = errors.New("tenant name is required")
	ErrInvalidSchema   = errors.New("invalid partition schema name")
	ErrInvalidHostname = errors.New("invalid hostname")
)

// Repository defines the interface for tenant registry storage. All rows
// live in the shared public schema; this is the only data in the system
// that is not partition-scoped.
type Repository interface {
	// Create inserts a tenant. Conflicts on name, schema or owner map to
	// ErrNameTaken, ErrSchemaTaken and ErrOwnerHasTenant respectively.
	Create(ctx context.Context, tenant *Tenant) error

	// BindHostname inserts a hostname binding. Duplicate hostnames map to
	// ErrHostnameTaken.
	BindHostname(ctx context.Context, binding *HostnameBinding) error

	// GetByHostname resolves a hostname binding to its tenant. A binding
	// whose tenant row is gone also reports ErrTenantNotFound.
	GetByHostname(ctx context.Context, hostname string) (*Tenant, error)

	// GetBySchema retrieves a tenant by its partition schema name.
	GetBySchema(ctx context.Context, schema string) (*Tenant, error)

	// GetByID retrieves a tenant by ID.
	GetByID(ctx context.Context, id string) (*Tenant, error)

	// ListByOwner returns all tenants owned by a user.
	ListByOwner(ctx context.Context, ownerID string) ([]*Tenant, error)

	// PrimaryHostname returns the primary binding's hostname for a tenant,
	// or "" when none is flagged primary.
	PrimaryHostname(ctx context.Context, tenantID string) (string, error)
}
