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
	"fmt"
	"regexp"
	"time"

	"github.com/ofisihq/ofisi/internal/audit"
	"github.com/ofisihq/ofisi/internal/id"
	"github.com/ofisihq/ofisi/internal/partition"
)

// TrialPeriod is granted to every new tenant at signup.
const TrialPeriod = 30 * 24 * time.Hour

// Postgres identifier, lowercase, no leading digit. 63 is the backend's
// identifier length limit.
var schemaNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

var hostnameRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*$`)

// Service provides tenant registry business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new registry service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{repo: repo, auditLogger: auditLogger}
}

// CreateTenant registers a new tenant with the trial flag set and billing
// expiry TrialPeriod out. The partition schema name is validated here and
// immutable afterwards.
func (s *Service) CreateTenant(ctx context.Context, name string, tenantType Type, ownerID, schemaName string) (*Tenant, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if !tenantType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, tenantType)
	}
	if schemaName == partition.PublicSchema || !schemaNameRe.MatchString(schemaName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSchema, schemaName)
	}

	now := time.Now()
	tenant := &Tenant{
		ID:         id.NewUUIDv7(),
		Name:       name,
		Type:       tenantType,
		OwnerID:    ownerID,
		PaidUntil:  now.Add(TrialPeriod),
		OnTrial:    true,
		SchemaName: schemaName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: tenant.ID,
		ActorID:  ownerID,
		Resource: "tenant",
		Metadata: map[string]any{"schema": schemaName, "tenant_type": string(tenantType)},
	})

	return tenant, nil
}

// BindHostname maps a hostname to a tenant. Hostnames are stored lowercase
// and matched exactly at resolution time.
func (s *Service) BindHostname(ctx context.Context, tenantID, hostname string, isPrimary bool) (*HostnameBinding, error) {
	if !hostnameRe.MatchString(hostname) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHostname, hostname)
	}

	binding := &HostnameBinding{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		Hostname:  hostname,
		IsPrimary: isPrimary,
		CreatedAt: time.Now(),
	}

	if err := s.repo.BindHostname(ctx, binding); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeHostnameBound,
		TenantID: tenantID,
		Resource: "hostname_binding",
		Metadata: map[string]any{"hostname": hostname, "is_primary": isPrimary},
	})

	return binding, nil
}

// FindTenantByHostname resolves the tenant owning a hostname. An empty
// hostname is an invalid tenant, not a lookup.
func (s *Service) FindTenantByHostname(ctx context.Context, hostname string) (*Tenant, error) {
	if hostname == "" {
		return nil, ErrTenantNotFound
	}
	return s.repo.GetByHostname(ctx, hostname)
}

// FindTenantBySchema retrieves a tenant by its partition schema name.
func (s *Service) FindTenantBySchema(ctx context.Context, schema string) (*Tenant, error) {
	if schema == "" || schema == partition.PublicSchema {
		return nil, ErrTenantNotFound
	}
	return s.repo.GetBySchema(ctx, schema)
}

// FindTenantsByOwner returns all tenants owned by a user.
func (s *Service) FindTenantsByOwner(ctx context.Context, ownerID string) ([]*Tenant, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// GetTenant retrieves a tenant by ID.
func (s *Service) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	return s.repo.GetByID(ctx, tenantID)
}

// PrimaryHostname returns the tenant's primary hostname, or "".
func (s *Service) PrimaryHostname(ctx context.Context, tenantID string) (string, error) {
	return s.repo.PrimaryHostname(ctx, tenantID)
}
