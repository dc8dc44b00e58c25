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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ofisihq/ofisi/internal/audit"
	"github.com/ofisihq/ofisi/internal/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, t *Tenant) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockRepo) BindHostname(ctx context.Context, b *HostnameBinding) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockRepo) GetByHostname(ctx context.Context, hostname string) (*Tenant, error) {
	args := m.Called(ctx, hostname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

func (m *mockRepo) GetBySchema(ctx context.Context, schema string) (*Tenant, error) {
	args := m.Called(ctx, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

func (m *mockRepo) ListByOwner(ctx context.Context, ownerID string) ([]*Tenant, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Tenant), args.Error(1)
}

func (m *mockRepo) PrimaryHostname(ctx context.Context, tenantID string) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

func newTestService(repo *mockRepo) (*Service, *mockAudit) {
	auditLogger := new(mockAudit)
	auditLogger.On("Log", mock.Anything, mock.Anything).Return()
	return NewService(repo, auditLogger), auditLogger
}

// TestPurpose: Validates tenant creation sets the trial state and a 30-day
// billing expiry, and generates a UUIDv7 identifier.
// Scope: Unit Test
// Expected: OnTrial true, PaidUntil ~30 days out, valid UUIDv7 ID.
func TestRegistry_CreateTenant_TrialDefaults(t *testing.T) {
	repo := new(mockRepo)
	service, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(tn *Tenant) bool {
		uid, err := uuid.Parse(tn.ID)
		return err == nil && uid.Version() == 7 && tn.SchemaName == "acmeschool"
	})).Return(nil)

	tenant, err := service.CreateTenant(ctx, "Acme School", TypeSchool, "owner-1", "acmeschool")

	assert.NoError(t, err)
	assert.True(t, tenant.OnTrial)
	assert.WithinDuration(t, time.Now().Add(TrialPeriod), tenant.PaidUntil, 5*time.Second)
	repo.AssertExpectations(t)
}

// TestPurpose: Validates the closed tenant type enumeration.
// Expected: Unknown types are rejected before the repository is touched.
func TestRegistry_CreateTenant_InvalidType_Rejected(t *testing.T) {
	repo := new(mockRepo)
	service, _ := newTestService(repo)

	_, err := service.CreateTenant(context.Background(), "Acme", Type("NGO"), "owner-1", "acme")
	assert.ErrorIs(t, err, ErrInvalidType)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestPurpose: Validates the partition schema is never the shared public
// schema and must be a legal Postgres identifier.
func TestRegistry_CreateTenant_SchemaValidation(t *testing.T) {
	repo := new(mockRepo)
	service, _ := newTestService(repo)
	ctx := context.Background()

	for _, schema := range []string{"public", "", "1acme", "Acme School", "acme;drop"} {
		_, err := service.CreateTenant(ctx, "Acme", TypeEnterprise, "owner-1", schema)
		assert.ErrorIs(t, err, ErrInvalidSchema, "schema %q should be rejected", schema)
	}
}

// TestPurpose: Validates duplicate unique keys surface as conflict errors.
func TestRegistry_CreateTenant_Conflicts(t *testing.T) {
	repo := new(mockRepo)
	service, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(ErrNameTaken).Once()
	_, err := service.CreateTenant(ctx, "Acme", TypeSchool, "owner-1", "acme")
	assert.ErrorIs(t, err, ErrNameTaken)

	repo.On("Create", ctx, mock.Anything).Return(ErrOwnerHasTenant).Once()
	_, err = service.CreateTenant(ctx, "Other", TypeSchool, "owner-1", "other")
	assert.ErrorIs(t, err, ErrOwnerHasTenant)
}

func TestRegistry_BindHostname_DuplicateRejected(t *testing.T) {
	repo := new(mockRepo)
	service, _ := newTestService(repo)
	ctx := context.Background()
	tenantID := id.NewUUIDv7()

	repo.On("BindHostname", ctx, mock.MatchedBy(func(b *HostnameBinding) bool {
		return b.TenantID == tenantID && b.Hostname == "acme.localhost" && b.IsPrimary
	})).Return(nil).Once()

	binding, err := service.BindHostname(ctx, tenantID, "acme.localhost", true)
	assert.NoError(t, err)
	assert.Equal(t, "acme.localhost", binding.Hostname)

	repo.On("BindHostname", ctx, mock.Anything).Return(ErrHostnameTaken).Once()
	_, err = service.BindHostname(ctx, tenantID, "acme.localhost", false)
	assert.ErrorIs(t, err, ErrHostnameTaken)
}

func TestRegistry_BindHostname_InvalidHostname(t *testing.T) {
	repo := new(mockRepo)
	service, _ := newTestService(repo)

	_, err := service.BindHostname(context.Background(), "t-1", "bad host!", true)
	assert.ErrorIs(t, err, ErrInvalidHostname)
}

// TestPurpose: Validates hostname resolution, including the fail-closed
// behavior for empty hostnames.
// Security: Tenant resolution is the request gate; misses must not fall
// through to any default tenant.
func TestRegistry_FindTenantByHostname(t *testing.T) {
	repo := new(mockRepo)
	service, _ := newTestService(repo)
	ctx := context.Background()

	want := &Tenant{ID: "t-1", Name: "Acme School", Type: TypeSchool, SchemaName: "acmeschool"}
	repo.On("GetByHostname", ctx, "acme.localhost").Return(want, nil)
	repo.On("GetByHostname", ctx, "nobody.localhost").Return(nil, ErrTenantNotFound)

	got, err := service.FindTenantByHostname(ctx, "acme.localhost")
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = service.FindTenantByHostname(ctx, "nobody.localhost")
	assert.ErrorIs(t, err, ErrTenantNotFound)

	_, err = service.FindTenantByHostname(ctx, "")
	assert.ErrorIs(t, err, ErrTenantNotFound)
	repo.AssertNotCalled(t, "GetByHostname", ctx, "")
}

func TestRegistry_FindTenantBySchema_PublicRejected(t *testing.T) {
	repo := new(mockRepo)
	service, _ := newTestService(repo)

	_, err := service.FindTenantBySchema(context.Background(), "public")
	assert.ErrorIs(t, err, ErrTenantNotFound)
	repo.AssertNotCalled(t, "GetBySchema", mock.Anything, mock.Anything)
}
