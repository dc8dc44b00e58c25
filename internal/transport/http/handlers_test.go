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

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ofisihq/ofisi/internal/audit"
	"github.com/ofisihq/ofisi/internal/auth"
	"github.com/ofisihq/ofisi/internal/identity"
	"github.com/ofisihq/ofisi/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopAudit struct{}

func (nopAudit) Log(ctx context.Context, event audit.Event) {}

// fakeTenantRepo is an in-memory registry.Repository. Setting failure
// makes hostname lookups fail with it, simulating a storage outage.
type fakeTenantRepo struct {
	mu         sync.Mutex
	tenants    map[string]*registry.Tenant
	byHostname map[string]string
	primaries  map[string]string
	failure    error
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{
		tenants:    make(map[string]*registry.Tenant),
		byHostname: make(map[string]string),
		primaries:  make(map[string]string),
	}
}

func (f *fakeTenantRepo) add(tenant *registry.Tenant, hostname string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tenants[tenant.ID] = tenant
	f.byHostname[hostname] = tenant.ID
	f.primaries[tenant.ID] = hostname
}

func (f *fakeTenantRepo) Create(ctx context.Context, tenant *registry.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tenants {
		if existing.Name == tenant.Name {
			return registry.ErrNameTaken
		}
		if existing.SchemaName == tenant.SchemaName {
			return registry.ErrSchemaTaken
		}
		if existing.OwnerID == tenant.OwnerID {
			return registry.ErrOwnerHasTenant
		}
	}
	f.tenants[tenant.ID] = tenant
	return nil
}

func (f *fakeTenantRepo) BindHostname(ctx context.Context, binding *registry.HostnameBinding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.byHostname[binding.Hostname]; taken {
		return registry.ErrHostnameTaken
	}
	f.byHostname[binding.Hostname] = binding.TenantID
	if binding.IsPrimary {
		f.primaries[binding.TenantID] = binding.Hostname
	}
	return nil
}

func (f *fakeTenantRepo) GetByHostname(ctx context.Context, hostname string) (*registry.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return nil, f.failure
	}
	id, ok := f.byHostname[hostname]
	if !ok {
		return nil, registry.ErrTenantNotFound
	}
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, registry.ErrTenantNotFound
	}
	return tenant, nil
}

func (f *fakeTenantRepo) GetBySchema(ctx context.Context, schema string) (*registry.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tenant := range f.tenants {
		if tenant.SchemaName == schema {
			return tenant, nil
		}
	}
	return nil, registry.ErrTenantNotFound
}

func (f *fakeTenantRepo) GetByID(ctx context.Context, id string) (*registry.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, registry.ErrTenantNotFound
	}
	return tenant, nil
}

func (f *fakeTenantRepo) ListByOwner(ctx context.Context, ownerID string) ([]*registry.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned []*registry.Tenant
	for _, tenant := range f.tenants {
		if tenant.OwnerID == ownerID {
			owned = append(owned, tenant)
		}
	}
	return owned, nil
}

func (f *fakeTenantRepo) PrimaryHostname(ctx context.Context, tenantID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hostname, ok := f.primaries[tenantID]
	if !ok {
		return "", registry.ErrTenantNotFound
	}
	return hostname, nil
}

// fakeUserRepo is an in-memory identity.Repository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*identity.User
	creds map[string]*identity.Credentials
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*identity.User),
		creds: make(map[string]*identity.Credentials),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *identity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return identity.ErrUsernameTaken
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) AddCredentials(ctx context.Context, credentials *identity.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds[credentials.UserID] = credentials
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (f *fakeUserRepo) GetCredentials(ctx context.Context, userID string) (*identity.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	creds, ok := f.creds[userID]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return creds, nil
}

// fakeProvisioner wires signup into the in-memory repos.
type fakeProvisioner struct {
	users   *fakeUserRepo
	tenants *fakeTenantRepo
}

func (f *fakeProvisioner) ProvisionTenant(ctx context.Context, user *identity.User, creds *identity.Credentials, tenant *registry.Tenant, binding *registry.HostnameBinding) error {
	if err := f.users.Create(ctx, user); err != nil {
		return err
	}
	if err := f.users.AddCredentials(ctx, creds); err != nil {
		return err
	}
	if err := f.tenants.Create(ctx, tenant); err != nil {
		return err
	}
	return f.tenants.BindHostname(ctx, binding)
}

func newTestRouter(t *testing.T) (http.Handler, *fakeTenantRepo, *fakeUserRepo) {
	t.Helper()

	users := newFakeUserRepo()
	tenants := newFakeTenantRepo()
	hasher := identity.NewPasswordHasher(1024, 1, 1, 16, 32)
	tokens := auth.NewTokenIssuer([]byte("test-secret-at-least-32-bytes-long"), "ofisi", time.Hour)

	identitySvc := identity.NewService(users, hasher, nopAudit{})
	registrySvc := registry.NewService(tenants, nopAudit{})
	authSvc := auth.NewService(
		identitySvc, registrySvc, &fakeProvisioner{users: users, tenants: tenants},
		tokens, "localhost", nopAudit{},
	)

	handler := NewHandler(authSvc, registrySvc, nil, nil, nil)
	return handler.NewRouter(RouterConfig{}), tenants, users
}

func doJSON(t *testing.T, router http.Handler, method, path, host, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Host = host
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestPurpose: Validates the full signup-then-login flow over the router:
// signup from any host, login at the provisioned tenant hostname.
// Scope: Integration Test
func TestRouter_SignupThenLogin(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/signup", "anything.example.com", "", auth.SignupInput{
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "correct-horse",
		CompanyName: "Acme School",
		CompanyType: "SCHOOL",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var signup auth.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "acmeschool.localhost", signup.Hostname)

	rec = doJSON(t, router, http.MethodPost, "/api/login", "acmeschool.localhost", "", auth.LoginInput{
		Username: "alice",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/login", "acmeschool.localhost", "", auth.LoginInput{
		Username: "alice",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_SignupDuplicateUsername(t *testing.T) {
	router, _, _ := newTestRouter(t)

	in := auth.SignupInput{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse",
		CompanyName: "Acme School", CompanyType: "SCHOOL",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/signup", "x.example.com", "", in)
	require.Equal(t, http.StatusCreated, rec.Code)

	in.CompanyName = "Other School"
	rec = doJSON(t, router, http.MethodPost, "/api/signup", "x.example.com", "", in)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestPurpose: Validates login with correct credentials at another
// owner's hostname is rejected as an ownership mismatch.
func TestRouter_LoginWrongTenant(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, in := range []auth.SignupInput{
		{Username: "alice", Email: "a@example.com", Password: "correct-horse", CompanyName: "Acme School", CompanyType: "SCHOOL"},
		{Username: "bob", Email: "b@example.com", Password: "correct-horse", CompanyName: "Bright Traders", CompanyType: "SME"},
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/signup", "x.example.com", "", in)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, router, http.MethodPost, "/api/login", "brighttraders.localhost", "", auth.LoginInput{
		Username: "alice",
		Password: "correct-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestPurpose: Validates login against a workspace that cannot be
// resolved is a 400 invalid-tenant response: a schema hint naming no
// workspace, and no hint from an unbound hostname. Unknown hostnames on
// entity routes stay 404 (resolver contract).
func TestRouter_LoginInvalidTenant(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/login", "x.example.com", "", auth.LoginInput{
		Username: "alice",
		Password: "correct-horse",
		Schema:   "ghost",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/login", "unbound.example.com", "", auth.LoginInput{
		Username: "alice",
		Password: "correct-horse",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestRouter_CompaniesRequiresAuth(t *testing.T) {
	router, tenants, _ := newTestRouter(t)
	tenants.add(&registry.Tenant{ID: "t-1", Type: registry.TypeSchool, SchemaName: "acmeschool"}, "acmeschool.localhost")

	rec := doJSON(t, router, http.MethodGet, "/api/companies", "acmeschool.localhost", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestPurpose: Validates tenant-type gating: school endpoints reject
// enterprise workspaces and vice versa with 400.
func TestRouter_TenantTypeGating(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/signup", "x.example.com", "", auth.SignupInput{
		Username: "bob", Email: "b@example.com", Password: "correct-horse",
		CompanyName: "Bright Traders", CompanyType: "SME",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var signup auth.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))

	rec = doJSON(t, router, http.MethodGet, "/api/students", "brighttraders.localhost", signup.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UnknownHostRejected(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/students", "nobody.localhost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_HealthIsPublic(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "nobody.localhost", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
