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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ofisihq/ofisi/internal/partition"
	"github.com/ofisihq/ofisi/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverFixture(t *testing.T) (*registry.Service, *fakeTenantRepo) {
	t.Helper()
	repo := newFakeTenantRepo()
	return registry.NewService(repo, nopAudit{}), repo
}

// TestPurpose: Validates that a bound hostname resolves to its tenant and
// the handler observes both the tenant and the partition.
// Scope: Integration of resolver middleware and partition context.
func TestResolver_BoundHostname(t *testing.T) {
	service, repo := resolverFixture(t)
	repo.add(&registry.Tenant{ID: "t-1", Name: "Acme School", Type: registry.TypeSchool, SchemaName: "acmeschool"}, "acme.localhost")

	var gotTenant *registry.Tenant
	var gotSchema string
	handler := TenantResolver(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = TenantFromContext(r.Context())
		gotSchema, _ = partition.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.Host = "acme.localhost:8080"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotTenant)
	assert.Equal(t, "t-1", gotTenant.ID)
	assert.Equal(t, "acmeschool", gotSchema)
}

// TestPurpose: Validates the fail-closed outcomes: unknown and empty
// hostnames get 404 and the handler never executes.
// Security: Tenant resolution is the request gate.
func TestResolver_UnknownHostname(t *testing.T) {
	service, _ := resolverFixture(t)

	invoked := false
	handler := TenantResolver(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked = true
	}))

	for _, host := range []string{"nobody.localhost", ""} {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req.Host = host
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code, "host %q", host)
		assert.False(t, invoked, "host %q", host)
	}
}

// TestPurpose: Validates public paths never 404: an unknown Host falls
// back to the shared public partition, while a bound Host still resolves
// its tenant so login knows which workspace it is for.
func TestResolver_PublicPathFallsBackToPublic(t *testing.T) {
	service, repo := resolverFixture(t)
	repo.add(&registry.Tenant{ID: "t-1", Type: registry.TypeSchool, SchemaName: "acmeschool"}, "acme.localhost")

	var gotSchema string
	handler := TenantResolver(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSchema, _ = partition.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/signup", nil)
	req.Host = "completely-unknown.example.com"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, partition.PublicSchema, gotSchema)
	assert.True(t, partition.IsPublic(partition.BindPublic(req.Context())))

	req = httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.Host = "acme.localhost"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "acmeschool", gotSchema)
}

// TestPurpose: Validates two sequential requests with different hostnames
// never observe each other's partition.
// Security: Partition state must be request-scoped, never carried over.
func TestResolver_NoCrossContamination(t *testing.T) {
	service, repo := resolverFixture(t)
	repo.add(&registry.Tenant{ID: "t-1", Type: registry.TypeSchool, SchemaName: "acmeschool"}, "acme.localhost")
	repo.add(&registry.Tenant{ID: "t-2", Type: registry.TypeEnterprise, SchemaName: "brightco"}, "bright.localhost")

	var schemas []string
	handler := TenantResolver(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		schema, err := partition.FromContext(r.Context())
		require.NoError(t, err)
		schemas = append(schemas, schema)
	}))

	for _, host := range []string{"acme.localhost", "bright.localhost", "acme.localhost"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = host
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, []string{"acmeschool", "brightco", "acmeschool"}, schemas)
}

// TestPurpose: Validates a failing hostname lookup is reported as 500,
// never as an unknown tenant, and never falls back to the public
// partition on public paths.
func TestResolver_LookupFailure(t *testing.T) {
	service, repo := resolverFixture(t)
	repo.failure = errors.New("connection refused")

	invoked := false
	handler := TenantResolver(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked = true
	}))

	for _, path := range []string{"/api/students", "/api/login"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Host = "acme.localhost"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, "path %q", path)
		assert.False(t, invoked, "path %q", path)
	}
}

func TestStripPort(t *testing.T) {
	assert.Equal(t, "acme.localhost", stripPort("acme.localhost:8080"))
	assert.Equal(t, "acme.localhost", stripPort("acme.localhost"))
	assert.Equal(t, "", stripPort(""))
}
