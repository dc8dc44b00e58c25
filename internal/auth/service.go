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

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ofisihq/ofisi/internal/audit"
	"github.com/ofisihq/ofisi/internal/id"
	"github.com/ofisihq/ofisi/internal/identity"
	"github.com/ofisihq/ofisi/internal/partition"
	"github.com/ofisihq/ofisi/internal/registry"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotTenantOwner     = errors.New("user does not own this workspace")
	ErrInvalidCompanyName = errors.New("company name cannot form a valid workspace identifier")
	ErrInvalidTenant      = errors.New("invalid or missing company schema")
)

// Provisioner creates a complete tenant workspace atomically: the owner
// identity, the tenant record, its primary hostname binding, and the
// tenant's storage partition. Either everything exists afterwards or
// nothing does.
type Provisioner interface {
	ProvisionTenant(ctx context.Context, user *identity.User, creds *identity.Credentials, tenant *registry.Tenant, binding *registry.HostnameBinding) error
}

// SignupInput is the self-service signup request.
type SignupInput struct {
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	CompanyName string `json:"company_name" validate:"required,min=2,max=100"`
	CompanyType string `json:"company_type" validate:"required,oneof=SME SCHOOL"`
}

// LoginInput is a login request. Schema is an optional hint for clients
// that authenticate against the shared host instead of a tenant hostname.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Schema   string `json:"schema,omitempty"`
}

// Result is a successful signup or login.
type Result struct {
	Token    string           `json:"token"`
	User     *identity.User   `json:"user"`
	Tenant   *registry.Tenant `json:"tenant"`
	Hostname string           `json:"hostname"`
}

// Service orchestrates signup and login across identity, registry and
// token issuance.
type Service struct {
	identity    *identity.Service
	registry    *registry.Service
	provisioner Provisioner
	tokens      *TokenIssuer
	baseDomain  string
	validate    *validator.Validate
	auditLogger audit.Logger
}

// NewService creates the auth service. baseDomain is appended to the
// derived schema name to form the tenant's primary hostname.
func NewService(
	identitySvc *identity.Service,
	registrySvc *registry.Service,
	provisioner Provisioner,
	tokens *TokenIssuer,
	baseDomain string,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		identity:    identitySvc,
		registry:    registrySvc,
		provisioner: provisioner,
		tokens:      tokens,
		baseDomain:  baseDomain,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		auditLogger: auditLogger,
	}
}

// Signup provisions a new workspace for a new owner. The entire flow is a
// single transaction behind the Provisioner: a half-created tenant must
// never be observable.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Result, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	schema := SchemaFromCompanyName(in.CompanyName)
	if schema == "" {
		return nil, ErrInvalidCompanyName
	}

	user, creds, err := s.identity.NewUser(in.Username, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tenant := &registry.Tenant{
		ID:         id.NewUUIDv7(),
		Name:       in.CompanyName,
		Type:       registry.Type(in.CompanyType),
		OwnerID:    user.ID,
		PaidUntil:  now.Add(registry.TrialPeriod),
		OnTrial:    true,
		SchemaName: schema,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	hostname := schema + "." + s.baseDomain
	binding := &registry.HostnameBinding{
		ID:        id.NewUUIDv7(),
		TenantID:  tenant.ID,
		Hostname:  hostname,
		IsPrimary: true,
		CreatedAt: now,
	}
	if err := s.provisioner.ProvisionTenant(ctx, user, creds, tenant, binding); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSignup,
		TenantID: tenant.ID,
		ActorID:  user.ID,
		Resource: "tenant",
		Metadata: map[string]any{"schema": schema, "company_type": in.CompanyType},
	})

	return &Result{Token: token, User: user, Tenant: tenant, Hostname: hostname}, nil
}

// Login authenticates an owner against the tenant the request arrived at.
// The tenant comes from the bound partition, or from an explicit schema
// hint; logging in on the shared public partition is not allowed.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	schema := in.Schema
	if schema == "" {
		bound, err := partition.FromContext(ctx)
		if err != nil {
			return nil, ErrInvalidTenant
		}
		schema = bound
	}
	if schema == partition.PublicSchema {
		return nil, ErrInvalidTenant
	}

	tenant, err := s.registry.FindTenantBySchema(ctx, schema)
	if err != nil {
		if errors.Is(err, registry.ErrTenantNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTenant, schema)
		}
		return nil, err
	}

	user, err := s.identity.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	if tenant.OwnerID != user.ID {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: tenant.ID,
			ActorID:  user.ID,
			Resource: "tenant",
			Metadata: map[string]any{audit.AttrReason: "not_owner"},
		})
		return nil, ErrNotTenantOwner
	}

	hostname, err := s.registry.PrimaryHostname(ctx, tenant.ID)
	if err != nil {
		hostname = ""
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		TenantID: tenant.ID,
		ActorID:  user.ID,
		Resource: "tenant",
	})

	return &Result{Token: token, User: user, Tenant: tenant, Hostname: hostname}, nil
}

// VerifyToken validates a bearer token and returns the subject user ID.
func (s *Service) VerifyToken(token string) (string, error) {
	return s.tokens.Verify(token)
}

// SchemaFromCompanyName derives a partition schema name from a display
// name: lowercased, non-alphanumerics stripped. Names that reduce to
// nothing or to an illegal identifier yield "".
func SchemaFromCompanyName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	schema := b.String()
	if schema == "" || schema == partition.PublicSchema {
		return ""
	}
	if schema[0] >= '0' && schema[0] <= '9' {
		return ""
	}
	if len(schema) > 63 {
		schema = schema[:63]
	}
	return schema
}
