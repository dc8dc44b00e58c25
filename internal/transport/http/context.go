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
	"context"

	"github.com/ofisihq/ofisi/internal/registry"
)

type contextKey string

const (
	tenantKey contextKey = "tenant"
	userIDKey contextKey = "user_id"
)

// WithTenant attaches the resolved tenant to the request context.
func WithTenant(ctx context.Context, tenant *registry.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, tenant)
}

// TenantFromContext returns the resolved tenant, or nil on public paths.
func TenantFromContext(ctx context.Context) *registry.Tenant {
	tenant, _ := ctx.Value(tenantKey).(*registry.Tenant)
	return tenant
}

// WithUserID attaches the authenticated user to the request context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the authenticated user ID, or "".
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
