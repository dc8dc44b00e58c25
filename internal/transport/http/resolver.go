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
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/ofisihq/ofisi/internal/observability/logger"
	"github.com/ofisihq/ofisi/internal/partition"
	"github.com/ofisihq/ofisi/internal/registry"
)

// publicPaths are reachable without a resolved tenant. When their Host
// header does match a bound hostname the tenant is still resolved, so
// login on a tenant hostname knows which workspace it is for; otherwise
// they run pinned to the shared public partition.
var publicPaths = map[string]bool{
	"/api/signup": true,
	"/api/login":  true,
	"/health":     true,
}

// TenantResolver gates every request into exactly one of three outcomes
// before any handler runs: public path, resolved tenant with its
// partition bound, or 404 with the handler never invoked. The partition
// travels in the request context only, so nothing can leak into the
// next request on a reused connection.
func TenantResolver(registrySvc *registry.Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			public := publicPaths[r.URL.Path]

			hostname := stripPort(r.Host)
			if hostname == "" {
				if public {
					next.ServeHTTP(w, r.WithContext(partition.BindPublic(r.Context())))
					return
				}
				respondError(w, http.StatusNotFound, "invalid tenant")
				return
			}

			tenant, err := registrySvc.FindTenantByHostname(r.Context(), hostname)
			switch {
			case err == nil:
			case errors.Is(err, registry.ErrTenantNotFound):
				if public {
					next.ServeHTTP(w, r.WithContext(partition.BindPublic(r.Context())))
					return
				}
				slog.DebugContext(r.Context(), "tenant resolution miss",
					logger.Hostname(hostname),
					logger.Error(err),
				)
				respondError(w, http.StatusNotFound, "invalid tenant")
				return
			default:
				// an unknown tenant is a miss; a failing lookup is not
				slog.ErrorContext(r.Context(), "tenant resolution failed",
					logger.Hostname(hostname),
					logger.Error(err),
				)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := WithTenant(r.Context(), tenant)
			ctx = partition.Bind(ctx, tenant.SchemaName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// stripPort reduces a Host header to its hostname.
func stripPort(host string) string {
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(host, ":")
}
