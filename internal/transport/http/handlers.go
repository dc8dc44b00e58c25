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
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ofisihq/ofisi/internal/auth"
	"github.com/ofisihq/ofisi/internal/dashboard"
	"github.com/ofisihq/ofisi/internal/registry"
	"github.com/ofisihq/ofisi/internal/school"
	"github.com/ofisihq/ofisi/internal/sme"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler bundles the services behind the HTTP surface
type Handler struct {
	authService      *auth.Service
	registryService  *registry.Service
	schoolService    *school.Service
	smeService       *sme.Service
	dashboardService *dashboard.Service
}

// NewHandler creates a new handler
func NewHandler(
	authService *auth.Service,
	registryService *registry.Service,
	schoolService *school.Service,
	smeService *sme.Service,
	dashboardService *dashboard.Service,
) *Handler {
	return &Handler{
		authService:      authService,
		registryService:  registryService,
		schoolService:    schoolService,
		smeService:       smeService,
		dashboardService: dashboardService,
	}
}

// RouterConfig tunes the middleware chain
type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	StaticFS       fs.FS // optional SPA assets
}

// NewRouter assembles the full middleware chain and route table. The
// tenant resolver runs before every route; entity routes additionally
// require authentication and the right workspace type.
func (h *Handler) NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	if cfg.RateLimitRPS > 0 {
		r.Use(RateLimitMiddleware(NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	}
	r.Use(TenantResolver(h.registryService))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/companies", h.ListCompanies)

			r.Group(func(r chi.Router) {
				r.Use(RequireTenantType(registry.TypeSchool))

				r.Get("/students", h.ListStudents)
				r.Post("/students", h.CreateStudent)
				r.Get("/classes", h.ListClasses)
				r.Post("/classes", h.CreateClass)
				r.Get("/teachers", h.ListTeachers)
				r.Get("/staff", h.ListStaff)
				r.Post("/staff", h.CreateStaff)
				r.Patch("/staff/{id}", h.UpdateStaff)
				r.Delete("/staff/{id}", h.DeleteStaff)
				r.Get("/staff-attendance", h.ListStaffAttendance)
				r.Post("/staff-attendance", h.RecordStaffAttendance)
				r.Get("/subjects", h.ListSubjects)
				r.Post("/subjects", h.CreateSubject)
				r.Get("/fee-structures", h.ListFeeStructures)
				r.Post("/fee-structures", h.CreateFeeStructure)
				r.Get("/fee-discounts", h.ListFeeDiscounts)
				r.Post("/fee-discounts", h.GrantFeeDiscount)
				r.Get("/fee-payments", h.ListFeePayments)
				r.Post("/fee-payments", h.RecordFeePayment)
				r.Get("/school-dashboard-summary", h.SchoolDashboardSummary)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireTenantType(registry.TypeEnterprise))

				r.Get("/transactions", h.ListTransactions)
				r.Post("/transactions", h.CreateTransaction)
			})
		})
	})

	if cfg.StaticFS != nil {
		r.NotFound(SPAHandler{StaticFS: cfg.StaticFS}.ServeHTTP)
	}

	return otelhttp.NewHandler(r, "http.server")
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
