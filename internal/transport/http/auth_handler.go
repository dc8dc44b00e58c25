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
	"encoding/json"
	"net/http"

	"github.com/ofisihq/ofisi/internal/auth"
	"github.com/ofisihq/ofisi/internal/registry"
)

// Signup handles POST /api/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Signup(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type companyView struct {
	*registry.Tenant
	Hostname string `json:"hostname,omitempty"`
}

// ListCompanies handles GET /api/companies: the caller's workspaces
// with their primary hostnames.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.registryService.FindTenantsByOwner(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	companies := make([]companyView, 0, len(tenants))
	for _, tenant := range tenants {
		hostname, err := h.registryService.PrimaryHostname(r.Context(), tenant.ID)
		if err != nil {
			hostname = ""
		}
		companies = append(companies, companyView{Tenant: tenant, Hostname: hostname})
	}

	respondJSON(w, http.StatusOK, companies)
}
