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
	"errors"
	"log/slog"
	"net/http"

	"github.com/ofisihq/ofisi/internal/auth"
	"github.com/ofisihq/ofisi/internal/identity"
	"github.com/ofisihq/ofisi/internal/observability/logger"
	"github.com/ofisihq/ofisi/internal/registry"
	"github.com/ofisihq/ofisi/internal/school"
	"github.com/ofisihq/ofisi/internal/sme"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("failed to encode response", logger.Error(err))
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain sentinels onto the HTTP taxonomy:
// validation 400, conflict 409 (except duplicate username at signup,
// which the original surface reports as 400), not found 404, auth 401,
// anything else 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidCompanyName),
		errors.Is(err, auth.ErrInvalidTenant),
		errors.Is(err, school.ErrValidation),
		errors.Is(err, sme.ErrValidation),
		errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, registry.ErrInvalidType),
		errors.Is(err, registry.ErrInvalidName),
		errors.Is(err, registry.ErrInvalidSchema),
		errors.Is(err, registry.ErrInvalidHostname):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, identity.ErrUsernameTaken):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, registry.ErrNameTaken),
		errors.Is(err, registry.ErrSchemaTaken),
		errors.Is(err, registry.ErrOwnerHasTenant),
		errors.Is(err, registry.ErrHostnameTaken),
		errors.Is(err, school.ErrDuplicate):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNotTenantOwner),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired):
		respondError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, registry.ErrTenantNotFound),
		errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, school.ErrStudentNotFound),
		errors.Is(err, school.ErrStaffNotFound),
		errors.Is(err, school.ErrClassNotFound),
		errors.Is(err, school.ErrSubjectNotFound),
		errors.Is(err, school.ErrFeeNotFound),
		errors.Is(err, sme.ErrTransactionNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	default:
		slog.ErrorContext(r.Context(), "unhandled error", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
