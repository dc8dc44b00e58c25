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
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ofisihq/ofisi/internal/school"
)

// listPage is the standard paginated list envelope.
type listPage struct {
	Items any `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
}

func listFilterFromQuery(r *http.Request) school.ListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	filter := school.ListFilter{
		Query:      q.Get("q"),
		GradeLevel: q.Get("grade_level"),
		Section:    q.Get("section"),
		Page:       page,
		PageSize:   pageSize,
	}
	filter.Normalize()
	return filter
}

// ListStudents handles GET /api/students
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)
	students, total, err := h.schoolService.ListStudents(r.Context(), filter)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, listPage{Items: students, Total: total, Page: filter.Page})
}

// CreateStudent handles POST /api/students
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var in school.CreateStudentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := h.schoolService.CreateStudent(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, student)
}

// ListClasses handles GET /api/classes
func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)
	classes, total, err := h.schoolService.ListClasses(r.Context(), filter)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, listPage{Items: classes, Total: total, Page: filter.Page})
}

// CreateClass handles POST /api/classes
func (h *Handler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var in school.CreateClassInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	class, err := h.schoolService.CreateClass(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, class)
}

// ListTeachers handles GET /api/teachers
func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.schoolService.ListTeachers(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, teachers)
}

// ListStaff handles GET /api/staff
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)
	members, total, err := h.schoolService.ListStaff(r.Context(), filter)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, listPage{Items: members, Total: total, Page: filter.Page})
}

// CreateStaff handles POST /api/staff
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var in school.CreateStaffInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.schoolService.CreateStaff(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

// UpdateStaff handles PATCH /api/staff/{id}
func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	var in school.UpdateStaffInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.schoolService.UpdateStaff(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, member)
}

// DeleteStaff handles DELETE /api/staff/{id}
func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	if err := h.schoolService.DeleteStaff(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordStaffAttendance handles POST /api/staff-attendance
func (h *Handler) RecordStaffAttendance(w http.ResponseWriter, r *http.Request) {
	var in school.RecordAttendanceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	attendance, err := h.schoolService.RecordAttendance(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, attendance)
}

// ListStaffAttendance handles GET /api/staff-attendance
func (h *Handler) ListStaffAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	staffID := q.Get("staff_id")
	if staffID == "" {
		respondError(w, http.StatusBadRequest, "staff_id is required")
		return
	}

	now := time.Now()
	from, to := now.AddDate(0, -1, 0), now
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t
		}
	}

	records, err := h.schoolService.ListAttendance(r.Context(), staffID, from, to)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// ListSubjects handles GET /api/subjects
func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.schoolService.ListSubjects(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, subjects)
}

// CreateSubject handles POST /api/subjects
func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var in school.CreateSubjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subject, err := h.schoolService.CreateSubject(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, subject)
}

// ListFeeStructures handles GET /api/fee-structures
func (h *Handler) ListFeeStructures(w http.ResponseWriter, r *http.Request) {
	structures, err := h.schoolService.ListFeeStructures(r.Context(), r.URL.Query().Get("academic_year"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, structures)
}

// CreateFeeStructure handles POST /api/fee-structures
func (h *Handler) CreateFeeStructure(w http.ResponseWriter, r *http.Request) {
	var in school.CreateFeeStructureInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	structure, err := h.schoolService.CreateFeeStructure(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, structure)
}

type grantDiscountRequest struct {
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason"`
}

// GrantFeeDiscount handles POST /api/fee-discounts
func (h *Handler) GrantFeeDiscount(w http.ResponseWriter, r *http.Request) {
	var in grantDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	discount, err := h.schoolService.GrantDiscount(r.Context(), in.StudentID, in.Name, in.Amount, in.Reason)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, discount)
}

// ListFeeDiscounts handles GET /api/fee-discounts
func (h *Handler) ListFeeDiscounts(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		respondError(w, http.StatusBadRequest, "student_id is required")
		return
	}

	discounts, err := h.schoolService.ListDiscounts(r.Context(), studentID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, discounts)
}

// ListFeePayments handles GET /api/fee-payments
func (h *Handler) ListFeePayments(w http.ResponseWriter, r *http.Request) {
	filter := listFilterFromQuery(r)
	payments, total, err := h.schoolService.ListPayments(r.Context(), r.URL.Query().Get("student_id"), filter)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, listPage{Items: payments, Total: total, Page: filter.Page})
}

// RecordFeePayment handles POST /api/fee-payments
func (h *Handler) RecordFeePayment(w http.ResponseWriter, r *http.Request) {
	var in school.RecordPaymentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := h.schoolService.RecordPayment(r.Context(), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

// SchoolDashboardSummary handles GET /api/school-dashboard-summary
func (h *Handler) SchoolDashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboardService.SchoolSummary(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
