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

package school

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrStaffNotFound   = errors.New("staff member not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrFeeNotFound     = errors.New("fee record not found")
	ErrValidation      = errors.New("validation failed")
	ErrDuplicate       = errors.New("duplicate record")
)

// Student is one enrolled learner. AdmissionNumber is assigned by the
// store from the tenant's counter when left empty (format STU%06d).
type Student struct {
	ID                string     `json:"id"`
	AdmissionNumber   string     `json:"admission_number"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Gender            string     `json:"gender"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	GradeLevel        string     `json:"grade_level"`
	Section           string     `json:"section,omitempty"`
	StudentType       string     `json:"student_type"` // day or boarding
	GuardianName      string     `json:"guardian_name,omitempty"`
	GuardianPhone     string     `json:"guardian_phone,omitempty"`
	GuardianEmail     string     `json:"guardian_email,omitempty"`
	Address           string     `json:"address,omitempty"`
	MedicalConditions string     `json:"medical_conditions,omitempty"`
	AdmissionDate     time.Time  `json:"admission_date"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Staff is an employed staff member. StaffNumber is assigned by the store
// (STAFF%03d for teaching staff, EMP%03d otherwise).
type Staff struct {
	ID            string    `json:"id"`
	StaffNumber   string    `json:"staff_number"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Gender        string    `json:"gender,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	StaffType     string    `json:"staff_type"` // teaching or support
	Role          string    `json:"role,omitempty"`
	Department    string    `json:"department,omitempty"`
	Qualification string    `json:"qualification,omitempty"`
	HireDate      time.Time `json:"hire_date"`
	Salary        float64   `json:"salary,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StudentClass is a class/stream for one academic year.
type StudentClass struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	GradeLevel   string    `json:"grade_level"`
	Section      string    `json:"section,omitempty"`
	AcademicYear string    `json:"academic_year"`
	TeacherID    string    `json:"teacher_id,omitempty"`
	Capacity     int       `json:"capacity"`
	Schedule     string    `json:"schedule,omitempty"` // JSON document, opaque to the service
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Subject is a taught subject, optionally tied to a grade level.
type Subject struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code,omitempty"`
	GradeLevel string    `json:"grade_level,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeeStructure defines what a grade level owes for a term.
type FeeStructure struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	GradeLevel   string    `json:"grade_level"`
	AcademicYear string    `json:"academic_year"`
	Term         string    `json:"term"`
	Amount       float64   `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeePayment records money received against a student's fees.
// ReceiptNumber is assigned by the store (RCP%06d). Balance is the
// remaining amount due after this payment.
type FeePayment struct {
	ID            string    `json:"id"`
	ReceiptNumber string    `json:"receipt_number"`
	StudentID     string    `json:"student_id"`
	StructureID   string    `json:"fee_structure_id,omitempty"`
	Amount        float64   `json:"amount"`
	Balance       float64   `json:"balance"`
	Method        string    `json:"payment_method,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	PaidAt        time.Time `json:"paid_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// FeeDiscount reduces a student's dues.
type FeeDiscount struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StaffAttendance is one staff member's attendance mark for a day.
type StaffAttendance struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"` // present, absent, leave
	CreatedAt time.Time `json:"created_at"`
}

// ListFilter narrows list queries. Zero values mean "no filter".
type ListFilter struct {
	Query      string
	GradeLevel string
	Section    string
	Page       int
	PageSize   int
}

// Normalize applies pagination defaults and bounds.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// Offset returns the row offset for the current page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// StudentRepository persists students inside the active partition.
type StudentRepository interface {
	Create(ctx context.Context, student *Student) error
	GetByID(ctx context.Context, id string) (*Student, error)
	List(ctx context.Context, filter ListFilter) ([]*Student, int, error)
}

// StaffRepository persists staff and their attendance.
type StaffRepository interface {
	Create(ctx context.Context, staff *Staff) error
	GetByID(ctx context.Context, id string) (*Staff, error)
	Update(ctx context.Context, staff *Staff) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]*Staff, int, error)
	ListByType(ctx context.Context, staffType string) ([]*Staff, error)
	RecordAttendance(ctx context.Context, attendance *StaffAttendance) error
	ListAttendance(ctx context.Context, staffID string, from, to time.Time) ([]*StaffAttendance, error)
}

// ClassRepository persists classes.
type ClassRepository interface {
	Create(ctx context.Context, class *StudentClass) error
	GetByID(ctx context.Context, id string) (*StudentClass, error)
	List(ctx context.Context, filter ListFilter) ([]*StudentClass, int, error)
}

// SubjectRepository persists subjects.
type SubjectRepository interface {
	Create(ctx context.Context, subject *Subject) error
	List(ctx context.Context) ([]*Subject, error)
}

// FeeRepository persists fee structures, payments and discounts.
type FeeRepository interface {
	CreateStructure(ctx context.Context, structure *FeeStructure) error
	GetStructure(ctx context.Context, id string) (*FeeStructure, error)
	ListStructures(ctx context.Context, academicYear string) ([]*FeeStructure, error)
	CreatePayment(ctx context.Context, payment *FeePayment) error
	ListPayments(ctx context.Context, studentID string, filter ListFilter) ([]*FeePayment, int, error)
	TotalPaid(ctx context.Context, studentID string) (float64, error)
	CreateDiscount(ctx context.Context, discount *FeeDiscount) error
	ListDiscounts(ctx context.Context, studentID string) ([]*FeeDiscount, error)
}
