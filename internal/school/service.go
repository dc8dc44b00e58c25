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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ofisihq/ofisi/internal/audit"
	"github.com/ofisihq/ofisi/internal/id"
)

// Staff types
const (
	StaffTypeTeaching = "teaching"
	StaffTypeSupport  = "support"
)

// academicYearRe matches the "2025-2026" form; consecutiveness is checked
// separately.
var academicYearRe = regexp.MustCompile(`^\d{4}-\d{4}$`)

// CreateStudentInput is the typed student admission request.
type CreateStudentInput struct {
	FirstName         string `json:"first_name" validate:"required,max=100"`
	LastName          string `json:"last_name" validate:"required,max=100"`
	Gender            string `json:"gender" validate:"required,oneof=male female"`
	DateOfBirth       string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GradeLevel        string `json:"grade_level" validate:"required,max=50"`
	Section           string `json:"section,omitempty" validate:"omitempty,max=10"`
	StudentType       string `json:"student_type" validate:"required,oneof=day boarding"`
	GuardianName      string `json:"guardian_name,omitempty" validate:"omitempty,max=200"`
	GuardianPhone     string `json:"guardian_phone,omitempty" validate:"omitempty,max=30"`
	GuardianEmail     string `json:"guardian_email,omitempty" validate:"omitempty,email"`
	Address           string `json:"address,omitempty"`
	MedicalConditions string `json:"medical_conditions,omitempty"`
}

// CreateStaffInput is the typed staff onboarding request.
type CreateStaffInput struct {
	FirstName     string  `json:"first_name" validate:"required,max=100"`
	LastName      string  `json:"last_name" validate:"required,max=100"`
	Gender        string  `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	Email         string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	StaffType     string  `json:"staff_type" validate:"required,oneof=teaching support"`
	Role          string  `json:"role,omitempty" validate:"omitempty,max=100"`
	Department    string  `json:"department,omitempty" validate:"omitempty,max=100"`
	Qualification string  `json:"qualification,omitempty" validate:"omitempty,max=200"`
	HireDate      string  `json:"hire_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Salary        float64 `json:"salary,omitempty" validate:"omitempty,gte=0"`
}

// UpdateStaffInput carries a partial staff update. Nil fields are left
// untouched.
type UpdateStaffInput struct {
	FirstName     *string  `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName      *string  `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Email         *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Role          *string  `json:"role,omitempty" validate:"omitempty,max=100"`
	Department    *string  `json:"department,omitempty" validate:"omitempty,max=100"`
	Qualification *string  `json:"qualification,omitempty" validate:"omitempty,max=200"`
	Salary        *float64 `json:"salary,omitempty" validate:"omitempty,gte=0"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// CreateClassInput is the typed class creation request.
type CreateClassInput struct {
	Name         string `json:"name" validate:"required,max=100"`
	GradeLevel   string `json:"grade_level" validate:"required,max=50"`
	Section      string `json:"section,omitempty" validate:"omitempty,max=10"`
	AcademicYear string `json:"academic_year" validate:"required"`
	TeacherID    string `json:"teacher_id,omitempty"`
	Capacity     int    `json:"capacity" validate:"required,min=1,max=60"`
	Schedule     string `json:"schedule,omitempty"`
}

// CreateSubjectInput is the typed subject creation request.
type CreateSubjectInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	Code       string `json:"code,omitempty" validate:"omitempty,max=20"`
	GradeLevel string `json:"grade_level,omitempty" validate:"omitempty,max=50"`
}

// CreateFeeStructureInput is the typed fee structure request.
type CreateFeeStructureInput struct {
	Name         string  `json:"name" validate:"required,max=100"`
	GradeLevel   string  `json:"grade_level" validate:"required,max=50"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	Term         string  `json:"term" validate:"required,max=30"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
}

// RecordPaymentInput is the typed fee payment request.
type RecordPaymentInput struct {
	StudentID   string  `json:"student_id" validate:"required"`
	StructureID string  `json:"fee_structure_id,omitempty"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Method      string  `json:"payment_method,omitempty" validate:"omitempty,oneof=cash bank mobile cheque"`
	Reference   string  `json:"reference,omitempty" validate:"omitempty,max=100"`
}

// RecordAttendanceInput marks one staff member for one day.
type RecordAttendanceInput struct {
	StaffID string `json:"staff_id" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Status  string `json:"status" validate:"required,oneof=present absent leave"`
}

// Service implements the school domain operations. Every call runs
// against the caller's bound partition; the repositories fail closed
// when none is bound.
type Service struct {
	students    StudentRepository
	staff       StaffRepository
	classes     ClassRepository
	subjects    SubjectRepository
	fees        FeeRepository
	validate    *validator.Validate
	auditLogger audit.Logger
}

// NewService creates a school service.
func NewService(
	students StudentRepository,
	staff StaffRepository,
	classes ClassRepository,
	subjects SubjectRepository,
	fees FeeRepository,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		students:    students,
		staff:       staff,
		classes:     classes,
		subjects:    subjects,
		fees:        fees,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		auditLogger: auditLogger,
	}
}

func (s *Service) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return nil
}

// validAcademicYear accepts "YYYY-YYYY" with consecutive years.
func validAcademicYear(year string) bool {
	if !academicYearRe.MatchString(year) {
		return false
	}
	parts := strings.SplitN(year, "-", 2)
	start, _ := strconv.Atoi(parts[0])
	end, _ := strconv.Atoi(parts[1])
	return end == start+1
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// CreateStudent admits a new student. The admission number is assigned
// by the store from the tenant's counter.
func (s *Service) CreateStudent(ctx context.Context, in CreateStudentInput) (*Student, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := time.Now()
	student := &Student{
		ID:                id.NewUUIDv7(),
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Gender:            in.Gender,
		GradeLevel:        in.GradeLevel,
		Section:           in.Section,
		StudentType:       in.StudentType,
		GuardianName:      in.GuardianName,
		GuardianPhone:     in.GuardianPhone,
		GuardianEmail:     in.GuardianEmail,
		Address:           in.Address,
		MedicalConditions: in.MedicalConditions,
		AdmissionDate:     now,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if in.DateOfBirth != "" {
		dob, err := parseDate(in.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("%w: date_of_birth: %s", ErrValidation, err)
		}
		student.DateOfBirth = &dob
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRecordCreated,
		Resource: "student",
		Metadata: map[string]any{"admission_number": student.AdmissionNumber},
	})
	return student, nil
}

// ListStudents returns a page of students plus the unfiltered total.
func (s *Service) ListStudents(ctx context.Context, filter ListFilter) ([]*Student, int, error) {
	filter.Normalize()
	return s.students.List(ctx, filter)
}

// GetStudent retrieves one student.
func (s *Service) GetStudent(ctx context.Context, studentID string) (*Student, error) {
	return s.students.GetByID(ctx, studentID)
}

// CreateStaff onboards a staff member.
func (s *Service) CreateStaff(ctx context.Context, in CreateStaffInput) (*Staff, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := time.Now()
	member := &Staff{
		ID:            id.NewUUIDv7(),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Gender:        in.Gender,
		Email:         in.Email,
		Phone:         in.Phone,
		StaffType:     in.StaffType,
		Role:          in.Role,
		Department:    in.Department,
		Qualification: in.Qualification,
		HireDate:      now,
		Salary:        in.Salary,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.HireDate != "" {
		hired, err := parseDate(in.HireDate)
		if err != nil {
			return nil, fmt.Errorf("%w: hire_date: %s", ErrValidation, err)
		}
		member.HireDate = hired
	}

	if err := s.staff.Create(ctx, member); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRecordCreated,
		Resource: "staff",
		Metadata: map[string]any{"staff_number": member.StaffNumber},
	})
	return member, nil
}

// ListStaff returns a page of staff plus the total.
func (s *Service) ListStaff(ctx context.Context, filter ListFilter) ([]*Staff, int, error) {
	filter.Normalize()
	return s.staff.List(ctx, filter)
}

// ListTeachers returns active teaching staff.
func (s *Service) ListTeachers(ctx context.Context) ([]*Staff, error) {
	return s.staff.ListByType(ctx, StaffTypeTeaching)
}

// UpdateStaff applies a partial update to a staff member.
func (s *Service) UpdateStaff(ctx context.Context, staffID string, in UpdateStaffInput) (*Staff, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	member, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		member.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		member.LastName = *in.LastName
	}
	if in.Email != nil {
		member.Email = *in.Email
	}
	if in.Phone != nil {
		member.Phone = *in.Phone
	}
	if in.Role != nil {
		member.Role = *in.Role
	}
	if in.Department != nil {
		member.Department = *in.Department
	}
	if in.Qualification != nil {
		member.Qualification = *in.Qualification
	}
	if in.Salary != nil {
		member.Salary = *in.Salary
	}
	if in.IsActive != nil {
		member.IsActive = *in.IsActive
	}
	member.UpdatedAt = time.Now()

	if err := s.staff.Update(ctx, member); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRecordUpdated,
		Resource: "staff",
		Metadata: map[string]any{"staff_number": member.StaffNumber},
	})
	return member, nil
}

// DeleteStaff removes a staff member.
func (s *Service) DeleteStaff(ctx context.Context, staffID string) error {
	if err := s.staff.Delete(ctx, staffID); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRecordDeleted,
		Resource: "staff",
		Metadata: map[string]any{"staff_id": staffID},
	})
	return nil
}

// RecordAttendance marks one staff member for one day.
func (s *Service) RecordAttendance(ctx context.Context, in RecordAttendanceInput) (*StaffAttendance, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	day, err := parseDate(in.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date: %s", ErrValidation, err)
	}

	attendance := &StaffAttendance{
		ID:        id.NewUUIDv7(),
		StaffID:   in.StaffID,
		Date:      day,
		Status:    in.Status,
		CreatedAt: time.Now(),
	}
	if err := s.staff.RecordAttendance(ctx, attendance); err != nil {
		return nil, err
	}
	return attendance, nil
}

// ListAttendance returns one staff member's attendance inside a date range.
func (s *Service) ListAttendance(ctx context.Context, staffID string, from, to time.Time) ([]*StaffAttendance, error) {
	if _, err := s.staff.GetByID(ctx, staffID); err != nil {
		return nil, err
	}
	return s.staff.ListAttendance(ctx, staffID, from, to)
}

// CreateClass creates a class. Capacity is bounded 1..60 and the
// academic year must be two consecutive years ("2025-2026").
func (s *Service) CreateClass(ctx context.Context, in CreateClassInput) (*StudentClass, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if !validAcademicYear(in.AcademicYear) {
		return nil, fmt.Errorf("%w: academic_year must be consecutive years like 2025-2026", ErrValidation)
	}

	now := time.Now()
	class := &StudentClass{
		ID:           id.NewUUIDv7(),
		Name:         in.Name,
		GradeLevel:   in.GradeLevel,
		Section:      in.Section,
		AcademicYear: in.AcademicYear,
		TeacherID:    in.TeacherID,
		Capacity:     in.Capacity,
		Schedule:     in.Schedule,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRecordCreated,
		Resource: "class",
		Metadata: map[string]any{"name": class.Name, "academic_year": class.AcademicYear},
	})
	return class, nil
}

// ListClasses returns a page of classes plus the total.
func (s *Service) ListClasses(ctx context.Context, filter ListFilter) ([]*StudentClass, int, error) {
	filter.Normalize()
	return s.classes.List(ctx, filter)
}

// CreateSubject creates a subject.
func (s *Service) CreateSubject(ctx context.Context, in CreateSubjectInput) (*Subject, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	subject := &Subject{
		ID:         id.NewUUIDv7(),
		Name:       in.Name,
		Code:       in.Code,
		GradeLevel: in.GradeLevel,
		CreatedAt:  time.Now(),
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// ListSubjects returns all subjects.
func (s *Service) ListSubjects(ctx context.Context) ([]*Subject, error) {
	return s.subjects.List(ctx)
}

// CreateFeeStructure defines dues for a grade level and term.
func (s *Service) CreateFeeStructure(ctx context.Context, in CreateFeeStructureInput) (*FeeStructure, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if !validAcademicYear(in.AcademicYear) {
		return nil, fmt.Errorf("%w: academic_year must be consecutive years like 2025-2026", ErrValidation)
	}

	structure := &FeeStructure{
		ID:           id.NewUUIDv7(),
		Name:         in.Name,
		GradeLevel:   in.GradeLevel,
		AcademicYear: in.AcademicYear,
		Term:         in.Term,
		Amount:       in.Amount,
		CreatedAt:    time.Now(),
	}
	if err := s.fees.CreateStructure(ctx, structure); err != nil {
		return nil, err
	}
	return structure, nil
}

// ListFeeStructures returns fee structures, optionally filtered to one
// academic year.
func (s *Service) ListFeeStructures(ctx context.Context, academicYear string) ([]*FeeStructure, error) {
	return s.fees.ListStructures(ctx, academicYear)
}

// RecordPayment records a fee payment and computes the student's
// remaining balance against the fee structure, net of discounts.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*FeePayment, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	if _, err := s.students.GetByID(ctx, in.StudentID); err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &FeePayment{
		ID:          id.NewUUIDv7(),
		StudentID:   in.StudentID,
		StructureID: in.StructureID,
		Amount:      in.Amount,
		Method:      in.Method,
		Reference:   in.Reference,
		PaidAt:      now,
		CreatedAt:   now,
	}

	if err := s.fees.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	paid, err := s.fees.TotalPaid(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	due := 0.0
	if in.StructureID != "" {
		structure, err := s.fees.GetStructure(ctx, in.StructureID)
		if err != nil {
			return nil, err
		}
		due = structure.Amount
	}
	discounts, err := s.fees.ListDiscounts(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	for _, discount := range discounts {
		due -= discount.Amount
	}
	payment.Balance = due - paid
	if payment.Balance < 0 {
		payment.Balance = 0
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePaymentRecorded,
		Resource: "fee_payment",
		Metadata: map[string]any{"receipt_number": payment.ReceiptNumber, "amount": payment.Amount},
	})
	return payment, nil
}

// ListPayments returns a page of payments, optionally for one student.
func (s *Service) ListPayments(ctx context.Context, studentID string, filter ListFilter) ([]*FeePayment, int, error) {
	filter.Normalize()
	return s.fees.ListPayments(ctx, studentID, filter)
}

// GrantDiscount records a fee discount for a student.
func (s *Service) GrantDiscount(ctx context.Context, studentID, name string, amount float64, reason string) (*FeeDiscount, error) {
	if name == "" || amount <= 0 {
		return nil, fmt.Errorf("%w: discount requires a name and a positive amount", ErrValidation)
	}
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	discount := &FeeDiscount{
		ID:        id.NewUUIDv7(),
		StudentID: studentID,
		Name:      name,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	if err := s.fees.CreateDiscount(ctx, discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// ListDiscounts returns a student's fee discounts.
func (s *Service) ListDiscounts(ctx context.Context, studentID string) ([]*FeeDiscount, error) {
	return s.fees.ListDiscounts(ctx, studentID)
}
