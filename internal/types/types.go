// Package types holds all shared data structures (models and request
// payloads) used across the application. Keeping them in one place prevents
// import cycles: handlers, storage, and validation can all import types
// without depending on each other.
//
// Struct tags serve two purposes:
//
//  1. json:"..."     — the field's name in request and response bodies.
//  2. validate:"..." — rules checked by go-playground/validator before the
//     payload reaches storage (see internal/validation).
//
// Create payloads use plain values for required fields and pointers for
// optional ones. Update payloads are partial: every field is optional and
// only the fields present in the request body are written.
package types

import "time"

// DefaultCredits is stored when a course is created without credits.
const DefaultCredits = 3

// ─────────────────────────────────────────────────────────────────────────────
// Student
// ─────────────────────────────────────────────────────────────────────────────

// Student is the canonical representation of a students row.
type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// StudentCreate is the POST /api/students body.
type StudentCreate struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,emaildomain,max=255"`
	Age   *int   `json:"age"   validate:"omitempty,min=0"`
}

// StudentUpdate is the PUT /api/students/{id} body.
// A JSON null for age clears it; a null name or email is ignored.
type StudentUpdate struct {
	Name  *string       `json:"name"  validate:"omitempty,min=1,max=100"`
	Email *string       `json:"email" validate:"omitempty,email,emaildomain,max=255"`
	Age   Nullable[int] `json:"age"   validate:"omitempty,min=0"`
}

// Changes returns the columns to write, keyed by column name.
func (u StudentUpdate) Changes() map[string]any {
	changes := make(map[string]any)
	if u.Name != nil {
		changes["name"] = *u.Name
	}
	if u.Email != nil {
		changes["email"] = *u.Email
	}
	if u.Age.Set {
		changes["age"] = u.Age.Ptr()
	}
	return changes
}

// ─────────────────────────────────────────────────────────────────────────────
// Course
// ─────────────────────────────────────────────────────────────────────────────

// Course is the canonical representation of a courses row.
type Course struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Title   string `json:"title"`
	Credits int    `json:"credits"`
}

// CourseCreate is the POST /api/courses body. Credits defaults to
// DefaultCredits when omitted.
type CourseCreate struct {
	Code    string `json:"code"    validate:"required,max=50"`
	Title   string `json:"title"   validate:"required,max=255"`
	Credits *int   `json:"credits" validate:"omitempty,min=0,max=30"`
}

// CreditsOrDefault returns the requested credits or DefaultCredits.
func (c CourseCreate) CreditsOrDefault() int {
	if c.Credits == nil {
		return DefaultCredits
	}
	return *c.Credits
}

// CourseUpdate is the PUT /api/courses/{id} body.
type CourseUpdate struct {
	Code    *string `json:"code"    validate:"omitempty,min=1,max=50"`
	Title   *string `json:"title"   validate:"omitempty,min=1,max=255"`
	Credits *int    `json:"credits" validate:"omitempty,min=0,max=30"`
}

// Changes returns the columns to write, keyed by column name.
func (u CourseUpdate) Changes() map[string]any {
	changes := make(map[string]any)
	if u.Code != nil {
		changes["code"] = *u.Code
	}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Credits != nil {
		changes["credits"] = *u.Credits
	}
	return changes
}

// ─────────────────────────────────────────────────────────────────────────────
// Enrollment
// ─────────────────────────────────────────────────────────────────────────────

// Enrollment is the canonical representation of an enrollments row.
// It only carries the ids of its student and course, never the objects.
type Enrollment struct {
	ID        int64   `json:"id"`
	StudentID int64   `json:"student_id"`
	CourseID  int64   `json:"course_id"`
	Grade     *string `json:"grade"`
}

// EnrollmentCreate is the POST /api/enrollments body.
type EnrollmentCreate struct {
	StudentID int64   `json:"student_id" validate:"required,gt=0"`
	CourseID  int64   `json:"course_id"  validate:"required,gt=0"`
	Grade     *string `json:"grade"      validate:"omitempty,max=5"`
}

// EnrollmentUpdate is the PUT /api/enrollments/{id} body.
//
// Only grade can change. student_id and course_id are decoded so that a
// request trying to move an enrollment is rejected instead of silently
// ignored.
type EnrollmentUpdate struct {
	StudentID *int64           `json:"student_id" validate:"isdefault"`
	CourseID  *int64           `json:"course_id"  validate:"isdefault"`
	Grade     Nullable[string] `json:"grade"      validate:"omitempty,max=5"`
}

// Changes returns the columns to write, keyed by column name.
func (u EnrollmentUpdate) Changes() map[string]any {
	changes := make(map[string]any)
	if u.Grade.Set {
		changes["grade"] = u.Grade.Ptr()
	}
	return changes
}
