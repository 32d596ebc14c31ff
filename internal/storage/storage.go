// Package storage defines the Storage interface, the contract any database
// backend must satisfy to serve the students, courses, and enrollments API.
//
// Handlers depend only on this interface. Errors follow internal/apperrors:
//
//   - apperrors.ErrNotFound            when an id does not exist
//   - apperrors.ErrConstraintViolation when a write breaks a unique or
//     foreign-key rule
//   - anything else                    means the store itself failed
//
// Every mutating method is atomic: on error the store is left exactly as
// it was before the call.
package storage

import (
	"context"

	"github.com/aanand-mishra/student-mgmt/internal/types"
)

// Storage is the database contract.
type Storage interface {
	StudentStorage
	CourseStorage
	EnrollmentStorage

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// StudentStorage manages students. Deleting a student deletes its
// enrollments.
type StudentStorage interface {
	CreateStudent(ctx context.Context, in types.StudentCreate) (types.Student, error)
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)
	// GetStudents returns every student ordered by id; never nil.
	GetStudents(ctx context.Context) ([]types.Student, error)
	UpdateStudentByID(ctx context.Context, id int64, in types.StudentUpdate) (types.Student, error)
	DeleteStudentByID(ctx context.Context, id int64) error
}

// CourseStorage manages courses. Deleting a course deletes its
// enrollments.
type CourseStorage interface {
	CreateCourse(ctx context.Context, in types.CourseCreate) (types.Course, error)
	GetCourseByID(ctx context.Context, id int64) (types.Course, error)
	GetCourses(ctx context.Context) ([]types.Course, error)
	UpdateCourseByID(ctx context.Context, id int64, in types.CourseUpdate) (types.Course, error)
	DeleteCourseByID(ctx context.Context, id int64) error
}

// EnrollmentStorage manages enrollments.
type EnrollmentStorage interface {
	// CreateEnrollment checks that the student and then the course exist
	// before inserting, so a missing reference is reported as NotFound
	// rather than as a constraint violation.
	CreateEnrollment(ctx context.Context, in types.EnrollmentCreate) (types.Enrollment, error)
	GetEnrollmentByID(ctx context.Context, id int64) (types.Enrollment, error)
	GetEnrollments(ctx context.Context) ([]types.Enrollment, error)
	// UpdateEnrollmentByID only ever changes the grade.
	UpdateEnrollmentByID(ctx context.Context, id int64, in types.EnrollmentUpdate) (types.Enrollment, error)
	DeleteEnrollmentByID(ctx context.Context, id int64) error
}
