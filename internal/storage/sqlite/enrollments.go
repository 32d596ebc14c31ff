package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/aanand-mishra/student-mgmt/internal/apperrors"
	"github.com/aanand-mishra/student-mgmt/internal/types"
)

var enrollmentColumns = []string{"id", "student_id", "course_id", "grade"}

func scanEnrollment(row rowScanner) (types.Enrollment, error) {
	var enrollment types.Enrollment
	err := row.Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.CourseID,
		&enrollment.Grade, // NULL → nil
	)
	return enrollment, err
}

// CreateEnrollment enrolls a student in a course.
//
// The student and course are looked up first, inside the same transaction,
// so the caller learns which reference is missing. The foreign keys and the
// (student_id, course_id) unique key still guard the insert itself.
func (s *SQLite) CreateEnrollment(ctx context.Context, in types.EnrollmentCreate) (types.Enrollment, error) {
	var enrollment types.Enrollment

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		found, err := s.exists(ctx, tx, "students", in.StudentID)
		if err != nil {
			return fmt.Errorf("CreateEnrollment: %w", err)
		}
		if !found {
			return apperrors.NewNotFoundError(apperrors.EntityStudent, in.StudentID)
		}

		found, err = s.exists(ctx, tx, "courses", in.CourseID)
		if err != nil {
			return fmt.Errorf("CreateEnrollment: %w", err)
		}
		if !found {
			return apperrors.NewNotFoundError(apperrors.EntityCourse, in.CourseID)
		}

		query, args, err := s.sb.Insert("enrollments").
			Columns("student_id", "course_id", "grade").
			Values(in.StudentID, in.CourseID, in.Grade).
			ToSql()
		if err != nil {
			return fmt.Errorf("CreateEnrollment: build: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if cerr := constraintError(apperrors.EntityEnrollment, err); cerr != nil {
				return cerr
			}
			return fmt.Errorf("CreateEnrollment: exec: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("CreateEnrollment: last insert id: %w", err)
		}

		enrollment, err = s.getEnrollment(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Enrollment{}, err
	}

	return enrollment, nil
}

// GetEnrollmentByID fetches one enrollment by primary key.
func (s *SQLite) GetEnrollmentByID(ctx context.Context, id int64) (types.Enrollment, error) {
	return s.getEnrollment(ctx, s.Db, id)
}

func (s *SQLite) getEnrollment(ctx context.Context, q querier, id int64) (types.Enrollment, error) {
	query, args, err := s.sb.Select(enrollmentColumns...).
		From("enrollments").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Enrollment{}, fmt.Errorf("GetEnrollmentByID: build: %w", err)
	}

	enrollment, err := scanEnrollment(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Enrollment{}, apperrors.NewNotFoundError(apperrors.EntityEnrollment, id)
		}
		return types.Enrollment{}, fmt.Errorf("GetEnrollmentByID: scan: %w", err)
	}

	return enrollment, nil
}

// GetEnrollments returns all enrollments ordered by id.
func (s *SQLite) GetEnrollments(ctx context.Context) ([]types.Enrollment, error) {
	query, args, err := s.sb.Select(enrollmentColumns...).
		From("enrollments").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("GetEnrollments: build: %w", err)
	}

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("GetEnrollments: query: %w", err)
	}
	defer rows.Close()

	enrollments := make([]types.Enrollment, 0)
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("GetEnrollments: scan row: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetEnrollments: rows iteration: %w", err)
	}

	return enrollments, nil
}

// UpdateEnrollmentByID changes the grade of an enrollment. Its student and
// course never change; EnrollmentUpdate.Changes only ever yields "grade".
func (s *SQLite) UpdateEnrollmentByID(ctx context.Context, id int64, in types.EnrollmentUpdate) (types.Enrollment, error) {
	var enrollment types.Enrollment

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getEnrollment(ctx, tx, id); err != nil {
			return err
		}

		if err := s.updateByID(ctx, tx, "enrollments", id, in.Changes()); err != nil {
			if cerr := constraintError(apperrors.EntityEnrollment, err); cerr != nil {
				return cerr
			}
			return fmt.Errorf("UpdateEnrollmentByID: exec: %w", err)
		}

		var err error
		enrollment, err = s.getEnrollment(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Enrollment{}, err
	}

	return enrollment, nil
}

// DeleteEnrollmentByID removes one enrollment.
func (s *SQLite) DeleteEnrollmentByID(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		found, err := s.deleteByID(ctx, tx, "enrollments", id)
		if err != nil {
			return fmt.Errorf("DeleteEnrollmentByID: %w", err)
		}
		if !found {
			return apperrors.NewNotFoundError(apperrors.EntityEnrollment, id)
		}
		return nil
	})
}
