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

var courseColumns = []string{"id", "code", "title", "credits"}

func scanCourse(row rowScanner) (types.Course, error) {
	var course types.Course
	err := row.Scan(&course.ID, &course.Code, &course.Title, &course.Credits)
	return course, err
}

// CreateCourse inserts a course. Credits default to types.DefaultCredits.
func (s *SQLite) CreateCourse(ctx context.Context, in types.CourseCreate) (types.Course, error) {
	var course types.Course

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.sb.Insert("courses").
			Columns("code", "title", "credits").
			Values(in.Code, in.Title, in.CreditsOrDefault()).
			ToSql()
		if err != nil {
			return fmt.Errorf("CreateCourse: build: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if cerr := constraintError(apperrors.EntityCourse, err); cerr != nil {
				return cerr
			}
			return fmt.Errorf("CreateCourse: exec: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("CreateCourse: last insert id: %w", err)
		}

		course, err = s.getCourse(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Course{}, err
	}

	return course, nil
}

// GetCourseByID fetches one course by primary key.
func (s *SQLite) GetCourseByID(ctx context.Context, id int64) (types.Course, error) {
	return s.getCourse(ctx, s.Db, id)
}

func (s *SQLite) getCourse(ctx context.Context, q querier, id int64) (types.Course, error) {
	query, args, err := s.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Course{}, fmt.Errorf("GetCourseByID: build: %w", err)
	}

	course, err := scanCourse(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Course{}, apperrors.NewNotFoundError(apperrors.EntityCourse, id)
		}
		return types.Course{}, fmt.Errorf("GetCourseByID: scan: %w", err)
	}

	return course, nil
}

// GetCourses returns all courses ordered by id.
func (s *SQLite) GetCourses(ctx context.Context) ([]types.Course, error) {
	query, args, err := s.sb.Select(courseColumns...).
		From("courses").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("GetCourses: build: %w", err)
	}

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("GetCourses: query: %w", err)
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("GetCourses: scan row: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetCourses: rows iteration: %w", err)
	}

	return courses, nil
}

// UpdateCourseByID writes only the fields present in the payload.
func (s *SQLite) UpdateCourseByID(ctx context.Context, id int64, in types.CourseUpdate) (types.Course, error) {
	var course types.Course

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getCourse(ctx, tx, id); err != nil {
			return err
		}

		if err := s.updateByID(ctx, tx, "courses", id, in.Changes()); err != nil {
			if cerr := constraintError(apperrors.EntityCourse, err); cerr != nil {
				return cerr
			}
			return fmt.Errorf("UpdateCourseByID: exec: %w", err)
		}

		var err error
		course, err = s.getCourse(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Course{}, err
	}

	return course, nil
}

// DeleteCourseByID removes a course and, through ON DELETE CASCADE, every
// enrollment in it.
func (s *SQLite) DeleteCourseByID(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		found, err := s.deleteByID(ctx, tx, "courses", id)
		if err != nil {
			return fmt.Errorf("DeleteCourseByID: %w", err)
		}
		if !found {
			return apperrors.NewNotFoundError(apperrors.EntityCourse, id)
		}
		return nil
	})
}
