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

var studentColumns = []string{"id", "name", "email", "age", "created_at"}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (types.Student, error) {
	var student types.Student
	err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Age, // NULL → nil
		&student.CreatedAt,
	)
	return student, err
}

// CreateStudent inserts a student and returns the stored row, including
// the generated id and created_at.
func (s *SQLite) CreateStudent(ctx context.Context, in types.StudentCreate) (types.Student, error) {
	var student types.Student

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.sb.Insert("students").
			Columns("name", "email", "age").
			Values(in.Name, in.Email, in.Age).
			ToSql()
		if err != nil {
			return fmt.Errorf("CreateStudent: build: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if cerr := constraintError(apperrors.EntityStudent, err); cerr != nil {
				return cerr
			}
			return fmt.Errorf("CreateStudent: exec: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("CreateStudent: last insert id: %w", err)
		}

		student, err = s.getStudent(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Student{}, err
	}

	return student, nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	return s.getStudent(ctx, s.Db, id)
}

func (s *SQLite) getStudent(ctx context.Context, q querier, id int64) (types.Student, error) {
	query, args, err := s.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: build: %w", err)
	}

	student, err := scanStudent(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, apperrors.NewNotFoundError(apperrors.EntityStudent, id)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all students ordered by id.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	query, args, err := s.sb.Select(studentColumns...).
		From("students").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("GetStudents: build: %w", err)
	}

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Empty (non-nil) so the JSON response is [] rather than null.
	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID writes only the fields present in the payload and
// returns the merged row.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id int64, in types.StudentUpdate) (types.Student, error) {
	var student types.Student

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getStudent(ctx, tx, id); err != nil {
			return err
		}

		if err := s.updateByID(ctx, tx, "students", id, in.Changes()); err != nil {
			if cerr := constraintError(apperrors.EntityStudent, err); cerr != nil {
				return cerr
			}
			return fmt.Errorf("UpdateStudentByID: exec: %w", err)
		}

		var err error
		student, err = s.getStudent(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Student{}, err
	}

	return student, nil
}

// DeleteStudentByID removes a student. The schema's ON DELETE CASCADE
// removes the student's enrollments in the same transaction.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		found, err := s.deleteByID(ctx, tx, "students", id)
		if err != nil {
			return fmt.Errorf("DeleteStudentByID: %w", err)
		}
		if !found {
			return apperrors.NewNotFoundError(apperrors.EntityStudent, id)
		}
		return nil
	})
}
