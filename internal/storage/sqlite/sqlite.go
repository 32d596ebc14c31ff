// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Integrity rules live in the schema (see migrations/): unique keys on
// students.email, courses.code and (enrollments.student_id,
// enrollments.course_id), and foreign keys from enrollments to students and
// courses with ON DELETE CASCADE. SQLite only enforces foreign keys when the
// connection enables them, which is why every DSN built here carries
// _foreign_keys=on.
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql and
// gives access to its typed constraint error codes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/aanand-mishra/student-mgmt/internal/apperrors"
	"github.com/aanand-mishra/student-mgmt/internal/config"
	"github.com/aanand-mishra/student-mgmt/internal/storage"
	"github.com/mattn/go-sqlite3"
)

const memoryPath = ":memory:"

var _ storage.Storage = (*SQLite)(nil)

// SQLite is the concrete implementation of storage.Storage.
// Db is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
	sb squirrel.StatementBuilderType
}

// New opens the database at cfg.StoragePath, applies pending migrations,
// and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	s, err := Open(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	return s, nil
}

// Open connects to the database at path without touching the schema.
// Use ":memory:" for a throwaway in-memory database.
func Open(path string) (*SQLite, error) {
	if path != memoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Every connection to ":memory:" gets its own empty database, so the
	// pool must never hold more than one.
	if path == memoryPath {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return newStore(db), nil
}

func newStore(db *sql.DB) *SQLite {
	return &SQLite{
		Db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// dsn enables foreign keys on every connection, waits on locks instead of
// failing with SQLITE_BUSY, and takes the write lock when a transaction
// begins so read-then-write transactions cannot deadlock each other.
func dsn(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if path == memoryPath {
		return "file::memory:?" + params
	}
	return path + "?" + params + "&_journal_mode=WAL"
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	if s.Db == nil {
		return nil
	}
	return s.Db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.Db.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction. The transaction holds one pooled
// connection until it is committed or rolled back; any error from fn rolls
// everything back.
func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("failed to rollback transaction", slog.String("error", rbErr.Error()))
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// exists reports whether table has a row with the given id.
func (s *SQLite) exists(ctx context.Context, q querier, table string, id int64) (bool, error) {
	query, args, err := s.sb.Select("1").
		From(table).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var found bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("check %s exists: %w", table, err)
	}
	return found, nil
}

// updateByID writes changes (column → value) to the row with the given id.
// An empty change set is a no-op.
func (s *SQLite) updateByID(ctx context.Context, tx *sql.Tx, table string, id int64, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}

	query, args, err := s.sb.Update(table).
		SetMap(changes).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// deleteByID removes the row with the given id and reports whether it
// existed.
func (s *SQLite) deleteByID(ctx context.Context, tx *sql.Tx, table string, id int64) (bool, error) {
	query, args, err := s.sb.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// constraintMessages maps the column list SQLite reports for a failed
// unique constraint to the message returned to API clients.
var constraintMessages = map[string]string{
	"students.email": "email already exists",
	"courses.code":   "course code already exists",

	"enrollments.student_id, enrollments.course_id": "enrollment already exists",
}

// constraintError turns a SQLite constraint failure into an
// *apperrors.ConstraintError. It returns nil for every other error.
func constraintError(entity string, err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return nil
	}

	// e.g. "UNIQUE constraint failed: students.email"
	constraint := ""
	if _, after, ok := strings.Cut(err.Error(), "failed: "); ok {
		constraint = after
	}

	var message string
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		message = constraintMessages[constraint]
		if message == "" {
			message = fmt.Sprintf("%s already exists", entity)
		}
	case sqlite3.ErrConstraintForeignKey:
		message = "referenced record does not exist"
	default:
		message = fmt.Sprintf("%s violates a database constraint", entity)
	}

	return apperrors.NewConstraintError(entity, constraint, message, err)
}
