package sqlite

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every pending migration in migrations/.
func (s *SQLite) Migrate() error {
	if err := setupGoose(); err != nil {
		return err
	}

	if err := goose.Up(s.Db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// MigrationVersion returns the version of the last applied migration.
func (s *SQLite) MigrationVersion() (int64, error) {
	if err := setupGoose(); err != nil {
		return 0, err
	}

	return goose.GetDBVersion(s.Db)
}

func setupGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(migrationLogger{})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// migrationLogger sends goose output to the default slog logger.
type migrationLogger struct{}

func (migrationLogger) Printf(format string, v ...any) {
	slog.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (migrationLogger) Fatalf(format string, v ...any) {
	slog.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
	os.Exit(1)
}
