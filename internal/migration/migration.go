// Package migration applies the embedded schema migrations for the SQL
// document store backends.
package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var embedded embed.FS

// Dialect names a goose SQL dialect.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// goose keeps its base filesystem, dialect and logger in package globals.
var gooseMu sync.Mutex

// Runner handles database migrations
type Runner struct {
	db      *sql.DB
	dialect Dialect
	fsys    fs.FS
	dir     string
}

// NewRunner creates a runner over the migrations embedded for dialect.
func NewRunner(db *sql.DB, dialect Dialect) *Runner {
	dir := "sqlite"
	if dialect == DialectPostgres {
		dir = "postgres"
	}
	return NewRunnerFS(db, dialect, embedded, path.Join("migrations", dir))
}

// NewRunnerFS creates a runner reading migrations from dir inside fsys.
func NewRunnerFS(db *sql.DB, dialect Dialect, fsys fs.FS, dir string) *Runner {
	return &Runner{db: db, dialect: dialect, fsys: fsys, dir: dir}
}

type gooseLogger struct {
	logFn func(string)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logFn(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logFn(fmt.Sprintf(format, v...))
}

func (r *Runner) with(logFn func(string), fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if logFn == nil {
		logFn = func(string) {}
	}
	goose.SetBaseFS(r.fsys)
	goose.SetLogger(gooseLogger{logFn: logFn})
	if err := goose.SetDialect(string(r.dialect)); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return fn()
}

// GetCurrentVersion returns the current schema version, creating the version
// table if needed.
func (r *Runner) GetCurrentVersion() (int64, error) {
	var version int64
	err := r.with(nil, func() error {
		v, err := goose.GetDBVersion(r.db)
		if err != nil {
			return fmt.Errorf("failed to get schema version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// GetLatestVersion returns the highest version available in the migrations directory
func (r *Runner) GetLatestVersion() (int64, error) {
	var latest int64
	err := r.with(nil, func() error {
		v, err := r.latest()
		latest = v
		return err
	})
	return latest, err
}

func (r *Runner) latest() (int64, error) {
	migrations, err := goose.CollectMigrations(r.dir, 0, goose.MaxVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}
	if len(migrations) == 0 {
		return 0, nil
	}
	return migrations[len(migrations)-1].Version, nil
}

// ApplyMigrations applies all pending migrations up to the latest version
// Returns the number of migrations applied
func (r *Runner) ApplyMigrations(logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	applied := 0
	err := r.with(logFn, func() error {
		current, err := goose.GetDBVersion(r.db)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}

		migrations, err := goose.CollectMigrations(r.dir, 0, goose.MaxVersion)
		if err != nil {
			return fmt.Errorf("failed to read migrations: %w", err)
		}
		if len(migrations) == 0 {
			logFn("No migration files found")
			return nil
		}

		latest := migrations[len(migrations)-1].Version
		if current > latest {
			return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", current, latest)
		}

		pending := 0
		for _, m := range migrations {
			if m.Version > current {
				pending++
			}
		}
		if pending == 0 {
			logFn(fmt.Sprintf("Database schema is up to date (version %d)", current))
			return nil
		}

		logFn(fmt.Sprintf("Applying %d migration(s) from version %d to %d", pending, current, latest))
		start := time.Now()
		if err := goose.Up(r.db, r.dir); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		applied = pending
		logFn(fmt.Sprintf("Applied %d migration(s) in %v", applied, time.Since(start)))
		return nil
	})
	return applied, err
}

// ValidateVersion checks if the database version is compatible with the application
func (r *Runner) ValidateVersion() error {
	return r.with(nil, func() error {
		current, err := goose.GetDBVersion(r.db)
		if err != nil {
			return fmt.Errorf("failed to get schema version: %w", err)
		}
		latest, err := r.latest()
		if err != nil {
			return err
		}
		if current > latest {
			return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", current, latest)
		}
		return nil
	})
}
