// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// SQLite is the default backend: a single file next to the binary, no server to run, and
// ":memory:" databases for tests. The driver is modernc.org/sqlite, a pure Go translation
// of the C library, so the module builds without cgo.
//
// One *DB implements every repository interface plus repository.Store.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/course-marketplace/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// connPragmas are applied by the driver to every pooled connection. Setting them with
// Exec after Open would configure only whichever connection happened to run the statement.
const connPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/marketplace.db" → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	memory := dbPath == ":memory:"

	dsn := dbPath
	if strings.Contains(dsn, "?") {
		dsn += "&" + connPragmas
	} else {
		dsn += "?" + connPragmas
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database. Pin the pool to one
	// connection so all callers see the same schema and rows.
	if memory {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress. The mode is stored in the
	// database file, so running it once is enough; in-memory databases cannot use it.
	if !memory {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent across restarts.
func (db *DB) migrate() error {
	steps := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id         TEXT PRIMARY KEY,
				email      TEXT NOT NULL UNIQUE,
				name       TEXT NOT NULL DEFAULT '',
				role       TEXT NOT NULL CHECK (role IN ('learner', 'instructor', 'admin')),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
		`},
		{"courses", `
			CREATE TABLE IF NOT EXISTS courses (
				id            TEXT PRIMARY KEY,
				title         TEXT NOT NULL,
				description   TEXT NOT NULL DEFAULT '',
				category      TEXT NOT NULL DEFAULT '',
				price_cents   INTEGER NOT NULL DEFAULT 0 CHECK (price_cents >= 0),
				instructor_id TEXT NOT NULL REFERENCES users(id),
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_courses_instructor_id ON courses(instructor_id);
			CREATE INDEX IF NOT EXISTS idx_courses_created_at ON courses(created_at);
		`},
		// The composite primary key is what makes saving idempotent: a second insert of the
		// same pair hits ON CONFLICT DO NOTHING and affects zero rows.
		{"saved_courses", `
			CREATE TABLE IF NOT EXISTS saved_courses (
				user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				course_id  TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, course_id)
			);
		`},
		{"purchases", `
			CREATE TABLE IF NOT EXISTS purchases (
				user_id    TEXT NOT NULL REFERENCES users(id),
				course_id  TEXT NOT NULL REFERENCES courses(id),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, course_id)
			);
			CREATE INDEX IF NOT EXISTS idx_purchases_course_id ON purchases(course_id);
		`},
		{"reviews", `
			CREATE TABLE IF NOT EXISTS reviews (
				id         TEXT PRIMARY KEY,
				course_id  TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
				user_id    TEXT NOT NULL REFERENCES users(id),
				rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
				comment    TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_reviews_course_id ON reviews(course_id);
		`},
	}

	for _, step := range steps {
		if _, err := db.conn.Exec(step.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", step.name, err)
		}
	}
	return nil
}
