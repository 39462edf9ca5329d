package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"tvc-go/internal/database/migrations"
	"tvc-go/internal/tvc"
)

// TreeDBName is the per-tree database file inside the metadata directory.
const TreeDBName = "tvc.db"

// RegistryDBName is the global registry database file inside the base dir.
const RegistryDBName = "tvc.db"

// OpenConnection opens and configures a SQLite database connection with
// appropriate PRAGMAs. path can be a file path or ":memory:" for an
// in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Wait for locks instead of failing when the daemon and a CLI command
	// touch the same database.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// OpenTreeStore opens (creating and migrating if needed) the version store
// of the tree whose metadata directory is metaDir.
func OpenTreeStore(metaDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return nil, fmt.Errorf("creating metadata directory: %w", err)
	}

	db, err := OpenConnection(filepath.Join(metaDir, TreeDBName))
	if err != nil {
		return nil, err
	}
	if err := migrations.TreeUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating tree database: %w", err)
	}
	return NewSQLiteStoreFromDB(db), nil
}

// OpenRegistry opens (creating and migrating if needed) the global registry
// database under baseDir.
func OpenRegistry(baseDir string) (*SQLiteRegistry, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating base directory: %w", err)
	}

	db, err := OpenConnection(filepath.Join(baseDir, RegistryDBName))
	if err != nil {
		return nil, err
	}
	if err := migrations.RegistryUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating registry database: %w", err)
	}
	return NewSQLiteRegistryFromDB(db), nil
}

// SQLiteStore implements tvc.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStoreFromDB wraps an existing database connection. The caller is
// responsible for ensuring the schema has been applied.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) InsertVersion(v *tvc.Version) error {
	_, err := s.db.Exec(
		"INSERT INTO versions (name, checksum, created_at) VALUES (?, ?, ?)",
		v.Name, v.Checksum, v.CreatedAt,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return &tvc.DuplicateVersionError{Name: v.Name}
		}
		return fmt.Errorf("inserting version: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListVersions() ([]*tvc.Version, error) {
	rows, err := s.db.Query(
		"SELECT name, checksum, created_at FROM versions ORDER BY created_at ASC, name ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()

	var versions []*tvc.Version
	for rows.Next() {
		v := &tvc.Version{}
		if err := rows.Scan(&v.Name, &v.Checksum, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	return versions, nil
}

func (s *SQLiteStore) DeleteVersionsByChecksum(checksum string) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT name FROM versions WHERE checksum = ?", checksum)
	if err != nil {
		return nil, fmt.Errorf("selecting versions to delete: %w", err)
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning version name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	rows.Close()

	if _, err := tx.Exec("DELETE FROM versions WHERE checksum = ?", checksum); err != nil {
		return nil, fmt.Errorf("deleting versions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return names, nil
}

func (s *SQLiteStore) LastCommit() (*tvc.LastCommit, error) {
	lc := &tvc.LastCommit{}
	err := s.db.QueryRow(
		"SELECT checksum, created_at, name FROM last_commit WHERE id = 1",
	).Scan(&lc.Checksum, &lc.CreatedAt, &lc.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No commit attempted yet
		}
		return nil, fmt.Errorf("reading last commit: %w", err)
	}
	return lc, nil
}

func (s *SQLiteStore) SetLastCommit(lc *tvc.LastCommit) error {
	_, err := s.db.Exec(
		`INSERT INTO last_commit (id, checksum, created_at, name) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET checksum = excluded.checksum,
		                               created_at = excluded.created_at,
		                               name = excluded.name`,
		lc.Checksum, lc.CreatedAt, lc.Name,
	)
	if err != nil {
		return fmt.Errorf("updating last commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SQLiteRegistry implements tvc.Registry using SQLite.
type SQLiteRegistry struct {
	db *sql.DB
}

// NewSQLiteRegistryFromDB wraps an existing database connection. The caller
// is responsible for ensuring the schema has been applied.
func NewSQLiteRegistryFromDB(db *sql.DB) *SQLiteRegistry {
	return &SQLiteRegistry{db: db}
}

func (r *SQLiteRegistry) Add(dir *tvc.MonitoredDirectory) error {
	if dir.ID == "" {
		dir.ID = uuid.New().String()
	}
	_, err := r.db.Exec(
		"INSERT INTO monitored_dirs (id, path, added_at) VALUES (?, ?, ?)",
		dir.ID, dir.Path, dir.AddedAt,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %s", tvc.ErrAlreadyMonitored, dir.Path)
		}
		return fmt.Errorf("registering directory: %w", err)
	}
	return nil
}

func (r *SQLiteRegistry) Remove(path string) error {
	res, err := r.db.Exec("DELETE FROM monitored_dirs WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("deregistering directory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deregistration: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", tvc.ErrNotMonitored, path)
	}
	return nil
}

func (r *SQLiteRegistry) List() ([]*tvc.MonitoredDirectory, error) {
	rows, err := r.db.Query("SELECT id, path, added_at FROM monitored_dirs ORDER BY path ASC")
	if err != nil {
		return nil, fmt.Errorf("listing directories: %w", err)
	}
	defer rows.Close()

	var dirs []*tvc.MonitoredDirectory
	for rows.Next() {
		d := &tvc.MonitoredDirectory{}
		if err := rows.Scan(&d.ID, &d.Path, &d.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning directory: %w", err)
		}
		dirs = append(dirs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating directories: %w", err)
	}
	return dirs, nil
}

func (r *SQLiteRegistry) DesiredDaemonState() (tvc.DaemonState, error) {
	var state string
	err := r.db.QueryRow("SELECT desired_state FROM daemon_control WHERE id = 1").Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tvc.DaemonStopped, nil
		}
		return "", fmt.Errorf("reading daemon state: %w", err)
	}
	return tvc.DaemonState(state), nil
}

func (r *SQLiteRegistry) SetDesiredDaemonState(state tvc.DaemonState) error {
	_, err := r.db.Exec(
		`INSERT INTO daemon_control (id, desired_state, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET desired_state = excluded.desired_state,
		                               updated_at = excluded.updated_at`,
		string(state), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("updating daemon state: %w", err)
	}
	return nil
}

func (r *SQLiteRegistry) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// isConstraintViolation reports whether err is a SQLite primary-key or
// unique-constraint violation.
func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint
}

// Compile-time checks
var (
	_ tvc.Store    = (*SQLiteStore)(nil)
	_ tvc.Registry = (*SQLiteRegistry)(nil)
)
