/*
Package sqlite provides a SQLite-backed implementation of hiring.Store.

PURPOSE:
  Persists departments, jobs and hired employees in a single SQLite file
  and runs the report queries against it.

KEY TABLES:
  departments:      id INTEGER PRIMARY KEY, department TEXT
  jobs:             id INTEGER PRIMARY KEY, job TEXT
  hired_employees:  id INTEGER PRIMARY KEY, name, datetime, department_id, job_id

FOREIGN KEYS:
  hired_employees declares its references but the connection keeps
  foreign_keys off. Rows pointing at unknown departments or jobs are kept
  and drop out of the joins in the reports.

DATETIMES:
  Stored as RFC 3339 UTC text so strftime('%Y') and strftime('%m') read them.

CONCURRENCY:
  Uses sync.RWMutex so one writer runs at a time. ":memory:" databases are
  pinned to one connection; every connection would otherwise see its own
  empty database.

USAGE:
  store, err := sqlite.New("./data/hiring.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is created on New() with CREATE TABLE IF NOT EXISTS.

SEE ALSO:
  - hiring/store.go: Interface definitions
  - hiring/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/warp/hiring-engine/hiring"
)

const driverName = "sqlite3"

// Store implements hiring.Store using SQLite.
type Store struct {
	db *sqlx.DB
	mu sync.RWMutex
}

var _ hiring.Store = (*Store)(nil)

// New opens (creating if needed) the database at dbPath and its schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open(driverName, dbPath+"?_foreign_keys=off&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store, err := NewFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewFromDB wraps an open connection pool and creates the schema.
func NewFromDB(db *sql.DB) (*Store, error) {
	store := &Store{db: sqlx.NewDb(db, driverName)}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS departments (
		id INTEGER PRIMARY KEY,
		department TEXT
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY,
		job TEXT
	);

	CREATE TABLE IF NOT EXISTS hired_employees (
		id INTEGER PRIMARY KEY,
		name TEXT,
		datetime TEXT,
		department_id INTEGER REFERENCES departments(id),
		job_id INTEGER REFERENCES jobs(id)
	);

	-- Report joins and the year filter
	CREATE INDEX IF NOT EXISTS idx_hired_employees_department
		ON hired_employees(department_id);
	CREATE INDEX IF NOT EXISTS idx_hired_employees_job
		ON hired_employees(job_id);
	CREATE INDEX IF NOT EXISTS idx_hired_employees_datetime
		ON hired_employees(datetime);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL INSERTS (hiring.Tx)
// =============================================================================

// WithTx executes fn within a database transaction. The transaction is
// rolled back unless fn returns nil and the commit succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(hiring.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", hiring.ErrStoreUnavailable, err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type txStore struct {
	tx *sqlx.Tx
}

func (ts *txStore) InsertDepartments(ctx context.Context, rows []hiring.Department) error {
	return insertEach(ctx, ts.tx, "INSERT INTO departments (id, department) VALUES (?, ?)", rows,
		func(d hiring.Department) []any {
			return []any{d.ID, nullString(d.Department)}
		})
}

func (ts *txStore) InsertJobs(ctx context.Context, rows []hiring.Job) error {
	return insertEach(ctx, ts.tx, "INSERT INTO jobs (id, job) VALUES (?, ?)", rows,
		func(j hiring.Job) []any {
			return []any{j.ID, nullString(j.Job)}
		})
}

func (ts *txStore) InsertHiredEmployees(ctx context.Context, rows []hiring.HiredEmployee) error {
	query := `
		INSERT INTO hired_employees (id, name, datetime, department_id, job_id)
		VALUES (?, ?, ?, ?, ?)
	`
	return insertEach(ctx, ts.tx, query, rows,
		func(e hiring.HiredEmployee) []any {
			return []any{e.ID, nullString(e.Name), formatTime(e.Datetime), e.DepartmentID, e.JobID}
		})
}

// insertEach prepares query once and executes it for every row.
func insertEach[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T, args func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
			if isPrimaryKeyError(err) {
				return fmt.Errorf("%w: row %d: %v", hiring.ErrDuplicateID, i+1, err)
			}
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}

// =============================================================================
// REPORT QUERIES
// =============================================================================

// quarterColumns renders one conditional SUM per calendar quarter.
func quarterColumns() string {
	cols := make([]string, 0, hiring.Quarters)
	for q := 1; q <= hiring.Quarters; q++ {
		first, last := hiring.QuarterBounds(q)
		cols = append(cols, fmt.Sprintf(
			"SUM(CASE WHEN CAST(strftime('%%m', he.datetime) AS INTEGER) BETWEEN %d AND %d THEN 1 ELSE 0 END) AS q%d",
			int(first), int(last), q))
	}
	return strings.Join(cols, ",\n\t\t       ")
}

var hiresByQuarterQuery = `
		SELECT COALESCE(d.department, '') AS department,
		       COALESCE(j.job, '') AS job,
		       ` + quarterColumns() + `
		FROM departments d
		JOIN hired_employees he ON he.department_id = d.id
		JOIN jobs j ON he.job_id = j.id
		WHERE strftime('%Y', he.datetime) = ?
		GROUP BY d.department, j.job
		ORDER BY d.department, j.job
	`

// HiresByQuarter implements hiring.Store.
func (s *Store) HiresByQuarter(ctx context.Context, year int) ([]hiring.QuarterlyHires, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []hiring.QuarterlyHires
	if err := s.db.SelectContext(ctx, &rows, hiresByQuarterQuery, yearParam(year)); err != nil {
		return nil, fmt.Errorf("failed to query hires by quarter: %w", err)
	}
	return rows, nil
}

// HiresByDepartment implements hiring.Store.
func (s *Store) HiresByDepartment(ctx context.Context, year int) ([]hiring.DepartmentHires, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT d.id AS id,
		       COALESCE(d.department, '') AS department,
		       COUNT(he.id) AS hired
		FROM departments d
		JOIN hired_employees he ON he.department_id = d.id
		WHERE strftime('%Y', he.datetime) = ?
		GROUP BY d.id, d.department
		ORDER BY d.id
	`

	var rows []hiring.DepartmentHires
	if err := s.db.SelectContext(ctx, &rows, query, yearParam(year)); err != nil {
		return nil, fmt.Errorf("failed to query hires by department: %w", err)
	}
	return rows, nil
}

// =============================================================================
// LISTINGS
// =============================================================================

type departmentRow struct {
	ID         int64          `db:"id"`
	Department sql.NullString `db:"department"`
}

// ListDepartments returns all departments ordered by id.
func (s *Store) ListDepartments(ctx context.Context) ([]hiring.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []departmentRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT id, department FROM departments ORDER BY id"); err != nil {
		return nil, err
	}
	out := make([]hiring.Department, len(rows))
	for i, r := range rows {
		out[i] = hiring.Department{ID: int64Ptr(r.ID), Department: r.Department.String}
	}
	return out, nil
}

type jobRow struct {
	ID  int64          `db:"id"`
	Job sql.NullString `db:"job"`
}

// ListJobs returns all jobs ordered by id.
func (s *Store) ListJobs(ctx context.Context) ([]hiring.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT id, job FROM jobs ORDER BY id"); err != nil {
		return nil, err
	}
	out := make([]hiring.Job, len(rows))
	for i, r := range rows {
		out[i] = hiring.Job{ID: int64Ptr(r.ID), Job: r.Job.String}
	}
	return out, nil
}

type hiredEmployeeRow struct {
	ID           int64          `db:"id"`
	Name         sql.NullString `db:"name"`
	Datetime     sql.NullString `db:"datetime"`
	DepartmentID sql.NullInt64  `db:"department_id"`
	JobID        sql.NullInt64  `db:"job_id"`
}

// ListHiredEmployees returns all hired employees ordered by id.
func (s *Store) ListHiredEmployees(ctx context.Context) ([]hiring.HiredEmployee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, datetime, department_id, job_id
		FROM hired_employees
		ORDER BY id
	`

	var rows []hiredEmployeeRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	out := make([]hiring.HiredEmployee, len(rows))
	for i, r := range rows {
		out[i] = hiring.HiredEmployee{
			ID:           int64Ptr(r.ID),
			Name:         r.Name.String,
			Datetime:     parseTime(r.Datetime),
			DepartmentID: nullInt64Ptr(r.DepartmentID),
			JobID:        nullInt64Ptr(r.JobID),
		}
	}
	return out, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func int64Ptr(v int64) *int64 {
	return &v
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func yearParam(year int) string {
	return fmt.Sprintf("%04d", year)
}

func isPrimaryKeyError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
