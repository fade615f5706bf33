/*
store.go - Persistence contract for ingestion and reports

PURPOSE:
  Defines the interface between the pipeline and the relational store.
  Rows are only ever inserted; nothing here updates or deletes.

KEY INTERFACES:
  Tx:       Inserts performed inside one transaction
  Store:    Scoped transactions plus the report queries

ATOMIC BATCHES:
  WithTx commits only if fn returns nil. Any error, including a panic in fn,
  rolls back every insert made through the Tx. The connection is released on
  all exit paths.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite file or :memory:
  - hiring/store/memory.go: In-memory for testing
*/
package hiring

import "context"

// Tx inserts rows inside an open transaction.
type Tx interface {
	InsertDepartments(ctx context.Context, rows []Department) error
	InsertJobs(ctx context.Context, rows []Job) error
	InsertHiredEmployees(ctx context.Context, rows []HiredEmployee) error
}

// Store is the relational store used by Ingester and Reporter.
type Store interface {
	// WithTx executes fn within a transaction.
	WithTx(ctx context.Context, fn func(Tx) error) error

	// HiresByQuarter groups hires of year by department and job name,
	// counting each calendar quarter. Ordered by department, then job.
	HiresByQuarter(ctx context.Context, year int) ([]QuarterlyHires, error)

	// HiresByDepartment counts hires of year per department. Departments
	// without hires that year are absent.
	HiresByDepartment(ctx context.Context, year int) ([]DepartmentHires, error)
}
