/*
Package hiring provides the CSV ingestion pipeline and the hiring reports.

PURPOSE:
  Loads headerless CSV uploads into three related tables (departments, jobs,
  hired employees) and answers two aggregate reports over the loaded rows.

KEY CONCEPTS IN THIS FILE (types.go):
  - Department, Job, HiredEmployee: the persisted record shapes
  - Table: the closed set of upload targets and their column order
  - QuarterlyHires, DepartmentHires: report rows

NULLABILITY:
  A nil pointer means SQL NULL. A nil ID asks the store to assign one.

SEE ALSO:
  - csv.go: Row iteration and field coercion
  - ingest.go: Bulk insert inside one transaction
  - reports.go: Quarter and above-mean reports
  - store.go: Persistence contract
*/
package hiring

import "time"

// =============================================================================
// RECORDS
// =============================================================================

// Department is a row of the departments table.
type Department struct {
	ID         *int64 `db:"id"`
	Department string `db:"department"`
}

// Job is a row of the jobs table.
type Job struct {
	ID  *int64 `db:"id"`
	Job string `db:"job"`
}

// HiredEmployee is a row of the hired_employees table.
// DepartmentID and JobID reference Department and Job but are not enforced.
type HiredEmployee struct {
	ID           *int64     `db:"id"`
	Name         string     `db:"name"`
	Datetime     *time.Time `db:"datetime"`
	DepartmentID *int64     `db:"department_id"`
	JobID        *int64     `db:"job_id"`
}

// =============================================================================
// TABLES
// =============================================================================

// Table names an upload target.
type Table string

const (
	TableDepartments    Table = "departments"
	TableJobs           Table = "jobs"
	TableHiredEmployees Table = "hired_employees"
)

// Tables lists every valid upload target.
var Tables = []Table{TableDepartments, TableJobs, TableHiredEmployees}

// ParseTable validates a table name coming from a request.
func ParseTable(name string) (Table, error) {
	for _, t := range Tables {
		if string(t) == name {
			return t, nil
		}
	}
	return "", &Error{Kind: KindInvalidTableName, Message: "Invalid table name"}
}

// Columns returns the fixed positional column order of the table's CSV files.
func (t Table) Columns() []string {
	switch t {
	case TableDepartments:
		return []string{"id", "department"}
	case TableJobs:
		return []string{"id", "job"}
	case TableHiredEmployees:
		return []string{"id", "name", "datetime", "department_id", "job_id"}
	}
	return nil
}

func (t Table) String() string { return string(t) }

// =============================================================================
// REPORT ROWS
// =============================================================================

// QuarterlyHires counts hires of one (department, job) pair per calendar quarter.
type QuarterlyHires struct {
	Department string `db:"department" json:"department"`
	Job        string `db:"job" json:"job"`
	Q1         int    `db:"q1" json:"Q1"`
	Q2         int    `db:"q2" json:"Q2"`
	Q3         int    `db:"q3" json:"Q3"`
	Q4         int    `db:"q4" json:"Q4"`
}

// Total returns the number of hires across all quarters.
func (q QuarterlyHires) Total() int {
	return q.Q1 + q.Q2 + q.Q3 + q.Q4
}

// DepartmentHires is the number of hires of one department in a year.
type DepartmentHires struct {
	ID         int64  `db:"id" json:"id"`
	Department string `db:"department" json:"department"`
	Hired      int    `db:"hired" json:"hired"`
}
