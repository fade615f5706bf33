/*
ingest.go - Bulk insert of one CSV upload

PURPOSE:
  Parses an upload for one table, validates and coerces every row, and
  inserts the whole batch inside a single store transaction.

FLOW:
  1. Validate the table name (InvalidTableName, store untouched)
  2. Read every record through RowReader (MalformedInput on bad structure)
  3. Build typed rows; hired_employees rows are filtered and coerced
  4. Insert the batch in one WithTx scope (InsertFailure on rejection)

HIRED EMPLOYEES:
  For each record, in order:
    - datetime is parsed; unparseable values become NULL
    - the row is dropped if job_id, department_id or name is empty
    - id, department_id and job_id are coerced to integers (NULL on failure)
    - a NULL id is assigned by the store
  A department_id or job_id that was present but not numeric is stored as
  NULL. Such rows are logged at warn and excluded from the reports.
*/
package hiring

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/warp/hiring-engine/logging"
)

// IngestResult describes a committed upload.
type IngestResult struct {
	Table    Table
	Parsed   int
	Inserted int
	Dropped  int
	BatchID  string
}

// Message is the confirmation returned to clients.
func (r IngestResult) Message() string {
	return fmt.Sprintf("%d rows inserted into %s", r.Inserted, r.Table)
}

// Ingester loads CSV uploads into a Store.
type Ingester struct {
	store  Store
	logger *logging.Logger
}

// NewIngester creates an ingester. A nil logger discards output.
func NewIngester(store Store, logger *logging.Logger) *Ingester {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Ingester{store: store, logger: logger}
}

// Ingest parses r as a headerless CSV for tableName and inserts all rows
// atomically. Errors are always *Error.
func (in *Ingester) Ingest(ctx context.Context, tableName string, r io.Reader) (IngestResult, error) {
	table, err := ParseTable(tableName)
	if err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{Table: table, BatchID: uuid.NewString()}
	log := in.logger.With("batch_id", result.BatchID, "table", string(table))

	var insert func(ctx context.Context, tx Tx) error
	switch table {
	case TableDepartments:
		rows, parsed, err := readDepartments(NewRowReader(r, table))
		if err != nil {
			return result, in.fail(log, err)
		}
		result.Parsed, result.Inserted = parsed, len(rows)
		insert = func(ctx context.Context, tx Tx) error { return tx.InsertDepartments(ctx, rows) }

	case TableJobs:
		rows, parsed, err := readJobs(NewRowReader(r, table))
		if err != nil {
			return result, in.fail(log, err)
		}
		result.Parsed, result.Inserted = parsed, len(rows)
		insert = func(ctx context.Context, tx Tx) error { return tx.InsertJobs(ctx, rows) }

	case TableHiredEmployees:
		rows, parsed, err := in.readHiredEmployees(log, NewRowReader(r, table))
		if err != nil {
			return result, in.fail(log, err)
		}
		result.Parsed, result.Inserted = parsed, len(rows)
		insert = func(ctx context.Context, tx Tx) error { return tx.InsertHiredEmployees(ctx, rows) }
	}
	result.Dropped = result.Parsed - result.Inserted

	if result.Parsed == 0 {
		return result, in.fail(log, malformed("file is empty"))
	}

	if err := in.store.WithTx(ctx, func(tx Tx) error { return insert(ctx, tx) }); err != nil {
		return result, in.fail(log, storeFailure(err))
	}

	log.Info("batch committed",
		"parsed", result.Parsed,
		"inserted", result.Inserted,
		"dropped", result.Dropped,
	)
	return result, nil
}

func (in *Ingester) fail(log *logging.Logger, err error) error {
	log.Warn("batch rejected", "kind", string(KindOf(err)), "error", err.Error())
	return err
}

// =============================================================================
// ROW BUILDERS
// =============================================================================

func readDepartments(rr *RowReader) ([]Department, int, error) {
	var rows []Department
	err := eachRow(rr, func(row Row) error {
		id, ok := parseID(row.Fields[0])
		if !ok {
			return nonIntegerID(row, TableDepartments)
		}
		rows = append(rows, Department{ID: id, Department: row.Fields[1]})
		return nil
	})
	return rows, len(rows), err
}

func readJobs(rr *RowReader) ([]Job, int, error) {
	var rows []Job
	err := eachRow(rr, func(row Row) error {
		id, ok := parseID(row.Fields[0])
		if !ok {
			return nonIntegerID(row, TableJobs)
		}
		rows = append(rows, Job{ID: id, Job: row.Fields[1]})
		return nil
	})
	return rows, len(rows), err
}

func (in *Ingester) readHiredEmployees(log *logging.Logger, rr *RowReader) ([]HiredEmployee, int, error) {
	var (
		rows   []HiredEmployee
		parsed int
	)
	err := eachRow(rr, func(row Row) error {
		parsed++
		emp, ok := BuildHiredEmployee(row.Fields)
		if !ok {
			log.Debug("row dropped", "line", row.Line)
			return nil
		}
		if emp.DepartmentID == nil || emp.JobID == nil {
			log.Warn("foreign key not numeric, stored as NULL",
				"line", row.Line,
				"department_id", row.Fields[3],
				"job_id", row.Fields[4],
			)
		}
		rows = append(rows, emp)
		return nil
	})
	return rows, parsed, err
}

// BuildHiredEmployee turns the five positional fields of a hired_employees
// record into a row. ok is false when the row must be dropped.
func BuildHiredEmployee(fields []string) (emp HiredEmployee, ok bool) {
	datetime := ParseTimestamp(fields[2])

	name, departmentID, jobID := fields[1], fields[3], fields[4]
	if jobID == "" || departmentID == "" || name == "" {
		return HiredEmployee{}, false
	}

	return HiredEmployee{
		ID:           CoerceInt(fields[0]),
		Name:         name,
		Datetime:     datetime,
		DepartmentID: CoerceInt(departmentID),
		JobID:        CoerceInt(jobID),
	}, true
}

func eachRow(rr *RowReader, fn func(Row) error) error {
	for {
		row, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

func nonIntegerID(row Row, table Table) *Error {
	return &Error{
		Kind:    KindInsertFailure,
		Message: fmt.Sprintf("line %d: %s id %q is not an integer", row.Line, table, row.Fields[0]),
	}
}
