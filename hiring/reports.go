/*
reports.go - Aggregate hiring reports

PURPOSE:
  Read-only reports over the loaded tables. Both run in two phases: the store
  groups and counts, this file shapes the result.

REPORTS:
  HiredByQuarter:        hires per (department, job) per quarter of a year
  DepartmentsAboveMean:  departments hiring strictly more than the mean

MEAN:
  The mean is taken over departments with at least one hire in the year.
  Departments without hires never appear in the grouping, so they neither
  count toward the mean nor appear in the result. Decimal arithmetic keeps
  the comparison exact (10 > 14/3, not 10 > 4.666...).
*/
package hiring

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/hiring-engine/logging"
)

// DefaultYear is the report year when a request does not name one.
const DefaultYear = 2021

// Reporter answers the hiring reports.
type Reporter struct {
	store  Store
	logger *logging.Logger
}

// NewReporter creates a reporter. A nil logger discards output.
func NewReporter(store Store, logger *logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reporter{store: store, logger: logger}
}

// ValidateYear rejects years the store cannot format as four digits.
func ValidateYear(year int) error {
	if year < 1 || year > 9999 {
		return invalidArgument("year must be between 1 and 9999, got %d", year)
	}
	return nil
}

// HiredByQuarter returns per-quarter hire counts for every (department, job)
// pair with at least one hire in year, ordered by department then job.
func (r *Reporter) HiredByQuarter(ctx context.Context, year int) ([]QuarterlyHires, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	rows, err := r.store.HiresByQuarter(ctx, year)
	if err != nil {
		return nil, unavailable("hires by quarter", err)
	}
	if rows == nil {
		rows = []QuarterlyHires{}
	}
	return rows, nil
}

// DepartmentsAboveMean returns departments whose hire count in year is
// strictly greater than the mean count, most hires first.
func (r *Reporter) DepartmentsAboveMean(ctx context.Context, year int) ([]DepartmentHires, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	counts, err := r.store.HiresByDepartment(ctx, year)
	if err != nil {
		return nil, unavailable("hires by department", err)
	}
	above, mean := AboveMean(counts)
	r.logger.Debug("departments above mean",
		"year", year,
		"departments", len(counts),
		"mean", mean.StringFixed(2),
		"above", len(above),
	)
	return above, nil
}

// MeanHires is the arithmetic mean of the counts, zero for no departments.
func MeanHires(counts []DepartmentHires) decimal.Decimal {
	if len(counts) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, c := range counts {
		total = total.Add(decimal.NewFromInt(int64(c.Hired)))
	}
	return total.Div(decimal.NewFromInt(int64(len(counts))))
}

// AboveMean filters counts to those strictly above their mean, ordered by
// hires descending and then id. The mean is returned alongside.
func AboveMean(counts []DepartmentHires) ([]DepartmentHires, decimal.Decimal) {
	mean := MeanHires(counts)

	above := make([]DepartmentHires, 0, len(counts))
	for _, c := range counts {
		if decimal.NewFromInt(int64(c.Hired)).GreaterThan(mean) {
			above = append(above, c)
		}
	}
	sort.SliceStable(above, func(i, j int) bool {
		if above[i].Hired != above[j].Hired {
			return above[i].Hired > above[j].Hired
		}
		return above[i].ID < above[j].ID
	})
	return above, mean
}

func unavailable(op string, err error) *Error {
	return &Error{
		Kind:    KindStoreUnavailable,
		Message: fmt.Sprintf("%s: %v", op, err),
		Err:     err,
	}
}
