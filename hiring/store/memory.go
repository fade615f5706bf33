// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/hiring-engine/hiring"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	departments map[int64]hiring.Department
	jobs        map[int64]hiring.Job
	employees   map[int64]hiring.HiredEmployee
}

func NewMemory() *Memory {
	return &Memory{
		departments: make(map[int64]hiring.Department),
		jobs:        make(map[int64]hiring.Job),
		employees:   make(map[int64]hiring.HiredEmployee),
	}
}

// WithTx stages every insert on a copy and swaps it in only if fn succeeds.
func (m *Memory) WithTx(ctx context.Context, fn func(hiring.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &memoryTx{
		departments: cloneMap(m.departments),
		jobs:        cloneMap(m.jobs),
		employees:   cloneMap(m.employees),
	}
	if err := fn(staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.departments = staged.departments
	m.jobs = staged.jobs
	m.employees = staged.employees
	return nil
}

type memoryTx struct {
	departments map[int64]hiring.Department
	jobs        map[int64]hiring.Job
	employees   map[int64]hiring.HiredEmployee
}

func (tx *memoryTx) InsertDepartments(_ context.Context, rows []hiring.Department) error {
	for _, row := range rows {
		id, err := assignID(tx.departments, row.ID, "departments")
		if err != nil {
			return err
		}
		row.ID = &id
		tx.departments[id] = row
	}
	return nil
}

func (tx *memoryTx) InsertJobs(_ context.Context, rows []hiring.Job) error {
	for _, row := range rows {
		id, err := assignID(tx.jobs, row.ID, "jobs")
		if err != nil {
			return err
		}
		row.ID = &id
		tx.jobs[id] = row
	}
	return nil
}

func (tx *memoryTx) InsertHiredEmployees(_ context.Context, rows []hiring.HiredEmployee) error {
	for _, row := range rows {
		id, err := assignID(tx.employees, row.ID, "hired_employees")
		if err != nil {
			return err
		}
		row.ID = &id
		tx.employees[id] = row
	}
	return nil
}

// assignID mirrors INTEGER PRIMARY KEY: nil takes max(id)+1, a taken id fails.
func assignID[V any](rows map[int64]V, id *int64, table string) (int64, error) {
	if id != nil {
		if _, taken := rows[*id]; taken {
			return 0, fmt.Errorf("%w: %s.id %d", hiring.ErrDuplicateID, table, *id)
		}
		return *id, nil
	}
	var next int64 = 1
	for existing := range rows {
		if existing >= next {
			next = existing + 1
		}
	}
	return next, nil
}

func cloneMap[V any](src map[int64]V) map[int64]V {
	dst := make(map[int64]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// =============================================================================
// REPORT QUERIES
// =============================================================================

// hiresInYear calls fn for every employee hired in year whose department
// (and job, when withJob is set) exists.
func (m *Memory) hiresInYear(year int, withJob bool, fn func(hiring.HiredEmployee, hiring.Department, hiring.Job)) {
	for _, emp := range m.employees {
		if emp.Datetime == nil || emp.Datetime.Year() != year || emp.DepartmentID == nil {
			continue
		}
		dept, ok := m.departments[*emp.DepartmentID]
		if !ok {
			continue
		}
		var job hiring.Job
		if withJob {
			if emp.JobID == nil {
				continue
			}
			if job, ok = m.jobs[*emp.JobID]; !ok {
				continue
			}
		}
		fn(emp, dept, job)
	}
}

func (m *Memory) HiresByQuarter(_ context.Context, year int) ([]hiring.QuarterlyHires, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type pair struct{ department, job string }
	groups := make(map[pair]*hiring.QuarterlyHires)

	m.hiresInYear(year, true, func(emp hiring.HiredEmployee, dept hiring.Department, job hiring.Job) {
		k := pair{dept.Department, job.Job}
		g, ok := groups[k]
		if !ok {
			g = &hiring.QuarterlyHires{Department: k.department, Job: k.job}
			groups[k] = g
		}
		g.Add(emp.Datetime.Month())
	})

	out := make([]hiring.QuarterlyHires, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Department != out[j].Department {
			return out[i].Department < out[j].Department
		}
		return out[i].Job < out[j].Job
	})
	return out, nil
}

func (m *Memory) HiresByDepartment(_ context.Context, year int) ([]hiring.DepartmentHires, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[int64]*hiring.DepartmentHires)
	m.hiresInYear(year, false, func(_ hiring.HiredEmployee, dept hiring.Department, _ hiring.Job) {
		id := *dept.ID
		c, ok := counts[id]
		if !ok {
			c = &hiring.DepartmentHires{ID: id, Department: dept.Department}
			counts[id] = c
		}
		c.Hired++
	})

	out := make([]hiring.DepartmentHires, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// INSPECTION
// =============================================================================

// HiredEmployees returns every stored employee ordered by id.
func (m *Memory) HiredEmployees() []hiring.HiredEmployee {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]hiring.HiredEmployee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out
}

// Counts returns the number of departments, jobs and hired employees.
func (m *Memory) Counts() (departments, jobs, employees int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.departments), len(m.jobs), len(m.employees)
}
