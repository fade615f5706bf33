/*
csv.go - Row iteration and field coercion for uploaded CSV files

PURPOSE:
  Uploads are headerless CSV with a fixed column order per table.
  RowReader streams records one at a time and turns structural problems
  (wrong column count, unterminated quoted field) into MalformedInput errors.
  A quote inside an unquoted field is kept as a literal character.

COERCION:
  CoerceInt and ParseTimestamp are total: every input yields a value or nil,
  never an error. Callers decide what a nil means for their row.
*/
package hiring

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one CSV record with its 1-based line number.
type Row struct {
	Line   int
	Fields []string
}

// RowReader iterates the records of one upload.
type RowReader struct {
	r      *csv.Reader
	quotes *quoteTracker
	table  Table
}

// NewRowReader reads headerless records with exactly len(table.Columns()) fields.
func NewRowReader(r io.Reader, table Table) *RowReader {
	quotes := &quoteTracker{r: stripUTF8BOM(bufio.NewReader(r)), fieldStart: true, line: 1}

	cr := csv.NewReader(quotes)
	cr.FieldsPerRecord = len(table.Columns())
	cr.TrimLeadingSpace = false
	cr.LazyQuotes = true
	return &RowReader{r: cr, quotes: quotes, table: table}
}

// Next returns the next record, or io.EOF once the stream is exhausted.
func (rr *RowReader) Next() (Row, error) {
	fields, err := rr.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line, open := rr.quotes.unterminated(); open {
				return Row{}, malformed("line %d: unterminated quoted field", line)
			}
			return Row{}, io.EOF
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			if errors.Is(perr.Err, csv.ErrFieldCount) {
				return Row{}, malformed("line %d: expected %d columns (%s) for %s",
					perr.Line, len(rr.table.Columns()), strings.Join(rr.table.Columns(), ", "), rr.table)
			}
			return Row{}, malformed("line %d: %v", perr.Line, perr.Err)
		}
		return Row{}, malformed("read csv: %v", err)
	}
	line, _ := rr.r.FieldPos(0)
	return Row{Line: line, Fields: fields}, nil
}

// quoteTracker follows the quoting state of the bytes handed to a lazy
// csv.Reader. The lazy reader silently ends a quoted field at EOF, so an
// open quote is only visible here.
type quoteTracker struct {
	r io.Reader

	fieldStart bool // next byte starts a field
	inQuotes   bool // inside a quoted field
	quoteSeen  bool // inside a quoted field, just after a '"'
	line       int
	openedAt   int
}

func (q *quoteTracker) Read(p []byte) (int, error) {
	n, err := q.r.Read(p)
	for _, c := range p[:n] {
		q.observe(c)
	}
	return n, err
}

func (q *quoteTracker) observe(c byte) {
	if q.inQuotes {
		q.observeQuoted(c)
	} else {
		q.observeBare(c)
	}
	if c == '\n' {
		q.line++
	}
}

func (q *quoteTracker) observeQuoted(c byte) {
	if !q.quoteSeen {
		q.quoteSeen = c == '"'
		return
	}
	switch c {
	case '"':
		q.quoteSeen = false // escaped quote
	case '\r':
		// \r\n after the closing quote
	case ',', '\n':
		q.inQuotes, q.quoteSeen = false, false
		q.observeBare(c)
	default:
		// lazy: a quote followed by anything else is literal
		q.quoteSeen = false
	}
}

func (q *quoteTracker) observeBare(c byte) {
	switch {
	case c == ',' || c == '\n':
		q.fieldStart = true
	case c == '"' && q.fieldStart:
		q.inQuotes, q.fieldStart, q.openedAt = true, false, q.line
	default:
		q.fieldStart = false
	}
}

// unterminated reports whether the input ended inside a quoted field and
// the line where that field opened.
func (q *quoteTracker) unterminated() (int, bool) {
	return q.openedAt, q.inQuotes && !q.quoteSeen
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

// =============================================================================
// COERCION
// =============================================================================

// CoerceInt parses an integer field. Integral floats such as "4.0" are
// accepted; empty, fractional or non-numeric input yields nil.
func CoerceInt(field string) *int64 {
	s := strings.TrimSpace(field)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil
	}
	v := int64(f)
	return &v
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses a datetime field. Unparseable input yields nil.
// The wall clock is kept as written and any zone offset is dropped, so
// "2021-12-31T23:00:00-05:00" is 2021-12-31 23:00 UTC.
func ParseTimestamp(field string) *time.Time {
	s := strings.TrimSpace(field)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			wall := time.Date(t.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
			return &wall
		}
	}
	return nil
}

// parseID is the strict id parser for departments and jobs. An empty id
// leaves assignment to the store.
func parseID(field string) (*int64, bool) {
	if strings.TrimSpace(field) == "" {
		return nil, true
	}
	id := CoerceInt(field)
	return id, id != nil
}
