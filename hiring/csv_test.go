package hiring_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hiring-engine/hiring"
)

func TestCoerceInt(t *testing.T) {
	cases := []struct {
		in   string
		want *int64
	}{
		{"42", ptr(int64(42))},
		{" 7 ", ptr(int64(7))},
		{"-3", ptr(int64(-3))},
		{"4.0", ptr(int64(4))},
		{"4.5", nil},
		{"", nil},
		{"abc", nil},
		{"NaN", nil},
		{"1e30", nil},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, hiring.CoerceInt(tc.in))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2021, 11, 7, 2, 48, 42, 0, time.UTC)

	for _, in := range []string{
		"2021-11-07T02:48:42Z",
		"2021-11-07T02:48:42+02:00",
		"2021-11-07T02:48:42",
		"2021-11-07 02:48:42",
		"2021-11-07 02:48:42-05:00",
	} {
		got := hiring.ParseTimestamp(in)
		require.NotNil(t, got, in)
		assert.True(t, want.Equal(*got), "%s parsed as %s", in, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	day := hiring.ParseTimestamp("2021-02-10")
	require.NotNil(t, day)
	assert.Equal(t, time.Date(2021, 2, 10, 0, 0, 0, 0, time.UTC), *day)

	// the offset is dropped, not applied
	eve := hiring.ParseTimestamp("2021-12-31T23:00:00-05:00")
	require.NotNil(t, eve)
	assert.Equal(t, time.Date(2021, 12, 31, 23, 0, 0, 0, time.UTC), *eve)

	assert.Nil(t, hiring.ParseTimestamp(""))
	assert.Nil(t, hiring.ParseTimestamp("not a date"))
	assert.Nil(t, hiring.ParseTimestamp("2021-13-40T00:00:00Z"))
}

func TestRowReader(t *testing.T) {
	in := "\xEF\xBB\xBF1,Supply Chain\n2,\"Maintenance, North\"\n\n3,Staff\n"
	rr := hiring.NewRowReader(strings.NewReader(in), hiring.TableDepartments)

	var rows []hiring.Row
	for {
		row, err := rr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Supply Chain"}, rows[0].Fields, "BOM must be stripped")
	assert.Equal(t, []string{"2", "Maintenance, North"}, rows[1].Fields)
	assert.Equal(t, 4, rows[2].Line)
}

func TestRowReader_WrongColumnCount(t *testing.T) {
	rr := hiring.NewRowReader(strings.NewReader("1,Dev\n2,Ops,extra\n"), hiring.TableJobs)

	_, err := rr.Next()
	require.NoError(t, err)

	_, err = rr.Next()
	require.Error(t, err)
	assert.Equal(t, hiring.KindMalformedInput, hiring.KindOf(err))
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "expected 2 columns")
}

// readAll drains rr, returning the rows read before the first error.
func readAll(rr *hiring.RowReader) ([]hiring.Row, error) {
	var rows []hiring.Row
	for {
		row, err := rr.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func TestRowReader_UnterminatedQuote(t *testing.T) {
	for _, in := range []string{
		"1,\"Dev\n",
		"1,Dev\n2,\"Ops\n3,QA\n",
		"1,\"Dev\"\"\n",
	} {
		_, err := readAll(hiring.NewRowReader(strings.NewReader(in), hiring.TableJobs))

		require.Error(t, err, "%q", in)
		assert.Equal(t, hiring.KindMalformedInput, hiring.KindOf(err))
		assert.Contains(t, err.Error(), "unterminated quoted field")
	}

	_, err := readAll(hiring.NewRowReader(strings.NewReader("1,Dev\n2,\"Ops\n"), hiring.TableJobs))
	assert.Contains(t, err.Error(), "line 2")
}

func TestRowReader_BareQuoteIsLiteral(t *testing.T) {
	in := "1,Supply Chain\n2,Bob's \"Shop\" Dept\n3,\"Quoted, \"\"escaped\"\"\"\r\n4,Staff"

	rows, err := readAll(hiring.NewRowReader(strings.NewReader(in), hiring.TableDepartments))

	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, `Bob's "Shop" Dept`, rows[1].Fields[1])
	assert.Equal(t, `Quoted, "escaped"`, rows[2].Fields[1])
	assert.Equal(t, []string{"4", "Staff"}, rows[3].Fields)
}

func TestParseTable(t *testing.T) {
	for _, name := range []string{"departments", "jobs", "hired_employees"} {
		table, err := hiring.ParseTable(name)
		require.NoError(t, err)
		assert.Equal(t, name, table.String())
	}

	_, err := hiring.ParseTable("invalid")
	require.Error(t, err)
	assert.Equal(t, hiring.KindInvalidTableName, hiring.KindOf(err))
	assert.Equal(t, "Invalid table name", err.Error())
}

func TestTables_AllParse(t *testing.T) {
	require.Len(t, hiring.Tables, 3)
	for _, table := range hiring.Tables {
		parsed, err := hiring.ParseTable(string(table))
		require.NoError(t, err)
		assert.Equal(t, table, parsed)
		assert.NotEmpty(t, table.Columns(), string(table))
	}
}

func ptr[T any](v T) *T { return &v }
