package pheno

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
)

// Table is a labelled matrix: one row label per row, one column label per
// column. On disk it is a CSV file whose header starts with an id column.
type Table struct {
	Rows    []string
	Columns []string
	Data    *mat.Dense
}

// ReadTable parses a CSV table with a header row and a leading row-label
// column.
func ReadTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, errors.Wrap(err, "read csv")
	}
	if len(records) < 2 {
		return Table{}, errors.Dimensionf("table has %d rows, want a header and at least one data row", len(records))
	}

	header := records[0]
	if len(header) < 2 {
		return Table{}, errors.Dimensionf("table header has %d fields, want an id column and at least one value column", len(header))
	}
	cols := len(header) - 1

	t := Table{
		Rows:    make([]string, 0, len(records)-1),
		Columns: append([]string(nil), header[1:]...),
		Data:    mat.NewDense(len(records)-1, cols, nil),
	}
	for i, rec := range records[1:] {
		if len(rec) != cols+1 {
			return Table{}, errors.Dimensionf("row %d has %d fields, want %d", i+1, len(rec), cols+1)
		}
		t.Rows = append(t.Rows, rec[0])
		for j, field := range rec[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return Table{}, errors.Wrapf(err, "row %d column %q", i+1, header[j+1])
			}
			t.Data.Set(i, j, v)
		}
	}
	return t, nil
}

// WriteTable writes m as CSV with the given labels. Missing labels are
// generated with the prefixes "row" and "col".
func WriteTable(w io.Writer, m mat.Matrix, rows, cols []string) error {
	r, c := m.Dims()
	if rows == nil {
		rows = Labels("row", r)
	}
	if cols == nil {
		cols = Labels("col", c)
	}

	cw := csv.NewWriter(w)
	header := append([]string{"id"}, cols...)
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, c+1)
	for i := 0; i < r; i++ {
		rec[0] = rows[i]
		for j := 0; j < c; j++ {
			rec[j+1] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Labels returns prefix1..prefixN.
func Labels(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i+1)
	}
	return out
}
