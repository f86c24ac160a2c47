package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/cvsim/internal/cardio"
)

// Table is a set of named, equally long columns.
type Table struct {
	Names   []string
	Columns [][]float64
}

// FromSample lays out every series of a sample as a table column.
func FromSample(s *cardio.Sample) *Table {
	t := &Table{}
	if s == nil {
		return t
	}
	for _, name := range s.Names() {
		v, _ := s.Series(name)
		t.Names = append(t.Names, name)
		t.Columns = append(t.Columns, v)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0])
}

// Column looks a column up by name.
func (t *Table) Column(name string) ([]float64, error) {
	for i, n := range t.Names {
		if n == name {
			return t.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("unknown series %q", name)
}

// Select returns a table restricted to the named columns, in that order.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{}
	for _, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		out.Names = append(out.Names, name)
		out.Columns = append(out.Columns, col)
	}
	return out, nil
}

func writeSeries(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if len(t.Names) == 0 {
		cw.Flush()
		return cw.Error()
	}
	for j, col := range t.Columns {
		if len(col) != t.Len() {
			return fmt.Errorf("series %s has %d rows, want %d", t.Names[j], len(col), t.Len())
		}
	}
	if err := cw.Write(t.Names); err != nil {
		return err
	}

	row := make([]string, len(t.Columns))
	for i := 0; i < t.Len(); i++ {
		for j, col := range t.Columns {
			row[j] = strconv.FormatFloat(col[i], 'f', 6, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
