package table

import (
	"bytes"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// MissingToken is written for null cells and read back as null.
const MissingToken = "na"

// Separator is the field delimiter; fixed so output does not depend on locale.
const Separator = ','

// Table is an in-memory set of named columns backed by a single Arrow record batch.
type Table struct {
	rec arrow.RecordBatch
}

// New wraps rec. The table takes its own reference; callers still release theirs.
func New(rec arrow.RecordBatch) *Table {
	rec.Retain()
	return &Table{rec: rec}
}

// Record returns the underlying record batch. It stays valid until Release.
func (t *Table) Record() arrow.RecordBatch { return t.rec }

// Release drops the table's reference to the record batch.
func (t *Table) Release() {
	if t.rec != nil {
		t.rec.Release()
		t.rec = nil
	}
}

func (t *Table) NumRows() int { return int(t.rec.NumRows()) }

func (t *Table) NumCols() int { return int(t.rec.NumCols()) }

// Columns returns the column names in schema order.
func (t *Table) Columns() []string {
	fields := t.rec.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// IsMissing reports whether the cell at (row, col) is null.
func (t *Table) IsMissing(row, col int) bool {
	return t.rec.Column(col).IsNull(row)
}

// Value renders the cell at (row, col) as text. Missing cells render as MissingToken.
func (t *Table) Value(row, col int) string {
	c := t.rec.Column(col)
	if c.IsNull(row) {
		return MissingToken
	}
	return c.ValueStr(row)
}

// Rows renders every row as text, with nil for missing cells.
func (t *Table) Rows() [][]*string {
	rows := make([][]*string, t.NumRows())
	for r := range rows {
		row := make([]*string, t.NumCols())
		for c := range row {
			if !t.IsMissing(r, c) {
				v := t.rec.Column(c).ValueStr(r)
				row[c] = &v
			}
		}
		rows[r] = row
	}
	return rows
}

// WriteCSV writes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w, t.rec.Schema(),
		csv.WithComma(Separator),
		csv.WithHeader(true),
		csv.WithNullWriter(MissingToken),
	)
	if err := cw.Write(t.rec); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := cw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return cw.Error()
}

// WriteFile writes the table as CSV to path, replacing any existing file.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses CSV with a header row. Empty cells and MissingToken become nulls.
// Each column takes the narrowest type that fits every value in it: int64, then
// float64, then bool ("true"/"false"), else utf8. A column with no values is utf8.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	names, err := readHeader(data)
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}

	mem := memory.NewGoAllocator()
	cells := make([][]*string, len(names))
	if len(names) > 0 {
		if cells, err = readCells(mem, data, arrow.NewSchema(fields, nil)); err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
	}

	cols := make([]arrow.Array, len(names))
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	nrows := 0
	for i, values := range cells {
		fields[i].Type = inferType(values)
		if cols[i], err = buildColumn(mem, fields[i].Type, values); err != nil {
			return nil, fmt.Errorf("read csv column %s: %w", names[i], err)
		}
		nrows = len(values)
	}

	rec := array.NewRecordBatch(arrow.NewSchema(fields, nil), cols, int64(nrows))
	defer rec.Release()
	return New(rec), nil
}

// readHeader returns the column names, or nil for empty input.
func readHeader(data []byte) ([]string, error) {
	hr := stdcsv.NewReader(bytes.NewReader(data))
	hr.Comma = Separator
	hr.FieldsPerRecord = -1
	names, err := hr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return names, err
}

// readCells reads every data row as nullable text, column by column.
func readCells(mem memory.Allocator, data []byte, schema *arrow.Schema) ([][]*string, error) {
	rdr := csv.NewReader(bytes.NewReader(data), schema,
		csv.WithAllocator(mem),
		csv.WithComma(Separator),
		csv.WithHeader(true),
		csv.WithChunk(1024),
		csv.WithNullReader(true, "", MissingToken),
	)
	defer rdr.Release()

	cells := make([][]*string, schema.NumFields())
	for rdr.Next() {
		rec := rdr.Record()
		for i := range cells {
			col, ok := rec.Column(i).(*array.String)
			if !ok {
				return nil, fmt.Errorf("column %d is %s, want utf8", i, rec.Column(i).DataType())
			}
			for j := 0; j < col.Len(); j++ {
				if col.IsNull(j) {
					cells[i] = append(cells[i], nil)
					continue
				}
				v := strings.Clone(col.Value(j))
				cells[i] = append(cells[i], &v)
			}
		}
	}
	if err := rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cells, nil
}

func inferType(values []*string) arrow.DataType {
	isInt, isFloat, isBool, seen := true, true, true, false
	for _, v := range values {
		if v == nil {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(*v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(*v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool && !strings.EqualFold(*v, "true") && !strings.EqualFold(*v, "false") {
			isBool = false
		}
	}
	switch {
	case !seen:
		return arrow.BinaryTypes.String
	case isInt:
		return arrow.PrimitiveTypes.Int64
	case isFloat:
		return arrow.PrimitiveTypes.Float64
	case isBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func buildColumn(mem memory.Allocator, dt arrow.DataType, values []*string) (arrow.Array, error) {
	b := array.NewBuilder(mem, dt)
	defer b.Release()

	for _, v := range values {
		if v == nil {
			b.AppendNull()
			continue
		}
		switch tb := b.(type) {
		case *array.Int64Builder:
			n, err := strconv.ParseInt(*v, 10, 64)
			if err != nil {
				return nil, err
			}
			tb.Append(n)
		case *array.Float64Builder:
			f, err := strconv.ParseFloat(*v, 64)
			if err != nil {
				return nil, err
			}
			tb.Append(f)
		case *array.BooleanBuilder:
			tb.Append(strings.EqualFold(*v, "true"))
		case *array.StringBuilder:
			tb.Append(*v)
		default:
			return nil, fmt.Errorf("unsupported column type %s", dt)
		}
	}
	return b.NewArray(), nil
}
