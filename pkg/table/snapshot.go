package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Snapshots are plain CSV: an "id" column followed by the table's columns in
// order. Null cells serialize as the empty string, and an empty field reads
// back as null, so a write-read-write cycle is byte-identical.

// Write serializes the table as CSV.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	header := append([]string{"id"}, t.order...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for _, id := range t.ids {
		record[0] = strconv.FormatInt(id, 10)
		for i, name := range t.order {
			record[i+1] = t.Cell(id, name).Value()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", id, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to a CSV snapshot file.
func WriteFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := Write(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read parses a CSV snapshot back into a table.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || header[0] != "id" {
		return nil, fmt.Errorf("snapshot header must start with id, got %v", header)
	}
	columns := header[1:]

	var ids []int64
	cells := make([]map[int64]Cell, len(columns))
	for i := range cells {
		cells[i] = make(map[int64]Cell)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("row has %d fields, want %d", len(record), len(header))
		}
		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse row id %q: %w", record[0], err)
		}
		ids = append(ids, id)
		for i, value := range record[1:] {
			if value == "" {
				continue
			}
			cells[i][id] = String(value)
		}
	}

	t := New(ids)
	for i, name := range columns {
		t.SetColumn(name, cells[i])
	}
	return t, nil
}

// ReadFile reads a CSV snapshot file into a table.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return Read(f)
}
