// Package csvmerge joins CSV files that share a key column.
package csvmerge

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrMissingKey is returned when a source has no column named after the key.
	ErrMissingKey = errors.New("key column not found")
	// ErrDuplicateKey is returned when one source repeats a key value.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Source is one named CSV input with a header row.
type Source struct {
	Name   string
	Reader io.Reader
}

// Table is a merged CSV document: one key column followed by every non-key
// column of each source in source order.
type Table struct {
	Header []string
	Rows   [][]string
}

// Merge performs a full outer join of sources on key. Rows are sorted by key;
// cells absent from a source are left empty. Column names that appear in more
// than one source are prefixed with the source name.
func Merge(key string, sources ...Source) (*Table, error) {
	type parsed struct {
		name    string
		columns []string
		rows    map[string][]string
	}

	inputs := make([]parsed, 0, len(sources))
	seen := make(map[string]int)
	keys := make(map[string]struct{})

	for _, src := range sources {
		r := csv.NewReader(src.Reader)
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Name, err)
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("%s: %w: empty file", src.Name, ErrMissingKey)
		}

		header := records[0]
		keyIdx := -1
		for i, col := range header {
			if strings.TrimSpace(col) == key {
				keyIdx = i
				break
			}
		}
		if keyIdx < 0 {
			return nil, fmt.Errorf("%s: %w: %q", src.Name, ErrMissingKey, key)
		}

		p := parsed{name: src.Name, rows: make(map[string][]string, len(records)-1)}
		for i, col := range header {
			if i == keyIdx {
				continue
			}
			col = strings.TrimSpace(col)
			p.columns = append(p.columns, col)
			seen[col]++
		}
		for line, rec := range records[1:] {
			if keyIdx >= len(rec) {
				return nil, fmt.Errorf("%s line %d: %w: %q", src.Name, line+2, ErrMissingKey, key)
			}
			k := rec[keyIdx]
			if _, dup := p.rows[k]; dup {
				return nil, fmt.Errorf("%s: %w: %q", src.Name, ErrDuplicateKey, k)
			}
			values := make([]string, len(p.columns))
			j := 0
			for i, cell := range rec {
				if i == keyIdx {
					continue
				}
				if j < len(values) {
					values[j] = cell
				}
				j++
			}
			p.rows[k] = values
			keys[k] = struct{}{}
		}
		inputs = append(inputs, p)
	}

	out := &Table{Header: []string{key}}
	for _, p := range inputs {
		for _, col := range p.columns {
			if seen[col] > 1 {
				col = p.name + "." + col
			}
			out.Header = append(out.Header, col)
		}
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, k := range sorted {
		row := make([]string, 0, len(out.Header))
		row = append(row, k)
		for _, p := range inputs {
			if values, ok := p.rows[k]; ok {
				row = append(row, values...)
			} else {
				row = append(row, make([]string, len(p.columns))...)
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Write emits the table as CSV.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// MergeFiles merges the CSV files at paths on key and writes the result to w.
// Each source is named after its file's base name without extension.
func MergeFiles(w io.Writer, key string, paths ...string) error {
	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		sources = append(sources, Source{Name: name, Reader: f})
	}

	table, err := Merge(key, sources...)
	if err != nil {
		return err
	}
	return table.Write(w)
}
