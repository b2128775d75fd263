package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/schoolfinder/internal/config"
	"github.com/hyperjump/schoolfinder/internal/storage"
)

// table is a raw tabular source: a header and its rows of cells.
type table struct {
	header []string
	rows   [][]string
}

// records zips every row with the header. Short rows are padded with "".
func (t *table) records() []map[string]string {
	out := make([]map[string]string, 0, len(t.rows))
	for _, row := range t.rows {
		rec := make(map[string]string, len(t.header))
		for i, col := range t.header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

// readTable reads the source named by cfg.Path, choosing a reader by extension.
func readTable(ctx context.Context, cfg config.DataConfig) (*table, error) {
	switch strings.ToLower(filepath.Ext(cfg.Path)) {
	case ".csv", ".txt":
		return readCSV(cfg.Path)
	case ".xlsx":
		return readXLSX(cfg.Path, cfg.Sheet)
	case ".db", ".sqlite", ".sqlite3":
		header, rows, err := storage.ReadTable(ctx, cfg.Path, cfg.Table)
		if err != nil {
			return nil, err
		}
		return &table{header: header, rows: rows}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, cfg.Path)
	}
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return &table{header: header, rows: rows}, nil
}

func readXLSX(path, sheet string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoData
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return &table{header: rows[0], rows: rows[1:]}, nil
}
