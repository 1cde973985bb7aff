// Package lineitems reads line items from CSV and writes record snapshots.
package lineitems

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
)

// Import columns. Only name, amount and currency are required.
const (
	ColName             = "name"
	ColAmount           = "amount"
	ColCurrency         = "currency"
	ColMarketValue      = "market_value"
	ColCategory         = "category"
	ColIslamicFinancing = "islamic_financing"
)

// Row is one imported line item before validation.
type Row struct {
	Line             int
	Name             string
	Amount           decimal.Decimal
	Currency         string
	MarketValue      *decimal.Decimal
	Category         model.Category
	IslamicFinancing bool
}

// ReadItems parses an import CSV. Columns are matched by header name, in any
// order; unknown columns are ignored.
func ReadItems(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading items CSV: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range head {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{ColName, ColAmount, ColCurrency} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("reading items CSV: missing %q column", req)
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading items CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		row, err := unmarshalRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func unmarshalRow(rec []string, cols map[string]int) (Row, error) {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	amount, err := decimal.NewFromString(get(ColAmount))
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", get(ColAmount), err)
	}
	row := Row{
		Name:     get(ColName),
		Amount:   amount,
		Currency: get(ColCurrency),
		Category: model.Category(get(ColCategory)),
	}
	if s := get(ColMarketValue); s != "" {
		mv, err := decimal.NewFromString(s)
		if err != nil {
			return Row{}, fmt.Errorf("parsing market_value %q: %w", s, err)
		}
		row.MarketValue = &mv
	}
	if s := get(ColIslamicFinancing); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Row{}, fmt.Errorf("parsing islamic_financing %q: %w", s, err)
		}
		row.IslamicFinancing = b
	}
	return row, nil
}

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

const (
	importDir    = "import"
	processedDir = "import/processed"
)

// Scan returns the CSV files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if err := os.Rename(src, filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
