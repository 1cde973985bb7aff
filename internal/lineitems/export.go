package lineitems

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
)

const (
	numFields          = 13
	colID              = 0
	colName            = 1
	colAmount          = 2
	colCurrency        = 3
	colExchangeRate    = 4
	colConvertedAmount = 5
	colProvenance      = 6
	colClassification  = 7
	colAnswer          = 8
	colMarketValue     = 9
	colZakatableValue  = 10
	colCategory        = 11
	colIslamic         = 12
)

var header = []string{
	"id", "name", "amount", "currency", "exchange_rate", "converted_amount",
	"rate_provenance", "classification", "clarification_answer", "market_value", "zakatable_value",
	"category", "islamic_financing",
}

// RecordsDir holds exported record snapshots.
const RecordsDir = "records"

// MarshalEntry converts an entry to a snapshot CSV row.
func MarshalEntry(e model.CategoryEntry) []string {
	it := e.LineItem
	row := make([]string, numFields)
	row[colID] = it.ID.String()
	row[colName] = it.Name
	row[colAmount] = it.Amount.String()
	row[colCurrency] = it.Currency
	row[colExchangeRate] = it.ExchangeRate.String()
	row[colConvertedAmount] = it.ConvertedAmount.StringFixed(2)
	row[colProvenance] = string(it.RateProvenance)
	row[colClassification] = string(it.Classification)
	row[colAnswer] = string(it.ClarificationAnswer)
	if it.MarketValue != nil {
		row[colMarketValue] = it.MarketValue.String()
	}
	if it.Classification == model.Zakatable {
		row[colZakatableValue] = it.ZakatableValue().StringFixed(2)
	}
	row[colCategory] = string(e.Category)
	if e.Category != "" {
		row[colIslamic] = strconv.FormatBool(e.IsIslamicFinancing)
	}
	return row
}

// UnmarshalEntry converts a snapshot row back to an entry.
func UnmarshalEntry(rec []string) (model.CategoryEntry, error) {
	if len(rec) != numFields {
		return model.CategoryEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}
	id, err := uuid.Parse(rec[colID])
	if err != nil {
		return model.CategoryEntry{}, fmt.Errorf("parsing id %q: %w", rec[colID], err)
	}
	class, err := model.ParseClassification(rec[colClassification])
	if err != nil {
		return model.CategoryEntry{}, err
	}
	it := model.LineItem{
		ID:                  id,
		Name:                rec[colName],
		Currency:            rec[colCurrency],
		RateProvenance:      model.Provenance(rec[colProvenance]),
		Classification:      class,
		ClarificationAnswer: model.Answer(rec[colAnswer]),
	}
	for _, f := range []struct {
		col int
		dst *decimal.Decimal
	}{
		{colAmount, &it.Amount},
		{colExchangeRate, &it.ExchangeRate},
		{colConvertedAmount, &it.ConvertedAmount},
	} {
		if *f.dst, err = decimal.NewFromString(rec[f.col]); err != nil {
			return model.CategoryEntry{}, fmt.Errorf("parsing %s %q: %w", header[f.col], rec[f.col], err)
		}
	}
	if rec[colMarketValue] != "" {
		mv, err := decimal.NewFromString(rec[colMarketValue])
		if err != nil {
			return model.CategoryEntry{}, fmt.Errorf("parsing market_value %q: %w", rec[colMarketValue], err)
		}
		it.MarketValue = &mv
	}

	e := model.CategoryEntry{LineItem: it, Category: model.Category(rec[colCategory])}
	if e.Category != "" && !e.Category.Valid() {
		return model.CategoryEntry{}, fmt.Errorf("unknown category %q", rec[colCategory])
	}
	if rec[colIslamic] != "" {
		if e.IsIslamicFinancing, err = strconv.ParseBool(rec[colIslamic]); err != nil {
			return model.CategoryEntry{}, fmt.Errorf("parsing islamic_financing %q: %w", rec[colIslamic], err)
		}
	}
	return e, nil
}

// WriteEntries writes a snapshot CSV.
func WriteEntries(w io.Writer, entries []model.CategoryEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSnapshot reads a CSV written by WriteEntries.
func ReadSnapshot(r io.Reader) ([]model.CategoryEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading snapshot CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []model.CategoryEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ExportRecord writes rec's line items to records/<id>.csv under repoRoot and
// returns the path relative to repoRoot.
func ExportRecord(repoRoot string, rec model.CalculationRecord) (string, error) {
	rel := filepath.Join(RecordsDir, rec.ID.String()+".csv")
	path := filepath.Join(repoRoot, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating records dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", rel, err)
	}
	if err := WriteEntries(f, rec.LineItems); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", rel, err)
	}
	return rel, nil
}
