// Package auditlog appends user actions to logs/audit-log.csv.
package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Action names a logged change.
type Action string

const (
	ActionPortfolioCreated Action = "portfolio_created"
	ActionRecordSaved      Action = "record_saved"
	ActionRecordPaid       Action = "record_paid"
	ActionRecordUnpaid     Action = "record_unpaid"
	ActionRecordDeleted    Action = "record_deleted"
	ActionRenormalized     Action = "base_renormalized"
	ActionItemsImported    Action = "items_imported"
	ActionCompanyAdded     Action = "company_added"
	ActionCompanyRemoved   Action = "company_removed"
	ActionSessionReset     Action = "session_reset"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp   time.Time
	Actor       string
	Action      Action
	PortfolioID string
	Subject     string // record, company or file the action touched
	Details     string
	CommitHash  string
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,actor,action,portfolio_id,subject,details,commit_hash"

const (
	numFields      = 7
	logDir         = "logs"
	logFile        = "logs/audit-log.csv"
	colTimestamp   = 0
	colActor       = 1
	colAction      = 2
	colPortfolioID = 3
	colSubject     = 4
	colDetails     = 5
	colCommitHash  = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = string(e.Action)
	row[colPortfolioID] = e.PortfolioID
	row[colSubject] = e.Subject
	row[colDetails] = e.Details
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	return Entry{
		Timestamp:   ts,
		Actor:       record[colActor],
		Action:      Action(record[colAction]),
		PortfolioID: record[colPortfolioID],
		Subject:     record[colSubject],
		Details:     record[colDetails],
		CommitHash:  record[colCommitHash],
	}, nil
}

// Path returns the log location under repoRoot.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, logFile)
}

// Append writes entries to the log, creating the file and header if needed.
func Append(repoRoot string, entries ...Entry) error {
	if err := os.MkdirAll(filepath.Join(repoRoot, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(repoRoot)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry, oldest first. A missing log reads as empty.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(Path(repoRoot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

// ReadPortfolio returns the entries of one portfolio.
func ReadPortfolio(repoRoot, portfolioID string) ([]Entry, error) {
	all, err := Read(repoRoot)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if e.PortfolioID == portfolioID {
			out = append(out, e)
		}
	}
	return out, nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
