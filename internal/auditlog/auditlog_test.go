package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:   testTime,
		Actor:       "aisha",
		Action:      ActionRecordSaved,
		PortfolioID: "4a0c2f7e-0000-4000-8000-000000000001",
		Subject:     "b7f1",
		Details:     "zakat due 250.00 USD",
		CommitHash:  "abc1234",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "audit-log.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header+"\n"))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testEntry(), entries[0])
}

func TestAppend_ExistingFileKeepsOneHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	e2 := testEntry()
	e2.Action = ActionRecordPaid
	e2.PortfolioID = "other"
	require.NoError(t, Append(dir, e2))

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionRecordPaid, entries[1].Action)

	mine, err := ReadPortfolio(dir, testEntry().PortfolioID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMarshalEntry_QuotesDetails(t *testing.T) {
	e := testEntry()
	e.Details = `renamed "Cash, home" to Cash`
	dir := t.TempDir()
	require.NoError(t, Append(dir, e))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, e.Details, entries[0].Details)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"x"})
	assert.ErrorContains(t, err, "expected 7 fields")

	row := MarshalEntry(testEntry())
	row[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing timestamp")
}
