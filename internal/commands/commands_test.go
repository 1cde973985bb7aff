package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "nisab-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "nisab")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/nisab")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runNisab(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "NISAB_LOG_LEVEL=error", "NISAB_RATES_API_KEY=")
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// newWorkspace initializes a personal workspace without git.
func newWorkspace(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	args := append([]string{"init", dir, "--name", "Aisha", "--no-git"}, extra...)
	out, err := runNisab(t, "", args...)
	require.NoError(t, err, out)
	return dir
}

func in(t *testing.T, dir string, stdin string, args ...string) string {
	t.Helper()
	out, err := runNisab(t, stdin, append(args, "--repo", dir)...)
	require.NoError(t, err, out)
	return out
}

var recordIDPattern = regexp.MustCompile(`Saved record ([0-9a-f-]{36})`)

func TestInit_CreatesStructure(t *testing.T) {
	dir := newWorkspace(t)

	for _, d := range []string{"data", "records", "logs", "import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	data, err := os.ReadFile(filepath.Join(dir, "nisab.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Aisha")
	assert.Contains(t, string(data), "base_currency: USD")
	assert.Contains(t, string(data), "type: personal")

	_, err = os.Stat(filepath.Join(dir, "data", "nisab.db"))
	require.NoError(t, err, "sqlite store should exist")

	audit, err := os.ReadFile(filepath.Join(dir, "logs", "audit-log.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(audit), "portfolio_created")
}

func TestInit_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := runNisab(t, "", "init", dir)
	require.Error(t, err, "init without --name should fail")

	_, err = runNisab(t, "", "init", dir, "--name", "Aisha", "--company", "Acme", "--no-git")
	require.Error(t, err, "personal portfolios have no company name")

	_, err = runNisab(t, "", "init", dir, "--name", "Aisha", "--base", "ZZZ", "--no-git")
	require.Error(t, err)

	dir = newWorkspace(t)
	_, err = runNisab(t, "", "init", dir, "--name", "Again", "--no-git")
	require.Error(t, err, "init twice should fail")
}

func TestInit_GitRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	out, err := runNisab(t, "", "init", dir, "--name", "Aisha")
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	gitOut, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(gitOut), "init: Initialize Aisha")
	assert.Contains(t, string(gitOut), "Nisab <nisab@localhost>")
}

func TestCommands_RequireWorkspace(t *testing.T) {
	out, err := runNisab(t, "", "calc", "--repo", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "nisab init")
}

func TestCalcAndSave(t *testing.T) {
	dir := newWorkspace(t)

	out := in(t, dir, "", "item", "add", "Cash on Hand", "15000")
	assert.Contains(t, out, "Zakatable")
	out = in(t, dir, "", "item", "add", "Bills Due", "5,000")
	assert.Contains(t, out, "Deductible")

	out = in(t, dir, "", "calc")
	assert.Contains(t, out, "15,000.00 USD")
	assert.Contains(t, out, "7,522.50 USD", "gold nisab at the static price")
	assert.Contains(t, out, "250.00 USD")

	out = in(t, dir, "", "calc", "--json")
	assert.Contains(t, out, `"zakat_due": "250"`)

	out = in(t, dir, "", "save")
	m := recordIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	recordID := m[1]

	_, err := os.Stat(filepath.Join(dir, "records", recordID+".csv"))
	require.NoError(t, err, "record snapshot should be exported")

	out = in(t, dir, "", "item", "list")
	assert.Contains(t, out, "No items.", "saving starts a fresh calculation")

	out = in(t, dir, "", "history")
	assert.Contains(t, out, recordID[:8])
	assert.Contains(t, out, "unpaid")

	out = in(t, dir, "", "paid", recordID[:8])
	assert.Contains(t, out, "marked paid")
	out = in(t, dir, "", "paid", recordID[:8], "--unpaid")
	assert.Contains(t, out, "marked unpaid")

	out = in(t, dir, "", "record", "show", recordID)
	assert.Contains(t, out, "Cash on Hand")

	in(t, dir, "", "record", "delete", recordID)
	out = in(t, dir, "", "history")
	assert.Contains(t, out, "No saved calculations.")

	audit, err := os.ReadFile(filepath.Join(dir, "logs", "audit-log.csv"))
	require.NoError(t, err)
	for _, action := range []string{"record_saved", "record_paid", "record_unpaid", "record_deleted"} {
		assert.Contains(t, string(audit), action)
	}
}

func TestClarify(t *testing.T) {
	dir := newWorkspace(t)
	in(t, dir, "", "item", "add", "Cash on Hand", "10000")
	out := in(t, dir, "", "item", "add", "Crypto wallet", "9000")
	assert.Contains(t, out, "Needs clarification")

	out, err := runNisab(t, "", "save", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "need clarification")

	out = in(t, dir, "2\n", "clarify")
	assert.Contains(t, out, "[1/1] Crypto wallet")
	assert.Contains(t, out, "All questions answered. 0 item(s) still unresolved.")

	out = in(t, dir, "", "calc")
	assert.Contains(t, out, "19,000.00 USD")

	out = in(t, dir, "", "clarify", "--item", "Crypto wallet", "--answer", "acknowledge_exempt")
	assert.Contains(t, out, "Exempt")

	out = in(t, dir, "", "save")
	assert.Contains(t, out, "Saved record")
}

func TestClarify_InvalidAnswer(t *testing.T) {
	dir := newWorkspace(t)
	in(t, dir, "", "item", "add", "Crypto wallet", "9000")

	out, err := runNisab(t, "", "clarify", "--item", "Crypto wallet", "--answer", "trading", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "answer does not fit the question")
}

func TestItemEditRemoveReset(t *testing.T) {
	dir := newWorkspace(t)
	in(t, dir, "", "item", "add", "Cash on Hand", "100")

	out := in(t, dir, "", "item", "edit", "Cash on Hand", "--amount", "250")
	assert.Contains(t, out, "250.00 USD")

	out = in(t, dir, "", "item", "edit", "Cash on Hand", "--name", "Personal Vehicle")
	assert.Contains(t, out, "Exempt")

	in(t, dir, "", "item", "remove", "Personal Vehicle")
	out = in(t, dir, "", "item", "list")
	assert.Contains(t, out, "No items.")

	out = in(t, dir, "", "item", "template")
	assert.Contains(t, out, "template item(s)")
	out = in(t, dir, "", "item", "reset")
	assert.Contains(t, out, "Discarded")
	out = in(t, dir, "", "item", "list")
	assert.Contains(t, out, "No items.")

	_, err := runNisab(t, "", "item", "add", "Cash", "-5", "--repo", dir)
	require.Error(t, err)
	_, err = runNisab(t, "", "item", "add", "Cash", "5", "--currency", "ZZZ", "--repo", dir)
	require.Error(t, err)
}

func TestBaseCurrency(t *testing.T) {
	dir := newWorkspace(t)
	in(t, dir, "", "item", "add", "Cash on Hand", "100", "--currency", "EUR")

	out := in(t, dir, "", "base", "EUR")
	assert.Contains(t, out, "Base currency: USD -> EUR")
	assert.Contains(t, out, "100.00 EUR")

	out = in(t, dir, "", "calc")
	assert.Contains(t, out, "EUR")

	_, err := runNisab(t, "", "base", "ZZZ", "--repo", dir)
	require.Error(t, err)
}

func TestBusinessPortfolio(t *testing.T) {
	dir := newWorkspace(t, "--type", "business", "--company", "Acme LLC")

	_, err := runNisab(t, "", "item", "add", "Inventory", "1000", "--repo", dir)
	require.Error(t, err, "business items need a category")

	out := in(t, dir, "", "item", "add", "Inventory", "20000", "--category", "current_assets")
	assert.Contains(t, out, "Zakatable")

	out = in(t, dir, "", "item", "add", "Bank Loan", "5000", "--category", "long_term_liabilities")
	assert.Contains(t, out, "Not deductible")

	out, err = runNisab(t, "", "clarify", "--item", "Bank Loan", "--answer", "islamic_financing", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "never deductible")

	out = in(t, dir, "", "item", "edit", "Bank Loan", "--islamic")
	assert.Contains(t, out, "Deductible")

	out = in(t, dir, "", "save")
	assert.Contains(t, out, "Acme LLC")
	assert.Contains(t, out, "375.00 USD")
}

func TestPortfoliosAndCompanies(t *testing.T) {
	dir := newWorkspace(t)

	out := in(t, dir, "", "company", "add", "Corner Shop")
	assert.Contains(t, out, "Added company Corner Shop")
	out = in(t, dir, "", "company", "list")
	assert.Contains(t, out, "Corner Shop")

	in(t, dir, "", "item", "add", "Cash on Hand", "10000")
	out = in(t, dir, "", "save", "--company", "Corner Shop")
	assert.Contains(t, out, "for Corner Shop")

	in(t, dir, "", "company", "remove", "Corner Shop")
	out = in(t, dir, "", "company", "list")
	assert.Contains(t, out, "No companies.")

	out = in(t, dir, "", "portfolio", "create", "Trading", "--type", "business", "--company", "Trading Co")
	assert.Contains(t, out, "Created portfolio Trading Co")

	out = in(t, dir, "", "portfolio", "list")
	assert.Contains(t, out, "* ")
	assert.Contains(t, out, "Aisha")
	assert.Contains(t, out, "Trading Co")

	out = in(t, dir, "", "portfolio", "use", "Trading")
	assert.Contains(t, out, "Active portfolio: Trading Co")

	_, err := runNisab(t, "", "company", "add", "Nope", "--repo", dir)
	require.Error(t, err, "business portfolios have no companies")
}

func TestImport(t *testing.T) {
	dir := newWorkspace(t)
	csv := "name,amount,currency,market_value\n" +
		"Cash on Hand,1000,USD,\n" +
		"Trading Stocks,500,USD,650\n" +
		"Mystery,10,USD,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "assets.csv"), []byte(csv), 0o644))

	out := in(t, dir, "", "import")
	assert.Contains(t, out, "assets.csv: 3 item(s)")
	assert.Contains(t, out, "1 need clarification")

	_, err := os.Stat(filepath.Join(dir, "import", "processed", "assets.csv"))
	require.NoError(t, err, "file should be moved to processed")

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("name,amount,currency\nCash,abc,USD\n"), 0o644))
	_, err = runNisab(t, "", "import", bad, "--repo", dir)
	require.Error(t, err)

	out = in(t, dir, "", "item", "list")
	assert.Contains(t, out, "Trading Stocks")
	assert.NotContains(t, out, "abc")
}

func TestHawl(t *testing.T) {
	dir := newWorkspace(t)

	out := in(t, dir, "", "hawl")
	assert.Contains(t, out, "No hawl start set")

	out = in(t, dir, "", "hawl", "--start", "2020-01-01")
	assert.Contains(t, out, "days until the next anniversary")
	assert.Contains(t, out, "first hawl complete")

	data, err := os.ReadFile(filepath.Join(dir, "nisab.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "2020-01-01")

	_, err = runNisab(t, "", "hawl", "--start", "2999-01-01", "--repo", dir)
	require.Error(t, err)

	in(t, dir, "", "hawl", "--clear")
	out = in(t, dir, "", "hawl")
	assert.Contains(t, out, "No hawl start set")
}

func TestPrice(t *testing.T) {
	dir := newWorkspace(t)

	out := in(t, dir, "", "price", "--metal", "gold")
	assert.Contains(t, out, "88.50 USD/g")
	assert.Contains(t, out, "7,522.50 USD")

	out = in(t, dir, "", "price")
	assert.Contains(t, out, "1.05 USD/g")
	assert.Contains(t, out, "624.75 USD")

	_, err := runNisab(t, "", "price", "--metal", "platinum", "--repo", dir)
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runNisab(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "nisab version dev")
}
