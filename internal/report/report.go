package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/rates"
	"github.com/cleared-dev/nisab/internal/session"
)

// Amount formats a value with thousands separators and two decimals.
func Amount(d decimal.Decimal, currency string) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String() + "." + frac
	if currency != "" {
		out += " " + currency
	}
	return out
}

func cell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// Items writes one row per entry. Category columns appear only when any
// entry carries one.
func Items(w io.Writer, entries []model.CategoryEntry, base string) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, subtleStyle.Render("No items."))
		return err
	}
	business := false
	for _, e := range entries {
		if e.Category != "" {
			business = true
			break
		}
	}

	header := cell("ID", 10) + cell("NAME", 28) + cell("AMOUNT", 20) + cell("IN "+base, 20) + cell("CLASSIFICATION", 22)
	if business {
		header += cell("CATEGORY", 24)
	}
	lines := []string{headerStyle.Render(header)}
	for _, e := range entries {
		class := e.Classification.Label()
		if !e.Resolved() {
			class = warningStyle.Render(class)
		}
		row := cell(e.ID.String()[:8], 10) +
			cell(truncate(e.Name, 26), 28) +
			cell(Amount(e.Amount, e.Currency), 20) +
			cell(Amount(e.ZakatableValue(), ""), 20) +
			cell(class, 22)
		if business {
			cat := string(e.Category)
			if e.IsIslamicFinancing {
				cat += " (islamic)"
			}
			row += cell(cat, 24)
		}
		lines = append(lines, row)
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Summary writes the classification breakdown and the amount due.
func Summary(w io.Writer, sum session.Summary) error {
	cur := sum.Currency
	rows := [][2]string{
		{"Zakatable assets", Amount(sum.Zakatable, cur)},
		{"Deductible liabilities", Amount(sum.Deductible, cur)},
		{"Exempt", Amount(sum.Exempt, cur)},
		{"Not deductible", Amount(sum.NotDeductible, cur)},
		{"Net zakatable wealth", Amount(sum.NetWealth, cur)},
		{"Nisab threshold", Amount(sum.Threshold, cur)},
		{"Rate", sum.Rate.Mul(decimal.NewFromInt(100)).String() + "% (" + string(sum.Calendar) + ")"},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Zakat calculation") + "\n")
	for _, r := range rows {
		b.WriteString(cell(r[0], 26) + r[1] + "\n")
	}

	switch {
	case !sum.MeetsNisab:
		b.WriteString(subtleStyle.Render("Net wealth is below the nisab; no zakat is due.") + "\n")
	case !sum.HawlComplete:
		b.WriteString(warningStyle.Render(fmt.Sprintf("Hawl not complete; %d days remaining.", sum.DaysUntilHawl)) + "\n")
	}
	b.WriteString(cell("Zakat due", 26) + dueStyle.Render(Amount(sum.Due, cur)))
	if sum.Unresolved > 0 {
		b.WriteString("\n" + warningStyle.Render(fmt.Sprintf("%d item(s) need clarification and are not counted.", sum.Unresolved)))
	}

	_, err := fmt.Fprintln(w, boxStyle.Render(b.String()))
	return err
}

// Records writes the calculation history, newest last.
func Records(w io.Writer, recs []model.CalculationRecord) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, subtleStyle.Render("No saved calculations."))
		return err
	}
	lines := []string{headerStyle.Render(cell("ID", 10) + cell("DATE", 12) + cell("ENTITY", 24) + cell("NET WEALTH", 22) + cell("DUE", 20) + cell("STATUS", 8))}
	for _, r := range recs {
		status := warningStyle.Render("unpaid")
		if r.Paid {
			status = "paid"
		}
		lines = append(lines, cell(r.ID.String()[:8], 10)+
			cell(r.Date.Format("2006-01-02"), 12)+
			cell(truncate(r.EntityName, 22), 24)+
			cell(Amount(r.NetWealth, r.Currency), 22)+
			cell(Amount(r.ZakatDue, r.Currency), 20)+
			cell(status, 8))
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// Quotes writes metal prices with their provenance.
func Quotes(w io.Writer, quotes []rates.Quote) error {
	for _, q := range quotes {
		line := fmt.Sprintf("%-7s %s/g  (%s", q.Metal, Amount(q.Price, q.Currency), q.Provenance)
		if q.SourceCount > 0 {
			line += fmt.Sprintf(", %d sources", q.SourceCount)
		}
		line += ")"
		if q.Provenance != model.ProvenanceLive {
			line = warningStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Advisories writes fallback notices, if any.
func Advisories(w io.Writer, advs []rates.Advisory) error {
	for _, a := range advs {
		if _, err := fmt.Fprintln(w, warningStyle.Render("warning: "+a.String())); err != nil {
			return err
		}
	}
	return nil
}
