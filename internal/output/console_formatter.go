package output

import (
	"bytes"
	"fmt"
)

// ConsoleFormatter renders a plain-text breakdown of one calculation.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console" }
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	res := report.Result
	cur := report.Currency
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "STATUTORY DEDUCTIONS")
	fmt.Fprintln(&buf, "================================")
	if res.EmployeeID != "" {
		fmt.Fprintf(&buf, "Employee: %s\n", res.EmployeeID)
	}
	if report.PeriodStart != nil && report.PeriodEnd != nil {
		fmt.Fprintf(&buf, "Period:   %s to %s\n", report.PeriodStart.Format("2006-01-02"), report.PeriodEnd.Format("2006-01-02"))
	}
	if report.RunID != "" {
		fmt.Fprintf(&buf, "Run:      %s\n", report.RunID)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "%-12s %-32s %18s %18s\n", "Code", "Name", "Employee", "Employer")
	for _, d := range res.Deductions {
		fmt.Fprintf(&buf, "%-12s %-32s %18s %18s\n", d.Code, d.Name,
			FormatCurrency(d.EmployeeAmount, cur), FormatCurrency(d.EmployerAmount, cur))
	}
	fmt.Fprintf(&buf, "%-12s %-32s %18s %18s\n", "", "Total",
		FormatCurrency(res.TotalEmployeeDeductions, cur), FormatCurrency(res.TotalEmployerContributions, cur))

	if len(res.Reliefs) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "TAX RELIEFS")
		fmt.Fprintln(&buf, "--------------------------------")
		for _, r := range res.Reliefs {
			fmt.Fprintf(&buf, "%-24s %-12s %18s\n", r.Code, r.ReliefType, FormatCurrency(r.Amount, cur))
		}
		fmt.Fprintf(&buf, "Taxable income reduction: %s\n", FormatCurrency(res.TotalTaxableIncomeReduction, cur))
		fmt.Fprintf(&buf, "Tax credits:              %s\n", FormatCurrency(res.TotalTaxCredits, cur))
	}

	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Adjusted taxable income: %s\n", FormatCurrency(res.AdjustedTaxableIncome, cur))
	if it := res.IncomeTax; it != nil {
		fmt.Fprintf(&buf, "Income tax (%s, %s)\n", it.Code, it.Method)
		fmt.Fprintf(&buf, "  Total tax due:   %s\n", FormatCurrency(it.TotalTaxDue, cur))
		fmt.Fprintf(&buf, "  Previously paid: %s\n", FormatCurrency(it.PreviousYTDTax.Add(it.PeriodTaxAlreadyPaid), cur))
		fmt.Fprintf(&buf, "  This period:     %s", FormatCurrency(it.PeriodTax, cur))
		switch {
		case it.Refund:
			fmt.Fprint(&buf, " (refund)")
		case it.Clamped:
			fmt.Fprint(&buf, " (negative amount withheld as zero)")
		}
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "  YTD taxable:     %s\n", FormatCurrency(it.YTDTaxableIncome, cur))
		fmt.Fprintf(&buf, "  YTD tax paid:    %s\n", FormatCurrency(it.YTDTaxPaid, cur))
	}
	return buf.Bytes(), nil
}
