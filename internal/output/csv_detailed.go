package output

import (
	"bytes"
	"encoding/csv"
)

// CSVDetailedExporter writes every deduction, relief and total as a
// Kind/Code/Field/Value row so the file can be diffed between runs.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string      { return "detailed-csv" }
func (c CSVDetailedExporter) Extension() string { return "csv" }

func (c CSVDetailedExporter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	res := report.Result
	rows := [][]string{{"RunID", "EmployeeID", "Kind", "Code", "Field", "Value"}}
	add := func(kind, code, field, value string) {
		rows = append(rows, []string{report.RunID, res.EmployeeID, kind, code, field, value})
	}

	for _, d := range res.Deductions {
		add("deduction", string(d.Code), "employee_amount", d.EmployeeAmount.StringFixed(2))
		add("deduction", string(d.Code), "employer_amount", d.EmployerAmount.StringFixed(2))
	}
	for _, r := range res.Reliefs {
		add("relief", string(r.Code), "amount", r.Amount.StringFixed(2))
		add("relief", string(r.Code), "reduces_taxable_income", boolToString(r.ReducesTaxableIncome))
		add("relief", string(r.Code), "is_tax_credit", boolToString(r.IsTaxCredit))
	}
	if it := res.IncomeTax; it != nil {
		code := string(it.Code)
		add("income_tax", code, "taxable_income", it.TaxableIncome.StringFixed(2))
		add("income_tax", code, "total_tax_due", it.TotalTaxDue.StringFixed(2))
		add("income_tax", code, "previous_ytd_tax", it.PreviousYTDTax.StringFixed(2))
		add("income_tax", code, "period_tax", it.PeriodTax.StringFixed(2))
		add("income_tax", code, "clamped", boolToString(it.Clamped))
	}
	add("total", "", "employee_deductions", res.TotalEmployeeDeductions.StringFixed(2))
	add("total", "", "employer_contributions", res.TotalEmployerContributions.StringFixed(2))
	add("total", "", "taxable_income_reduction", res.TotalTaxableIncomeReduction.StringFixed(2))
	add("total", "", "tax_credits", res.TotalTaxCredits.StringFixed(2))
	add("total", "", "adjusted_taxable_income", res.AdjustedTaxableIncome.StringFixed(2))

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
