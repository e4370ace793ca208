package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

func buildTestReport() *Report {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	ytdIncome, ytdTax := decimal.NewFromInt(7000), decimal.NewFromInt(400)
	return &Report{
		RunID:       "run-1",
		Country:     "NG",
		Currency:    "NGN",
		PeriodStart: &start,
		PeriodEnd:   &end,
		GeneratedAt: time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC),
		Result: &domain.CalculationResult{
			EmployeeID: "E-1001",
			Deductions: []domain.CalculatedStatutory{
				{Code: "PENSION", Name: "Pension", Class: domain.ClassPension, Method: domain.MethodPercentage, EmployeeAmount: decimal.NewFromInt(160), EmployerAmount: decimal.NewFromInt(200)},
				{Code: "PAYE", Name: "Pay As You Earn", Class: domain.ClassIncomeTax, EmployeeAmount: decimal.NewFromInt(200), YTDTaxableIncome: &ytdIncome, YTDTaxPaid: &ytdTax},
			},
			TotalEmployeeDeductions:    decimal.NewFromInt(360),
			TotalEmployerContributions: decimal.NewFromInt(200),
			Reliefs: []domain.CalculatedRelief{
				{Code: "PENSION", Name: "Pension relief", Source: domain.SourceStatutory, ReliefType: domain.ReliefDeduction, Amount: decimal.NewFromInt(160), ReducesTaxableIncome: true},
			},
			TotalTaxableIncomeReduction: decimal.NewFromInt(160),
			TotalTaxCredits:             decimal.Zero,
			AdjustedTaxableIncome:       decimal.NewFromInt(1840),
			IncomeTax: &domain.IncomeTaxOutcome{
				Code:        "PAYE",
				Method:      domain.TaxCumulative,
				TotalTaxDue: decimal.NewFromInt(400),
				PeriodTax:   decimal.NewFromInt(200),
			},
		},
	}
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	for _, want := range []string{"STATUTORY DEDUCTIONS", "E-1001", "NGN 160.00", "NGN 360.00", "TAX RELIEFS", "Income tax (PAYE, cumulative)"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in console output, got: %s", want, content)
		}
	}
	if strings.Index(content, "PENSION") > strings.Index(content, "PAYE ") {
		t.Fatalf("expected deductions in result order")
	}
}

func TestConsoleFormatterMarksClampedTax(t *testing.T) {
	r := buildTestReport()
	r.Result.IncomeTax.PeriodTax = decimal.Zero
	r.Result.IncomeTax.Clamped = true
	out, err := ConsoleFormatter{}.Format(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "withheld as zero") {
		t.Fatalf("expected clamp marker, got: %s", out)
	}
}

func TestCSVSummarizer(t *testing.T) {
	out, err := CSVSummarizer{}.Format(buildTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (header+2 rows), got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "E-1001,PENSION,Pension,pension,percentage,160.00,200.00") {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
}

func TestCSVDetailedExporter(t *testing.T) {
	out, err := CSVDetailedExporter{}.Format(buildTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	for _, want := range []string{
		"run-1,E-1001,deduction,PAYE,employee_amount,200.00",
		"run-1,E-1001,relief,PENSION,reduces_taxable_income,true",
		"run-1,E-1001,income_tax,PAYE,clamped,false",
		"run-1,E-1001,total,,adjusted_taxable_income,1840.00",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected row %q, got: %s", want, content)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded struct {
		RunID  string `json:"run_id"`
		Result struct {
			EmployeeID string `json:"employee_id"`
			Deductions []struct {
				Code           string `json:"code"`
				EmployeeAmount string `json:"employee_amount"`
			} `json:"deductions"`
			IncomeTax struct {
				PeriodTax string `json:"period_tax"`
			} `json:"income_tax"`
		} `json:"result"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.RunID != "run-1" || decoded.Result.EmployeeID != "E-1001" {
		t.Fatalf("unexpected envelope: %+v", decoded)
	}
	if len(decoded.Result.Deductions) != 2 || decoded.Result.Deductions[1].Code != "PAYE" {
		t.Fatalf("unexpected deductions: %+v", decoded.Result.Deductions)
	}
	if decoded.Result.IncomeTax.PeriodTax != "200" {
		t.Fatalf("unexpected period tax %q", decoded.Result.IncomeTax.PeriodTax)
	}
}

func TestGetFormatterByName(t *testing.T) {
	tests := map[string]string{
		"console":      "console",
		" TEXT ":       "console",
		"csv-summary":  "csv",
		"csv-detailed": "detailed-csv",
		"json-pretty":  "json",
	}
	for in, want := range tests {
		f := GetFormatterByName(in)
		if f == nil || f.Name() != want {
			t.Fatalf("GetFormatterByName(%q) = %v, want %s", in, f, want)
		}
	}
	if GetFormatterByName("html") != nil {
		t.Fatalf("expected no html formatter")
	}
}

func TestAvailableFormatterNames(t *testing.T) {
	got := strings.Join(AvailableFormatterNames(), ",")
	if got != "console,csv,detailed-csv,json" {
		t.Fatalf("unexpected names %s", got)
	}
	if len(AvailableFormatAliases()) != len(formatAliases) {
		t.Fatalf("alias count mismatch")
	}
}

func TestGenerateReport(t *testing.T) {
	var buf bytes.Buffer
	if err := GenerateReport(&buf, buildTestReport(), "csv"); err != nil {
		t.Fatalf("GenerateReport csv error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "EmployeeID,Code") {
		t.Fatalf("unexpected csv output: %s", buf.String())
	}

	err := GenerateReport(&buf, buildTestReport(), "pdf")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), "console, csv, detailed-csv, json") {
		t.Fatalf("expected available formats in error, got %v", err)
	}

	if err := GenerateReport(&buf, &Report{}, "json"); err == nil {
		t.Fatalf("expected error for empty report")
	}
}

func TestWriteFormatted(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFormatted(JSONFormatter{}, buildTestReport(), dir)
	if err != nil {
		t.Fatalf("WriteFormatted error: %v", err)
	}
	if filepath.Base(path) != "statutory_E-1001_20250401_093000.json" {
		t.Fatalf("unexpected file name %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not written: %v", err)
	}
}

func TestSafeFileToken(t *testing.T) {
	if got := safeFileToken("a/b c"); got != "a_b_c" {
		t.Fatalf("safeFileToken = %q", got)
	}
	if got := safeFileToken(""); got != "employee" {
		t.Fatalf("safeFileToken(empty) = %q", got)
	}
}
