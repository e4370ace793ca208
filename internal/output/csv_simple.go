package output

import (
	"bytes"
	"encoding/csv"
)

// CSVSummarizer implements the simple CSV output (one row per deduction line).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string      { return "csv" }
func (c CSVSummarizer) Extension() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"EmployeeID", "Code", "Name", "Class", "Method", "EmployeeAmount", "EmployerAmount"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	res := report.Result
	for _, d := range res.Deductions {
		row := []string{
			res.EmployeeID,
			string(d.Code),
			d.Name,
			string(d.Class),
			string(d.Method),
			d.EmployeeAmount.StringFixed(2),
			d.EmployerAmount.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
