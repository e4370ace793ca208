package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rpgo/statutory-calculator/internal/domain"
)

// Report wraps one calculation result with the context needed to render it.
type Report struct {
	RunID       string                    `json:"run_id,omitempty"`
	Country     string                    `json:"country,omitempty"`
	Currency    string                    `json:"currency,omitempty"`
	PeriodStart *time.Time                `json:"period_start,omitempty"`
	PeriodEnd   *time.Time                `json:"period_end,omitempty"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Result      *domain.CalculationResult `json:"result"`
}

// EmployeeID returns the result's employee id, if any.
func (r *Report) EmployeeID() string {
	if r == nil || r.Result == nil {
		return ""
	}
	return r.Result.EmployeeID
}

// GenerateReport renders report in the named format to w.
func GenerateReport(w io.Writer, report *Report, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format,
			strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	if report == nil || report.Result == nil {
		return fmt.Errorf("no calculation result to render")
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
