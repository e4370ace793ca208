// Package ytd derives the year-to-date and same-period amounts the
// calculation engine consumes from previously posted payroll lines.
package ytd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/rpgo/statutory-calculator/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// ErrInvalidLine is returned for a posted line that names neither or both of a
// statutory code and a relief code.
var ErrInvalidLine = errors.New("invalid posted line")

// Key identifies one employee's pay period within a tax year.
type Key struct {
	EmployeeID  string
	TaxYear     int
	PeriodStart time.Time
}

// Snapshot is the history an engine call needs, as of the start of a pay period.
type Snapshot struct {
	OpeningBalances  *domain.OpeningBalances
	YTD              domain.StatutoryAmounts
	Period           domain.StatutoryAmounts
	YTDTaxableIncome decimal.Decimal
	// PeriodTaxableIncome sums taxable income on same-period income-tax lines.
	PeriodTaxableIncome decimal.Decimal
	Claimed             domain.ClaimedReliefs
	// PeriodClaimed is the same-period part of Claimed.
	PeriodClaimed domain.ClaimedReliefs
}

// ApplyTo copies the snapshot into in. A relief context is copied before its
// claimed balances are replaced so a shared context is left untouched.
func (s Snapshot) ApplyTo(in *domain.CalculationInput) {
	in.OpeningBalances = s.OpeningBalances
	in.YTD = s.YTD
	in.Period = s.Period
	in.YTDTaxableIncome = s.YTDTaxableIncome
	in.PeriodTaxableIncome = s.PeriodTaxableIncome
	if in.Relief != nil {
		rc := *in.Relief
		rc.Claimed = s.Claimed
		rc.PeriodClaimed = s.PeriodClaimed
		in.Relief = &rc
	}
}

// Provider supplies history snapshots. Implementations backed by storage may block.
type Provider interface {
	Snapshot(ctx context.Context, key Key) (Snapshot, error)
}

// HistoryProvider is an in-memory Provider built from posted lines. It is safe
// for concurrent use; callers still serialize read-calculate-post per employee.
type HistoryProvider struct {
	incomeTax domain.StatutoryCode

	mu      sync.RWMutex
	lines   map[string][]domain.PostedLine
	opening map[string]map[int]domain.OpeningBalances
}

// NewHistoryProvider creates a provider. incomeTax is the code whose lines
// carry taxable income.
func NewHistoryProvider(incomeTax domain.StatutoryCode) *HistoryProvider {
	return &HistoryProvider{
		incomeTax: incomeTax,
		lines:     make(map[string][]domain.PostedLine),
		opening:   make(map[string]map[int]domain.OpeningBalances),
	}
}

// Record appends posted lines for an employee.
func (h *HistoryProvider) Record(employeeID string, lines ...domain.PostedLine) error {
	for i, l := range lines {
		if (l.Code == "") == (l.ReliefCode == "") {
			return fmt.Errorf("line %d for %s: exactly one of code and relief_code must be set: %w", i, employeeID, ErrInvalidLine)
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines[employeeID] = append(h.lines[employeeID], lines...)
	return nil
}

// SetOpeningBalances stores the opening snapshot for the balances' tax year.
func (h *HistoryProvider) SetOpeningBalances(employeeID string, ob domain.OpeningBalances) {
	h.mu.Lock()
	defer h.mu.Unlock()
	years, ok := h.opening[employeeID]
	if !ok {
		years = make(map[int]domain.OpeningBalances)
		h.opening[employeeID] = years
	}
	years[ob.TaxYear] = ob
}

// Snapshot aggregates the employee's recorded lines for key.
func (h *HistoryProvider) Snapshot(ctx context.Context, key Key) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	snap := aggregate(h.lines[key.EmployeeID], key, h.incomeTax)
	if ob, ok := h.opening[key.EmployeeID][key.TaxYear]; ok {
		snap.OpeningBalances = &ob
	}
	return snap, nil
}

// aggregate folds posted lines into a snapshot for key. Lines of the same tax
// year dated before the key's period are year-to-date, lines dated on the same
// day belong to the period, and later lines are ignored.
func aggregate(lines []domain.PostedLine, key Key, incomeTax domain.StatutoryCode) Snapshot {
	snap := Snapshot{
		YTD:           domain.StatutoryAmounts{},
		Period:        domain.StatutoryAmounts{},
		Claimed:       domain.ClaimedReliefs{},
		PeriodClaimed: domain.ClaimedReliefs{},
	}
	period := dateutil.Truncate(key.PeriodStart)
	for _, l := range lines {
		if l.TaxYear != key.TaxYear {
			continue
		}
		start := dateutil.Truncate(l.PeriodStart)
		if start.After(period) {
			continue
		}
		if l.ReliefCode != "" {
			snap.Claimed[l.ReliefCode] = snap.Claimed[l.ReliefCode].Add(l.EmployeeAmount)
			if start.Equal(period) {
				snap.PeriodClaimed[l.ReliefCode] = snap.PeriodClaimed[l.ReliefCode].Add(l.EmployeeAmount)
			}
			continue
		}
		amounts := domain.PayerAmounts{Employee: l.EmployeeAmount, Employer: l.EmployerAmount}
		if start.Equal(period) {
			snap.Period[l.Code] = snap.Period[l.Code].Add(amounts)
			if l.Code == incomeTax {
				snap.PeriodTaxableIncome = snap.PeriodTaxableIncome.Add(l.TaxableIncome)
			}
			continue
		}
		snap.YTD[l.Code] = snap.YTD[l.Code].Add(amounts)
		if l.Code == incomeTax {
			snap.YTDTaxableIncome = snap.YTDTaxableIncome.Add(l.TaxableIncome)
		}
	}
	return snap
}
